package encoder

import (
	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/encoding"
	"github.com/semiexp/cspcore/internal/normcsp"
	"github.com/semiexp/cspcore/internal/sat"
)

// directInfo is LinearInfoForDirectEncoding: a coefficient plus a reference
// to a DirectEncoding, normalized the same way orderInfo is so domain(size-1)
// is always the term's maximum contribution regardless of coefficient sign.
type directInfo struct {
	coef arithmetic.CheckedInt
	enc  *encoding.DirectEncoding
}

func (d directInfo) domainSize() int { return len(d.enc.Domain) }

func (d directInfo) domain(j int) arithmetic.CheckedInt {
	if d.coef > 0 {
		return d.enc.Domain[j].Mul(d.coef)
	}
	return d.enc.Domain[len(d.enc.Domain)-1-j].Mul(d.coef)
}

func (d directInfo) domainMax() arithmetic.CheckedInt {
	return d.domain(d.domainSize() - 1)
}

// equals returns the literal asserting the term takes its j-th smallest
// (post sign-normalization) value.
func (d directInfo) equals(j int) sat.Lit {
	if d.coef > 0 {
		return d.enc.Lits[j]
	}
	return d.enc.Lits[len(d.enc.Lits)-1-j]
}

func (d directInfo) negatedCoef() directInfo {
	return directInfo{coef: d.coef.Neg(), enc: d.enc}
}

// ensureDirect lazily builds (or returns the existing) direct encoding for
// v: one fresh SAT variable per domain value, tied together by an
// exactly-one constraint.
func (e *Env) ensureDirect(v normcsp.IntVarID) *encoding.DirectEncoding {
	if enc := e.Map.IntEncodingOf(v).Direct; enc != nil {
		return enc
	}
	values := e.norm.DomainOf(v).Values()
	lits := make([]sat.Lit, len(values))
	for j := range lits {
		lits[j] = e.Solver.NewVar()
	}
	e.emitExactlyOne(lits)
	enc := &encoding.DirectEncoding{Domain: values, Lits: lits}
	e.Map.SetDirect(v, enc)
	if e.Map.HasOrder(v) {
		e.linkOrderDirect(v)
	}
	return enc
}

// linkOrderDirect ties a variable's order and direct encodings together once
// both exist: direct.Lits[j] <-> value == domain[j], expressed against the
// order chain's thresholds either side of domain[j].
func (e *Env) linkOrderDirect(v normcsp.IntVarID) {
	ienc := e.Map.IntEncodingOf(v)
	order, direct := ienc.Order, ienc.Direct
	n := len(direct.Domain)

	for j := 0; j < n; j++ {
		dj := direct.Lits[j]

		if j > 0 {
			e.Solver.AddClause(dj.Not(), order.Lits[j-1])
		}
		if j < n-1 {
			e.Solver.AddClause(dj.Not(), order.Lits[j].Not())
		}

		back := []sat.Lit{dj}
		if j > 0 {
			back = append(back, order.Lits[j-1].Not())
		}
		if j < n-1 {
			back = append(back, order.Lits[j])
		}
		e.Solver.AddClause(back...)
	}
}
