package encoder

import (
	"sort"

	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/encoding"
	"github.com/semiexp/cspcore/internal/normcsp"
	"github.com/semiexp/cspcore/internal/sat"
)

// extKind distinguishes the three outcomes of resolving "x >= val" against
// an encoding whose domain might not contain val at all.
type extKind int8

const (
	extTrue extKind = iota
	extFalse
	extLit
)

// ExtendedLit is a literal that may have collapsed to a known constant
// (mirrors the Rust ExtendedLit enum used by at_least_val).
type ExtendedLit struct {
	kind extKind
	lit  sat.Lit
}

func (e ExtendedLit) IsTrue() bool  { return e.kind == extTrue }
func (e ExtendedLit) IsFalse() bool { return e.kind == extFalse }
func (e ExtendedLit) Lit() sat.Lit  { return e.lit }

// orderInfo is LinearInfoForOrderEncoding: a coefficient plus a reference to
// an OrderEncoding, normalized so every accessor behaves as if coef were
// positive (negative coefficients reverse the domain and complement the
// at_least literals, ported from order.rs).
type orderInfo struct {
	coef arithmetic.CheckedInt
	enc  *encoding.OrderEncoding
}

func (o orderInfo) domainSize() int { return len(o.enc.Domain) }

// domain returns the j-th smallest value this term can contribute, after
// sign normalization.
func (o orderInfo) domain(j int) arithmetic.CheckedInt {
	if o.coef > 0 {
		return o.enc.Domain[j].Mul(o.coef)
	}
	return o.enc.Domain[len(o.enc.Domain)-1-j].Mul(o.coef)
}

func (o orderInfo) domainMax() arithmetic.CheckedInt {
	return o.domain(o.domainSize() - 1)
}

// atLeast returns the literal asserting the term is at least domain(j), for
// 0 < j < domainSize.
func (o orderInfo) atLeast(j int) sat.Lit {
	if o.coef > 0 {
		return o.enc.Lits[j-1]
	}
	return o.enc.Lits[len(o.enc.Lits)-j].Not()
}

// atLeastVal returns the literal asserting the term is at least val, or a
// constant if val falls outside (or at the edge of) the term's domain.
func (o orderInfo) atLeastVal(val arithmetic.CheckedInt) ExtendedLit {
	n := o.domainSize()
	if val <= o.domain(0) {
		return ExtendedLit{kind: extTrue}
	}
	if val > o.domain(n-1) {
		return ExtendedLit{kind: extFalse}
	}
	left := sort.Search(n, func(j int) bool { return val <= o.domain(j) })
	return ExtendedLit{kind: extLit, lit: o.atLeast(left)}
}

func (o orderInfo) negatedCoef() orderInfo {
	return orderInfo{coef: o.coef.Neg(), enc: o.enc}
}

func toInt32Domain(d []arithmetic.CheckedInt) []int32 {
	out := make([]int32, len(d))
	for i, v := range d {
		out[i] = int32(v)
	}
	return out
}

// ensureOrder lazily builds (or returns the existing) order encoding for v:
// one fresh SAT variable per non-minimum domain value, plus the chain
// clauses lits[j] -> lits[j-1] enforcing monotonicity.
func (e *Env) ensureOrder(v normcsp.IntVarID) *encoding.OrderEncoding {
	if enc := e.Map.IntEncodingOf(v).Order; enc != nil {
		return enc
	}
	values := e.norm.DomainOf(v).Values()
	lits := make([]sat.Lit, len(values)-1)
	for j := range lits {
		lits[j] = e.Solver.NewVar()
	}
	for j := 1; j < len(lits); j++ {
		e.Solver.AddClause(lits[j].Not(), lits[j-1])
	}
	enc := &encoding.OrderEncoding{Domain: values, Lits: lits}
	e.Map.SetOrder(v, enc)
	if e.Map.HasDirect(v) {
		e.linkOrderDirect(v)
	}
	return enc
}
