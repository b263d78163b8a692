package encoder

import (
	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/normcsp"
	"github.com/semiexp/cspcore/internal/sat"
)

// LinearInfo is one term of a mixed linear constraint: either an
// order-encoded or a direct-encoded variable, each normalized so the
// recursive encoder below never needs to branch on which it's looking at
// except to pick the right accessor (ported from encoder/mixed.rs's
// LinearInfo enum).
type LinearInfo struct {
	order *orderInfo
	dir   *directInfo
}

func (l LinearInfo) domainSize() int {
	if l.order != nil {
		return l.order.domainSize()
	}
	return l.dir.domainSize()
}

func (l LinearInfo) domain(j int) arithmetic.CheckedInt {
	if l.order != nil {
		return l.order.domain(j)
	}
	return l.dir.domain(j)
}

func (l LinearInfo) domainMax() arithmetic.CheckedInt {
	if l.order != nil {
		return l.order.domainMax()
	}
	return l.dir.domainMax()
}

func (l LinearInfo) negatedCoef() LinearInfo {
	if l.order != nil {
		n := l.order.negatedCoef()
		return LinearInfo{order: &n}
	}
	n := l.dir.negatedCoef()
	return LinearInfo{dir: &n}
}

// buildLinearInfo converts a normalized LinearSum into the per-term info
// list the mixed encoder recurses over, preferring order encoding when a
// variable carries both (mirrors encode_linear_ge_mixed's "Prefer order
// encoding" comment).
func (e *Env) buildLinearInfo(sum normcsp.LinearSum) []LinearInfo {
	info := make([]LinearInfo, 0, len(sum.Terms))
	for v, coef := range sum.Terms {
		ienc := e.Map.IntEncodingOf(v)
		switch {
		case ienc.Order != nil:
			oi := orderInfo{coef: coef, enc: ienc.Order}
			info = append(info, LinearInfo{order: &oi})
		case ienc.Direct != nil:
			di := directInfo{coef: coef, enc: ienc.Direct}
			info = append(info, LinearInfo{dir: &di})
		default:
			panic("encoder: linear term has neither order nor direct encoding")
		}
	}
	return info
}

// encodeLinearGeMixedFromInfo is encode_linear_ge_mixed_from_info ported
// directly: a depth-first enumeration over terms that, at each step, either
// commits the current partial clause (once the running upper bound proves
// the remaining terms can't rescue the inequality) or branches over every
// way this term's contribution could be capped below its maximum. guard is
// prefixed into the partial clause once, up front, realizing "guard ∨ (sum
// >= 0)" instead of just "sum >= 0" (see Env.encodeGuardedGe).
func encodeLinearGeMixedFromInfo(solver sat.Solver, guard []sat.Lit, info []LinearInfo, constant arithmetic.CheckedInt) {
	upperBound := constant
	for _, it := range info {
		upperBound = upperBound.Add(it.domainMax())
	}

	clause := append([]sat.Lit(nil), guard...)
	encodeSub(solver, info, &clause, 0, upperBound, nil, len(guard))
}

// encodeSub mirrors encode_sub: clause is truncated back to its length at
// entry (guardLen accounts for the guard prefix that must never be popped)
// before returning, so callers can keep recursing with the same backing
// array.
func encodeSub(solver sat.Solver, info []LinearInfo, clause *[]sat.Lit, idx int, upperBound arithmetic.CheckedInt, minRelaxOnErasure *arithmetic.CheckedInt, guardLen int) {
	if upperBound < 0 {
		if minRelaxOnErasure != nil && upperBound.Add(*minRelaxOnErasure) < 0 {
			return
		}
		solver.AddClause(append([]sat.Lit(nil), *clause...)...)
		return
	}
	if idx == len(info) {
		return
	}

	term := info[idx]
	if term.order != nil {
		encodeSubOrder(solver, info, clause, idx, upperBound, minRelaxOnErasure, guardLen, *term.order)
		return
	}
	encodeSubDirect(solver, info, clause, idx, upperBound, minRelaxOnErasure, guardLen, *term.dir)
}

func encodeSubOrder(solver sat.Solver, info []LinearInfo, clause *[]sat.Lit, idx int, upperBound arithmetic.CheckedInt, minRelaxOnErasure *arithmetic.CheckedInt, guardLen int, oi orderInfo) {
	if idx+1 == len(info) {
		ext := oi.atLeastVal(oi.domainMax().Sub(upperBound))
		switch {
		case ext.IsTrue():
		case ext.IsFalse():
			panic("encoder: mixed encoder reached an impossible branch")
		default:
			*clause = append(*clause, ext.Lit())
			solver.AddClause(append([]sat.Lit(nil), *clause...)...)
			*clause = (*clause)[:len(*clause)-1]
		}
		return
	}

	ubForThisTerm := oi.domainMax()
	for i := 0; i < oi.domainSize()-1; i++ {
		value := oi.domain(i)
		nextUB := upperBound.Sub(ubForThisTerm).Add(value)
		*clause = append(*clause, oi.atLeast(i+1))
		encodeSub(solver, info, clause, idx+1, nextUB, nil, guardLen)
		*clause = (*clause)[:len(*clause)-1]
	}

	encodeSub(solver, info, clause, idx+1, upperBound, minRelaxOnErasure, guardLen)
}

func encodeSubDirect(solver sat.Solver, info []LinearInfo, clause *[]sat.Lit, idx int, upperBound arithmetic.CheckedInt, minRelaxOnErasure *arithmetic.CheckedInt, guardLen int, di directInfo) {
	ubForThisTerm := di.domainMax()
	for i := 0; i < di.domainSize()-1; i++ {
		value := di.domain(i)
		nextUB := upperBound.Sub(ubForThisTerm).Add(value)
		relax := ubForThisTerm.Sub(value)
		if minRelaxOnErasure != nil && *minRelaxOnErasure < relax {
			relax = *minRelaxOnErasure
		}
		*clause = append(*clause, di.equals(i).Not())
		encodeSub(solver, info, clause, idx+1, nextUB, &relax, guardLen)
		*clause = (*clause)[:len(*clause)-1]
	}

	encodeSub(solver, info, clause, idx+1, upperBound, minRelaxOnErasure, guardLen)
}
