package normalizer

import (
	"github.com/semiexp/cspcore/internal/csp"
	"github.com/semiexp/cspcore/internal/normcsp"
)

// toLit performs full Tseitin expansion of e, returning a normalized literal
// equisatisfiable with e (spec §4.1 point 1). Every aux variable introduced
// gets exactly the clauses needed to pin its value to e's.
func (nz *normalizer) toLit(e csp.BoolExpr) normcsp.BoolLit {
	switch x := e.(type) {
	case csp.BoolConst:
		if x.Value {
			return nz.trueLit
		}
		return nz.trueLit.Not()

	case csp.BoolVar:
		return normcsp.BoolLit{Var: nz.boolOf[x.ID]}

	case csp.BoolNot:
		return nz.toLit(x.X).Not()

	case csp.BoolAnd:
		return nz.tseitinAnd(x.Xs)

	case csp.BoolOr:
		return nz.tseitinOr(x.Xs)

	case csp.BoolXor:
		return nz.tseitinXor(nz.toLit(x.A), nz.toLit(x.B))

	case csp.BoolIff:
		return nz.tseitinXor(nz.toLit(x.A), nz.toLit(x.B)).Not()

	case csp.BoolImp:
		return nz.tseitinOr([]csp.BoolExpr{csp.Not(x.Cond), x.Then})

	case csp.BoolCmp:
		lit := nz.canonicalLit(x.L, x.R, x.Op)
		return nz.tseitinLinear(lit)

	case csp.AllDifferent:
		// AllDifferent is meaningful only as a top-level assertion; wrapping
		// it in a sub-expression has no well-defined Tseitin form.
		panic("normalizer: AllDifferent used as a sub-expression")

	default:
		panic("normalizer: unknown boolean expression")
	}
}

// tseitinAnd returns an aux literal a with a -> each xs[i] and (all xs[i]) -> a.
func (nz *normalizer) tseitinAnd(xs []csp.BoolExpr) normcsp.BoolLit {
	lits := make([]normcsp.BoolLit, len(xs))
	for i, x := range xs {
		lits[i] = nz.toLit(x)
	}
	a := normcsp.BoolLit{Var: nz.newAuxBool()}
	for _, l := range lits {
		nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{a.Not(), l}})
	}
	neg := make([]normcsp.BoolLit, 0, len(lits)+1)
	for _, l := range lits {
		neg = append(neg, l.Not())
	}
	neg = append(neg, a)
	nz.norm.AddClause(normcsp.Clause{BoolLits: neg})
	return a
}

// tseitinOr returns an aux literal a with (any xs[i]) -> a and a -> (some xs[i]).
func (nz *normalizer) tseitinOr(xs []csp.BoolExpr) normcsp.BoolLit {
	lits := make([]normcsp.BoolLit, len(xs))
	for i, x := range xs {
		lits[i] = nz.toLit(x)
	}
	a := normcsp.BoolLit{Var: nz.newAuxBool()}
	for _, l := range lits {
		nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{a, l.Not()}})
	}
	pos := make([]normcsp.BoolLit, 0, len(lits)+1)
	pos = append(pos, lits...)
	pos = append(pos, a.Not())
	nz.norm.AddClause(normcsp.Clause{BoolLits: pos})
	return a
}

// tseitinXor returns an aux literal a with a <-> (p xor q), via the standard
// four-clause expansion.
func (nz *normalizer) tseitinXor(p, q normcsp.BoolLit) normcsp.BoolLit {
	a := normcsp.BoolLit{Var: nz.newAuxBool()}
	nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{a.Not(), p, q}})
	nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{a.Not(), p.Not(), q.Not()}})
	nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{a, p.Not(), q}})
	nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{a, p, q.Not()}})
	return a
}

// tseitinLinear returns an aux literal a with a <-> lit.
func (nz *normalizer) tseitinLinear(lit normcsp.LinearLit) normcsp.BoolLit {
	a := normcsp.BoolLit{Var: nz.newAuxBool()}
	nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{a.Not()}, LinearLits: []normcsp.LinearLit{lit}})
	nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{a}, LinearLits: []normcsp.LinearLit{negateLit(lit)}})
	return a
}

// assertBool asserts e at top level, taking the cheapest available clause
// shape instead of always routing through toLit's aux-variable machinery
// (spec §4.1 point 1, "top-level assertions should avoid needless
// auxiliaries").
func (nz *normalizer) assertBool(e csp.BoolExpr) {
	switch x := e.(type) {
	case csp.BoolConst:
		if !x.Value {
			nz.norm.AddEmptyClause()
		}

	case csp.BoolAnd:
		for _, sub := range x.Xs {
			nz.assertBool(sub)
		}

	case csp.BoolOr:
		lits := make([]normcsp.BoolLit, len(x.Xs))
		for i, sub := range x.Xs {
			lits[i] = nz.toLit(sub)
		}
		nz.norm.AddClause(normcsp.Clause{BoolLits: lits})

	case csp.BoolImp:
		if nz.cfg.OptimizePolarity {
			nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{
				nz.toLit(x.Cond).Not(), nz.toLit(x.Then),
			}})
			return
		}
		nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{nz.toLit(e)}})

	case csp.BoolCmp:
		lit := nz.canonicalLit(x.L, x.R, x.Op)
		nz.norm.AddClause(normcsp.Clause{LinearLits: []normcsp.LinearLit{lit}})

	case csp.AllDifferent:
		nz.assertAllDifferent(x)

	default:
		nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{nz.toLit(e)}})
	}
}

// assertRaw asserts a csp.Constraint built directly against the linear
// layer, bypassing BoolExpr (spec §3 "advanced callers may skip the
// expression tree").
func (nz *normalizer) assertRaw(ct csp.Constraint) {
	clause := normcsp.Clause{}
	for _, bl := range ct.BoolLits {
		clause.BoolLits = append(clause.BoolLits, normcsp.BoolLit{Var: nz.boolOf[bl.Var], Negated: bl.Negated})
	}
	for _, ll := range ct.LinearLits {
		sum := nz.lowerRawSum(ll.Sum)
		clause.LinearLits = append(clause.LinearLits, nz.canonicalSumLit(sum, ll.Op))
	}
	nz.norm.AddClause(clause)
}

// lowerRawSum converts a csp.LinearSum (over user integer variables) into a
// normcsp.LinearSum (over normalized integer variables).
func (nz *normalizer) lowerRawSum(sum csp.LinearSum) normcsp.LinearSum {
	out := normcsp.NewLinearSum()
	out.Constant = sum.Constant
	for v, c := range sum.Terms {
		out.Add(nz.ensureIntVar(v), c)
	}
	return out
}
