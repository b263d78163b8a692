// Package normalizer lowers the high-level csp.CSP expression tree into a
// normcsp.NormCSP: conjunctions of (Boolean literal ∨ linear atom) clauses
// over normalized variables, with constant folding, Tseitin auxiliary
// variables, and domain refinement (spec §4.1).
package normalizer

import (
	"github.com/sirupsen/logrus"

	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/config"
	"github.com/semiexp/cspcore/internal/csp"
	"github.com/semiexp/cspcore/internal/domain"
	"github.com/semiexp/cspcore/internal/normcsp"
)

type normalizer struct {
	cfg    config.Config
	src    *csp.CSP
	norm   *normcsp.NormCSP
	log    *logrus.Entry
	boolOf map[csp.BoolVarID]normcsp.BoolVarID
	intOf  map[csp.IntVarID]normcsp.IntVarID
	trueLit normcsp.BoolLit
}

// Normalize lowers src into a fresh normcsp.NormCSP according to cfg. It
// never fails except by panicking on arithmetic.OverflowError (spec §4.1
// "Failure... infallible except by overflow").
func Normalize(src *csp.CSP, cfg config.Config, log *logrus.Entry) *normcsp.NormCSP {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	nz := &normalizer{
		cfg:    cfg,
		src:    src,
		norm:   normcsp.New(),
		log:    log,
		boolOf: make(map[csp.BoolVarID]normcsp.BoolVarID),
		intOf:  make(map[csp.IntVarID]normcsp.IntVarID),
	}
	nz.init()
	for _, e := range src.Constraints() {
		nz.assertBool(e)
	}
	for _, c := range src.RawConstraints() {
		nz.assertRaw(c)
	}

	if cfg.UseNormDomainRefinement {
		refineDomains(nz.norm)
	}
	if cfg.UseConstantFolding {
		foldConstants(nz.norm)
	}
	var boolRemap map[normcsp.BoolVarID]normcsp.BoolLit
	if cfg.MergeEquivalentVariables {
		boolRemap = mergeEquivalentVariables(nz.norm)
	}

	nz.finalizeUserMappings(boolRemap)
	log.WithFields(logrus.Fields{
		"bool_vars": nz.norm.NumBoolVars(),
		"int_vars":  nz.norm.NumIntVars(),
		"clauses":   len(nz.norm.Clauses()),
	}).Debug("normalization complete")
	return nz.norm
}

func (nz *normalizer) init() {
	// One dedicated always-true Boolean variable, asserted by a unit
	// clause, used to represent BoolConst without special-casing it
	// through the rest of the pipeline.
	tv := nz.norm.NewBoolVar(true)
	nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{{Var: tv}}})
	nz.trueLit = normcsp.BoolLit{Var: tv}

	for i := 0; i < nz.src.NumBoolVars(); i++ {
		nz.boolOf[csp.BoolVarID(i)] = nz.norm.NewBoolVar(false)
	}
	for i := 0; i < nz.src.NumIntVars(); i++ {
		id := csp.IntVarID(i)
		nz.intOf[id] = nz.norm.NewIntVar(nz.src.DomainOf(id))
	}
}

func (nz *normalizer) finalizeUserMappings(boolRemap map[normcsp.BoolVarID]normcsp.BoolLit) {
	for userID, normID := range nz.boolOf {
		lit := normcsp.BoolLit{Var: normID}
		if canon, ok := boolRemap[normID]; ok {
			lit = canon
		}
		nz.norm.MapUserBoolVar(userID, lit)
	}
	for userID, normID := range nz.intOf {
		nz.norm.MapUserIntVar(userID, normID)
	}
}

func (nz *normalizer) ensureIntVar(id csp.IntVarID) normcsp.IntVarID {
	v, ok := nz.intOf[id]
	if !ok {
		panic("normalizer: referenced integer variable was never allocated")
	}
	return v
}

func (nz *normalizer) newAuxBool() normcsp.BoolVarID {
	return nz.norm.NewBoolVar(true)
}

// canonicalLit turns `l op r` into the normalized `sum GE/EQ/NE 0` form
// (spec §4.1 point 3).
func (nz *normalizer) canonicalLit(l, r csp.IntExpr, op csp.CmpOp) normcsp.LinearLit {
	ls := nz.lowerInt(l)
	rs := nz.lowerInt(r)
	sum := ls.Clone()
	for v, c := range rs.Terms {
		sum.Add(v, c.Neg())
	}
	sum.Constant = sum.Constant.Sub(rs.Constant)
	return nz.canonicalSumLit(sum, op)
}

// canonicalSumLit turns `sum op 0` into the normalized form.
func (nz *normalizer) canonicalSumLit(sum normcsp.LinearSum, op csp.CmpOp) normcsp.LinearLit {
	switch op {
	case csp.CmpEq:
		return normcsp.LinearLit{Sum: sum, Op: normcsp.LinearEq}
	case csp.CmpNe:
		return normcsp.LinearLit{Sum: sum, Op: normcsp.LinearNe}
	case csp.CmpGe:
		return normcsp.LinearLit{Sum: sum, Op: normcsp.LinearGe}
	case csp.CmpGt:
		sum.Constant = sum.Constant.Sub(1)
		return normcsp.LinearLit{Sum: sum, Op: normcsp.LinearGe}
	case csp.CmpLe:
		neg := sum.Negate()
		return normcsp.LinearLit{Sum: neg, Op: normcsp.LinearGe}
	case csp.CmpLt:
		neg := sum.Negate()
		neg.Constant = neg.Constant.Sub(1)
		return normcsp.LinearLit{Sum: neg, Op: normcsp.LinearGe}
	default:
		panic("normalizer: unknown comparison operator")
	}
}

// negateLit returns the normalized linear atom equivalent to ¬lit.
func negateLit(lit normcsp.LinearLit) normcsp.LinearLit {
	switch lit.Op {
	case normcsp.LinearEq:
		return normcsp.LinearLit{Sum: lit.Sum, Op: normcsp.LinearNe}
	case normcsp.LinearNe:
		return normcsp.LinearLit{Sum: lit.Sum, Op: normcsp.LinearEq}
	case normcsp.LinearGe:
		neg := lit.Sum.Negate()
		neg.Constant = neg.Constant.Sub(1)
		return normcsp.LinearLit{Sum: neg, Op: normcsp.LinearGe}
	default:
		panic("normalizer: unknown linear op")
	}
}

// sumRange computes the interval hull of every value a LinearSum can take,
// given the current (possibly not-yet-refined) domains of its variables.
func sumRange(norm *normcsp.NormCSP, sum normcsp.LinearSum) arithmetic.Range {
	r := arithmetic.NewRange(sum.Constant, sum.Constant)
	for v, c := range sum.Terms {
		r = r.Add(norm.DomainOf(v).Range().Scale(c))
	}
	return r
}

// lowerInt lowers an integer expression into a LinearSum over normalized
// variables, introducing fresh variables (with defining clauses, appended
// as a side effect) for Abs and If (spec §4.1 point 2).
func (nz *normalizer) lowerInt(e csp.IntExpr) normcsp.LinearSum {
	switch x := e.(type) {
	case csp.IntConst:
		s := normcsp.NewLinearSum()
		s.Constant = x.Value
		return s
	case csp.IntVar:
		s := normcsp.NewLinearSum()
		s.Add(nz.ensureIntVar(x.ID), 1)
		return s
	case csp.IntLinear:
		s := normcsp.NewLinearSum()
		s.Constant = x.Const
		for i, t := range x.Terms {
			coef := x.Coefs[i]
			sub := nz.lowerInt(t)
			for v, c := range sub.Terms {
				s.Add(v, c.Mul(coef))
			}
			s.Constant = s.Constant.Add(sub.Constant.Mul(coef))
		}
		return s
	case csp.IntAbs:
		return nz.lowerAbs(x)
	case csp.IntIf:
		return nz.lowerIf(x)
	default:
		panic("normalizer: unknown integer expression")
	}
}

func (nz *normalizer) lowerAbs(x csp.IntAbs) normcsp.LinearSum {
	inner := nz.lowerInt(x.X)
	rng := sumRange(nz.norm, inner)
	bound := arithmetic.Max(rng.Low.Abs(), rng.High.Abs())
	y := nz.norm.NewIntVar(domain.FromRange(0, bound))

	// e < 0 ∨ y = e
	notGe := negateLit(normcsp.LinearLit{Sum: inner, Op: normcsp.LinearGe})
	yMinusE := inner.Negate()
	yMinusE.Add(y, 1)
	nz.norm.AddClause(normcsp.Clause{LinearLits: []normcsp.LinearLit{notGe, {Sum: yMinusE, Op: normcsp.LinearEq}}})

	// e >= 0 ∨ y = -e
	yPlusE := inner.Clone()
	yPlusE.Add(y, 1)
	nz.norm.AddClause(normcsp.Clause{LinearLits: []normcsp.LinearLit{
		{Sum: inner, Op: normcsp.LinearGe},
		{Sum: yPlusE, Op: normcsp.LinearEq},
	}})

	s := normcsp.NewLinearSum()
	s.Add(y, 1)
	return s
}

func (nz *normalizer) lowerIf(x csp.IntIf) normcsp.LinearSum {
	condLit := nz.toLit(x.Cond)
	thenSum := nz.lowerInt(x.Then)
	elseSum := nz.lowerInt(x.Else)

	thenRange := sumRange(nz.norm, thenSum)
	elseRange := sumRange(nz.norm, elseSum)
	hull := thenRange.Hull(elseRange)
	y := nz.norm.NewIntVar(domain.FromRange(hull.Low, hull.High))

	yMinusThen := thenSum.Negate()
	yMinusThen.Add(y, 1)
	nz.norm.AddClause(normcsp.Clause{
		BoolLits:   []normcsp.BoolLit{condLit.Not()},
		LinearLits: []normcsp.LinearLit{{Sum: yMinusThen, Op: normcsp.LinearEq}},
	})

	yMinusElse := elseSum.Negate()
	yMinusElse.Add(y, 1)
	nz.norm.AddClause(normcsp.Clause{
		BoolLits:   []normcsp.BoolLit{condLit},
		LinearLits: []normcsp.LinearLit{{Sum: yMinusElse, Op: normcsp.LinearEq}},
	})

	s := normcsp.NewLinearSum()
	s.Add(y, 1)
	return s
}
