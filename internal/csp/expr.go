package csp

import "github.com/semiexp/cspcore/internal/arithmetic"

// CmpOp is a comparison operator between two integer expressions.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLe
	CmpLt
	CmpGe
	CmpGt
)

func (op CmpOp) String() string {
	switch op {
	case CmpEq:
		return "="
	case CmpNe:
		return "!="
	case CmpLe:
		return "<="
	case CmpLt:
		return "<"
	case CmpGe:
		return ">="
	case CmpGt:
		return ">"
	default:
		return "?"
	}
}

// Flip returns the operator for swapped operands: (a op b) == (b op.Flip() a).
func (op CmpOp) Flip() CmpOp {
	switch op {
	case CmpLe:
		return CmpGe
	case CmpLt:
		return CmpGt
	case CmpGe:
		return CmpLe
	case CmpGt:
		return CmpLt
	default:
		return op
	}
}

// BoolExpr is the sum type of Boolean CSP expressions (spec §3).
type BoolExpr interface {
	isBoolExpr()
}

type BoolConst struct{ Value bool }
type BoolVar struct{ ID BoolVarID }
type BoolNot struct{ X BoolExpr }
type BoolAnd struct{ Xs []BoolExpr }
type BoolOr struct{ Xs []BoolExpr }
type BoolXor struct{ A, B BoolExpr }
type BoolIff struct{ A, B BoolExpr }
type BoolImp struct{ Cond, Then BoolExpr }
type BoolCmp struct {
	Op   CmpOp
	L, R IntExpr
}

// AllDifferent asserts that every variable in Vars takes a distinct value.
// Meaningful only as a top-level constraint (spec §4.1 point 7); the
// normalizer expands it either as a bijection (direct-encoded) or as
// pairwise inequalities depending on configuration and domain shape.
type AllDifferent struct{ Vars []IntVarID }

func (BoolConst) isBoolExpr() {}
func (BoolVar) isBoolExpr()   {}
func (BoolNot) isBoolExpr()   {}
func (BoolAnd) isBoolExpr()   {}
func (BoolOr) isBoolExpr()    {}
func (BoolXor) isBoolExpr()   {}
func (BoolIff) isBoolExpr()   {}
func (BoolImp) isBoolExpr()   {}
func (BoolCmp) isBoolExpr()       {}
func (AllDifferent) isBoolExpr()  {}

// Not, And, Or etc. are convenience constructors.
func Not(x BoolExpr) BoolExpr       { return BoolNot{X: x} }
func And(xs ...BoolExpr) BoolExpr   { return BoolAnd{Xs: xs} }
func Or(xs ...BoolExpr) BoolExpr    { return BoolOr{Xs: xs} }
func Xor(a, b BoolExpr) BoolExpr    { return BoolXor{A: a, B: b} }
func Iff(a, b BoolExpr) BoolExpr    { return BoolIff{A: a, B: b} }
func Imp(c, t BoolExpr) BoolExpr    { return BoolImp{Cond: c, Then: t} }
func Var(id BoolVarID) BoolExpr     { return BoolVar{ID: id} }
func Const(v bool) BoolExpr         { return BoolConst{Value: v} }
func Cmp(l IntExpr, op CmpOp, r IntExpr) BoolExpr {
	return BoolCmp{Op: op, L: l, R: r}
}

// AllDifferentOf builds an AllDifferent constraint over the given variables.
func AllDifferentOf(vars ...IntVarID) BoolExpr {
	return AllDifferent{Vars: vars}
}

// IntExpr is the sum type of integer CSP expressions (spec §3).
type IntExpr interface {
	isIntExpr()
}

type IntConst struct{ Value arithmetic.CheckedInt }
type IntVar struct{ ID IntVarID }
type IntIf struct {
	Cond       BoolExpr
	Then, Else IntExpr
}
type IntAbs struct{ X IntExpr }

// IntLinear is Σ Coefs[i]*Terms[i] + Const. Terms and Coefs must have equal
// length; a term may itself be a non-variable IntExpr (the normalizer
// lowers those away before encoding).
type IntLinear struct {
	Terms []IntExpr
	Coefs []arithmetic.CheckedInt
	Const arithmetic.CheckedInt
}

func (IntConst) isIntExpr()  {}
func (IntVar) isIntExpr()    {}
func (IntIf) isIntExpr()     {}
func (IntAbs) isIntExpr()    {}
func (IntLinear) isIntExpr() {}

func IntConstant(v arithmetic.CheckedInt) IntExpr { return IntConst{Value: v} }
func IntVariable(id IntVarID) IntExpr             { return IntVar{ID: id} }
func If(cond BoolExpr, then, els IntExpr) IntExpr  { return IntIf{Cond: cond, Then: then, Else: els} }
func Abs(x IntExpr) IntExpr                        { return IntAbs{X: x} }

// Linear builds Σ coefs[i]*terms[i] + k.
func Linear(terms []IntExpr, coefs []arithmetic.CheckedInt, k arithmetic.CheckedInt) IntExpr {
	if len(terms) != len(coefs) {
		panic("csp: Linear called with mismatched terms/coefs lengths")
	}
	return IntLinear{Terms: terms, Coefs: coefs, Const: k}
}

// Add builds a+b via Linear.
func Add(a, b IntExpr) IntExpr {
	return Linear([]IntExpr{a, b}, []arithmetic.CheckedInt{1, 1}, 0)
}

// Sub builds a-b via Linear.
func Sub(a, b IntExpr) IntExpr {
	return Linear([]IntExpr{a, b}, []arithmetic.CheckedInt{1, -1}, 0)
}
