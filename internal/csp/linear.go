package csp

import "github.com/semiexp/cspcore/internal/arithmetic"

// BoolLit is a (possibly negated) reference to a Boolean CSP variable.
type BoolLit struct {
	Var     BoolVarID
	Negated bool
}

// Lit builds a positive literal; Lit.Not negates it.
func Lit(id BoolVarID) BoolLit { return BoolLit{Var: id} }

func (l BoolLit) Not() BoolLit { return BoolLit{Var: l.Var, Negated: !l.Negated} }

// LinearSum is Σ coef*var + constant over integer CSP variables. Zero
// coefficients are pruned on insertion (spec §3 invariant).
type LinearSum struct {
	Terms    map[IntVarID]arithmetic.CheckedInt
	Constant arithmetic.CheckedInt
}

// NewLinearSum returns the empty sum (constant 0).
func NewLinearSum() LinearSum {
	return LinearSum{Terms: make(map[IntVarID]arithmetic.CheckedInt)}
}

// Add accumulates coef*var into the sum, pruning the term if the
// accumulated coefficient becomes zero.
func (s *LinearSum) Add(v IntVarID, coef arithmetic.CheckedInt) {
	if coef == 0 {
		return
	}
	cur := s.Terms[v]
	next := cur.Add(coef)
	if next == 0 {
		delete(s.Terms, v)
	} else {
		s.Terms[v] = next
	}
}

// AddConstant accumulates k into the sum's constant term.
func (s *LinearSum) AddConstant(k arithmetic.CheckedInt) {
	s.Constant = s.Constant.Add(k)
}

// Negate returns -s.
func (s LinearSum) Negate() LinearSum {
	r := NewLinearSum()
	for v, c := range s.Terms {
		r.Terms[v] = c.Neg()
	}
	r.Constant = s.Constant.Neg()
	return r
}

// Clone returns a deep copy of s.
func (s LinearSum) Clone() LinearSum {
	r := LinearSum{Terms: make(map[IntVarID]arithmetic.CheckedInt, len(s.Terms)), Constant: s.Constant}
	for v, c := range s.Terms {
		r.Terms[v] = c
	}
	return r
}

// LinearLit is (sum op 0), e.g. Σ+k >= 0.
type LinearLit struct {
	Sum LinearSum
	Op  CmpOp
}

// Constraint is a disjunction: the constraint is satisfied iff at least one
// of BoolLits holds, or at least one of LinearLits holds.
type Constraint struct {
	BoolLits   []BoolLit
	LinearLits []LinearLit
}

// AddRawConstraint adds a Constraint directly, bypassing the BoolExpr tree.
// This is the entry point the normalizer's own Tseitin expansion, and
// advanced callers, use.
func (c *CSP) AddRawConstraint(ct Constraint) {
	c.rawConstraints = append(c.rawConstraints, ct)
}

// RawConstraints returns every directly-added Constraint, in insertion
// order.
func (c *CSP) RawConstraints() []Constraint {
	return c.rawConstraints
}
