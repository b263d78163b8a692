package normalizer

import (
	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/csp"
	"github.com/semiexp/cspcore/internal/normcsp"
)

// assertAllDifferent expands AllDifferent either as a bijection (one
// Boolean variable per (position, value) cell, with row/column
// exactly-one constraints) or as pairwise inequalities, per spec §4.1
// point 7 and the scenario in spec §8 #5. Bijection requires every
// variable to share one common domain of size exactly len(Vars); anything
// else falls back to pairwise.
func (nz *normalizer) assertAllDifferent(x csp.AllDifferent) {
	if len(x.Vars) <= 1 {
		return
	}
	if nz.cfg.AlldifferentBijectionConstraints && nz.canBijection(x.Vars) {
		nz.assertAllDifferentBijection(x.Vars)
		return
	}
	nz.assertAllDifferentPairwise(x.Vars)
}

func (nz *normalizer) canBijection(vars []csp.IntVarID) bool {
	d0 := nz.norm.DomainOf(nz.ensureIntVar(vars[0]))
	if d0.Size() != len(vars) {
		return false
	}
	for _, v := range vars[1:] {
		if !nz.norm.DomainOf(nz.ensureIntVar(v)).Equal(d0) {
			return false
		}
	}
	return true
}

func (nz *normalizer) assertAllDifferentPairwise(vars []csp.IntVarID) {
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			sum := normcsp.NewLinearSum()
			sum.Add(nz.ensureIntVar(vars[i]), 1)
			sum.Add(nz.ensureIntVar(vars[j]), -1)
			nz.norm.AddClause(normcsp.Clause{LinearLits: []normcsp.LinearLit{
				{Sum: sum, Op: normcsp.LinearNe},
			}})
		}
	}
}

func (nz *normalizer) assertAllDifferentBijection(vars []csp.IntVarID) {
	values := nz.norm.DomainOf(nz.ensureIntVar(vars[0])).Values()
	n := len(vars)

	// cell[i][j] <-> vars[i] == values[j]
	cell := make([][]normcsp.BoolLit, n)
	for i, uv := range vars {
		v := nz.ensureIntVar(uv)
		cell[i] = make([]normcsp.BoolLit, n)
		for j, val := range values {
			cell[i][j] = nz.defineEquality(v, val)
		}
	}

	for i := 0; i < n; i++ {
		nz.emitExactlyOne(cell[i])
	}
	for j := 0; j < n; j++ {
		col := make([]normcsp.BoolLit, n)
		for i := 0; i < n; i++ {
			col[i] = cell[i][j]
		}
		nz.emitExactlyOne(col)
	}
}

// defineEquality returns an aux literal a with a <-> (v == val).
func (nz *normalizer) defineEquality(v normcsp.IntVarID, val arithmetic.CheckedInt) normcsp.BoolLit {
	sum := normcsp.NewLinearSum()
	sum.Add(v, 1)
	sum.Constant = val.Neg()
	return nz.tseitinLinear(normcsp.LinearLit{Sum: sum, Op: normcsp.LinearEq})
}

// emitExactlyOne asserts that exactly one of lits holds: pairwise
// at-most-one plus a single at-least-one clause. Used for bijection rows
// and columns, where n is always small (the arity of the AllDifferent).
func (nz *normalizer) emitExactlyOne(lits []normcsp.BoolLit) {
	nz.norm.AddClause(normcsp.Clause{BoolLits: append([]normcsp.BoolLit(nil), lits...)})
	for i := 0; i < len(lits); i++ {
		for j := i + 1; j < len(lits); j++ {
			nz.norm.AddClause(normcsp.Clause{BoolLits: []normcsp.BoolLit{lits[i].Not(), lits[j].Not()}})
		}
	}
}
