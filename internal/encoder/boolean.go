package encoder

import (
	"github.com/semiexp/cspcore/internal/sat"
)

// trueLit returns a literal pinned true by a unit clause, built once and
// cached, used as the base case for the cardinality encoder's recurrence.
func (e *Env) trueLit() sat.Lit {
	if e.trueConst == 0 && !e.hasTrueConst {
		v := e.Solver.NewVar()
		e.Solver.AddClause(v)
		e.trueConst = v
		e.hasTrueConst = true
	}
	return e.trueConst
}

func (e *Env) falseLit() sat.Lit { return e.trueLit().Not() }

// tseitinAndLit returns a fresh literal r with r <-> (a ∧ b).
func (e *Env) tseitinAndLit(a, b sat.Lit) sat.Lit {
	r := e.Solver.NewVar()
	e.Solver.AddClause(r.Not(), a)
	e.Solver.AddClause(r.Not(), b)
	e.Solver.AddClause(r, a.Not(), b.Not())
	return r
}

// tseitinOrLit returns a fresh literal r with r <-> (a ∨ b).
func (e *Env) tseitinOrLit(a, b sat.Lit) sat.Lit {
	r := e.Solver.NewVar()
	e.Solver.AddClause(r, a.Not())
	e.Solver.AddClause(r, b.Not())
	e.Solver.AddClause(r.Not(), a, b)
	return r
}

// emitAtMostOne asserts at most one of lits is true, via Sinz's sequential
// encoding: one auxiliary s_i per prefix meaning "some x_1..x_i is true",
// chained so x_i and s_{i-1} can't both hold.
func (e *Env) emitAtMostOne(lits []sat.Lit) {
	if len(lits) <= 1 {
		return
	}
	s := make([]sat.Lit, len(lits)-1)
	for i := range s {
		s[i] = e.Solver.NewVar()
	}
	e.Solver.AddClause(lits[0].Not(), s[0])
	for i := 1; i < len(lits)-1; i++ {
		e.Solver.AddClause(lits[i].Not(), s[i])
		e.Solver.AddClause(s[i-1].Not(), s[i])
		e.Solver.AddClause(lits[i].Not(), s[i-1].Not())
	}
	e.Solver.AddClause(lits[len(lits)-1].Not(), s[len(s)-1].Not())
}

func (e *Env) emitAtLeastOne(lits []sat.Lit) {
	e.Solver.AddClause(lits...)
}

func (e *Env) emitExactlyOne(lits []sat.Lit) {
	e.emitAtLeastOne(lits)
	e.emitAtMostOne(lits)
}

// AtLeastK asserts that at least k of lits are true (spec §4.7 "≥k-of-n"),
// via a sequential-counter construction: s[i][j] means "at least j of
// lits[0:i] are true", built bottom-up with trueLit/falseLit as the j=0 and
// i<j sentinels so the recurrence needs no boundary special-casing.
func (e *Env) AtLeastK(lits []sat.Lit, k int) {
	n := len(lits)
	if k <= 0 {
		return
	}
	if k > n {
		e.Solver.AddClause()
		return
	}

	s := make([][]sat.Lit, n+1)
	for i := range s {
		s[i] = make([]sat.Lit, k+1)
	}
	at := func(i, j int) sat.Lit {
		if j == 0 {
			return e.trueLit()
		}
		if i < j {
			return e.falseLit()
		}
		return s[i][j]
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= k && j <= i; j++ {
			term := e.tseitinAndLit(lits[i-1], at(i-1, j-1))
			s[i][j] = e.tseitinOrLit(at(i-1, j), term)
		}
	}
	e.Solver.AddClause(s[n][k])
}
