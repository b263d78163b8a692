// Package ginisolver adapts github.com/go-air/gini's inter.S contract to
// sat.Solver, grounded on the same g.Add/g.Assume/g.Solve/g.Value/g.Why
// usage the operator-framework dependency-resolution solver's litMapping
// wraps. It is the clause-only fast path for config.BackendGlucose: gini's
// public surface has no theory/propagator extension point, so
// AddPropagator always fails here (see internal/sat/nativesolver for the
// backend that hosts one).
package ginisolver

import (
	"context"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/semiexp/cspcore/internal/sat"
)

// Solver wraps a single *gini.Gini instance.
type Solver struct {
	g   *gini.Gini
	pos []z.Lit // our Var -> gini's positive literal

	failedAssumps []sat.Lit
	assumedByLit  map[z.Lit]sat.Lit
}

// New returns an empty gini-backed solver.
func New() *Solver {
	return &Solver{g: gini.New(), assumedByLit: make(map[z.Lit]sat.Lit)}
}

func (s *Solver) NewVar() sat.Lit {
	s.pos = append(s.pos, s.g.Lit())
	return sat.PosLit(sat.Var(len(s.pos) - 1))
}

func (s *Solver) zLit(l sat.Lit) z.Lit {
	base := s.pos[l.Var()]
	if l.Sign() {
		return base.Not()
	}
	return base
}

func (s *Solver) AddClause(lits ...sat.Lit) {
	for _, l := range lits {
		s.g.Add(s.zLit(l))
	}
	s.g.Add(0)
}

func (s *Solver) AddPropagator(sat.Propagator) error {
	return sat.ErrPropagatorsUnsupported
}

func (s *Solver) Solve(ctx context.Context, assumptions ...sat.Lit) error {
	s.failedAssumps = nil
	for k := range s.assumedByLit {
		delete(s.assumedByLit, k)
	}

	zs := make([]z.Lit, len(assumptions))
	for i, a := range assumptions {
		zl := s.zLit(a)
		zs[i] = zl
		s.assumedByLit[zl] = a
	}
	s.g.Assume(zs...)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	switch s.g.Solve() {
	case 1:
		return nil
	case -1:
		for _, why := range s.g.Why(nil) {
			if a, ok := s.assumedByLit[why]; ok {
				s.failedAssumps = append(s.failedAssumps, a)
			}
		}
		if len(s.failedAssumps) == 0 {
			s.failedAssumps = append([]sat.Lit(nil), assumptions...)
		}
		return sat.ErrUnsatisfiable
	default:
		return context.DeadlineExceeded
	}
}

func (s *Solver) Value(l sat.Lit) bool {
	v := s.g.Value(s.pos[l.Var()])
	if l.Sign() {
		return !v
	}
	return v
}

func (s *Solver) FailedAssumptions() []sat.Lit {
	return s.failedAssumps
}
