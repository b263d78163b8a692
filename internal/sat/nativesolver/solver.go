// Package nativesolver is a from-scratch, propagator-hosting Boolean
// satisfiability engine: a trail-based DPLL search (chronological
// backtracking, no clause learning) extended with the same
// initialize/propagate/undo theory-extension hook the order-encoding
// linear propagator was written against. Neither github.com/go-air/gini
// nor an external DIMACS solver exposes a comparable extension point, so
// this is the only backend that can host sat.Propagator implementations
// (spec §5 "a custom propagator registered inside a SAT engine").
//
// Scale target is puzzle-sized CSPs, not industrial SAT benchmarks: the
// engine trades asymptotic clause-propagation performance (a full clause
// rescan to fixpoint instead of two-watched-literal indexing) for a much
// smaller, easier-to-verify implementation. The propagator itself, where
// the original source's performance-sensitive bookkeeping actually lives,
// keeps its own watch lists (see internal/propagator).
package nativesolver

import (
	"context"

	"github.com/semiexp/cspcore/internal/sat"
)

type reasonKind int8

const (
	reasonNone reasonKind = iota
	reasonDecision
	reasonClause
	reasonProp
)

type reasonInfo struct {
	kind      reasonKind
	clauseIdx int
	propIdx   int
}

// Solver is the default, propagator-capable sat.Solver implementation.
type Solver struct {
	clauses [][]sat.Lit

	assign []sat.Tristate
	reason []reasonInfo

	trail    []sat.Lit
	trailLim []int
	tried    []bool

	propagators []sat.Propagator
	watchLit    map[sat.Lit][]int

	model         []bool
	failedAssumps []sat.Lit
	contradiction bool
}

// New returns an empty native solver.
func New() *Solver {
	return &Solver{watchLit: make(map[sat.Lit][]int)}
}

func (s *Solver) NewVar() sat.Lit {
	s.assign = append(s.assign, sat.Unknown)
	s.reason = append(s.reason, reasonInfo{})
	return sat.PosLit(sat.Var(len(s.assign) - 1))
}

func (s *Solver) AddClause(lits ...sat.Lit) {
	cl := append([]sat.Lit(nil), lits...)
	s.clauses = append(s.clauses, cl)
}

func (s *Solver) AddPropagator(p sat.Propagator) error {
	idx := len(s.propagators)
	s.propagators = append(s.propagators, p)
	if !p.Initialize(s.ctxFor(idx)) {
		s.contradiction = true
	}
	return nil
}

func (s *Solver) value(l sat.Lit) sat.Tristate {
	v := s.assign[l.Var()]
	if v == sat.Unknown {
		return sat.Unknown
	}
	if l.Sign() {
		return v.Not()
	}
	return v
}

// Solve resets to level 0, asserts assumptions, and searches for a model.
func (s *Solver) Solve(ctx context.Context, assumptions ...sat.Lit) error {
	s.backtrackTo(0)
	s.failedAssumps = nil

	if s.contradiction {
		s.failedAssumps = append([]sat.Lit(nil), assumptions...)
		return sat.ErrUnsatisfiable
	}

	if !s.propagateAll() {
		s.failedAssumps = append([]sat.Lit(nil), assumptions...)
		return sat.ErrUnsatisfiable
	}

	for _, a := range assumptions {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		s.pushLevel()
		if !s.enqueue(a, reasonInfo{kind: reasonDecision}) || !s.propagateAll() {
			s.failedAssumps = append([]sat.Lit(nil), assumptions...)
			return sat.ErrUnsatisfiable
		}
	}
	baseLevel := len(s.trailLim)

	if !s.search(ctx, baseLevel) {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		s.failedAssumps = append([]sat.Lit(nil), assumptions...)
		return sat.ErrUnsatisfiable
	}

	s.model = make([]bool, len(s.assign))
	for v := range s.assign {
		s.model[v] = s.assign[v] == sat.True
	}
	return nil
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (s *Solver) search(ctx context.Context, baseLevel int) bool {
	for {
		if err := checkCancelled(ctx); err != nil {
			return false
		}
		if !s.propagateAll() {
			if !s.backtrackAndFlip(baseLevel) {
				return false
			}
			continue
		}
		v, ok := s.pickUnassigned()
		if !ok {
			return true
		}
		s.pushLevel()
		s.tried[len(s.tried)-1] = false
		s.enqueue(sat.PosLit(v), reasonInfo{kind: reasonDecision})
	}
}

func (s *Solver) pickUnassigned() (sat.Var, bool) {
	for v := range s.assign {
		if s.assign[v] == sat.Unknown {
			return sat.Var(v), true
		}
	}
	return 0, false
}

func (s *Solver) pushLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
	s.tried = append(s.tried, false)
}

// backtrackAndFlip undoes levels until it can try the opposite branch of a
// decision, or returns false once every level down to baseLevel has been
// exhausted in both directions (the formula is unsatisfiable under the
// current assumptions).
func (s *Solver) backtrackAndFlip(baseLevel int) bool {
	for {
		if len(s.trailLim) <= baseLevel {
			return false
		}
		level := len(s.trailLim) - 1
		start := s.trailLim[level]
		decisionLit := s.trail[start]
		alreadyTried := s.tried[level]
		s.popLevel()

		if alreadyTried {
			continue
		}
		s.pushLevel()
		s.tried[len(s.tried)-1] = true
		if s.enqueue(decisionLit.Not(), reasonInfo{kind: reasonDecision}) {
			return true
		}
	}
}

// popLevel undoes every assignment made since the most recent pushLevel,
// in reverse order, calling Undo on any propagator that forced one.
func (s *Solver) popLevel() {
	start := s.trailLim[len(s.trailLim)-1]
	for i := len(s.trail) - 1; i >= start; i-- {
		lit := s.trail[i]
		v := lit.Var()
		r := s.reason[v]
		if r.kind == reasonProp {
			s.propagators[r.propIdx].Undo(s.ctxFor(r.propIdx), lit)
		}
		s.assign[v] = sat.Unknown
		s.reason[v] = reasonInfo{}
	}
	s.trail = s.trail[:start]
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
	s.tried = s.tried[:len(s.tried)-1]
}

func (s *Solver) backtrackTo(level int) {
	for len(s.trailLim) > level {
		s.popLevel()
	}
}

// enqueue assigns l true, recording r as the reason. Returns false if l's
// variable was already assigned to the opposite value (a conflict).
func (s *Solver) enqueue(l sat.Lit, r reasonInfo) bool {
	cur := s.value(l)
	if cur == sat.True {
		return true
	}
	if cur == sat.False {
		return false
	}
	v := l.Var()
	if l.Sign() {
		s.assign[v] = sat.False
	} else {
		s.assign[v] = sat.True
	}
	s.reason[v] = r
	s.trail = append(s.trail, l)
	return true
}

// propagateAll runs unit propagation over both plain clauses and every
// registered propagator's watches to a joint fixpoint.
func (s *Solver) propagateAll() bool {
	delivered := 0
	for {
		progressed := false
		for idx, cl := range s.clauses {
			unassignedCount := 0
			var unit sat.Lit
			satisfied := false
			for _, lit := range cl {
				switch s.value(lit) {
				case sat.True:
					satisfied = true
				case sat.Unknown:
					unassignedCount++
					unit = lit
				}
			}
			if satisfied {
				continue
			}
			if unassignedCount == 0 {
				return false
			}
			if unassignedCount == 1 {
				if s.value(unit) == sat.Unknown {
					if !s.enqueue(unit, reasonInfo{kind: reasonClause, clauseIdx: idx}) {
						return false
					}
					progressed = true
				}
			}
		}

		for delivered < len(s.trail) {
			lit := s.trail[delivered]
			delivered++
			for _, pi := range s.watchLit[lit] {
				if !s.propagators[pi].Propagate(s.ctxFor(pi), lit) {
					return false
				}
			}
			progressed = true
		}

		if !progressed {
			return true
		}
	}
}

func (s *Solver) Value(l sat.Lit) bool {
	v := s.model[l.Var()]
	if l.Sign() {
		return !v
	}
	return v
}

func (s *Solver) FailedAssumptions() []sat.Lit {
	return s.failedAssumps
}

// ctxFor builds the PropagatorContext a registered propagator uses to add
// watches, force literals, and read the current trail.
func (s *Solver) ctxFor(idx int) sat.PropagatorContext {
	return propCtx{s: s, idx: idx}
}

type propCtx struct {
	s   *Solver
	idx int
}

func (c propCtx) AddWatch(l sat.Lit) {
	c.s.watchLit[l] = append(c.s.watchLit[l], c.idx)
}

func (c propCtx) Enqueue(l sat.Lit) bool {
	return c.s.enqueue(l, reasonInfo{kind: reasonProp, propIdx: c.idx})
}

func (c propCtx) Value(l sat.Lit) sat.Tristate {
	return c.s.value(l)
}
