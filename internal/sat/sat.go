// Package sat defines the minimal SAT engine contract the encoder and
// driver program against, plus the Propagator extension point the
// order-encoding linear propagator needs. Three backends implement Solver:
// internal/sat/nativesolver (the only one hosting propagators),
// internal/sat/ginisolver (github.com/go-air/gini, clause-only), and
// internal/sat/dimacssolver (an external DIMACS subprocess, clause-only).
package sat

import (
	"context"
	"errors"
)

// Var identifies a solver-level Boolean variable.
type Var int32

// Lit is a signed reference to a Var: 2*v for the positive literal, 2*v+1
// for the negative one, the same layout github.com/go-air/gini's z.Lit uses
// internally. The gini backend still translates through a per-variable
// table of z.Lit values, since gini numbers its own variables.
type Lit int32

// PosLit and NegLit build the two literals of a variable.
func PosLit(v Var) Lit { return Lit(2 * int32(v)) }
func NegLit(v Var) Lit { return Lit(2*int32(v) + 1) }

// Var returns the variable a literal refers to.
func (l Lit) Var() Var { return Var(int32(l) / 2) }

// Sign reports whether l is a negative literal.
func (l Lit) Sign() bool { return int32(l)%2 == 1 }

// Not returns the complementary literal.
func (l Lit) Not() Lit { return l ^ 1 }

// Tristate is a ternary truth value used for not-yet-assigned literals
// during propagation.
type Tristate int8

const (
	Unknown Tristate = iota
	True
	False
)

func (t Tristate) Not() Tristate {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// ErrUnsatisfiable is returned by Solve when the formula (under the given
// assumptions) has no model.
var ErrUnsatisfiable = errors.New("sat: unsatisfiable")

// ErrPropagatorsUnsupported is returned by AddPropagator on backends that
// cannot host a custom theory (every backend but nativesolver).
var ErrPropagatorsUnsupported = errors.New("sat: this backend does not support custom propagators")

// Solver is the contract the encoder and driver use. Implementations must
// support incremental clause addition interleaved with solving.
type Solver interface {
	// NewVar allocates a fresh variable and returns its positive literal.
	NewVar() Lit

	// AddClause asserts the disjunction of lits.
	AddClause(lits ...Lit)

	// AddPropagator registers a custom propagator. Returns
	// ErrPropagatorsUnsupported on backends that cannot host one.
	AddPropagator(p Propagator) error

	// Solve runs under the given assumptions (unit-asserted for this call
	// only). Returns ErrUnsatisfiable if no model exists; any other
	// non-nil error is a backend failure (process spawn, I/O, cancellation).
	Solve(ctx context.Context, assumptions ...Lit) error

	// Value reports the truth value a literal took in the most recent
	// model. Only valid to call after a successful Solve.
	Value(l Lit) bool

	// FailedAssumptions returns assumptions of the last Solve call that
	// account for its unsatisfiability (spec §5 "irrefutable facts via
	// assumptions"): nativesolver and dimacssolver return every assumption;
	// ginisolver returns those gini's Why reports, or every assumption when
	// Why names none. Only valid after Solve returned ErrUnsatisfiable.
	FailedAssumptions() []Lit
}

// Propagator is a theory extension hosted inside nativesolver, following
// the same initialize/propagate/calc_reason/undo shape as the order
// encoding's Rust CustomPropagator trait.
type Propagator interface {
	// Initialize is called once all clauses are loaded and the propagator
	// has been registered. It should call ctx.AddWatch for every literal
	// whose assignment it needs to hear about, and may immediately call
	// ctx.Enqueue or return false if it detects a contradiction outright.
	Initialize(ctx PropagatorContext) bool

	// Propagate is called whenever a watched literal becomes true. It may
	// call ctx.Enqueue to force further literals, and must return false if
	// it detects a conflict (having already recorded a reason via
	// CalcReason semantics internally).
	Propagate(ctx PropagatorContext, p Lit) bool

	// CalcReason returns the clause (as a list of literals, all false at
	// the time of the call) explaining why p was forced, or why the
	// solver is in conflict if p is the zero Lit. extra, if non-zero, is
	// appended to the returned reason (the solver uses this to build a
	// conflict clause incorporating the propagating literal itself).
	CalcReason(ctx PropagatorContext, p Lit, extra Lit) []Lit

	// Undo is called, most-recent first, for every enqueued-by-this-
	// propagator literal that backtracking has unassigned.
	Undo(ctx PropagatorContext, p Lit)
}

// PropagatorContext is the callback surface nativesolver exposes to a
// Propagator.
type PropagatorContext interface {
	AddWatch(l Lit)
	Enqueue(l Lit) bool
	Value(l Lit) Tristate
}
