package driver

import (
	"context"

	"github.com/pkg/errors"

	"github.com/semiexp/cspcore/internal/sat"
)

// AnswerIter lazily enumerates models, one per Next call, excluding every
// previously returned assignment (restricted to the answer keys) via a
// blocking clause appended after it is yielded (spec §4.8 "answer_iter").
type AnswerIter struct {
	d    *Driver
	done bool
}

// AnswerIter returns a fresh enumerator over d's frozen problem.
func (d *Driver) AnswerIter() *AnswerIter {
	return &AnswerIter{d: d}
}

// Next returns the next model, or ok=false once every model has been
// exhausted (or the underlying problem was unsatisfiable to begin with).
func (it *AnswerIter) Next(ctx context.Context) (Model, bool, error) {
	if it.done {
		return Model{}, false, nil
	}

	model, ok, err := it.d.Solve(ctx)
	if err != nil {
		return Model{}, false, errors.Wrap(err, "driver: answer iteration solve")
	}
	if !ok {
		it.done = true
		return Model{}, false, nil
	}

	it.block(model)
	return model, true, nil
}

// block appends the clause excluding exactly this model's restriction to
// the answer keys: the disjunction of "this key differs from what it was
// in model".
func (it *AnswerIter) block(model Model) {
	d := it.d
	var clause []sat.Lit

	for _, id := range d.src.AnswerBoolKeys() {
		lit, _, isLit := d.answerBoolLit(id)
		if !isLit {
			continue
		}
		if model.BoolValue(id) {
			clause = append(clause, lit.Not())
		} else {
			clause = append(clause, lit)
		}
	}

	for _, id := range d.src.AnswerIntKeys() {
		order, direct, _, isVar := d.answerIntLits(id)
		if !isVar {
			continue
		}
		switch {
		case order != nil:
			clause = append(clause, blockOrder(order.Lits, d.solver)...)
		case direct != nil:
			clause = append(clause, blockDirect(direct.Lits, d.solver)...)
		}
	}

	if len(clause) == 0 {
		// No answer keys at all: every model is "the same" restricted to
		// the (empty) answer key set, so there is nothing left to find.
		it.done = true
		return
	}
	d.solver.AddClause(clause...)
	d.tracer.Trace(Event{Kind: EventBlock, Detail: "blocked one assignment", Clauses: len(clause)})
}

// blockOrder returns, for one order-encoded integer, one disjunct per
// threshold literal — the literal itself if it is currently false, its
// negation if currently true. Every disjunct is false under the current
// model (so the blocking clause excludes exactly this assignment) and any
// different value flips at least one threshold, satisfying the
// corresponding disjunct. Not minimal (a value change only needs the one
// threshold nearest the boundary; this includes every threshold the chain
// implies along with it) but sound.
func blockOrder(lits []sat.Lit, solver sat.Solver) []sat.Lit {
	var out []sat.Lit
	for _, l := range lits {
		if solver.Value(l) {
			out = append(out, l.Not())
		} else {
			out = append(out, l)
		}
	}
	return out
}

// blockDirect returns the literals asserting "this variable's value
// differs": the negation of the one equals-literal that is currently true.
func blockDirect(lits []sat.Lit, solver sat.Solver) []sat.Lit {
	var out []sat.Lit
	for _, l := range lits {
		if solver.Value(l) {
			out = append(out, l.Not())
		}
	}
	return out
}
