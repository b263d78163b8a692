package driver

import (
	"context"

	"github.com/pkg/errors"

	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/csp"
	"github.com/semiexp/cspcore/internal/sat"
)

// BoolFact reports whether a Boolean answer key's value is identical in
// every model.
type BoolFact struct {
	Fixed bool
	Value bool
}

// IntFact reports whether an integer answer key's value is identical in
// every model. Possibilities lists every distinct value this driver has
// actually witnessed while deciding fixedness (the baseline model's value,
// plus one counter-model value per encoding literal found non-fixed) — not
// an exhaustive enumeration, just what §4.8's procedure happens to observe.
type IntFact struct {
	Fixed         bool
	Value         arithmetic.CheckedInt
	Possibilities []arithmetic.CheckedInt
}

// Facts is the result of IrrefutableFacts: one entry per answer key marked
// on the frozen CSP.
type Facts struct {
	Bool map[csp.BoolVarID]BoolFact
	Int  map[csp.IntVarID]IntFact
}

// IrrefutableFacts finds one model, then for every answer-key Boolean and
// every encoding literal of every answer-key integer, assumes the opposite
// of its value in the most recent model (the baseline, or a counter-model
// found by an earlier check) and re-solves (spec §4.8): UNSAT under the
// assumption means the literal is fixed. An integer variable is fixed iff
// every one of its encoding literals came back fixed, consistently with the
// baseline model.
func (d *Driver) IrrefutableFacts(ctx context.Context) (*Facts, error) {
	baseline, ok, err := d.Solve(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "driver: irrefutable facts baseline solve")
	}
	if !ok {
		return nil, errors.New("driver: irrefutable facts requested on an unsatisfiable problem")
	}

	facts := &Facts{
		Bool: make(map[csp.BoolVarID]BoolFact),
		Int:  make(map[csp.IntVarID]IntFact),
	}

	for _, id := range d.src.AnswerBoolKeys() {
		lit, constVal, isLit := d.answerBoolLit(id)
		if !isLit {
			facts.Bool[id] = BoolFact{Fixed: true, Value: constVal}
			continue
		}
		value := baseline.BoolValue(id)
		fixed, err := d.litIsFixed(ctx, lit, value)
		if err != nil {
			return nil, err
		}
		facts.Bool[id] = BoolFact{Fixed: fixed, Value: value}
		d.tracer.Trace(Event{Kind: EventAssumption, Detail: id.String()})
	}

	for _, id := range d.src.AnswerIntKeys() {
		order, direct, constVal, isVar := d.answerIntLits(id)
		if !isVar {
			facts.Int[id] = IntFact{Fixed: true, Value: constVal, Possibilities: []arithmetic.CheckedInt{constVal}}
			continue
		}

		normVar, _ := d.norm.IntMappingOf(id)
		value := baseline.IntValue(id)
		possibilities := []arithmetic.CheckedInt{value}
		fixed := true

		checkLits := func(lits []sat.Lit) error {
			for _, lit := range lits {
				bit := d.solver.Value(lit)
				litFixed, err := d.litIsFixed(ctx, lit, bit)
				if err != nil {
					return err
				}
				if !litFixed {
					fixed = false
					other := d.intValueOf(normVar.Var)
					possibilities = appendDistinct(possibilities, other)
				}
			}
			return nil
		}

		var err error
		switch {
		case order != nil:
			err = checkLits(order.Lits)
		case direct != nil:
			err = checkLits(direct.Lits)
		}
		if err != nil {
			return nil, err
		}

		facts.Int[id] = IntFact{Fixed: fixed, Value: value, Possibilities: possibilities}
		d.tracer.Trace(Event{Kind: EventAssumption, Detail: id.String()})
	}

	return facts, nil
}

// litIsFixed assumes the opposite of value and re-solves: UNSAT means lit
// never takes any value but value, i.e. it is fixed.
func (d *Driver) litIsFixed(ctx context.Context, lit sat.Lit, value bool) (bool, error) {
	assume := lit
	if value {
		assume = lit.Not()
	}
	_, ok, err := d.Solve(ctx, assume)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func appendDistinct(vs []arithmetic.CheckedInt, v arithmetic.CheckedInt) []arithmetic.CheckedInt {
	for _, x := range vs {
		if x == v {
			return vs
		}
	}
	return append(vs, v)
}
