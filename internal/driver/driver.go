// Package driver is the outermost surface (spec §4.8): it freezes a
// csp.CSP, normalizes and encodes it exactly once, and answers solve,
// irrefutable-facts, and model-enumeration queries against the resulting
// SAT instance, appending only the clauses each query needs (assumptions
// for irrefutable facts, blocking clauses for enumeration) rather than
// redoing normalization or encoding.
package driver

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/config"
	"github.com/semiexp/cspcore/internal/csp"
	"github.com/semiexp/cspcore/internal/encoder"
	"github.com/semiexp/cspcore/internal/encoding"
	"github.com/semiexp/cspcore/internal/normalizer"
	"github.com/semiexp/cspcore/internal/normcsp"
	"github.com/semiexp/cspcore/internal/sat"
	"github.com/semiexp/cspcore/internal/sat/dimacssolver"
	"github.com/semiexp/cspcore/internal/sat/ginisolver"
	"github.com/semiexp/cspcore/internal/sat/nativesolver"
)

// Driver owns one frozen, normalized, and encoded CSP session (spec §5
// "Shared state... exclusively owned by the driver").
type Driver struct {
	cfg    config.Config
	log    *logrus.Entry
	tracer Tracer

	src    *csp.CSP
	norm   *normcsp.NormCSP
	solver sat.Solver
	enc    *encoder.Env
}

// Option configures a Driver at construction, following the teacher's
// functional-option shape (solver.Option in solve.go).
type Option func(*Driver)

func WithConfig(cfg config.Config) Option {
	return func(d *Driver) { d.cfg = cfg }
}

func WithTracer(t Tracer) Option {
	return func(d *Driver) { d.tracer = t }
}

func WithLogger(log *logrus.Entry) Option {
	return func(d *Driver) { d.log = log }
}

// New freezes src: it builds the Config-selected SAT backend, normalizes
// src in full, and encodes every resulting clause. src must not be mutated
// afterward; the driver never looks at it again except to read its answer
// keys and variable counts.
func New(src *csp.CSP, opts ...Option) (*Driver, error) {
	d := &Driver{
		cfg:    config.Default(),
		log:    logrus.NewEntry(logrus.StandardLogger()),
		tracer: DefaultTracer{},
		src:    src,
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "driver: invalid configuration")
	}

	d.solver = newSolver(d.cfg)
	d.norm = normalizer.Normalize(src, d.cfg, d.log)
	// A trivially true atom x >= lower per integer answer key makes the
	// encoder build an encoding for it even when no constraint mentions it,
	// so enumeration and irrefutable facts see every value it can take.
	for _, id := range src.AnswerIntKeys() {
		m, ok := d.norm.IntMappingOf(id)
		if !ok || m.Const || d.norm.DomainOf(m.Var).IsSingleton() {
			continue
		}
		sum := normcsp.NewLinearSum()
		sum.Add(m.Var, 1)
		sum.Constant = d.norm.DomainOf(m.Var).Lower().Neg()
		d.norm.AddClause(normcsp.Clause{LinearLits: []normcsp.LinearLit{{Sum: sum, Op: normcsp.LinearGe}}})
	}
	d.enc = encoder.New(d.norm, d.solver, d.cfg, d.log)
	d.enc.Encode()

	d.tracer.Trace(Event{Kind: EventSolve, Detail: "frozen and encoded", Clauses: len(d.norm.Clauses())})
	return d, nil
}

// newSolver picks the backend: nativesolver whenever the propagator path
// might be exercised (it is the only backend that can host one), the
// Config-selected backend otherwise (spec's DOMAIN STACK "driver uses it
// whenever native_linear_encoding_terms would otherwise be exceeded,
// regardless of Config.Backend").
func newSolver(cfg config.Config) sat.Solver {
	if cfg.NativeLinearEncodingTerms > 0 {
		return nativesolver.New()
	}
	switch cfg.Backend {
	case config.BackendGlucose:
		return ginisolver.New()
	default:
		return dimacssolver.New(cfg.ExternalCommand)
	}
}

// Model is a satisfying assignment lifted back through the encoding map to
// the caller's original variable identifiers.
type Model struct {
	d *Driver
}

// BoolValue returns the value id took in this model.
func (m Model) BoolValue(id csp.BoolVarID) bool {
	mapping, ok := m.d.norm.BoolMappingOf(id)
	if !ok {
		panic("driver: unknown bool variable")
	}
	if mapping.Const {
		return mapping.ConstValue
	}
	lit := m.d.enc.Map.Lit(mapping.Lit)
	return m.d.solver.Value(lit)
}

// IntValue returns the value id took in this model.
func (m Model) IntValue(id csp.IntVarID) arithmetic.CheckedInt {
	mapping, ok := m.d.norm.IntMappingOf(id)
	if !ok {
		panic("driver: unknown int variable")
	}
	if mapping.Const {
		return mapping.ConstValue
	}
	return m.d.intValueOf(mapping.Var)
}

// intValueOf reads the value a normalized integer variable took, from
// whichever encoding (order or direct) happens to exist for it.
func (d *Driver) intValueOf(v normcsp.IntVarID) arithmetic.CheckedInt {
	ienc := d.enc.Map.IntEncodingOf(v)
	switch {
	case ienc.Order != nil:
		idx := 0
		for _, l := range ienc.Order.Lits {
			if !d.solver.Value(l) {
				break
			}
			idx++
		}
		return ienc.Order.Domain[idx]
	case ienc.Direct != nil:
		for i, l := range ienc.Direct.Lits {
			if d.solver.Value(l) {
				return ienc.Direct.Domain[i]
			}
		}
		panic("driver: direct encoding has no true literal in model")
	default:
		// A singleton domain (never encoded, see foldSingletons), or a
		// non-answer variable referenced by no clause: any value in its
		// domain is consistent with every constraint.
		return d.norm.DomainOf(v).Lower()
	}
}

// Solve runs the SAT engine under assumptions and returns the resulting
// model, or ok=false if no model exists.
func (d *Driver) Solve(ctx context.Context, assumptions ...sat.Lit) (Model, bool, error) {
	err := d.solver.Solve(ctx, assumptions...)
	if errors.Is(err, sat.ErrUnsatisfiable) {
		d.tracer.Trace(Event{Kind: EventSolve, Detail: "unsatisfiable"})
		return Model{}, false, nil
	}
	if err != nil {
		return Model{}, false, errors.Wrap(err, "driver: solve failed")
	}
	d.tracer.Trace(Event{Kind: EventSolve, Detail: "satisfiable"})
	return Model{d: d}, true, nil
}

// answerBoolLit and answerIntLits expose the literals backing the answer
// keys, used by both IrrefutableFacts and AnswerIter to build assumptions
// and blocking clauses without duplicating the encoding-map lookups.
func (d *Driver) answerBoolLit(id csp.BoolVarID) (sat.Lit, bool, bool) {
	mapping, ok := d.norm.BoolMappingOf(id)
	if !ok {
		panic("driver: unknown bool variable")
	}
	if mapping.Const {
		return 0, mapping.ConstValue, false
	}
	return d.enc.Map.Lit(mapping.Lit), false, true
}

func (d *Driver) answerIntLits(id csp.IntVarID) (*encoding.OrderEncoding, *encoding.DirectEncoding, arithmetic.CheckedInt, bool) {
	mapping, ok := d.norm.IntMappingOf(id)
	if !ok {
		panic("driver: unknown int variable")
	}
	if mapping.Const {
		return nil, nil, mapping.ConstValue, false
	}
	ienc := d.enc.Map.IntEncodingOf(mapping.Var)
	return ienc.Order, ienc.Direct, 0, true
}
