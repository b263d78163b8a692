// Package encoder lowers a normcsp.NormCSP into SAT clauses (spec §4.2-4.7):
// Boolean structure via Tseitin, integer variables via order and/or direct
// encoding chosen by the selector, and linear atoms via the mixed-encoding
// recursive algorithm ported from encoder/mixed.rs, falling back to a
// registered propagator.OrderEncodingLinear once a sum grows past the
// configured term/domain-product threshold (spec §4.6).
package encoder

import (
	"github.com/sirupsen/logrus"

	"github.com/semiexp/cspcore/internal/config"
	"github.com/semiexp/cspcore/internal/encoding"
	"github.com/semiexp/cspcore/internal/normcsp"
	"github.com/semiexp/cspcore/internal/propagator"
	"github.com/semiexp/cspcore/internal/sat"
)

// Env is the encoder's working state for one NormCSP/solver pair. It is
// reused across incremental Encode calls so already-built encodings and
// already-emitted clauses are never redone (spec §4.8 "encode what's new").
type Env struct {
	Cfg    config.Config
	Solver sat.Solver
	Map    *encoding.Map
	norm   *normcsp.NormCSP
	log    *logrus.Entry

	clausesDone int

	trueConst    sat.Lit
	hasTrueConst bool
}

// New returns an encoder bound to norm and solver. It does not encode
// anything yet; call Encode to process clauses.
func New(norm *normcsp.NormCSP, solver sat.Solver, cfg config.Config, log *logrus.Entry) *Env {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Env{
		Cfg:    cfg,
		Solver: solver,
		Map:    encoding.New(norm, solver),
		norm:   norm,
		log:    log,
	}
}

// Encode emits SAT clauses for every clause appended to norm since the last
// call (or since construction). Safe to call repeatedly as the driver
// incrementally normalizes new user constraints.
func (e *Env) Encode() {
	e.Map.GrowBool(e.norm.NumBoolVars(), e.Solver)
	e.Map.GrowInt(e.norm.NumIntVars())

	clauses := e.norm.Clauses()
	for ; e.clausesDone < len(clauses); e.clausesDone++ {
		e.encodeClause(clauses[e.clausesDone])
	}
}

func (e *Env) encodeClause(c normcsp.Clause) {
	guard := make([]sat.Lit, len(c.BoolLits))
	for i, bl := range c.BoolLits {
		guard[i] = e.Map.Lit(bl)
	}

	if len(c.LinearLits) == 0 {
		e.Solver.AddClause(guard...)
		return
	}

	if len(c.LinearLits) == 1 {
		e.encodeLinearLit(guard, c.LinearLits[0])
		return
	}
	// Several linear atoms: each gets a fresh selector a with a -> atom, and
	// the clause itself becomes guard ∨ a_1 ∨ ... ∨ a_k.
	for _, ll := range c.LinearLits {
		a := e.Solver.NewVar()
		e.encodeLinearLit([]sat.Lit{a.Not()}, ll)
		guard = append(guard, a)
	}
	e.Solver.AddClause(guard...)
}

func (e *Env) encodeLinearLit(guard []sat.Lit, ll normcsp.LinearLit) {
	sum := e.foldSingletons(ll.Sum)
	switch ll.Op {
	case normcsp.LinearGe:
		e.encodeGuardedGe(guard, sum)
	case normcsp.LinearEq:
		e.encodeGuardedGe(guard, sum)
		e.encodeGuardedGe(guard, sum.Negate())
	case normcsp.LinearNe:
		e.encodeGuardedNe(guard, sum)
	default:
		panic("encoder: unknown linear op")
	}
}

// foldSingletons removes every term whose variable's domain has collapsed
// to a single value, adding its (fixed) contribution into the constant
// instead (spec §4.2 "domain has size 1: no encoding; the variable is a
// constant"). Every other encoder entry point assumes its input sum
// already went through this.
func (e *Env) foldSingletons(sum normcsp.LinearSum) normcsp.LinearSum {
	out := normcsp.NewLinearSum()
	out.Constant = sum.Constant
	for v, coef := range sum.Terms {
		d := e.norm.DomainOf(v)
		if d.IsSingleton() {
			out.Constant = out.Constant.Add(coef.Mul(d.Lower()))
			continue
		}
		out.Add(v, coef)
	}
	return out
}

// encodeGuardedGe emits clauses equivalent to guard ∨ (sum >= 0): every
// clause the mixed encoder would emit for the unconditional constraint,
// with guard's literals prefixed into each (sound because when any guard
// literal is true every emitted clause is trivially satisfied, and when
// every guard literal is false the clause set reduces to exactly the
// unconditional encoding).
func (e *Env) encodeGuardedGe(guard []sat.Lit, sum normcsp.LinearSum) {
	if e.ensureEncodings(guard, sum) {
		return
	}
	info := e.buildLinearInfo(sum)
	encodeLinearGeMixedFromInfo(e.Solver, guard, info, sum.Constant)
}

// encodeGuardedNe emits clauses equivalent to guard ∨ (sum != 0), via two
// fresh auxiliary Booleans pinned to "sum >= 1" and "-sum >= 1" and a
// single guard ∨ a ∨ b clause — a general decomposition that works
// regardless of which terms are direct- or order-encoded, in place of
// spec §4.5's direct-encoding single-clause fast path (see DESIGN.md).
func (e *Env) encodeGuardedNe(guard []sat.Lit, sum normcsp.LinearSum) {
	e.selectEncodings(sum)

	above := sum.Clone()
	above.Constant = above.Constant.Sub(1)
	below := sum.Negate()
	below.Constant = below.Constant.Sub(1)

	a := e.pinGe(above)
	b := e.pinGe(below)

	e.Solver.AddClause(append(append([]sat.Lit(nil), guard...), a, b)...)
}

// pinGe returns a literal a with a <-> (sum >= 0).
func (e *Env) pinGe(sum normcsp.LinearSum) sat.Lit {
	a := e.Solver.NewVar()
	info := e.buildLinearInfo(sum)
	encodeLinearGeMixedFromInfo(e.Solver, []sat.Lit{a.Not()}, info, sum.Constant)
	neg := make([]LinearInfo, len(info))
	for i, it := range info {
		neg[i] = it.negatedCoef()
	}
	encodeLinearGeMixedFromInfo(e.Solver, []sat.Lit{a}, neg, sum.Constant.Neg().Sub(1))
	return a
}

// ensureEncodings runs the selector (spec §4.2) for every variable sum
// references, unless this sum is instead handed to the native linear
// propagator (spec §4.6); it reports whether the propagator took it. Only an
// unguarded atom goes to the propagator, which enforces sum >= 0
// unconditionally.
func (e *Env) ensureEncodings(guard []sat.Lit, sum normcsp.LinearSum) bool {
	if len(guard) == 0 && e.shouldUseNativePropagator(sum) {
		e.registerNativePropagator(sum)
		return true
	}
	e.selectEncodings(sum)
	return false
}

// registerNativePropagator builds an order encoding for every term (the
// propagator only understands order encoding) and registers
// propagator.OrderEncodingLinear against the solver directly, bypassing
// mixed-encoding clause emission entirely for this sum.
func (e *Env) registerNativePropagator(sum normcsp.LinearSum) {
	terms := make([]propagator.LinearTerm, 0, len(sum.Terms))
	for v, coef := range sum.Terms {
		enc := e.ensureOrder(v)
		terms = append(terms, propagator.LinearTerm{
			Lits:   enc.Lits,
			Domain: toInt32Domain(enc.Domain),
			Coef:   int32(coef),
		})
	}
	p := propagator.New(terms, int64(sum.Constant), e.Cfg.OrderEncodingLinearMode.UseOptimize())
	if err := e.Solver.AddPropagator(p); err != nil {
		// The selected backend cannot host a propagator; fall back to the
		// ordinary clause expansion rather than silently dropping the
		// constraint (spec §7 "normalization never silently drops a
		// constraint").
		info := e.buildLinearInfo(sum)
		encodeLinearGeMixedFromInfo(e.Solver, nil, info, sum.Constant)
	}
}
