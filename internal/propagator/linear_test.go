package propagator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiexp/cspcore/internal/sat"
)

// fakeCtx is a minimal PropagatorContext double: it tracks watched and
// enqueued literals and answers Value from a small assignment map, enough
// to drive OrderEncodingLinear without a real solver attached.
type fakeCtx struct {
	watched  map[sat.Lit]bool
	assigned map[sat.Lit]sat.Tristate
	enqueued []sat.Lit
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{watched: make(map[sat.Lit]bool), assigned: make(map[sat.Lit]sat.Tristate)}
}

func (c *fakeCtx) AddWatch(l sat.Lit) { c.watched[l] = true }

func (c *fakeCtx) Enqueue(l sat.Lit) bool {
	c.enqueued = append(c.enqueued, l)
	c.assigned[l] = sat.True
	c.assigned[l.Not()] = sat.False
	return true
}

func (c *fakeCtx) Value(l sat.Lit) sat.Tristate {
	if v, ok := c.assigned[l]; ok {
		return v
	}
	return sat.Unknown
}

// domainVar builds order-encoding literals and the domain array for an
// integer variable ranging over 0..3 (values 0,1,2,3; 3 literals).
func domainVar(base sat.Var) ([]sat.Lit, []int32) {
	return []sat.Lit{
			sat.PosLit(base), sat.PosLit(base + 1), sat.PosLit(base + 2),
		}, []int32{0, 1, 2, 3}
}

// TestPropagateForcesRemainingTerm mirrors x+y+z>=2 over x,y,z in 0..3:
// once x<=0 and y<=1 are both known, z must be forced to >=1.
func TestPropagateForcesRemainingTerm(t *testing.T) {
	xLits, dom := domainVar(0)
	yLits, _ := domainVar(3)
	zLits, _ := domainVar(6)

	p := New([]LinearTerm{
		{Lits: xLits, Domain: dom, Coef: 1},
		{Lits: yLits, Domain: dom, Coef: 1},
		{Lits: zLits, Domain: dom, Coef: 1},
	}, -2, false)

	ctx := newFakeCtx()
	require.True(t, p.Initialize(ctx))
	assert.Empty(t, ctx.enqueued)

	// x <= 0: x's "x>=1" literal (xLits[0]) becomes false.
	ctx.assigned[xLits[0].Not()] = sat.True
	require.True(t, p.Propagate(ctx, xLits[0].Not()))
	assert.Empty(t, ctx.enqueued, "tightening x alone should not force anything yet")

	// y <= 1: y's "y>=2" literal (yLits[1]) becomes false.
	ctx.assigned[yLits[1].Not()] = sat.True
	require.True(t, p.Propagate(ctx, yLits[1].Not()))

	require.Len(t, ctx.enqueued, 1)
	assert.Equal(t, zLits[0], ctx.enqueued[0], "z must be forced to >= 1")
}

// TestUndoRestoresExactlyOnePropagateCall checks that Undo reverses one
// Propagate call's tightening at a time, regardless of which literal it is
// invoked with, matching the frame-marker boundary in undo_list.
func TestUndoRestoresExactlyOnePropagateCall(t *testing.T) {
	xLits, dom := domainVar(0)
	yLits, _ := domainVar(3)

	p := New([]LinearTerm{
		{Lits: xLits, Domain: dom, Coef: 1},
		{Lits: yLits, Domain: dom, Coef: 1},
	}, -1, false)

	ctx := newFakeCtx()
	require.True(t, p.Initialize(ctx))

	ctx.assigned[xLits[2].Not()] = sat.True
	require.True(t, p.Propagate(ctx, xLits[2].Not()))
	ubAfterFirst := p.ubIndex[0]
	require.Less(t, ubAfterFirst, len(xLits))

	ctx.assigned[xLits[0].Not()] = sat.True
	require.True(t, p.Propagate(ctx, xLits[0].Not()))
	require.Equal(t, 0, p.ubIndex[0])

	p.Undo(ctx, xLits[0].Not())
	assert.Equal(t, ubAfterFirst, p.ubIndex[0], "one Undo call should reverse only the most recent Propagate call")

	p.Undo(ctx, xLits[2].Not())
	assert.Equal(t, len(xLits), p.ubIndex[0], "a second Undo call should reverse the earlier tightening too")
}

// TestInitializeDetectsImmediateConflict mirrors constant + terms < 0 with
// no literals yet forced: Initialize must report failure directly from the
// total-upper-bound check.
func TestInitializeDetectsImmediateConflict(t *testing.T) {
	xLits, dom := domainVar(0)
	p := New([]LinearTerm{{Lits: xLits, Domain: dom, Coef: 1}}, -4, false)

	ctx := newFakeCtx()
	assert.False(t, p.Initialize(ctx))
}

// TestCalcReasonExcludesUniqueOwnerUnderOptimize checks that, with
// useOptimize set, asking for the reason behind a term's own uniquely-owned
// bound literal excludes that term from the returned reason, unlike the
// non-optimized case which includes every tightened term unconditionally.
func TestCalcReasonExcludesUniqueOwnerUnderOptimize(t *testing.T) {
	// Variables start at 1: Lit 0 is CalcReason's "no literal" sentinel.
	xLits, dom := domainVar(1)
	yLits, _ := domainVar(4)

	build := func(useOptimize bool) *OrderEncodingLinear {
		p := New([]LinearTerm{
			{Lits: xLits, Domain: dom, Coef: 1},
			{Lits: yLits, Domain: dom, Coef: 1},
		}, -1, useOptimize)
		ctx := newFakeCtx()
		require.True(t, p.Initialize(ctx))
		ctx.assigned[xLits[0].Not()] = sat.True
		require.True(t, p.Propagate(ctx, xLits[0].Not()))
		return p
	}

	plain := build(false)
	reasonPlain := plain.CalcReason(newFakeCtx(), xLits[0], 0)
	assert.Contains(t, reasonPlain, xLits[0].Not())

	optimized := build(true)
	reasonOptimized := optimized.CalcReason(newFakeCtx(), xLits[0], 0)
	assert.NotContains(t, reasonOptimized, xLits[0].Not())
}
