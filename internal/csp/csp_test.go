package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/semiexp/cspcore/internal/arithmetic"
	"github.com/semiexp/cspcore/internal/domain"
)

func TestBuildSimpleCSP(t *testing.T) {
	c := New()
	x := c.NewIntVar(domain.FromRange(0, 5))
	y := c.NewIntVar(domain.FromRange(0, 5))
	b := c.NewBoolVar()

	c.AddConstraint(Cmp(IntVariable(x), CmpLt, IntVariable(y)))
	c.AddConstraint(Or(Var(b), Not(Var(b))))
	c.AddAnswerIntKey(x)
	c.AddAnswerBoolKey(b)

	assert.Equal(t, 2, c.NumIntVars())
	assert.Equal(t, 1, c.NumBoolVars())
	assert.Len(t, c.Constraints(), 2)
	assert.Equal(t, []IntVarID{x}, c.AnswerIntKeys())
	assert.Equal(t, []BoolVarID{b}, c.AnswerBoolKeys())
}

func TestLinearSumPrunesZeroCoefficients(t *testing.T) {
	s := NewLinearSum()
	s.Add(0, 3)
	s.Add(0, -3)
	assert.Empty(t, s.Terms)

	s.Add(1, 2)
	s.AddConstant(5)
	assert.Equal(t, arithmetic.CheckedInt(2), s.Terms[1])
	assert.Equal(t, arithmetic.CheckedInt(5), s.Constant)
}

func TestNewIntVarRejectsEmptyDomain(t *testing.T) {
	c := New()
	assert.Panics(t, func() { c.NewIntVar(domain.Empty()) })
}
