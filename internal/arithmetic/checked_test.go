package arithmetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedArithmetic(t *testing.T) {
	assert.Equal(t, CheckedInt(7), CheckedInt(3).Add(CheckedInt(4)))
	assert.Equal(t, CheckedInt(-1), CheckedInt(3).Sub(CheckedInt(4)))
	assert.Equal(t, CheckedInt(12), CheckedInt(3).Mul(CheckedInt(4)))
	assert.Equal(t, CheckedInt(-3), CheckedInt(3).Neg())
	assert.Equal(t, CheckedInt(3), CheckedInt(-3).Abs())
}

func TestCheckedOverflowPanics(t *testing.T) {
	require.Panics(t, func() { MaxValue.Add(1) })
	require.Panics(t, func() { MinValue.Sub(1) })
	require.Panics(t, func() { MaxValue.Mul(2) })
	require.Panics(t, func() { MinValue.Neg() })
}

func TestDivFloorCeil(t *testing.T) {
	cases := []struct{ a, b, floor, ceil CheckedInt }{
		{7, 2, 3, 4},
		{-7, 2, -4, -3},
		{7, -2, -4, -3},
		{-7, -2, 3, 4},
		{6, 2, 3, 3},
		{0, 5, 0, 0},
	}
	for _, c := range cases {
		assert.Equalf(t, c.floor, c.a.DivFloor(c.b), "floor(%d/%d)", c.a, c.b)
		assert.Equalf(t, c.ceil, c.a.DivCeil(c.b), "ceil(%d/%d)", c.a, c.b)
	}
}

func TestRangeEmptyAbsorbs(t *testing.T) {
	e := EmptyRange()
	r := NewRange(1, 5)

	assert.True(t, e.Add(r).IsEmpty())
	assert.True(t, r.Add(e).IsEmpty())
	assert.True(t, e.Scale(3).IsEmpty())
	assert.True(t, e.Intersect(r).IsEmpty())
	assert.Equal(t, r, e.Hull(r))
}

func TestRangeCombinators(t *testing.T) {
	r := NewRange(1, 5)
	s := NewRange(-2, 3)

	assert.Equal(t, NewRange(-1, 8), r.Add(s))
	assert.Equal(t, NewRange(-10, -2), r.Scale(-2))
	assert.Equal(t, NewRange(1, 3), r.Intersect(s))
	assert.Equal(t, NewRange(-2, 5), r.Hull(s))
	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(6))
}
