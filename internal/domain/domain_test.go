package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/semiexp/cspcore/internal/arithmetic"
)

func ci(v int) arithmetic.CheckedInt { return arithmetic.CheckedInt(v) }

func TestFromValuesCoalescesAdjacent(t *testing.T) {
	d := FromValues([]arithmetic.CheckedInt{ci(3), ci(1), ci(2), ci(2), ci(5)})
	assert.Equal(t, 4, d.Size())
	assert.True(t, d.Contains(ci(1)))
	assert.True(t, d.Contains(ci(2)))
	assert.True(t, d.Contains(ci(3)))
	assert.True(t, d.Contains(ci(5)))
	assert.False(t, d.Contains(ci(4)))
	assert.Equal(t, []arithmetic.CheckedInt{ci(1), ci(2), ci(3), ci(5)}, d.Values())
}

func TestFromRangeSingletonEmpty(t *testing.T) {
	assert.True(t, FromRange(ci(5), ci(2)).IsEmpty())
	assert.True(t, FromRange(ci(5), ci(5)).IsSingleton())
}

func TestIntersect(t *testing.T) {
	a := FromRange(ci(0), ci(5))
	b := FromValues([]arithmetic.CheckedInt{ci(2), ci(4), ci(9)})
	got := a.Intersect(b)
	assert.Equal(t, []arithmetic.CheckedInt{ci(2), ci(4)}, got.Values())
}

func TestRestrictToAtMostAtLeast(t *testing.T) {
	d := FromRange(ci(-3), ci(3))
	assert.Equal(t, []arithmetic.CheckedInt{ci(-3), ci(-2), ci(-1), ci(0)}, d.RestrictToAtMost(ci(0)).Values())
	assert.Equal(t, []arithmetic.CheckedInt{ci(0), ci(1), ci(2), ci(3)}, d.RestrictToAtLeast(ci(0)).Values())
}
