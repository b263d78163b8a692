// Package domain implements the integer-variable Domain: a sorted,
// deduplicated set of arithmetic.CheckedInt values, stored internally as a
// union of closed, non-adjacent intervals so that large contiguous puzzle
// domains (e.g. a 1..81 Sudoku cell) don't cost one arithmetic.CheckedInt
// per value.
package domain

import (
	"sort"

	"github.com/semiexp/cspcore/internal/arithmetic"
)

// Domain is a finite, non-empty-by-construction (empty domains are
// represented explicitly and checked via IsEmpty) set of integers.
type Domain struct {
	// segments is sorted by Low, each segment's High+1 < the next
	// segment's Low (no two segments are adjacent or overlapping).
	segments []arithmetic.Range
}

// Empty returns the domain containing no values.
func Empty() Domain {
	return Domain{}
}

// FromRange returns the domain of every integer in [low, high].
func FromRange(low, high arithmetic.CheckedInt) Domain {
	if low > high {
		return Empty()
	}
	return Domain{segments: []arithmetic.Range{{Low: low, High: high}}}
}

// FromValues returns the domain containing exactly the given values,
// deduplicated.
func FromValues(values []arithmetic.CheckedInt) Domain {
	if len(values) == 0 {
		return Empty()
	}
	sorted := append([]arithmetic.CheckedInt(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var segs []arithmetic.Range
	start := sorted[0]
	prev := sorted[0]
	for _, v := range sorted[1:] {
		if v == prev {
			continue
		}
		if v == prev+1 {
			prev = v
			continue
		}
		segs = append(segs, arithmetic.Range{Low: start, High: prev})
		start = v
		prev = v
	}
	segs = append(segs, arithmetic.Range{Low: start, High: prev})
	return Domain{segments: segs}
}

// IsEmpty reports whether d contains no values.
func (d Domain) IsEmpty() bool {
	return len(d.segments) == 0
}

// Size returns the number of distinct values in d.
func (d Domain) Size() int {
	n := 0
	for _, s := range d.segments {
		n += s.High.Get() - s.Low.Get() + 1
	}
	return n
}

// Lower returns the smallest value in d. Panics if d is empty.
func (d Domain) Lower() arithmetic.CheckedInt {
	return d.segments[0].Low
}

// Upper returns the largest value in d. Panics if d is empty.
func (d Domain) Upper() arithmetic.CheckedInt {
	return d.segments[len(d.segments)-1].High
}

// IsSingleton reports whether d contains exactly one value.
func (d Domain) IsSingleton() bool {
	return d.Size() == 1
}

// Contains reports whether v is in d.
func (d Domain) Contains(v arithmetic.CheckedInt) bool {
	i := sort.Search(len(d.segments), func(i int) bool { return d.segments[i].High >= v })
	return i < len(d.segments) && d.segments[i].Low <= v
}

// Values enumerates every value of d in ascending order. Both the order and
// the direct encoder call it for every variable they encode, whatever the
// domain's size.
func (d Domain) Values() []arithmetic.CheckedInt {
	var out []arithmetic.CheckedInt
	for _, s := range d.segments {
		for v := s.Low; v <= s.High; v++ {
			out = append(out, v)
			if v == arithmetic.MaxValue {
				break
			}
		}
	}
	return out
}

// Range returns the smallest interval hull containing d.
func (d Domain) Range() arithmetic.Range {
	if d.IsEmpty() {
		return arithmetic.EmptyRange()
	}
	return arithmetic.NewRange(d.Lower(), d.Upper())
}

// Intersect returns the domain of values present in both d and e.
func (d Domain) Intersect(e Domain) Domain {
	var values []arithmetic.CheckedInt
	i, j := 0, 0
	for i < len(d.segments) && j < len(e.segments) {
		a, b := d.segments[i], e.segments[j]
		lo := arithmetic.Max(a.Low, b.Low)
		hi := arithmetic.Min(a.High, b.High)
		if lo <= hi {
			for v := lo; v <= hi; v++ {
				values = append(values, v)
			}
		}
		if a.High < b.High {
			i++
		} else {
			j++
		}
	}
	return FromValues(values)
}

// RestrictToAtMost returns d intersected with (-inf, v].
func (d Domain) RestrictToAtMost(v arithmetic.CheckedInt) Domain {
	return d.Intersect(FromRange(arithmetic.MinValue, v))
}

// RestrictToAtLeast returns d intersected with [v, +inf).
func (d Domain) RestrictToAtLeast(v arithmetic.CheckedInt) Domain {
	return d.Intersect(FromRange(v, arithmetic.MaxValue))
}

// Equal reports whether d and e contain exactly the same values.
func (d Domain) Equal(e Domain) bool {
	if len(d.segments) != len(e.segments) {
		return false
	}
	for i := range d.segments {
		if d.segments[i] != e.segments[i] {
			return false
		}
	}
	return true
}
