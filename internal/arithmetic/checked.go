// Package arithmetic provides the checked 32-bit integer and interval
// arithmetic used throughout the normalizer and encoder. Every operation
// traps on overflow: a clause's shape depends on these values, so silent
// wraparound would corrupt the compiled formula rather than just the
// answer.
package arithmetic

import (
	"fmt"
	"math"
)

// CheckedInt is a 32-bit signed integer whose arithmetic operators panic on
// overflow instead of wrapping. It is comparable and safe to use as a map
// key.
type CheckedInt int32

// MaxValue and MinValue bound the representable range.
const (
	MaxValue = CheckedInt(math.MaxInt32)
	MinValue = CheckedInt(math.MinInt32)
)

// OverflowError is panicked by every CheckedInt operation that would
// otherwise overflow. It is a distinct type so callers that want to convert
// overflow into a recoverable error (rather than aborting) can recover and
// type-assert.
type OverflowError struct {
	Op          string
	A, B        CheckedInt
	HasOperandB bool
}

func (e OverflowError) Error() string {
	if e.HasOperandB {
		return fmt.Sprintf("checked arithmetic overflow: %s(%d, %d)", e.Op, e.A, e.B)
	}
	return fmt.Sprintf("checked arithmetic overflow: %s(%d)", e.Op, e.A)
}

func overflow1(op string, a CheckedInt) {
	panic(OverflowError{Op: op, A: a})
}

func overflow2(op string, a, b CheckedInt) {
	panic(OverflowError{Op: op, A: a, B: b, HasOperandB: true})
}

// NewCheckedInt converts a plain int into a CheckedInt, panicking if it does
// not fit in 32 bits.
func NewCheckedInt(v int) CheckedInt {
	if v > int(MaxValue) || v < int(MinValue) {
		panic(OverflowError{Op: "from int", A: CheckedInt(v)})
	}
	return CheckedInt(v)
}

// Get returns the receiver as a plain int.
func (a CheckedInt) Get() int {
	return int(a)
}

// Add returns a+b, panicking on overflow.
func (a CheckedInt) Add(b CheckedInt) CheckedInt {
	r := int64(a) + int64(b)
	if r > int64(MaxValue) || r < int64(MinValue) {
		overflow2("add", a, b)
	}
	return CheckedInt(r)
}

// Sub returns a-b, panicking on overflow.
func (a CheckedInt) Sub(b CheckedInt) CheckedInt {
	r := int64(a) - int64(b)
	if r > int64(MaxValue) || r < int64(MinValue) {
		overflow2("sub", a, b)
	}
	return CheckedInt(r)
}

// Mul returns a*b, panicking on overflow.
func (a CheckedInt) Mul(b CheckedInt) CheckedInt {
	r := int64(a) * int64(b)
	if r > int64(MaxValue) || r < int64(MinValue) {
		overflow2("mul", a, b)
	}
	return CheckedInt(r)
}

// Neg returns -a, panicking on overflow (only possible at MinValue).
func (a CheckedInt) Neg() CheckedInt {
	if a == MinValue {
		overflow1("neg", a)
	}
	return -a
}

// Abs returns the absolute value of a, panicking on overflow.
func (a CheckedInt) Abs() CheckedInt {
	if a < 0 {
		return a.Neg()
	}
	return a
}

// DivFloor returns a/b rounded toward negative infinity: the unique q such
// that a == q*b+r with r zero or of the same sign as b (for b > 0 this is
// the Euclidean quotient, 0 <= r < b). b must be non-zero.
func (a CheckedInt) DivFloor(b CheckedInt) CheckedInt {
	if b == 0 {
		panic(OverflowError{Op: "div_floor (by zero)", A: a, B: b, HasOperandB: true})
	}
	if a == MinValue && b == -1 {
		overflow2("div_floor", a, b)
	}
	q := a / b
	r := a % b
	if r != 0 && ((r < 0) != (b < 0)) {
		q--
	}
	return q
}

// DivCeil returns a/b rounded toward positive infinity.
func (a CheckedInt) DivCeil(b CheckedInt) CheckedInt {
	return a.Neg().DivFloor(b).Neg()
}

func (a CheckedInt) String() string {
	return fmt.Sprintf("%d", int32(a))
}

// Min returns the smaller of a and b.
func Min(a, b CheckedInt) CheckedInt {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b CheckedInt) CheckedInt {
	if a > b {
		return a
	}
	return b
}
