package math

import (
	"errors"
	"math"
)

var ErrOverflowUint64 = errors.New("uint64 overflow")
var ErrUnderflowUint64 = errors.New("uint64 underflow")

// SafeAddUint64 adds two uint64 integers
// If there is an overflow this will return an error
func SafeAddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflowUint64
	}
	return a + b, nil
}

// SafeSubUint64 subtracts b from a
// If b is greater than a this will return an error
func SafeSubUint64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflowUint64
	}
	return a - b, nil
}
