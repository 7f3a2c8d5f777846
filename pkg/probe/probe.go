// Package probe holds the arithmetic probe exposed across the wasm boundary.
//
// The probe is a pure function used to check that a host runtime can call
// into the compiled module and read back a value. It has no state and is safe
// to call from any number of goroutines.
package probe

import "math"

const (
	// Offset is the constant added to every input.
	Offset uint32 = 100

	// ExportName is the stable external name of Plus100.
	ExportName = "plus_100"

	// wrapThreshold is the largest input that does not wrap.
	wrapThreshold = math.MaxUint32 - Offset
)

// Plus100 returns input + 100, wrapping modulo 2^32.
//
// Overflow is not signalled: Plus100(math.MaxUint32) == 99.
func Plus100(input uint32) uint32 {
	return input + Offset
}

// Overflows reports whether Plus100(input) wraps around.
func Overflows(input uint32) bool {
	return input > wrapThreshold
}
