//go:build wasip1

package wasm

import "github.com/pixuli/pixuli-wasm/pkg/probe"

// plus100 wraps modulo 2^32 like probe.Plus100; it never traps.
//
//go:wasmexport plus_100
func plus100(input uint32) uint32 {
	return probe.Plus100(input)
}
