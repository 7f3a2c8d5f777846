// Package wasm is the guest side of the pixuli module.
//
// It only compiles to something useful for GOOS=wasip1 GOARCH=wasm, where it
// exports the following functions to the host:
//
//	//go:wasmexport plus_100
//	func plus100(input uint32) uint32
//
// and imports host.log_message(level, ptr, length) for diagnostics.
//
// NOTE: uint32 is used for pointers and lengths because WebAssembly uses a 32-bit
// linear memory model. See: https://github.com/golang/go/issues/59156
package wasm
