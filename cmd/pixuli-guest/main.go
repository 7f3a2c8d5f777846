//go:build wasip1

// Command pixuli-guest is the wasm module loaded by the pixuli host.
//
// Build it as a reactor:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o pixuli.wasm ./cmd/pixuli-guest
package main

import _ "github.com/pixuli/pixuli-wasm/api/wasm"

// main is required for the wasip1 target, even if it isn't used.
func main() {}
