// Package wasmtest provides hand-assembled wasm binaries for tests.
//
// The binaries mirror what cmd/pixuli-guest compiles to at the boundary
// (same export names and signatures) without needing a wasip1 build step.
package wasmtest

import (
	"os"
	"path/filepath"
	"testing"
)

// Empty is a valid Wasm 1.0 module with no sections.
func Empty() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // Magic number: \0asm
		0x01, 0x00, 0x00, 0x00, // Version: 1
	}
}

// Plus100 exports plus_100: (i32) -> i32 computing local0 + 100 with i32.add,
// which wraps modulo 2^32.
func Plus100() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // Magic
		0x01, 0x00, 0x00, 0x00, // Version
		// Type section: 1 type, func (i32) -> (i32)
		0x01, 0x06, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f,
		// Function section: 1 function of type 0
		0x03, 0x02, 0x01, 0x00,
		// Export section: "plus_100" func 0
		0x07, 0x0c, 0x01,
		0x08, 0x70, 0x6c, 0x75, 0x73, 0x5f, 0x31, 0x30, 0x30, 0x00, 0x00,
		// Code section: local.get 0; i32.const 100; i32.add; end
		0x0a, 0x0a, 0x01, 0x08, 0x00,
		0x20, 0x00,
		0x41, 0xe4, 0x00,
		0x6a,
		0x0b,
	}
}

// Plus100I64 exports plus_100 with the wrong signature: (i64) -> i64.
func Plus100I64() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // Magic
		0x01, 0x00, 0x00, 0x00, // Version
		// Type section: 1 type, func (i64) -> (i64)
		0x01, 0x06, 0x01, 0x60, 0x01, 0x7e, 0x01, 0x7e,
		// Function section
		0x03, 0x02, 0x01, 0x00,
		// Export section: "plus_100" func 0
		0x07, 0x0c, 0x01,
		0x08, 0x70, 0x6c, 0x75, 0x73, 0x5f, 0x31, 0x30, 0x30, 0x00, 0x00,
		// Code section: local.get 0; i64.const 100; i64.add; end
		0x0a, 0x0a, 0x01, 0x08, 0x00,
		0x20, 0x00,
		0x42, 0xe4, 0x00,
		0x7c,
		0x0b,
	}
}

// TwoPageMemory declares a memory of at least 2 pages and nothing else. It
// fails to compile under a 1-page limit.
func TwoPageMemory() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // Magic
		0x01, 0x00, 0x00, 0x00, // Version
		// Memory section: 1 memory, min 2 pages
		0x05, 0x03, 0x01, 0x00, 0x02,
	}
}

// GreetingMessage is the text Greeter logs from _initialize.
const GreetingMessage = "hello"

// Greeter imports host.log_message, exports memory, plus_100 and an
// _initialize that logs GreetingMessage at info level.
func Greeter() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // Magic
		0x01, 0x00, 0x00, 0x00, // Version
		// Type section: 3 types
		0x01, 0x0f, 0x03,
		0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x00, // (i32 i32 i32) -> ()
		0x60, 0x00, 0x00, // () -> ()
		0x60, 0x01, 0x7f, 0x01, 0x7f, // (i32) -> (i32)
		// Import section: host.log_message, type 0
		0x02, 0x14, 0x01,
		0x04, 0x68, 0x6f, 0x73, 0x74,
		0x0b, 0x6c, 0x6f, 0x67, 0x5f, 0x6d, 0x65, 0x73, 0x73, 0x61, 0x67, 0x65,
		0x00, 0x00,
		// Function section: 2 functions of types 1 and 2
		0x03, 0x03, 0x02, 0x01, 0x02,
		// Memory section: 1 memory, min 1 page
		0x05, 0x03, 0x01, 0x00, 0x01,
		// Export section: _initialize (func 1), plus_100 (func 2), memory
		0x07, 0x23, 0x03,
		0x0b, 0x5f, 0x69, 0x6e, 0x69, 0x74, 0x69, 0x61, 0x6c, 0x69, 0x7a, 0x65, 0x00, 0x01,
		0x08, 0x70, 0x6c, 0x75, 0x73, 0x5f, 0x31, 0x30, 0x30, 0x00, 0x02,
		0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, 0x02, 0x00,
		// Code section: 2 bodies
		0x0a, 0x15, 0x02,
		// _initialize: log_message(1, 0, 5)
		0x0a, 0x00, 0x41, 0x01, 0x41, 0x00, 0x41, 0x05, 0x10, 0x00, 0x0b,
		// plus_100
		0x08, 0x00, 0x20, 0x00, 0x41, 0xe4, 0x00, 0x6a, 0x0b,
		// Data section: "hello" at offset 0
		0x0b, 0x0b, 0x01, 0x00, 0x41, 0x00, 0x0b,
		0x05, 0x68, 0x65, 0x6c, 0x6c, 0x6f,
	}
}

// Spinner exports plus_100 as an infinite loop, for timeout tests.
func Spinner() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // Magic
		0x01, 0x00, 0x00, 0x00, // Version
		// Type section: func (i32) -> (i32)
		0x01, 0x06, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f,
		// Function section
		0x03, 0x02, 0x01, 0x00,
		// Export section: "plus_100" func 0
		0x07, 0x0c, 0x01,
		0x08, 0x70, 0x6c, 0x75, 0x73, 0x5f, 0x31, 0x30, 0x30, 0x00, 0x00,
		// Code section: loop br 0 end; unreachable; end
		0x0a, 0x0a, 0x01, 0x08, 0x00,
		0x03, 0x40, 0x0c, 0x00, 0x0b,
		0x00,
		0x0b,
	}
}

// WritePlugin writes manifest.yaml and the wasm binary into a new directory
// under root and returns the directory.
func WritePlugin(t testing.TB, root, name, manifest, wasmFile string, wasm []byte) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	if wasmFile != "" {
		if err := os.WriteFile(filepath.Join(dir, wasmFile), wasm, 0o644); err != nil {
			t.Fatalf("failed to write wasm: %v", err)
		}
	}
	return dir
}

// ProbeManifest returns a valid manifest for a probe plugin.
func ProbeManifest(name string) string {
	return "name: " + name + `
version: 0.1.0
description: arithmetic probe
wasm:
  file: probe.wasm
exports:
  - plus_100
capabilities:
  - probe
`
}
