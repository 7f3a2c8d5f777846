//go:build wasip1

package wasm

import (
	"runtime"
	"unsafe"

	"github.com/pixuli/pixuli-wasm/pkg/abi"
)

//go:wasmimport host log_message
func hostLogMessage(level, ptr, length uint32)

// logMessage sends msg to the host logger.
func logMessage(level abi.LogLevel, msg string) {
	if msg == "" {
		return
	}
	//nolint:gosec // G103: wasm32 linear memory offsets fit in uint32
	ptr := uint32(uintptr(unsafe.Pointer(unsafe.StringData(msg))))
	hostLogMessage(uint32(level), ptr, uint32(len(msg)))
	runtime.KeepAlive(msg)
}

func init() {
	logMessage(abi.LogLevelDebug, "pixuli: probe module initialized")
}
