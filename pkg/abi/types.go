// Package abi defines the names shared by the guest module and the host runtime.
package abi

import "github.com/pixuli/pixuli-wasm/pkg/probe"

const (
	// ExportPlus100 is the guest export implementing probe.Plus100.
	ExportPlus100 = probe.ExportName

	// ExportInitialize is called once after instantiation of a reactor module.
	ExportInitialize = "_initialize"

	// ExportMemory is the guest's linear memory.
	ExportMemory = "memory"

	// HostModuleName is the import module providing host functions.
	HostModuleName = "host"

	// HostLogMessage is log_message(level, ptr, length).
	HostLogMessage = "log_message"
)

// LogLevel is the level argument of log_message.
type LogLevel uint32

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String returns the level name. Unknown levels are reported as info.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "info"
	}
}
