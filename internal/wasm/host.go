package wasm

import (
	"context"

	"github.com/pixuli/pixuli-wasm/pkg/abi"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// maxLogMessage caps the bytes read for a single log_message call.
const maxLogMessage = 64 * 1024

// HostFunctionsImpl implements host functions for Wasm modules.
type HostFunctionsImpl struct {
	logger *zap.Logger
}

// NewHostFunctions creates a new host functions implementation.
func NewHostFunctions(logger *zap.Logger) *HostFunctionsImpl {
	return &HostFunctionsImpl{
		logger: logger.With(zap.String("component", "wasm-host")),
	}
}

// logMessage is called by Wasm modules to log messages.
// Signature: log_message(level, ptr, length)
func (h *HostFunctionsImpl) logMessage(ctx context.Context, mod api.Module, level uint32, ptr uint32, length uint32) {
	truncated := false
	if length > maxLogMessage {
		length = maxLogMessage
		truncated = true
	}

	msg, err := NewMemory(mod).Read(ptr, length)
	if err != nil {
		h.logger.Error("Failed to read log message from Wasm memory",
			zap.String("instance_id", mod.Name()),
			zap.Error(&HostFunctionError{FunctionName: abi.HostLogMessage, Err: err}),
		)
		return
	}

	fields := []zap.Field{zap.String("instance_id", mod.Name())}
	if truncated {
		fields = append(fields, zap.Bool("truncated", true))
	}

	switch abi.LogLevel(level) {
	case abi.LogLevelDebug:
		h.logger.Debug(string(msg), fields...)
	case abi.LogLevelWarn:
		h.logger.Warn(string(msg), fields...)
	case abi.LogLevelError:
		h.logger.Error(string(msg), fields...)
	default:
		h.logger.Info(string(msg), fields...)
	}
}

// export registers the host functions on the host module builder.
func (h *HostFunctionsImpl) export(builder wazero.HostModuleBuilder) {
	// Wasm modules can call this to log messages.
	builder.NewFunctionBuilder().
		WithFunc(h.logMessage).
		WithParameterNames("level", "ptr", "length").
		Export(abi.HostLogMessage)
}
