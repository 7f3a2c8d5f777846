package wasm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixuli/pixuli-wasm/pkg/abi"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// InstanceManager creates and manages module instances.
type InstanceManager struct {
	runtime   *Runtime
	logger    *zap.Logger
	hostFuncs *HostFunctionsImpl
}

// NewInstanceManager creates a new instance manager.
func NewInstanceManager(runtime *Runtime, hostFuncs *HostFunctionsImpl, logger *zap.Logger) *InstanceManager {
	return &InstanceManager{
		runtime:   runtime,
		hostFuncs: hostFuncs,
		logger:    logger.With(zap.String("component", "wasm-instance")),
	}
}

// InstanceConfig holds configuration for creating instances.
type InstanceConfig struct {
	// Module name to instantiate.
	ModuleName string

	// Instance ID (if empty, generates UUID).
	InstanceID string
}

// Instance represents an instantiated Wasm module.
// Calls on one instance must not overlap; use one instance per goroutine.
type Instance struct {
	// wazero module instance.
	module api.Module

	// Instance metadata.
	ID        string
	Name      string
	CreatedAt int64

	// Exported functions (cached for performance).
	exports map[string]api.Function

	runtime   *Runtime
	timeout   time.Duration
	closeOnce sync.Once
}

// Instantiate creates a new instance from a compiled module.
// Host functions are exported to the Wasm module, and _initialize runs when
// the module exports it.
func (m *InstanceManager) Instantiate(ctx context.Context, config *InstanceConfig) (*Instance, error) {
	if m.runtime.IsClosed() {
		return nil, ErrRuntimeClosed
	}

	compiled, ok := m.runtime.GetCompiledModule(config.ModuleName)
	if !ok {
		return nil, &ModuleNotFoundError{ModuleName: config.ModuleName}
	}

	if err := m.runtime.ensureHostModule(ctx, m.hostFuncs); err != nil {
		return nil, err
	}

	if !m.runtime.acquireSlot() {
		return nil, &InstanceLimitError{
			ModuleName: config.ModuleName,
			Max:        m.runtime.config.MaxInstances,
		}
	}

	instanceID := config.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	m.logger.Info("Instantiating Wasm module",
		zap.String("module", config.ModuleName),
		zap.String("instance_id", instanceID),
	)

	// Reactor modules (c-shared Go, no main) initialize through _initialize.
	moduleConfig := wazero.NewModuleConfig().
		WithName(instanceID).
		WithStartFunctions(abi.ExportInitialize)

	module, err := m.runtime.runtime.InstantiateModule(ctx, compiled.Module, moduleConfig)
	if err != nil {
		m.runtime.releaseSlot()
		return nil, &InstantiationError{
			ModuleName: config.ModuleName,
			InstanceID: instanceID,
			Err:        err,
		}
	}

	exports := m.cacheExportedFunctions(module)

	instance := &Instance{
		module:    module,
		ID:        instanceID,
		Name:      config.ModuleName,
		CreatedAt: time.Now().Unix(),
		exports:   exports,
		runtime:   m.runtime,
		timeout:   m.runtime.config.ExecutionTimeout,
	}

	// Track active instance.
	m.runtime.StoreInstance(instanceID, instance)

	m.logger.Info("Module instantiated successfully",
		zap.String("instance_id", instanceID),
		zap.Int("exported_functions", len(exports)),
	)

	return instance, nil
}

// cacheExportedFunctions caches references to the known exported functions.
func (m *InstanceManager) cacheExportedFunctions(module api.Module) map[string]api.Function {
	exports := make(map[string]api.Function)

	for _, name := range []string{abi.ExportPlus100} {
		if fn := module.ExportedFunction(name); fn != nil {
			exports[name] = fn
		}
	}

	return exports
}

// Close closes the instance and releases its slot. Safe to call more than once.
func (i *Instance) Close(ctx context.Context) error {
	var err error
	i.closeOnce.Do(func() {
		err = i.module.Close(ctx)
		i.runtime.DeleteInstance(i.ID)
		i.runtime.releaseSlot()
	})
	return err
}

// function looks up an exported function, cached or not.
func (i *Instance) function(name string) (api.Function, error) {
	if fn, ok := i.exports[name]; ok {
		return fn, nil
	}
	if fn := i.module.ExportedFunction(name); fn != nil {
		return fn, nil
	}
	return nil, &FunctionNotFoundError{ModuleName: i.Name, FunctionName: name}
}

// CheckSignature verifies an export has exactly the given parameter and result types.
func (i *Instance) CheckSignature(name string, params, results []api.ValueType) error {
	fn, err := i.function(name)
	if err != nil {
		return err
	}

	def := fn.Definition()
	if !slices.Equal(def.ParamTypes(), params) || !slices.Equal(def.ResultTypes(), results) {
		return &FunctionSignatureError{
			ModuleName:   i.Name,
			FunctionName: name,
			Want:         formatSignature(params, results),
			Got:          formatSignature(def.ParamTypes(), def.ResultTypes()),
		}
	}
	return nil
}

// Call invokes an exported function with raw stack values.
//
// When the execution timeout expires the call is aborted and the instance is
// closed by wazero; the instance must not be reused afterwards.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn, err := i.function(name)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	results, err := fn.Call(callCtx, params...)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &TimeoutError{FunctionName: name, Duration: i.timeout}
		}
		return nil, fmt.Errorf("call to '%s' in instance %s failed: %w", name, i.ID, err)
	}
	return results, nil
}

// CallUint32 invokes a (i32) -> i32 export. Values are reinterpreted as
// unsigned, so i32 wraparound in the guest is preserved.
func (i *Instance) CallUint32(ctx context.Context, name string, arg uint32) (uint32, error) {
	results, err := i.Call(ctx, name, api.EncodeU32(arg))
	if err != nil {
		return 0, err
	}
	if len(results) != 1 {
		return 0, &FunctionSignatureError{
			ModuleName:   i.Name,
			FunctionName: name,
			Want:         "(i32) -> (i32)",
			Got:          fmt.Sprintf("%d results", len(results)),
		}
	}
	return api.DecodeU32(results[0]), nil
}
