package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/pixuli/pixuli-wasm/internal/config"
	"github.com/pixuli/pixuli-wasm/internal/wasm"
	"github.com/pixuli/pixuli-wasm/internal/wasmtest"
	"github.com/pixuli/pixuli-wasm/pkg/abi"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, paths ...string) (*Manager, *wasm.Runtime) {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	runtime, err := wasm.NewRuntime(ctx, logger, wasm.DefaultRuntimeConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	t.Cleanup(func() { runtime.Close(ctx) })

	cfg := &config.Config{PluginPaths: paths}
	return NewManager(cfg, runtime, wasm.NewHostFunctions(logger), logger), runtime
}

func TestManager_NewManager(t *testing.T) {
	manager, _ := newTestManager(t, "/tmp/plugins")

	if manager == nil {
		t.Fatal("NewManager() returned nil")
	}

	if manager.IsLoaded() {
		t.Error("Manager should not be loaded initially")
	}
}

func TestManager_LoadAll(t *testing.T) {
	root := t.TempDir()
	wasmtest.WritePlugin(t, root, "pixuli", wasmtest.ProbeManifest("pixuli"), "probe.wasm", wasmtest.Plus100())

	manager, _ := newTestManager(t, root)
	ctx := context.Background()

	if err := manager.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	if !manager.IsLoaded() {
		t.Error("Manager should be loaded")
	}

	if manager.Registry().Count() != 1 {
		t.Errorf("expected 1 plugin, got %d", manager.Registry().Count())
	}

	if err := manager.LoadAll(ctx); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("second LoadAll() = %v, want ErrAlreadyLoaded", err)
	}
}

func TestManager_LoadAll_Empty(t *testing.T) {
	manager, _ := newTestManager(t, t.TempDir())

	if err := manager.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() should tolerate empty paths: %v", err)
	}

	if !manager.IsLoaded() {
		t.Error("Manager should be marked loaded")
	}
}

func TestManager_LoadAll_Failure(t *testing.T) {
	root := t.TempDir()
	wasmtest.WritePlugin(t, root, "pixuli", wasmtest.ProbeManifest("pixuli"), "probe.wasm", []byte("not wasm"))

	manager, _ := newTestManager(t, root)

	err := manager.LoadAll(context.Background())
	var loadErr *PluginLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected PluginLoadError, got %v", err)
	}

	var compErr *wasm.CompilationError
	if !errors.As(err, &compErr) {
		t.Errorf("expected the CompilationError to be reachable, got %v", err)
	}

	if manager.IsLoaded() {
		t.Error("Manager should not be marked loaded after a failed load")
	}
}

func TestManager_GetPlugin_NotFound(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.GetPlugin("nonexistent")
	if err == nil {
		t.Fatal("GetPlugin() should fail for non-existent plugin")
	}

	_, ok := err.(*PluginNotFoundError)
	if !ok {
		t.Errorf("expected PluginNotFoundError, got %T", err)
	}
}

func TestManager_FindPluginForCapability_NotFound(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.FindPluginForCapability(CapabilityProbe)
	if err == nil {
		t.Fatal("FindPluginForCapability() should fail when no plugins are loaded")
	}

	_, ok := err.(*CapabilityNotFoundError)
	if !ok {
		t.Errorf("expected CapabilityNotFoundError, got %T", err)
	}
}

func TestManager_Instantiate(t *testing.T) {
	root := t.TempDir()
	wasmtest.WritePlugin(t, root, "pixuli", wasmtest.ProbeManifest("pixuli"), "probe.wasm", wasmtest.Plus100())

	manager, runtime := newTestManager(t, root)
	ctx := context.Background()

	if err := manager.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	plugin, err := manager.FindPluginForCapability(CapabilityProbe)
	if err != nil {
		t.Fatalf("FindPluginForCapability() failed: %v", err)
	}

	instance, err := manager.Instantiate(ctx, plugin.Name())
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}
	defer instance.Close(ctx)

	got, err := instance.CallUint32(ctx, abi.ExportPlus100, 50)
	if err != nil {
		t.Fatalf("plus_100 call failed: %v", err)
	}
	if got != 150 {
		t.Errorf("plus_100(50) = %d, want 150", got)
	}

	if runtime.ActiveInstances() != 1 {
		t.Errorf("expected 1 active instance, got %d", runtime.ActiveInstances())
	}
}

func TestManager_Instantiate_NotFound(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.Instantiate(context.Background(), "missing")
	if _, ok := err.(*PluginNotFoundError); !ok {
		t.Errorf("expected PluginNotFoundError, got %T", err)
	}
}

func TestManager_Shutdown(t *testing.T) {
	manager, runtime := newTestManager(t)

	// Shutdown should work even without loaded plugins
	if err := manager.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}

	if !runtime.IsClosed() {
		t.Error("Runtime should be closed after shutdown")
	}
}
