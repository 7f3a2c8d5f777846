package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pixuli/pixuli-wasm/internal/wasm"
	"github.com/pixuli/pixuli-wasm/internal/wasmtest"
	"go.uber.org/zap"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	runtime, err := wasm.NewRuntime(ctx, logger, wasm.DefaultRuntimeConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	t.Cleanup(func() { runtime.Close(ctx) })

	return NewLoader(runtime, logger)
}

func TestLoader_LoadPlugin_Valid(t *testing.T) {
	loader := newTestLoader(t)
	dir := wasmtest.WritePlugin(t, t.TempDir(), "pixuli", wasmtest.ProbeManifest("pixuli"),
		"probe.wasm", wasmtest.Plus100())

	plugin, err := loader.LoadPlugin(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadPlugin() failed: %v", err)
	}

	if plugin.Name() != "pixuli" {
		t.Errorf("expected name 'pixuli', got '%s'", plugin.Name())
	}

	if plugin.Compiled.Name != "pixuli" {
		t.Errorf("expected module cached as 'pixuli', got '%s'", plugin.Compiled.Name)
	}

	if plugin.Digest() != wasm.Digest(wasmtest.Plus100()) {
		t.Errorf("unexpected digest %s", plugin.Digest())
	}

	if plugin.LoadedAt.IsZero() {
		t.Error("LoadedAt should be set")
	}
}

func TestLoader_LoadPlugin_ManifestNotFound(t *testing.T) {
	loader := newTestLoader(t)

	_, err := loader.LoadPlugin(context.Background(), filepath.Join(t.TempDir(), "nonexistent"))
	if err == nil {
		t.Fatal("LoadPlugin() should fail for nonexistent directory")
	}

	_, ok := err.(*ManifestNotFoundError)
	if !ok {
		t.Errorf("expected ManifestNotFoundError, got %T", err)
	}
}

func TestLoader_LoadPlugin_InvalidWasm(t *testing.T) {
	loader := newTestLoader(t)
	dir := wasmtest.WritePlugin(t, t.TempDir(), "pixuli", wasmtest.ProbeManifest("pixuli"),
		"probe.wasm", []byte("not wasm"))

	_, err := loader.LoadPlugin(context.Background(), dir)
	if err == nil {
		t.Fatal("LoadPlugin() should fail for an invalid Wasm binary")
	}

	loadErr, ok := err.(*PluginLoadError)
	if !ok {
		t.Fatalf("expected PluginLoadError, got %T", err)
	}
	if loadErr.PluginName != "pixuli" {
		t.Errorf("expected plugin name 'pixuli', got '%s'", loadErr.PluginName)
	}
}

func TestLoader_LoadPlugin_DigestMismatch(t *testing.T) {
	loader := newTestLoader(t)
	manifest := strings.Replace(wasmtest.ProbeManifest("pixuli"), "file: probe.wasm",
		"file: probe.wasm\n  digest: "+wasm.Digest(wasmtest.Empty()), 1)
	dir := wasmtest.WritePlugin(t, t.TempDir(), "pixuli", manifest, "probe.wasm", wasmtest.Plus100())

	_, err := loader.LoadPlugin(context.Background(), dir)
	if err == nil {
		t.Fatal("LoadPlugin() should fail on digest mismatch")
	}

	mismatch, ok := err.(*DigestMismatchError)
	if !ok {
		t.Fatalf("expected DigestMismatchError, got %T", err)
	}
	if mismatch.Got != wasm.Digest(wasmtest.Plus100()) {
		t.Errorf("unexpected Got digest %s", mismatch.Got)
	}
}

func TestLoader_DiscoverPlugins(t *testing.T) {
	loader := newTestLoader(t)
	root := t.TempDir()

	wasmtest.WritePlugin(t, root, "first", wasmtest.ProbeManifest("first"), "probe.wasm", wasmtest.Plus100())
	wasmtest.WritePlugin(t, root, "second", wasmtest.ProbeManifest("second"), "probe.wasm", wasmtest.Greeter())
	// Broken plugins are skipped.
	wasmtest.WritePlugin(t, root, "broken", "name: [", "", nil)

	plugins, err := loader.DiscoverPlugins(context.Background(), []string{root, filepath.Join(root, "missing")})
	if err != nil {
		t.Fatalf("DiscoverPlugins() failed: %v", err)
	}

	if len(plugins) != 2 {
		t.Errorf("expected 2 plugins, got %d", len(plugins))
	}
}

func TestLoader_DiscoverPlugins_AllFailed(t *testing.T) {
	loader := newTestLoader(t)
	root := t.TempDir()

	manifest := strings.Replace(wasmtest.ProbeManifest("pixuli"), "file: probe.wasm",
		"file: probe.wasm\n  digest: "+wasm.Digest(wasmtest.Empty()), 1)
	wasmtest.WritePlugin(t, root, "pixuli", manifest, "probe.wasm", wasmtest.Plus100())

	_, err := loader.DiscoverPlugins(context.Background(), []string{root})
	if err == nil {
		t.Fatal("DiscoverPlugins() should fail when every plugin fails to load")
	}

	var mismatch *DigestMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DigestMismatchError in %v", err)
	}

	var none *NoPluginsFoundError
	if errors.As(err, &none) {
		t.Error("load failures should not be reported as NoPluginsFoundError")
	}
}

func TestLoader_DiscoverPlugins_NoneFound(t *testing.T) {
	loader := newTestLoader(t)
	root := t.TempDir()

	// Directories without a manifest are not plugins.
	if err := os.Mkdir(filepath.Join(root, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := loader.DiscoverPlugins(context.Background(), []string{root})
	if err == nil {
		t.Fatal("DiscoverPlugins() should fail when no plugins are found")
	}

	_, ok := err.(*NoPluginsFoundError)
	if !ok {
		t.Errorf("expected NoPluginsFoundError, got %T", err)
	}
}
