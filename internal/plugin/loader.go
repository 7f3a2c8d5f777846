package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pixuli/pixuli-wasm/internal/wasm"
	"go.uber.org/zap"
)

// Loader handles loading plugins from disk.
type Loader struct {
	runtime      *wasm.Runtime
	moduleLoader *wasm.ModuleLoader
	logger       *zap.Logger
}

// NewLoader creates a new plugin loader.
func NewLoader(runtime *wasm.Runtime, logger *zap.Logger) *Loader {
	return &Loader{
		runtime:      runtime,
		moduleLoader: wasm.NewModuleLoader(runtime, logger),
		logger:       logger.With(zap.String("component", "plugin-loader")),
	}
}

// LoadPlugin loads a single plugin from a directory.
// The compiled module is cached under the plugin name.
func (l *Loader) LoadPlugin(ctx context.Context, dir string) (*Plugin, error) {
	l.logger.Debug("Loading plugin", zap.String("dir", dir))

	manifest, err := ParseManifest(dir)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Loading plugin",
		zap.String("name", manifest.Name),
		zap.String("version", manifest.Version),
		zap.Strings("capabilities", manifest.Capabilities),
	)

	if err := verifyDigest(manifest); err != nil {
		return nil, err
	}

	compiled, err := l.moduleLoader.LoadModule(ctx, &wasm.FileModuleSource{
		ModuleName: manifest.Name,
		Path:       manifest.WasmPath(),
	})
	if err != nil {
		return nil, &PluginLoadError{
			PluginName: manifest.Name,
			Err:        err,
		}
	}

	plugin := &Plugin{
		Manifest: manifest,
		Compiled: compiled,
		LoadedAt: time.Now(),
	}

	l.logger.Info("Plugin loaded successfully",
		zap.String("name", manifest.Name),
		zap.Int64("size_bytes", compiled.SizeBytes),
		zap.String("digest", compiled.Digest),
	)

	return plugin, nil
}

// verifyDigest compares the Wasm file against wasm.digest, when set.
func verifyDigest(m *Manifest) error {
	if m.Wasm.Digest == "" {
		return nil
	}

	data, err := os.ReadFile(m.WasmPath())
	if err != nil {
		return &PluginLoadError{PluginName: m.Name, Err: err}
	}

	got := wasm.Digest(data)
	if !strings.EqualFold(got, m.Wasm.Digest) {
		return &DigestMismatchError{
			PluginName: m.Name,
			Want:       strings.ToLower(m.Wasm.Digest),
			Got:        got,
		}
	}
	return nil
}

// DiscoverPlugins scans directories for plugins. Each immediate
// subdirectory holding a manifest.yaml is loaded as a plugin; subdirectories
// without one are skipped.
//
// A plugin that fails to load is logged and skipped as long as another one
// loads. When every candidate fails, the load errors are returned joined.
// NoPluginsFoundError is reserved for paths with no candidates at all.
func (l *Loader) DiscoverPlugins(ctx context.Context, paths []string) ([]*Plugin, error) {
	var plugins []*Plugin
	var errs []error

	for _, basePath := range paths {
		l.logger.Debug("Scanning plugin directory", zap.String("path", basePath))

		entries, err := os.ReadDir(basePath)
		if err != nil {
			if os.IsNotExist(err) {
				l.logger.Warn("Plugin path does not exist", zap.String("path", basePath))
				continue
			}
			return nil, fmt.Errorf("failed to read directory '%s': %w", basePath, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			pluginDir := filepath.Join(basePath, entry.Name())
			if _, err := os.Stat(filepath.Join(pluginDir, ManifestFile)); os.IsNotExist(err) {
				l.logger.Debug("Skipping directory without manifest", zap.String("dir", pluginDir))
				continue
			}

			plugin, err := l.LoadPlugin(ctx, pluginDir)
			if err != nil {
				l.logger.Error("Failed to load plugin",
					zap.String("dir", pluginDir),
					zap.Error(err),
				)
				errs = append(errs, err)
				continue
			}

			plugins = append(plugins, plugin)
		}
	}

	switch {
	case len(plugins) == 0 && len(errs) > 0:
		return nil, errors.Join(errs...)
	case len(plugins) == 0:
		return nil, &NoPluginsFoundError{Paths: paths}
	case len(errs) > 0:
		l.logger.Warn("Some plugins failed to load",
			zap.Int("loaded", len(plugins)),
			zap.Int("failed", len(errs)),
		)
	}

	return plugins, nil
}
