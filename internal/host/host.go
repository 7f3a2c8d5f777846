// Package host wires configuration, the Wasm runtime and the plugin manager
// into the operations the CLI exposes.
package host

import (
	"context"
	"fmt"

	"github.com/pixuli/pixuli-wasm/internal/binding"
	"github.com/pixuli/pixuli-wasm/internal/config"
	"github.com/pixuli/pixuli-wasm/internal/plugin"
	"github.com/pixuli/pixuli-wasm/internal/wasm"
	"go.uber.org/zap"
)

// Host owns one Wasm runtime and the plugins loaded into it. Each Plus100 or
// Verify call runs in its own instance.
type Host struct {
	cfg         *config.Config
	logger      *zap.Logger
	wasmRuntime *wasm.Runtime
	plugins     *plugin.Manager
}

// New creates the runtime described by cfg.Wasm. Plugins are not loaded
// until Load.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Host, error) {
	// Initialize Wasm runtime.
	wasmConfig := &wasm.RuntimeConfig{
		MemoryPages:      cfg.Wasm.MemoryPages,
		DebugEnabled:     cfg.Wasm.Debug,
		CacheDir:         cfg.Wasm.CacheDir,
		MaxInstances:     cfg.Wasm.MaxInstances,
		ExecutionTimeout: cfg.Wasm.Timeout(),
	}

	wasmRuntime, err := wasm.NewRuntime(ctx, logger, wasmConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Wasm runtime: %w", err)
	}

	hostFuncs := wasm.NewHostFunctions(logger)

	logger.Info("Host initialized",
		zap.Strings("plugin_paths", cfg.PluginPaths),
		zap.String("default_plugin", cfg.DefaultPlugin),
	)

	return &Host{
		cfg:         cfg,
		logger:      logger.With(zap.String("component", "host")),
		wasmRuntime: wasmRuntime,
		plugins:     plugin.NewManager(cfg, wasmRuntime, hostFuncs, logger),
	}, nil
}

// Load discovers and registers plugins from the configured paths. It fails
// when every plugin found fails to load, and is a no-op once it has succeeded.
func (h *Host) Load(ctx context.Context) error {
	if h.plugins.IsLoaded() {
		return nil
	}
	return h.plugins.LoadAll(ctx)
}

// Plugins returns the loaded plugins sorted by name.
func (h *Host) Plugins() []*plugin.Plugin {
	return h.plugins.Registry().List()
}

// resolve picks the plugin to run. An empty name falls back to the
// configured default, then to the first plugin declaring the probe capability.
func (h *Host) resolve(name string) (*plugin.Plugin, error) {
	if name == "" {
		name = h.cfg.DefaultPlugin
	}
	if name == "" {
		return h.plugins.FindPluginForCapability(plugin.CapabilityProbe)
	}

	p, err := h.plugins.GetPlugin(name)
	if err != nil {
		return nil, err
	}
	if !p.HasCapability(plugin.CapabilityProbe) {
		return nil, &plugin.CapabilityNotFoundError{Capability: plugin.CapabilityProbe}
	}
	return p, nil
}

// withProbe runs fn against a fresh instance of the resolved plugin and
// closes the instance afterwards.
func (h *Host) withProbe(ctx context.Context, name string, fn func(*binding.Probe) error) error {
	p, err := h.resolve(name)
	if err != nil {
		return err
	}

	instance, err := h.plugins.Instantiate(ctx, p.Name())
	if err != nil {
		return err
	}
	defer func() {
		if err := instance.Close(ctx); err != nil {
			h.logger.Warn("Failed to close instance",
				zap.String("instance_id", instance.ID),
				zap.Error(err),
			)
		}
	}()

	probe, err := binding.NewProbe(instance)
	if err != nil {
		return err
	}

	return fn(probe)
}

// Plus100 calls plus_100 in the named plugin.
func (h *Host) Plus100(ctx context.Context, pluginName string, input uint32) (uint32, error) {
	var out uint32
	err := h.withProbe(ctx, pluginName, func(p *binding.Probe) error {
		var err error
		out, err = p.Plus100(ctx, input)
		return err
	})
	if err != nil {
		return 0, err
	}

	h.logger.Debug("plus_100 called",
		zap.String("plugin", pluginName),
		zap.Uint32("input", input),
		zap.Uint32("output", out),
	)
	return out, nil
}

// Verify runs the boundary checks against the named plugin.
func (h *Host) Verify(ctx context.Context, pluginName string) (*binding.Report, error) {
	var report *binding.Report
	err := h.withProbe(ctx, pluginName, func(p *binding.Probe) error {
		var err error
		report, err = p.Verify(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("Verification finished",
		zap.String("plugin", pluginName),
		zap.Bool("passed", report.Passed),
		zap.Int("failed", len(report.Failed())),
	)
	return report, nil
}

// Close gracefully shuts down the host.
func (h *Host) Close(ctx context.Context) error {
	h.logger.Info("Shutting down host")

	if err := h.plugins.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown plugins", zap.Error(err))
		return err
	}

	h.logger.Info("Host shutdown complete")
	return nil
}
