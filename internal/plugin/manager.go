package plugin

import (
	"context"
	"errors"
	"sync"

	"github.com/pixuli/pixuli-wasm/internal/config"
	"github.com/pixuli/pixuli-wasm/internal/wasm"
	"go.uber.org/zap"
)

// ErrAlreadyLoaded is returned by a second LoadAll on the same Manager.
var ErrAlreadyLoaded = errors.New("plugins already loaded")

// Manager discovers plugins once, answers lookups, and hands out fresh
// instances. It owns the runtime and closes it on Shutdown.
type Manager struct {
	paths       []string
	runtime     *wasm.Runtime
	loader      *Loader
	registry    *Registry
	instanceMgr *wasm.InstanceManager
	logger      *zap.Logger

	loadMu sync.Mutex
	loaded bool
}

func NewManager(
	cfg *config.Config,
	runtime *wasm.Runtime,
	hostFuncs *wasm.HostFunctionsImpl,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		paths:       cfg.PluginPaths,
		runtime:     runtime,
		loader:      NewLoader(runtime, logger),
		registry:    NewRegistry(logger),
		instanceMgr: wasm.NewInstanceManager(runtime, hostFuncs, logger),
		logger:      logger.With(zap.String("component", "plugin-manager")),
	}
}

// LoadAll loads every plugin under the configured paths.
//
// Paths without any plugin directory are not an error. Load failures are,
// when no plugin loaded at all.
func (m *Manager) LoadAll(ctx context.Context) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	if m.loaded {
		return ErrAlreadyLoaded
	}

	plugins, err := m.loader.DiscoverPlugins(ctx, m.paths)
	var none *NoPluginsFoundError
	switch {
	case errors.As(err, &none):
		m.logger.Warn("No plugins in configured paths", zap.Strings("paths", m.paths))
	case err != nil:
		return err
	}

	for _, p := range plugins {
		if err := m.registry.Register(p); err != nil {
			// Two directories declaring the same name: first one wins.
			m.logger.Error("Skipping plugin", zap.String("dir", p.Manifest.Dir()), zap.Error(err))
		}
	}

	m.loaded = true
	m.logger.Info("Plugins ready", zap.Int("count", m.registry.Count()))
	return nil
}

// IsLoaded reports whether LoadAll has completed.
func (m *Manager) IsLoaded() bool {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	return m.loaded
}

func (m *Manager) GetPlugin(name string) (*Plugin, error) {
	p, ok := m.registry.Get(name)
	if !ok {
		return nil, &PluginNotFoundError{PluginName: name}
	}
	return p, nil
}

// FindPluginForCapability returns the earliest registered plugin declaring capability.
func (m *Manager) FindPluginForCapability(capability string) (*Plugin, error) {
	candidates := m.registry.LookupByCapability(capability)
	if len(candidates) == 0 {
		return nil, &CapabilityNotFoundError{Capability: capability}
	}
	return candidates[0], nil
}

// Instantiate starts a new instance of the named plugin with a generated ID.
// The caller owns the instance and must Close it.
func (m *Manager) Instantiate(ctx context.Context, pluginName string) (*wasm.Instance, error) {
	p, err := m.GetPlugin(pluginName)
	if err != nil {
		return nil, err
	}
	return m.instanceMgr.Instantiate(ctx, &wasm.InstanceConfig{ModuleName: p.Compiled.Name})
}

// Shutdown closes the runtime, which also closes any instance still open.
func (m *Manager) Shutdown(ctx context.Context) error {
	if err := m.runtime.Close(ctx); err != nil {
		m.logger.Error("Runtime close failed", zap.Error(err))
		return err
	}
	m.logger.Info("Plugin manager stopped")
	return nil
}

func (m *Manager) Registry() *Registry {
	return m.registry
}
