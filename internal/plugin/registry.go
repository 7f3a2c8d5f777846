package plugin

import (
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Registry holds loaded plugins keyed by manifest name. Registration order is
// kept because capability lookups prefer the earliest plugin.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*Plugin
	ordered []*Plugin
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		byName: make(map[string]*Plugin),
		logger: logger.With(zap.String("component", "plugin-registry")),
	}
}

// Register adds plugin. Names are unique; a second module with the same
// digest under another name is accepted but logged.
func (r *Registry) Register(plugin *Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := plugin.Name()
	if _, dup := r.byName[name]; dup {
		return &PluginAlreadyRegisteredError{PluginName: name}
	}

	if plugin.Compiled != nil {
		for _, other := range r.ordered {
			if other.Compiled != nil && other.Digest() == plugin.Digest() {
				r.logger.Warn("Identical Wasm module registered under two names",
					zap.String("name", name),
					zap.String("other", other.Name()),
					zap.String("digest", plugin.Digest()),
				)
				break
			}
		}
	}

	r.byName[name] = plugin
	r.ordered = append(r.ordered, plugin)

	r.logger.Info("Plugin registered",
		zap.String("name", name),
		zap.String("version", plugin.Version()),
		zap.Strings("capabilities", plugin.Capabilities()),
	)
	return nil
}

func (r *Registry) Get(name string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugin, ok := r.byName[name]
	return plugin, ok
}

// LookupByCapability returns the plugins declaring capability in
// registration order. The result is a fresh slice.
func (r *Registry) LookupByCapability(capability string) []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*Plugin
	for _, p := range r.ordered {
		if p.HasCapability(capability) {
			found = append(found, p)
		}
	}
	return found
}

// List returns every plugin sorted by name.
func (r *Registry) List() []*Plugin {
	r.mu.RLock()
	sorted := slices.Clone(r.ordered)
	r.mu.RUnlock()

	slices.SortFunc(sorted, func(a, b *Plugin) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return sorted
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
