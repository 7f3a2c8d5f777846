package plugin

import (
	"slices"
	"time"

	"github.com/pixuli/pixuli-wasm/internal/wasm"
)

// Plugin is a loaded module package: its manifest and compiled Wasm module.
type Plugin struct {
	// Manifest is the parsed plugin metadata
	Manifest *Manifest

	// Compiled is the compiled Wasm module
	Compiled *wasm.CompiledModule

	// LoadedAt is the timestamp when the plugin was loaded
	LoadedAt time.Time
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return p.Manifest.Name
}

// Version returns the plugin version.
func (p *Plugin) Version() string {
	return p.Manifest.Version
}

// Capabilities returns the list of capabilities provided by this plugin.
func (p *Plugin) Capabilities() []string {
	return p.Manifest.Capabilities
}

// HasCapability reports whether the plugin declares capability.
func (p *Plugin) HasCapability(capability string) bool {
	return slices.Contains(p.Manifest.Capabilities, capability)
}

// Exports returns the function exports declared in the manifest.
func (p *Plugin) Exports() []string {
	return p.Manifest.Exports
}

// Digest returns the BLAKE2b-256 of the compiled Wasm binary.
func (p *Plugin) Digest() string {
	return p.Compiled.Digest
}
