package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pixuli/pixuli-wasm/pkg/abi"
	"gopkg.in/yaml.v3"
)

// CapabilityProbe marks a plugin exporting the arithmetic probe.
const CapabilityProbe = "probe"

// ManifestFile is the manifest name inside a plugin directory.
const ManifestFile = "manifest.yaml"

// knownCapabilities lists the capabilities a manifest may declare.
// Image compression and analysis exports are not defined yet.
var knownCapabilities = []string{CapabilityProbe}

// Manifest represents the plugin manifest.yaml structure.
type Manifest struct {
	Name         string     `yaml:"name" json:"name" jsonschema:"description=Unique plugin name"`
	Version      string     `yaml:"version" json:"version"`
	Description  string     `yaml:"description,omitempty" json:"description,omitempty"`
	Wasm         WasmConfig `yaml:"wasm" json:"wasm"`
	Exports      []string   `yaml:"exports" json:"exports" jsonschema:"minItems=1"`
	Capabilities []string   `yaml:"capabilities" json:"capabilities" jsonschema:"minItems=1,enum=probe"`
	Author       string     `yaml:"author,omitempty" json:"author,omitempty"`
	License      string     `yaml:"license,omitempty" json:"license,omitempty"`

	// Internal fields
	dir string // Directory containing manifest
}

// WasmConfig holds Wasm module configuration.
type WasmConfig struct {
	File string `yaml:"file" json:"file" jsonschema:"description=Wasm binary path relative to the manifest"`
	// Hex BLAKE2b-256 of the binary; checked at load time when set.
	Digest string `yaml:"digest,omitempty" json:"digest,omitempty" jsonschema:"pattern=^[0-9a-fA-F]{64}$"`
}

// ParseManifest reads and parses manifest.yaml from a directory.
func ParseManifest(dir string) (*Manifest, error) {
	manifestPath := filepath.Join(dir, ManifestFile)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, &ManifestNotFoundError{
			Path: manifestPath,
			Err:  err,
		}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ManifestParseError{
			Path: manifestPath,
			Err:  err,
		}
	}

	m.dir = dir

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest fields.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return m.invalid("name", "name is required")
	}

	if strings.ContainsAny(m.Name, `/\`) {
		return m.invalid("name", fmt.Sprintf("name must not contain path separators: %s", m.Name))
	}

	if m.Version == "" {
		return m.invalid("version", "version is required")
	}

	if m.Wasm.File == "" {
		return m.invalid("wasm.file", "wasm.file is required")
	}

	if d := m.Wasm.Digest; d != "" && !isHexDigest(d) {
		return m.invalid("wasm.digest", "wasm.digest must be 64 hex characters")
	}

	if !slices.Contains(m.Exports, abi.ExportPlus100) {
		return m.invalid("exports", fmt.Sprintf("exports must include %s", abi.ExportPlus100))
	}

	if len(m.Capabilities) == 0 {
		return m.invalid("capabilities", "at least one capability is required")
	}

	for _, c := range m.Capabilities {
		if !slices.Contains(knownCapabilities, c) {
			return m.invalid("capabilities",
				fmt.Sprintf("undefined capability: %s (must be one of: %s)", c, strings.Join(knownCapabilities, ", ")))
		}
	}

	// Validate Wasm file exists
	if _, err := os.Stat(m.WasmPath()); os.IsNotExist(err) {
		return &WasmNotFoundError{
			ManifestPath: m.Path(),
			WasmFile:     m.Wasm.File,
		}
	}

	return nil
}

func (m *Manifest) invalid(field, message string) error {
	return &ManifestValidationError{
		Path:    m.Path(),
		Field:   field,
		Message: message,
	}
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.dir, ManifestFile)
}

// WasmPath returns the path to the Wasm file.
func (m *Manifest) WasmPath() string {
	return filepath.Join(m.dir, m.Wasm.File)
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string {
	return m.dir
}

func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
