package plugin

import (
	"errors"
	"strings"
	"testing"

	"github.com/pixuli/pixuli-wasm/internal/wasm"
	"github.com/pixuli/pixuli-wasm/internal/wasmtest"
)

func TestParseManifest_Valid(t *testing.T) {
	dir := wasmtest.WritePlugin(t, t.TempDir(), "pixuli", wasmtest.ProbeManifest("pixuli"),
		"probe.wasm", wasmtest.Plus100())

	manifest, err := ParseManifest(dir)
	if err != nil {
		t.Fatalf("ParseManifest() failed: %v", err)
	}

	if manifest.Name != "pixuli" {
		t.Errorf("expected Name 'pixuli', got '%s'", manifest.Name)
	}

	if manifest.Version != "0.1.0" {
		t.Errorf("expected Version '0.1.0', got '%s'", manifest.Version)
	}

	if manifest.Wasm.File != "probe.wasm" {
		t.Errorf("expected Wasm.File 'probe.wasm', got '%s'", manifest.Wasm.File)
	}

	if len(manifest.Capabilities) != 1 || manifest.Capabilities[0] != CapabilityProbe {
		t.Errorf("expected capabilities [probe], got %v", manifest.Capabilities)
	}

	if manifest.Dir() != dir {
		t.Errorf("expected Dir '%s', got '%s'", dir, manifest.Dir())
	}
}

func TestParseManifest_NotFound(t *testing.T) {
	_, err := ParseManifest(t.TempDir())
	if err == nil {
		t.Fatal("ParseManifest() should fail for a directory without manifest")
	}

	_, ok := err.(*ManifestNotFoundError)
	if !ok {
		t.Errorf("expected ManifestNotFoundError, got %T", err)
	}
}

func TestParseManifest_InvalidYAML(t *testing.T) {
	dir := wasmtest.WritePlugin(t, t.TempDir(), "broken", "name: [unterminated", "", nil)

	_, err := ParseManifest(dir)
	if err == nil {
		t.Fatal("ParseManifest() should fail for invalid YAML")
	}

	_, ok := err.(*ManifestParseError)
	if !ok {
		t.Errorf("expected ManifestParseError, got %T", err)
	}
}

func TestParseManifest_WasmNotFound(t *testing.T) {
	dir := wasmtest.WritePlugin(t, t.TempDir(), "pixuli", wasmtest.ProbeManifest("pixuli"), "", nil)

	_, err := ParseManifest(dir)
	if err == nil {
		t.Fatal("ParseManifest() should fail when the Wasm file is missing")
	}

	wasmErr, ok := err.(*WasmNotFoundError)
	if !ok {
		t.Fatalf("expected WasmNotFoundError, got %T", err)
	}
	if wasmErr.WasmFile != "probe.wasm" {
		t.Errorf("expected WasmFile 'probe.wasm', got '%s'", wasmErr.WasmFile)
	}
}

func TestManifest_Validate(t *testing.T) {
	base := wasmtest.ProbeManifest("pixuli")

	tests := []struct {
		name     string
		manifest string
		field    string
	}{
		{
			name:     "missing name",
			manifest: strings.Replace(base, "name: pixuli", "", 1),
			field:    "name",
		},
		{
			name:     "name with separator",
			manifest: strings.Replace(base, "name: pixuli", "name: ../pixuli", 1),
			field:    "name",
		},
		{
			name:     "missing version",
			manifest: strings.Replace(base, "version: 0.1.0", "", 1),
			field:    "version",
		},
		{
			name:     "missing wasm file",
			manifest: strings.Replace(base, "file: probe.wasm", "file: \"\"", 1),
			field:    "wasm.file",
		},
		{
			name:     "bad digest",
			manifest: strings.Replace(base, "file: probe.wasm", "file: probe.wasm\n  digest: abc", 1),
			field:    "wasm.digest",
		},
		{
			name:     "missing plus_100 export",
			manifest: strings.Replace(base, "- plus_100", "- compress", 1),
			field:    "exports",
		},
		{
			name:     "no capabilities",
			manifest: strings.Replace(base, "capabilities:\n  - probe\n", "", 1),
			field:    "capabilities",
		},
		{
			name:     "undefined capability",
			manifest: strings.Replace(base, "- probe", "- compress", 1),
			field:    "capabilities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := wasmtest.WritePlugin(t, t.TempDir(), "p", tt.manifest, "probe.wasm", wasmtest.Plus100())

			_, err := ParseManifest(dir)
			if err == nil {
				t.Fatal("ParseManifest() should fail")
			}

			var vErr *ManifestValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ManifestValidationError, got %T: %v", err, err)
			}
			if vErr.Field != tt.field {
				t.Errorf("expected field '%s', got '%s'", tt.field, vErr.Field)
			}
		})
	}
}

func TestManifest_ValidDigest(t *testing.T) {
	manifest := strings.Replace(wasmtest.ProbeManifest("pixuli"), "file: probe.wasm",
		"file: probe.wasm\n  digest: "+wasm.Digest(wasmtest.Plus100()), 1)
	dir := wasmtest.WritePlugin(t, t.TempDir(), "pixuli", manifest, "probe.wasm", wasmtest.Plus100())

	m, err := ParseManifest(dir)
	if err != nil {
		t.Fatalf("ParseManifest() failed: %v", err)
	}
	if m.Wasm.Digest == "" {
		t.Error("expected digest to be parsed")
	}
}

func TestManifestSchema(t *testing.T) {
	schema, err := ManifestSchema()
	if err != nil {
		t.Fatalf("ManifestSchema() failed: %v", err)
	}

	for _, want := range []string{`"name"`, `"wasm"`, `"capabilities"`, `"exports"`} {
		if !strings.Contains(string(schema), want) {
			t.Errorf("schema missing %s", want)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&PluginNotFoundError{PluginName: "x"}, "plugin 'x' not found"},
		{&PluginAlreadyRegisteredError{PluginName: "x"}, "plugin 'x' is already registered"},
		{&CapabilityNotFoundError{Capability: "probe"}, "no plugin provides capability 'probe'"},
		{&ManifestValidationError{Path: "m.yaml", Message: "bad"}, "manifest validation failed at 'm.yaml': bad"},
		{&DigestMismatchError{PluginName: "x", Want: "aa", Got: "bb"}, "plugin 'x': Wasm digest bb does not match manifest digest aa"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %s, want %s", got, tt.want)
		}
	}
}
