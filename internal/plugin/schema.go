package plugin

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// ManifestSchema returns the JSON Schema of manifest.yaml.
func ManifestSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Manifest{})
	schema.Title = "pixuli plugin manifest"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest schema: %w", err)
	}
	return data, nil
}
