// Package manifest loads and validates the YAML documents the engine
// consumes: run manifests carrying one verification run's phase inputs, and
// operator catalogs that pre-populate a guard registry. Every document is
// validated against an embedded JSON Schema before decoding, so malformed
// input fails closed with a precise path instead of surfacing as a zero
// value deep inside a phase.
package manifest

import (
	"fmt"
	"math"
	"os"
	"strings"

	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Loader parses run manifests and operator catalogs. Construct one and
// share it; the compiled schemas are reused across loads.
type Loader struct {
	runSchema     *jsonschema.Schema
	catalogSchema *jsonschema.Schema
}

// NewLoader compiles the embedded document schemas.
func NewLoader() (*Loader, error) {
	run, err := compileSchema("run-manifest", runManifestSchema)
	if err != nil {
		return nil, err
	}
	catalog, err := compileSchema("operator-catalog", operatorCatalogSchema)
	if err != nil {
		return nil, err
	}
	return &Loader{runSchema: run, catalogSchema: catalog}, nil
}

func compileSchema(name, src string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	schemaURL := fmt.Sprintf("https://ctt.schemas.local/%s.schema.json", name)
	if err := c.AddResource(schemaURL, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("schema %s load failed: %w", name, err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("schema %s compile failed: %w", name, err)
	}
	return compiled, nil
}

// validate checks raw YAML against schema before any typed decoding.
func validate(schema *jsonschema.Schema, raw []byte, what string) error {
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("%s: parse YAML: %w", what, err)
	}
	doc, err := jsonTree(tree)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%s: schema validation failed: %w", what, err)
	}
	return nil
}

// jsonTree converts a decoded YAML tree into the plain JSON value types the
// schema validator expects. Non-finite floats are replaced by zero for the
// shape check only; the typed decode preserves the original values, and
// judging them is phase logic, not schema logic.
func jsonTree(v any) (any, error) {
	data, err := json.Marshal(sanitize(v))
	if err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	return out, nil
}

func sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitize(val)
		}
		return out
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return float64(0)
		}
		return t
	default:
		return v
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
