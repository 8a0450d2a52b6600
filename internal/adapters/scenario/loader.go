package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/placement-go/internal/domain/rules"
)

//go:embed scenario.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("scenario.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// Load reads and validates a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse validates data against the scenario schema and decodes it
func Parse(data []byte) (*Scenario, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	sc := &Scenario{Properties: rules.DefaultProperties()}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	return sc, nil
}

// Validate checks a YAML document against the scenario schema
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("scenario schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("scenario is empty")
	}
	// Round-trip through JSON so the validator sees JSON types
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("scenario is not representable as json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("scenario does not match schema: %w", err)
	}
	return nil
}
