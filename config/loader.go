package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yildizdb/yildiz-go/pkg/jsonschema"
)

//go:embed schema.json
var fileSchema []byte

// Load reads, validates and decodes a profile file. YAML and JSON are both
// accepted.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Parse validates and decodes profile file contents.
func Parse(data []byte) (*File, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// The schema validator works on JSON values, so round-trip the
	// generic YAML tree through encoding/json first.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	schema, err := jsonschema.Compile("yildiz-config.json", fileSchema)
	if err != nil {
		return nil, err
	}
	schemaErrs, err := schema.ValidateJSON(asJSON)
	if err != nil {
		return nil, err
	}
	if len(schemaErrs) > 0 {
		return nil, fmt.Errorf("config does not match schema: %w", schemaErrs)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	if errs := Validate(&file); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	return &file, nil
}
