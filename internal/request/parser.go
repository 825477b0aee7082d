package request

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Parse decodes a YAML request document.
func Parse(data []byte) (*Request, error) {
	var r Request
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing request: %w", err)
	}
	return &r, nil
}

// LoadFile validates a request file against the schema and decodes it.
// Schema violations are returned as a *ValidationResult alongside a nil
// request so callers can report every issue at once.
func LoadFile(path string) (*Request, *ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}

	result, err := Validate(data)
	if err != nil {
		return nil, nil, fmt.Errorf("validating %s: %w", path, err)
	}
	if !result.Valid {
		return nil, result, nil
	}

	r, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, result, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
