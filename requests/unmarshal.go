package requests

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalDefs decodes a YAML list of node definitions
func UnmarshalDefs(data []byte) ([]NodeRequestDTO, error) {
	var defs []NodeRequestDTO
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node definitions: %w", err)
	}
	return defs, nil
}

// LoadDefsFile reads node definitions from a YAML (.yaml, .yml) or
// JSON (.json) file.
func LoadDefsFile(path string) ([]NodeRequestDTO, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var defs []NodeRequestDTO

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return UnmarshalDefs(data)
	case ".json":
		if err := json.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal node definitions: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown node definitions file extension: %s", path)
	}

	return defs, nil
}
