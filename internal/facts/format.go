package facts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a serialisation of fact tables.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown facts format %q (want json or yaml)", s)
}

// FormatForPath picks the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Marshal encodes v (Tables or Delta) in the given format.
func Marshal(v any, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// ReadTables loads tables written by Marshal; the format follows the
// file extension.
func ReadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("reading facts: %w", err)
	}
	tables := emptyTables()
	if FormatForPath(path) == FormatYAML {
		err = yaml.Unmarshal(data, &tables)
	} else {
		err = json.Unmarshal(data, &tables)
	}
	if err != nil {
		return Tables{}, fmt.Errorf("parsing facts %s: %w", path, err)
	}
	return tables, nil
}
