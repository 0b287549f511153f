// Package specfile decodes user-authored schema documents into a SchemaSpec.
// It is the only place where a malformed document is reported back to the user.
package specfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemasketch/internal/schema"
)

// Format names a document encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrEmptyDocument is returned for input containing only whitespace.
var ErrEmptyDocument = errors.New("empty schema document")

// ParseFormat validates a format name. An empty name means auto.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid spec format: %s (must be 'json', 'yaml' or 'auto')", name)
	}
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Parse decodes data as a SchemaSpec. With FormatAuto, a document whose first
// non-space byte is '{' is read as JSON and anything else as YAML.
func Parse(data []byte, format Format) (*schema.SchemaSpec, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}

	if format == FormatAuto || format == "" {
		format = FormatYAML
		if trimmed[0] == '{' {
			format = FormatJSON
		}
	}

	var spec schema.SchemaSpec
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(trimmed, &spec); err != nil {
			return nil, fmt.Errorf("invalid JSON spec: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(trimmed, &spec); err != nil {
			return nil, fmt.Errorf("invalid YAML spec: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported spec format: %s", format)
	}

	return &spec, nil
}
