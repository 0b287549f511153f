// Package formatter renders a recovered model for people and tools:
// listings, diagrams and DDL.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tordrt/schemasketch/internal/layout"
	"github.com/tordrt/schemasketch/internal/schema"
)

// Output format names
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatMermaid  = "mermaid"
	FormatDDL      = "ddl"
	FormatSVG      = "svg"
	FormatJSON     = "json"
)

// Formats lists every name accepted by New
var Formats = []string{FormatText, FormatMarkdown, FormatMermaid, FormatDDL, FormatSVG, FormatJSON}

// Formatter writes a model in one output format
type Formatter interface {
	Format(m *schema.Model) error
}

// New returns the formatter registered under format
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	case FormatMermaid:
		return NewMermaidFormatter(w), nil
	case FormatDDL:
		return NewDDLFormatter(w, ""), nil
	case FormatSVG:
		return NewSVGFormatter(w), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be one of %v)", format, Formats)
	}
}

// JSONFormatter writes the model together with its layout
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Document is the JSON shape written by JSONFormatter
type Document struct {
	Model  *schema.Model  `json:"model"`
	Layout *schema.Layout `json:"layout"`
}

// Format writes m and its layout as indented JSON
func (f *JSONFormatter) Format(m *schema.Model) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(Document{Model: m, Layout: layout.Compute(m)})
}
