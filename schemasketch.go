// Package schemasketch compiles an abstract data model into Drizzle
// pgTable declarations and recovers an entity-relationship model from such
// declarations so it can be drawn as a diagram.
//
// The round trip has three pure stages:
//
//	spec   --Generate-->  canonical text
//	text   --Extract--->  model (tables, columns, relations)
//	model  --Layout---->  grid placement of nodes and edges
//
// None of them fail. Malformed documents are reported by ParseSpec, before
// generation; text that declares nothing extracts to an empty model.
//
// # Quick Start
//
//	spec, err := schemasketch.ParseSpec(data, schemasketch.FormatAuto)
//	if err != nil {
//		log.Fatal(err)
//	}
//	text := schemasketch.Generate(spec)
//	model := schemasketch.Extract(text)
//	err = schemasketch.Render(model, &schemasketch.OutputOptions{Format: "mermaid"})
//
// # Output Formats
//
// Render writes text, markdown, mermaid, ddl, svg or json to a Writer, or
// a bundle of files (overview, one file per table and erd.mmd) to OutputDir.
package schemasketch

import (
	"fmt"
	"io"
	"os"

	"github.com/tordrt/schemasketch/internal/extractor"
	"github.com/tordrt/schemasketch/internal/formatter"
	"github.com/tordrt/schemasketch/internal/generator"
	"github.com/tordrt/schemasketch/internal/idea"
	"github.com/tordrt/schemasketch/internal/layout"
	"github.com/tordrt/schemasketch/internal/schema"
	"github.com/tordrt/schemasketch/internal/specfile"
)

// Spec document formats accepted by ParseSpec.
const (
	FormatAuto = specfile.FormatAuto
	FormatJSON = specfile.FormatJSON
	FormatYAML = specfile.FormatYAML
)

// OutputOptions configures Render.
//
// If OutputDir is set, a multi-file bundle is written there and Writer is
// ignored. Otherwise the model is written to Writer (os.Stdout when nil) in
// Format (text when empty).
type OutputOptions struct {
	// Writer receives single-document output.
	Writer io.Writer

	// Format is one of text, markdown, mermaid, ddl, svg or json.
	// Multi-file output supports text and markdown only.
	Format string

	// OutputDir selects multi-file output.
	OutputDir string

	// Source is the canonical text the model came from. When set, multi-file
	// output also writes it to schema.ts.
	Source string
}

// Result is the outcome of a full round trip.
type Result struct {
	Text   string
	Model  *schema.Model
	Layout *schema.Layout
}

// ParseSpec decodes a JSON or YAML schema document. This is where malformed
// input is reported; Generate itself never fails.
func ParseSpec(data []byte, format specfile.Format) (*schema.SchemaSpec, error) {
	return specfile.Parse(data, format)
}

// Generate renders spec as canonical Drizzle declarations.
func Generate(spec *schema.SchemaSpec) string {
	return generator.Generate(spec)
}

// Extract recovers tables and relations from canonical declarations.
// It accepts arbitrary text.
func Extract(text string) *schema.Model {
	return extractor.Extract(text)
}

// Layout places the tables of m on a three-column grid.
func Layout(m *schema.Model) *schema.Layout {
	return layout.Compute(m)
}

// QuickIdea expands a sketch like "User(id,name), Post(id,userId)" into a
// starter spec.
func QuickIdea(text string) *schema.SchemaSpec {
	return idea.Expand(text)
}

// RoundTrip parses a spec document and runs every stage on it.
func RoundTrip(data []byte, format specfile.Format) (*Result, error) {
	spec, err := ParseSpec(data, format)
	if err != nil {
		return nil, err
	}

	text := Generate(spec)
	model := Extract(text)

	return &Result{
		Text:   text,
		Model:  model,
		Layout: Layout(model),
	}, nil
}

// Render writes m according to opts. A nil opts writes text to os.Stdout.
func Render(m *schema.Model, opts *OutputOptions) error {
	if opts == nil {
		opts = &OutputOptions{}
	}

	format := opts.Format
	if format == "" {
		format = formatter.FormatText
	}

	// Multi-file output
	if opts.OutputDir != "" {
		if format != formatter.FormatText && format != formatter.FormatMarkdown {
			return fmt.Errorf("multi-file output supports text or markdown, got %s", format)
		}
		f := formatter.NewMultiFileFormatter(opts.OutputDir, format)
		f.Source = opts.Source
		return f.Format(m)
	}

	// Single-document output
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}
	f, err := formatter.New(format, writer)
	if err != nil {
		return err
	}
	return f.Format(m)
}
