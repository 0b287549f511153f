package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/schemasketch/internal/schema"
)

// MultiFileFormatter writes a model to multiple files in a directory:
// an overview, one file per table and erd.mmd
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
	Source       string // canonical text, written to schema.ts when set
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the model to multiple files
func (f *MultiFileFormatter) Format(m *schema.Model) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeFile("_overview"+f.getFileExtension(), func(w io.Writer) error {
		return f.writeOverview(w, m)
	}); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range m.Tables {
		if err := f.writeFile(table.Name+f.getFileExtension(), func(w io.Writer) error {
			return f.writeTable(w, table, m)
		}); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	if err := f.writeFile("erd.mmd", func(w io.Writer) error {
		return NewMermaidFormatter(w).Format(m)
	}); err != nil {
		return fmt.Errorf("failed to write diagram: %w", err)
	}

	if f.Source != "" {
		if err := f.writeFile("schema.ts", func(w io.Writer) error {
			_, err := io.WriteString(w, f.Source)
			return err
		}); err != nil {
			return fmt.Errorf("failed to write schema source: %w", err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeFile(name string, write func(io.Writer) error) error {
	file, err := os.Create(filepath.Join(f.OutputDir, name))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	return write(file)
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, m *schema.Model) error {
	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
		_, _ = fmt.Fprintf(w, "## Tables\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
		_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())
	}

	// Sort tables alphabetically
	sorted := make([]schema.Table, len(m.Tables))
	copy(sorted, m.Tables)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	for _, table := range sorted {
		if f.OutputFormat == FormatMarkdown {
			_, _ = fmt.Fprintf(w, "- **%s**", table.Name)
		} else {
			_, _ = fmt.Fprintf(w, "%s", table.Name)
		}

		if rels := m.RelationsFrom(table.Name); len(rels) > 0 {
			targets := make([]string, 0, len(rels))
			for _, rel := range rels {
				targets = append(targets, rel.To)
			}
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		_, err := fmt.Fprintf(w, "\n")
		if err != nil {
			return err
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeTable(w io.Writer, table schema.Table, m *schema.Model) error {
	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(w).FormatTable(table, m.RelationsFrom(table.Name))
	} else {
		if err := NewTextFormatter(w).formatTable(table, m.RelationsFrom(table.Name)); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w)
	}

	incoming := findIncomingRelations(table.Name, m)
	if len(incoming) == 0 {
		return nil
	}

	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(w, "### Referenced by\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "  REFERENCED BY:\n")
	}
	for _, rel := range incoming {
		_, _ = fmt.Fprintf(w, "- %s (%s)\n", rel.From, rel.Label)
	}
	return nil
}

// findIncomingRelations finds all relations pointing at the named table
func findIncomingRelations(tableName string, m *schema.Model) []schema.Relation {
	var incoming []schema.Relation
	target := strings.ToLower(tableName)

	for _, rel := range m.Relations {
		if rel.To == target {
			incoming = append(incoming, rel)
		}
	}

	return incoming
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
