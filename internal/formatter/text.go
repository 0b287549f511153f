package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemasketch/internal/schema"
)

// TextFormatter formats a model as a compact listing
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the model in compact text format
func (f *TextFormatter) Format(m *schema.Model) error {
	if len(m.Tables) == 0 {
		_, err := fmt.Fprintln(f.writer, "No tables detected.")
		return err
	}

	for i, table := range m.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.formatTable(table, m.RelationsFrom(table.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(table schema.Table, relations []schema.Relation) error {
	// Table header with primary key
	pkStr := ""
	if pk := primaryKey(table); len(pk) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pk, ", "))
	}
	if _, err := fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr); err != nil {
		return err
	}

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumn(col))
	}

	if len(relations) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  RELATIONS:")
		for _, rel := range relations {
			_, _ = fmt.Fprintf(f.writer, "    → %s (%s)\n", rel.To, rel.Label)
		}
	}

	return nil
}

func formatColumn(col schema.Column) string {
	parts := []string{col.Name + ":", col.Type}
	parts = append(parts, col.Constraints...)
	return strings.Join(parts, " ")
}

func primaryKey(table schema.Table) []string {
	var pk []string
	for _, col := range table.Columns {
		if col.HasConstraint(schema.ConstraintPK) {
			pk = append(pk, col.Name)
		}
	}
	return pk
}
