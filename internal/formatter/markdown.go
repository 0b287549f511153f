package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemasketch/internal/schema"
)

// MarkdownFormatter formats a model as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the model in markdown format
func (f *MarkdownFormatter) Format(m *schema.Model) error {
	if _, err := fmt.Fprintln(f.writer, "# Schema"); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range m.Tables {
		f.FormatTable(table, m.RelationsFrom(table.Name))
	}

	if len(m.Relations) == 0 {
		_, _ = fmt.Fprintln(f.writer, "No relations detected.")
	}
	return nil
}

// FormatTable writes one table section (exported for use by the multi-file formatter)
func (f *MarkdownFormatter) FormatTable(table schema.Table, relations []schema.Relation) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)
	for _, col := range table.Columns {
		if len(col.Constraints) > 0 {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, col.Type, strings.Join(col.Constraints, ", "))
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.Type)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(relations) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, rel := range relations {
			_, _ = fmt.Fprintf(f.writer, "- %s → %s (%s)\n", rel.From, rel.To, rel.Label)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}
