package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemasketch/internal/schema"
)

// MermaidFormatter writes a Mermaid erDiagram
type MermaidFormatter struct {
	writer io.Writer
}

// NewMermaidFormatter creates a new Mermaid formatter
func NewMermaidFormatter(w io.Writer) *MermaidFormatter {
	return &MermaidFormatter{writer: w}
}

// Format writes the model as an erDiagram. Relations whose target table is
// not declared are left out, as are repeated table pairs.
func (f *MermaidFormatter) Format(m *schema.Model) error {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	declared := make(map[string]bool, len(m.Tables))
	for _, t := range m.Tables {
		declared[strings.ToLower(t.Name)] = true
	}

	seen := make(map[string]bool)
	for _, rel := range m.Relations {
		if !declared[strings.ToLower(rel.From)] || !declared[rel.To] {
			continue
		}
		key := strings.ToLower(rel.From) + ":" + rel.To + ":" + rel.Column
		if seen[key] {
			continue
		}
		seen[key] = true

		// Many referencing rows point at one referenced row
		fmt.Fprintf(&sb, "    %s }o--|| %s : %q\n",
			strings.ToUpper(rel.From),
			strings.ToUpper(rel.To),
			rel.Column)
	}
	if len(seen) > 0 {
		sb.WriteString("\n")
	}

	fks := foreignKeyColumns(m)
	for _, table := range m.Tables {
		fmt.Fprintf(&sb, "    %s {\n", strings.ToUpper(table.Name))

		for _, col := range table.Columns {
			var keys []string
			if col.HasConstraint(schema.ConstraintPK) {
				keys = append(keys, "PK")
			}
			if fks[table.Name+"."+col.Name] {
				keys = append(keys, "FK")
			}
			if col.HasConstraint(schema.ConstraintUnique) {
				keys = append(keys, "UK")
			}

			annotations := ""
			if len(keys) > 0 {
				annotations = " " + strings.Join(keys, ", ")
			}

			fmt.Fprintf(&sb, "        %s %s%s\n", mermaidType(col.Type), col.Name, annotations)
		}

		sb.WriteString("    }\n\n")
	}

	_, err := io.WriteString(f.writer, sb.String())
	return err
}

// mermaidType strips the width suffix, which Mermaid attribute types cannot carry
func mermaidType(t string) string {
	if i := strings.IndexByte(t, '('); i > 0 {
		return t[:i]
	}
	return t
}

func foreignKeyColumns(m *schema.Model) map[string]bool {
	fks := make(map[string]bool, len(m.Relations))
	for _, rel := range m.Relations {
		fks[rel.From+"."+rel.Column] = true
	}
	return fks
}
