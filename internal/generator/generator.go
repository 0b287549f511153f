// Package generator turns a SchemaSpec into canonical Drizzle table
// declarations.
package generator

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemasketch/internal/schema"
)

// Header is the import line that opens every generated document.
const Header = "import { pgTable, serial, varchar, integer, timestamp, text, boolean } from 'drizzle-orm/pg-core';"

// ReferencesMarker prefixes the trailing comment that carries a column reference.
const ReferencesMarker = "// references: "

// Generate renders every entity of s, in order, as one pgTable block.
// It performs no validation and never fails.
func Generate(s *schema.SchemaSpec) string {
	var sb strings.Builder

	sb.WriteString(Header)
	sb.WriteString("\n\n")

	if s == nil {
		return sb.String()
	}

	for i, e := range s.Entities {
		if i > 0 {
			sb.WriteString("\n") // Blank line between blocks
		}
		writeEntity(&sb, e)
	}

	return sb.String()
}

func writeEntity(sb *strings.Builder, e schema.Entity) {
	id := Normalize(e.Name)
	fmt.Fprintf(sb, "export const %s = pgTable('%s', {\n", id, id)

	for _, c := range e.Columns {
		sb.WriteString("  ")
		sb.WriteString(ColumnLine(c))
		sb.WriteString("\n")
	}

	sb.WriteString("});\n")
}

// ColumnLine renders one column declaration without indentation.
func ColumnLine(c schema.ColumnSpec) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %s('%s')", c.Name, MapType(c.Type), c.Name)

	// Chain order is fixed: primaryKey, notNull, unique, default
	if c.Primary {
		sb.WriteString(".primaryKey()")
	}
	if c.NotNull {
		sb.WriteString(".notNull()")
	}
	if c.Unique {
		sb.WriteString(".unique()")
	}
	if c.Default != "" {
		fmt.Fprintf(&sb, ".default(%s)", c.Default)
	}

	sb.WriteString(",")

	if c.References != "" {
		sb.WriteString(" ")
		sb.WriteString(ReferencesMarker)
		sb.WriteString(c.References)
	}

	return sb.String()
}
