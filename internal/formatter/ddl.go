package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/schemasketch/internal/schema"
)

// DDLFormatter writes PostgreSQL CREATE TABLE statements for a model.
// Statements are emitted in table order followed by one ALTER TABLE per
// relation whose target table and column are declared.
type DDLFormatter struct {
	writer io.Writer
	schema string
}

// NewDDLFormatter creates a new DDL formatter. pgSchema may be empty.
func NewDDLFormatter(w io.Writer, pgSchema string) *DDLFormatter {
	return &DDLFormatter{writer: w, schema: pgSchema}
}

// Format writes the DDL for m
func (f *DDLFormatter) Format(m *schema.Model) error {
	var sb strings.Builder

	for _, t := range m.Tables {
		sb.WriteString(f.createTable(t))
		sb.WriteString(";\n\n")
	}

	for _, rel := range m.Relations {
		stmt, ok := f.foreignKey(m, rel)
		if !ok {
			continue
		}
		sb.WriteString(stmt)
		sb.WriteString(";\n")
	}

	_, err := io.WriteString(f.writer, sb.String())
	return err
}

func (f *DDLFormatter) createTable(t schema.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", f.tableIdent(t.Name))

	var pk []string
	for i, col := range t.Columns {
		fmt.Fprintf(&b, "  %s %s", pgx.Identifier{col.Name}.Sanitize(), col.Type)

		if col.HasConstraint(schema.ConstraintNotNull) {
			b.WriteString(" NOT NULL")
		}
		if col.HasConstraint(schema.ConstraintUnique) {
			b.WriteString(" UNIQUE")
		}
		if expr, ok := col.Default(); ok {
			fmt.Fprintf(&b, " DEFAULT %s", expr)
		}
		if col.HasConstraint(schema.ConstraintPK) {
			pk = append(pk, pgx.Identifier{col.Name}.Sanitize())
		}

		if i < len(t.Columns)-1 || len(pk) > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	if len(pk) > 0 {
		fmt.Fprintf(&b, "  PRIMARY KEY (%s)\n", strings.Join(pk, ", "))
	}

	b.WriteString(")")
	return b.String()
}

func (f *DDLFormatter) foreignKey(m *schema.Model, rel schema.Relation) (string, bool) {
	if rel.TargetColumn == "" {
		return "", false
	}

	var target *schema.Table
	for i := range m.Tables {
		if strings.ToLower(m.Tables[i].Name) == rel.To {
			target = &m.Tables[i]
		}
	}
	if target == nil {
		return "", false
	}

	found := false
	for _, col := range target.Columns {
		if col.Name == rel.TargetColumn {
			found = true
			break
		}
	}
	if !found {
		return "", false
	}

	constraint := fmt.Sprintf("%s_%s_fkey", rel.From, rel.Column)
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		f.tableIdent(rel.From),
		pgx.Identifier{constraint}.Sanitize(),
		pgx.Identifier{rel.Column}.Sanitize(),
		f.tableIdent(target.Name),
		pgx.Identifier{rel.TargetColumn}.Sanitize()), true
}

func (f *DDLFormatter) tableIdent(name string) string {
	if f.schema == "" {
		return pgx.Identifier{name}.Sanitize()
	}
	return pgx.Identifier{f.schema, name}.Sanitize()
}
