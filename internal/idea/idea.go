// Package idea expands a one-line entity sketch such as
//
//	User(id, name, email), Post(id, userId, title)
//
// into a starter SchemaSpec.
package idea

import (
	"regexp"
	"strings"

	"github.com/tordrt/schemasketch/internal/schema"
)

var (
	group      = regexp.MustCompile(`(\w+)\(([^)]*)\)`)
	fieldSplit = regexp.MustCompile(`\s*,\s*`)
)

// Expand builds one entity per Name(fields) group found in text. Fields named
// "id" become serial columns, other fields ending in "id" become integers and
// everything else varchar(255). Only a field spelled exactly "id" is primary.
func Expand(text string) *schema.SchemaSpec {
	spec := &schema.SchemaSpec{Entities: []schema.Entity{}}

	for _, m := range group.FindAllStringSubmatch(text, -1) {
		entity := schema.Entity{Name: m[1], Columns: []schema.ColumnSpec{}}

		for _, f := range fieldSplit.Split(strings.TrimSpace(m[2]), -1) {
			if f == "" {
				continue
			}
			entity.Columns = append(entity.Columns, column(f))
		}

		spec.Entities = append(spec.Entities, entity)
	}

	return spec
}

func column(field string) schema.ColumnSpec {
	lower := strings.ToLower(field)

	colType := "varchar(255)"
	switch {
	case lower == "id":
		colType = "serial"
	case strings.HasSuffix(lower, "id"):
		colType = "integer"
	}

	return schema.ColumnSpec{
		Name:    field,
		Type:    colType,
		Primary: field == "id",
	}
}
