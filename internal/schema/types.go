package schema

// SchemaSpec is the structured description of a data model, consumed once by the generator
type SchemaSpec struct {
	Entities []Entity `json:"entities" yaml:"entities"`
}

// Entity is one table-to-be in a SchemaSpec
type Entity struct {
	Name    string       `json:"name" yaml:"name"`
	Columns []ColumnSpec `json:"columns" yaml:"columns"`
}

// ColumnSpec describes a single column of an Entity
type ColumnSpec struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Primary    bool   `json:"primary,omitempty" yaml:"primary,omitempty"`
	NotNull    bool   `json:"notNull,omitempty" yaml:"notNull,omitempty"`
	Unique     bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	Default    Expr   `json:"default,omitempty" yaml:"default,omitempty"`
	References string `json:"references,omitempty" yaml:"references,omitempty"` // "Entity.column"
}

// Model is the structure recovered from canonical text
type Model struct {
	Tables    []Table    `json:"tables"`
	Relations []Relation `json:"relations"`
}

// Table represents a recovered table declaration
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column represents a recovered column
type Column struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Constraints []string `json:"constraints"`
}

// Constraint tags carried by Column.Constraints
const (
	ConstraintPK            = "PK"
	ConstraintNotNull       = "NOT NULL"
	ConstraintUnique        = "UNIQUE"
	ConstraintDefaultPrefix = "DEFAULT "
)

// Relation represents a reference annotation between two tables
type Relation struct {
	From         string `json:"from"`
	To           string `json:"to"` // lower-cased
	Label        string `json:"label"`
	Column       string `json:"column"`
	TargetColumn string `json:"targetColumn,omitempty"`
}

// Layout is the 2-D placement of a Model
type Layout struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node places one table on the grid
type Node struct {
	ID    string `json:"id"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Table Table  `json:"table"`
}

// Edge connects two nodes by index into Layout.Nodes
type Edge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// HasConstraint reports whether the column carries the given tag
func (c Column) HasConstraint(tag string) bool {
	for _, t := range c.Constraints {
		if t == tag {
			return true
		}
	}
	return false
}

// Default returns the DEFAULT expression and whether one is present
func (c Column) Default() (string, bool) {
	for _, t := range c.Constraints {
		if len(t) > len(ConstraintDefaultPrefix) && t[:len(ConstraintDefaultPrefix)] == ConstraintDefaultPrefix {
			return t[len(ConstraintDefaultPrefix):], true
		}
	}
	return "", false
}

// Table returns the table with the given name, or nil
func (m *Model) Table(name string) *Table {
	for i := range m.Tables {
		if m.Tables[i].Name == name {
			return &m.Tables[i]
		}
	}
	return nil
}

// RelationsFrom returns relations whose source is the given table
func (m *Model) RelationsFrom(name string) []Relation {
	var out []Relation
	for _, r := range m.Relations {
		if r.From == name {
			out = append(out, r)
		}
	}
	return out
}
