package specfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemasketch/internal/schema"
)

const exampleJSON = `{
  "entities": [
    {
      "name": "User",
      "columns": [
        { "name": "id", "type": "serial", "primary": true },
        { "name": "email", "type": "varchar(255)", "unique": true, "notNull": true },
        { "name": "createdAt", "type": "timestamp", "default": "now()" },
        { "name": "score", "type": "integer", "default": 0 },
        { "name": "active", "type": "boolean", "default": true },
        { "name": "banned", "type": "boolean", "default": false }
      ]
    },
    {
      "name": "Post",
      "columns": [
        { "name": "userId", "type": "integer", "references": "User.id" }
      ]
    }
  ]
}`

const exampleYAML = `
entities:
  - name: User
    columns:
      - {name: id, type: serial, primary: true}
      - {name: email, type: varchar(255), unique: true, notNull: true}
      - {name: createdAt, type: timestamp, default: now()}
      - {name: score, type: integer, default: 0}
      - {name: active, type: boolean, default: true}
      - {name: banned, type: boolean, default: false}
  - name: Post
    columns:
      - {name: userId, type: integer, references: User.id}
`

func TestParse(t *testing.T) {
	want := &schema.SchemaSpec{
		Entities: []schema.Entity{
			{
				Name: "User",
				Columns: []schema.ColumnSpec{
					{Name: "id", Type: "serial", Primary: true},
					{Name: "email", Type: "varchar(255)", Unique: true, NotNull: true},
					{Name: "createdAt", Type: "timestamp", Default: "now()"},
					{Name: "score", Type: "integer", Default: "0"},
					{Name: "active", Type: "boolean", Default: "true"},
					{Name: "banned", Type: "boolean"},
				},
			},
			{
				Name: "Post",
				Columns: []schema.ColumnSpec{
					{Name: "userId", Type: "integer", References: "User.id"},
				},
			},
		},
	}

	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"json explicit", exampleJSON, FormatJSON},
		{"json auto", exampleJSON, FormatAuto},
		{"yaml explicit", exampleYAML, FormatYAML},
		{"yaml auto", exampleYAML, FormatAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, want, spec)
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Parse([]byte("  \n"), FormatAuto)
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := Parse([]byte(`{"entities": [`), FormatAuto)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON spec")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("entities: [a, b"), FormatYAML)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid YAML spec")
	})

	t.Run("object default", func(t *testing.T) {
		_, err := Parse([]byte(`{"entities":[{"name":"a","columns":[{"name":"b","default":{"x":1}}]}]}`), FormatJSON)
		require.Error(t, err)
	})
}

func TestParseNoEntities(t *testing.T) {
	spec, err := Parse([]byte(`{"entities": []}`), FormatAuto)
	require.NoError(t, err)
	assert.Empty(t, spec.Entities)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "auto": FormatAuto, "JSON": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("toml")
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("spec.json"))
	assert.Equal(t, FormatYAML, FormatForPath("spec.YAML"))
	assert.Equal(t, FormatYAML, FormatForPath("dir/spec.yml"))
	assert.Equal(t, FormatAuto, FormatForPath("spec.txt"))
}
