package schemasketch

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tordrt/schemasketch/internal/schema"
)

const blogSpec = `
entities:
  - name: User
    columns:
      - {name: id, type: serial, primary: true}
      - {name: email, type: varchar(255), notNull: true, unique: true}
  - name: Post
    columns:
      - {name: id, type: serial, primary: true}
      - {name: userId, type: integer, notNull: true, references: User.id}
      - {name: published, type: boolean, default: false}
  - name: Comment
    columns:
      - {name: id, type: serial, primary: true}
      - {name: postId, type: integer, references: Post.id}
      - {name: createdAt, type: timestamp, default: now()}
`

func TestRoundTrip(t *testing.T) {
	res, err := RoundTrip([]byte(blogSpec), FormatAuto)
	if err != nil {
		t.Fatalf("RoundTrip() error: %v", err)
	}

	wantTables := []string{"user", "post", "comment"}
	if len(res.Model.Tables) != len(wantTables) {
		t.Fatalf("expected %d tables, got %d", len(wantTables), len(res.Model.Tables))
	}
	for i, name := range wantTables {
		if res.Model.Tables[i].Name != name {
			t.Errorf("table[%d] = %s, want %s", i, res.Model.Tables[i].Name, name)
		}
	}

	email := res.Model.Tables[0].Columns[1]
	if !reflect.DeepEqual(email.Constraints, []string{"NOT NULL", "UNIQUE"}) {
		t.Errorf("email constraints = %v", email.Constraints)
	}
	if email.Type != "varchar(255)" {
		t.Errorf("email type = %s", email.Type)
	}

	published := res.Model.Tables[1].Columns[2]
	if len(published.Constraints) != 0 {
		t.Errorf("false default should not produce a tag: %v", published.Constraints)
	}

	createdAt := res.Model.Tables[2].Columns[2]
	if expr, ok := createdAt.Default(); !ok || expr != "now()" {
		t.Errorf("createdAt default = %q, %v", expr, ok)
	}

	wantRelations := []schema.Relation{
		{From: "post", To: "user", Label: "userId → User.id", Column: "userId", TargetColumn: "id"},
		{From: "comment", To: "post", Label: "postId → Post.id", Column: "postId", TargetColumn: "id"},
	}
	if !reflect.DeepEqual(res.Model.Relations, wantRelations) {
		t.Errorf("relations = %+v", res.Model.Relations)
	}

	if len(res.Layout.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(res.Layout.Edges))
	}
	for _, e := range res.Layout.Edges {
		if e.From == e.To {
			t.Errorf("self edge: %+v", e)
		}
	}
}

func TestRoundTripSingleEntity(t *testing.T) {
	res, err := RoundTrip([]byte(`{"entities":[{"name":"User","columns":[{"name":"id","type":"serial","primary":true}]}]}`), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(res.Text, "export const user = pgTable('user', {") {
		t.Errorf("missing block header:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "id: serial('id').primaryKey(),") {
		t.Errorf("missing column line:\n%s", res.Text)
	}

	want := &schema.Model{
		Tables: []schema.Table{
			{Name: "user", Columns: []schema.Column{{Name: "id", Type: "serial", Constraints: []string{"PK"}}}},
		},
		Relations: []schema.Relation{},
	}
	if !reflect.DeepEqual(res.Model, want) {
		t.Errorf("model = %+v", res.Model)
	}
}

func TestRoundTripInvalid(t *testing.T) {
	for _, doc := range []string{"", "{", "entities: [a"} {
		if _, err := RoundTrip([]byte(doc), FormatAuto); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestExtractEmpty(t *testing.T) {
	m := Extract("")
	if m.Tables == nil || m.Relations == nil {
		t.Fatal("expected non-nil empty slices")
	}
	if len(m.Tables) != 0 || len(m.Relations) != 0 {
		t.Errorf("expected empty model, got %+v", m)
	}
}

func TestQuickIdea(t *testing.T) {
	text := Generate(QuickIdea("User(id, name), Post(id, userId)"))
	m := Extract(text)

	if len(m.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(m.Tables))
	}
	if m.Tables[1].Columns[1].Type != "integer" {
		t.Errorf("userId type = %s", m.Tables[1].Columns[1].Type)
	}
}

func TestRender(t *testing.T) {
	res, err := RoundTrip([]byte(blogSpec), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		format string
		want   string
	}{
		{"", "TABLE user (PK: id)"},
		{"markdown", "## comment"},
		{"mermaid", `COMMENT }o--|| POST : "postId"`},
		{"ddl", `ALTER TABLE "comment" ADD CONSTRAINT "comment_postId_fkey"`},
		{"svg", "<svg "},
		{"json", `"layout"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(res.Model, &OutputOptions{Writer: &buf, Format: tt.format}); err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}

	if err := Render(res.Model, &OutputOptions{Writer: &bytes.Buffer{}, Format: "pdf"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderMultiFile(t *testing.T) {
	res, err := RoundTrip([]byte(blogSpec), FormatAuto)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	opts := &OutputOptions{Format: "markdown", OutputDir: dir, Source: res.Text}
	if err := Render(res.Model, opts); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	for _, name := range []string{"_overview.md", "user.md", "post.md", "comment.md", "erd.mmd", "schema.ts"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	source, err := os.ReadFile(filepath.Join(dir, "schema.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(Extract(string(source)), res.Model) {
		t.Error("schema.ts does not extract to the same model")
	}

	if err := Render(res.Model, &OutputOptions{Format: "ddl", OutputDir: dir}); err == nil {
		t.Error("expected error for ddl multi-file output")
	}
}
