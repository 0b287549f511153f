package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemasketch/internal/config"
	"github.com/tordrt/schemasketch/internal/generator"
	"github.com/tordrt/schemasketch/internal/schema"
)

const sampleSpec = `{
  "entities": [
    {"name": "User", "columns": [{"name": "id", "type": "serial", "primary": true}]},
    {"name": "Post", "columns": [
      {"name": "id", "type": "serial", "primary": true},
      {"name": "userId", "type": "integer", "references": "User.id"}
    ]}
  ]
}`

type envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func newTestRouter(t *testing.T, maxBody int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	if maxBody > 0 {
		cfg.Server.MaxBodyBytes = maxBody
	}
	return NewRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func textBody(t *testing.T, text string) string {
	t.Helper()
	b, err := json.Marshal(TextRequest{Text: text})
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t, 0), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGenerate(t *testing.T) {
	router := newTestRouter(t, 0)

	w := do(t, router, http.MethodPost, "/api/v1/generate", sampleSpec)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[GenerateResponse](t, w)
	assert.Equal(t, "success", resp.Status)
	assert.True(t, strings.HasPrefix(resp.Data.Text, generator.Header))
	assert.Contains(t, resp.Data.Text, "userId: integer('userId'), // references: User.id")
}

func TestGenerateYAML(t *testing.T) {
	router := newTestRouter(t, 0)
	doc := "entities:\n  - name: Tag\n    columns:\n      - {name: label, type: text, notNull: true}\n"

	w := do(t, router, http.MethodPost, "/api/v1/generate?format=yaml", doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[GenerateResponse](t, w)
	assert.Contains(t, resp.Data.Text, "label: text('label').notNull(),")
}

func TestGenerateErrors(t *testing.T) {
	router := newTestRouter(t, 0)

	tests := []struct {
		name    string
		target  string
		body    string
		message string
	}{
		{"empty body", "/api/v1/generate", "", "Invalid schema spec"},
		{"malformed json", "/api/v1/generate?format=json", "{", "Invalid schema spec"},
		{"unknown format", "/api/v1/generate?format=xml", sampleSpec, "Unsupported spec format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decode[any](t, w)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.message, resp.Message)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	w := do(t, newTestRouter(t, 0), http.MethodPost, "/api/v1/roundtrip", sampleSpec)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[LayoutResponse](t, w)
	require.Len(t, resp.Data.Model.Tables, 2)
	assert.Equal(t, "user", resp.Data.Model.Tables[0].Name)
	assert.Equal(t, "post", resp.Data.Model.Tables[1].Name)
	require.Len(t, resp.Data.Layout.Edges, 1)
	assert.Equal(t, 1, resp.Data.Layout.Edges[0].From)
	assert.Equal(t, 0, resp.Data.Layout.Edges[0].To)
	assert.NotEmpty(t, resp.Data.Text)
}

func TestExtract(t *testing.T) {
	router := newTestRouter(t, 0)
	source := "export const user = pgTable('user', {\n  id: serial('id').primaryKey(),\n});\n"

	w := do(t, router, http.MethodPost, "/api/v1/extract", textBody(t, source))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[schema.Model](t, w)
	require.Len(t, resp.Data.Tables, 1)
	assert.Equal(t, []string{schema.ConstraintPK}, resp.Data.Tables[0].Columns[0].Constraints)
	assert.Empty(t, resp.Data.Relations)

	w = do(t, router, http.MethodPost, "/api/v1/extract", textBody(t, ""))
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[schema.Model](t, w)
	assert.Empty(t, empty.Data.Tables)

	w = do(t, router, http.MethodPost, "/api/v1/extract", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLayout(t *testing.T) {
	source := "export const a = pgTable('a', {\n});\n" +
		"export const b = pgTable('b', {\n});\n" +
		"export const c = pgTable('c', {\n});\n" +
		"export const d = pgTable('d', {\n});\n"

	w := do(t, newTestRouter(t, 0), http.MethodPost, "/api/v1/layout", textBody(t, source))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[LayoutResponse](t, w)
	require.Len(t, resp.Data.Layout.Nodes, 4)
	last := resp.Data.Layout.Nodes[3]
	assert.Equal(t, 0, last.X)
	assert.Equal(t, 240, last.Y)
	assert.Empty(t, resp.Data.Text)
}

func TestRender(t *testing.T) {
	router := newTestRouter(t, 0)
	source := "export const user = pgTable('user', {\n  id: serial('id').primaryKey(),\n});\n"

	w := do(t, router, http.MethodPost, "/api/v1/render", textBody(t, source))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[RenderResponse](t, w)
	assert.Equal(t, "mermaid", resp.Data.Format)
	assert.True(t, strings.HasPrefix(resp.Data.Output, "erDiagram\n"))

	w = do(t, router, http.MethodPost, "/api/v1/render?format=ddl", textBody(t, source))
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[RenderResponse](t, w)
	assert.Contains(t, resp.Data.Output, `CREATE TABLE "user"`)

	w = do(t, router, http.MethodPost, "/api/v1/render?format=pdf", textBody(t, source))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdea(t *testing.T) {
	w := do(t, newTestRouter(t, 0), http.MethodPost, "/api/v1/idea", textBody(t, "User(id,name), Post(id,userId)"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[IdeaResponse](t, w)
	require.Len(t, resp.Data.Spec.Entities, 2)
	assert.Equal(t, "Post", resp.Data.Spec.Entities[1].Name)
	assert.Contains(t, resp.Data.Text, "export const post = pgTable('post', {")
}

func TestBodyLimit(t *testing.T) {
	router := newTestRouter(t, 64)

	w := do(t, router, http.MethodPost, "/api/v1/extract", textBody(t, strings.Repeat("x", 256)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
