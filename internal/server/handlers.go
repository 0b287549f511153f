package server

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tordrt/schemasketch/internal/extractor"
	"github.com/tordrt/schemasketch/internal/formatter"
	"github.com/tordrt/schemasketch/internal/generator"
	"github.com/tordrt/schemasketch/internal/idea"
	"github.com/tordrt/schemasketch/internal/layout"
	"github.com/tordrt/schemasketch/internal/schema"
	"github.com/tordrt/schemasketch/internal/specfile"
)

// TextRequest carries canonical text, which may be empty
type TextRequest struct {
	Text string `json:"text"`
}

// GenerateResponse is returned by POST /generate
type GenerateResponse struct {
	Text string `json:"text"`
}

// LayoutResponse is returned by POST /layout and POST /roundtrip
type LayoutResponse struct {
	Text   string         `json:"text,omitempty"`
	Model  *schema.Model  `json:"model"`
	Layout *schema.Layout `json:"layout"`
}

// RenderResponse is returned by POST /render
type RenderResponse struct {
	Format string `json:"format"`
	Output string `json:"output"`
}

// IdeaResponse is returned by POST /idea
type IdeaResponse struct {
	Spec *schema.SchemaSpec `json:"spec"`
	Text string             `json:"text"`
}

// SchemaHandler serves the generate/extract/layout operations
type SchemaHandler struct {
	logger *slog.Logger
}

// NewSchemaHandler creates a handler logging through logger
func NewSchemaHandler(logger *slog.Logger) *SchemaHandler {
	return &SchemaHandler{logger: logger}
}

// Generate handles POST /api/v1/generate. The body is a JSON or YAML spec
// document; ?format= selects the decoder (auto by default).
func (h *SchemaHandler) Generate(c *gin.Context) {
	spec, ok := h.readSpec(c)
	if !ok {
		return
	}

	text := generator.Generate(spec)
	h.logger.Debug("generated schema", "entities", len(spec.Entities), "bytes", len(text))
	success(c, http.StatusOK, GenerateResponse{Text: text}, "")
}

// RoundTrip handles POST /api/v1/roundtrip: spec document in, text, model
// and layout out.
func (h *SchemaHandler) RoundTrip(c *gin.Context) {
	spec, ok := h.readSpec(c)
	if !ok {
		return
	}

	text := generator.Generate(spec)
	model := extractor.Extract(text)
	success(c, http.StatusOK, LayoutResponse{
		Text:   text,
		Model:  model,
		Layout: layout.Compute(model),
	}, "")
}

// Extract handles POST /api/v1/extract
func (h *SchemaHandler) Extract(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	model := extractor.Extract(req.Text)
	h.logger.Debug("extracted model", "tables", len(model.Tables), "relations", len(model.Relations))
	success(c, http.StatusOK, model, "")
}

// Layout handles POST /api/v1/layout
func (h *SchemaHandler) Layout(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	model := extractor.Extract(req.Text)
	success(c, http.StatusOK, LayoutResponse{Model: model, Layout: layout.Compute(model)}, "")
}

// Render handles POST /api/v1/render?format=
func (h *SchemaHandler) Render(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	format := c.DefaultQuery("format", formatter.FormatMermaid)

	var buf bytes.Buffer
	f, err := formatter.New(format, &buf)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Unsupported format")
		return
	}
	if err := f.Format(extractor.Extract(req.Text)); err != nil {
		h.logger.Error("render failed", "format", format, "error", err)
		fail(c, http.StatusInternalServerError, err, "Failed to render model")
		return
	}

	success(c, http.StatusOK, RenderResponse{Format: format, Output: buf.String()}, "")
}

// Idea handles POST /api/v1/idea
func (h *SchemaHandler) Idea(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	spec := idea.Expand(req.Text)
	success(c, http.StatusOK, IdeaResponse{Spec: spec, Text: generator.Generate(spec)}, "")
}

func (h *SchemaHandler) readSpec(c *gin.Context) (*schema.SchemaSpec, bool) {
	format, err := specfile.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Unsupported spec format")
		return nil, false
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Failed to read request body")
		return nil, false
	}

	spec, err := specfile.Parse(body, format)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid schema spec")
		return nil, false
	}
	return spec, true
}
