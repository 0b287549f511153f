// Package mcpserver exposes the schema operations as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tordrt/schemasketch/internal/extractor"
	"github.com/tordrt/schemasketch/internal/formatter"
	"github.com/tordrt/schemasketch/internal/generator"
	"github.com/tordrt/schemasketch/internal/idea"
	"github.com/tordrt/schemasketch/internal/specfile"
)

// New builds the MCP server with every tool registered
func New(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"schemasketch",
		version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("generate_schema",
		mcp.WithDescription("Generate Drizzle pgTable declarations from a JSON or YAML schema spec"),
		mcp.WithString("spec",
			mcp.Required(),
			mcp.Description("Schema spec document: {entities: [{name, columns: [{name, type, primary, notNull, unique, default, references}]}]}"),
		),
		mcp.WithString("format",
			mcp.Description("Spec encoding: 'auto' (default), 'json' or 'yaml'"),
			mcp.Enum("auto", "json", "yaml"),
		),
	), handleGenerate)

	s.AddTool(mcp.NewTool("extract_model",
		mcp.WithDescription("Extract tables, columns and relations from Drizzle pgTable declarations"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Drizzle schema source"),
		),
	), handleExtract)

	s.AddTool(mcp.NewTool("layout_model",
		mcp.WithDescription("Extract the model from Drizzle source and place it on a diagram grid"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Drizzle schema source"),
		),
	), handleLayout)

	s.AddTool(mcp.NewTool("render_model",
		mcp.WithDescription("Render the model recovered from Drizzle source"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Drizzle schema source"),
		),
		mcp.WithString("format",
			mcp.Description("Output format (default: mermaid)"),
			mcp.Enum(formatter.Formats...),
		),
	), handleRender)

	s.AddTool(mcp.NewTool("quick_idea",
		mcp.WithDescription("Expand a sketch like 'User(id,name), Post(id,userId)' into a spec and its Drizzle source"),
		mcp.WithString("idea",
			mcp.Required(),
			mcp.Description("Comma separated Name(field, ...) groups"),
		),
	), handleIdea)

	return s
}

// Serve runs the server on stdin/stdout until the client disconnects
func Serve(version string) error {
	slog.Info("starting schemasketch mcp server")
	return server.ServeStdio(New(version))
}

func handleGenerate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := request.RequireString("spec")
	if err != nil {
		return mcp.NewToolResultError("spec parameter is required"), nil
	}

	text, err := generateCore(doc, request.GetString("format", "auto"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func handleExtract(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	out, err := marshal(extractor.Extract(text))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func handleLayout(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	out, err := renderCore(text, formatter.FormatJSON)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func handleRender(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	out, err := renderCore(text, request.GetString("format", formatter.FormatMermaid))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func handleIdea(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sketch, err := request.RequireString("idea")
	if err != nil {
		return mcp.NewToolResultError("idea parameter is required"), nil
	}

	out, err := ideaCore(sketch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

// generateCore decodes a spec document and returns its Drizzle source
func generateCore(doc, format string) (string, error) {
	f, err := specfile.ParseFormat(format)
	if err != nil {
		return "", err
	}
	spec, err := specfile.Parse([]byte(doc), f)
	if err != nil {
		return "", err
	}
	return generator.Generate(spec), nil
}

// renderCore extracts text and renders the model in format
func renderCore(text, format string) (string, error) {
	var buf bytes.Buffer
	f, err := formatter.New(format, &buf)
	if err != nil {
		return "", err
	}
	if err := f.Format(extractor.Extract(text)); err != nil {
		return "", fmt.Errorf("failed to render model: %w", err)
	}
	return buf.String(), nil
}

// ideaCore expands a sketch into a spec document followed by its source
func ideaCore(sketch string) (string, error) {
	spec := idea.Expand(sketch)
	doc, err := marshal(spec)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\n\n%s", doc, generator.Generate(spec)), nil
}

func marshal(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	return string(out), nil
}
