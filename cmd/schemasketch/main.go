package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemasketch/internal/config"
	"github.com/tordrt/schemasketch/internal/extractor"
	"github.com/tordrt/schemasketch/internal/formatter"
	"github.com/tordrt/schemasketch/internal/generator"
	"github.com/tordrt/schemasketch/internal/idea"
	"github.com/tordrt/schemasketch/internal/layout"
	"github.com/tordrt/schemasketch/internal/mcpserver"
	"github.com/tordrt/schemasketch/internal/schema"
	"github.com/tordrt/schemasketch/internal/server"
	"github.com/tordrt/schemasketch/internal/specfile"
)

var version = "dev"

var (
	configPath string
	outputFile string
	outputDir  string
	format     string
	specFormat string
	tables     string
	exclude    string
	pgSchema   string
	emitSource bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "schemasketch",
	Short: "Generate Drizzle schemas from a data model and draw them as ER diagrams",
	Long: `schemasketch compiles a JSON or YAML data model into Drizzle pgTable declarations,
recovers tables, columns and relations from such declarations, and renders the
result as text, markdown, Mermaid, PostgreSQL DDL, SVG or JSON.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var generateCmd = &cobra.Command{
	Use:   "generate [spec-file]",
	Short: "Generate Drizzle declarations from a schema spec (stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

var extractCmd = &cobra.Command{
	Use:   "extract [schema-file]",
	Short: "Print the model recovered from Drizzle declarations as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

var layoutCmd = &cobra.Command{
	Use:   "layout [schema-file]",
	Short: "Print the diagram layout of Drizzle declarations as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLayout,
}

var renderCmd = &cobra.Command{
	Use:   "render [schema-file]",
	Short: "Render the model recovered from Drizzle declarations",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip [spec-file]",
	Short: "Generate declarations from a spec and render the recovered model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRoundtrip,
}

var ideaCmd = &cobra.Command{
	Use:   "idea <sketch>",
	Short: `Expand a sketch like "User(id,name), Post(id,userId)" into a starter spec`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIdea,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as a Model Context Protocol server on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpserver.Serve(version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	generateCmd.Flags().StringVar(&specFormat, "spec-format", "", "Spec encoding: auto, json or yaml (default from config)")
	roundtripCmd.Flags().StringVar(&specFormat, "spec-format", "", "Spec encoding: auto, json or yaml (default from config)")

	for _, c := range []*cobra.Command{renderCmd, roundtripCmd} {
		c.Flags().StringVarP(&format, "format", "f", "", "Output format: "+strings.Join(formatter.Formats, ", ")+" (default from config)")
		c.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")
		c.Flags().StringVar(&pgSchema, "pg-schema", "", "PostgreSQL schema for the ddl format")
	}
	for _, c := range []*cobra.Command{extractCmd, layoutCmd, renderCmd, roundtripCmd} {
		c.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
		c.Flags().StringVar(&exclude, "exclude", "", "Tables to leave out (comma-separated, optional)")
	}
	ideaCmd.Flags().BoolVar(&emitSource, "generate", false, "Print the generated declarations instead of the spec")

	rootCmd.AddCommand(generateCmd, extractCmd, layoutCmd, renderCmd, roundtripCmd, ideaCmd, serveCmd, mcpCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	config.LoadDotenv()

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	slog.SetDefault(cfg.NewLogger())
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	spec, err := readSpec(args)
	if err != nil {
		return err
	}

	return writeOutput(func(w io.Writer) error {
		_, err := io.WriteString(w, generator.Generate(spec))
		return err
	})
}

func runExtract(cmd *cobra.Command, args []string) error {
	model, _, err := readModel(args)
	if err != nil {
		return err
	}

	return writeOutput(func(w io.Writer) error {
		return writeJSON(w, model)
	})
}

func runLayout(cmd *cobra.Command, args []string) error {
	model, _, err := readModel(args)
	if err != nil {
		return err
	}

	return writeOutput(func(w io.Writer) error {
		return writeJSON(w, layout.Compute(model))
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	model, text, err := readModel(args)
	if err != nil {
		return err
	}
	return render(model, text)
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	spec, err := readSpec(args)
	if err != nil {
		return err
	}

	text := generator.Generate(spec)
	model := extractor.Extract(text)
	filterTables(model, splitList(tables), splitList(exclude))

	if len(model.Tables) != len(spec.Entities) {
		slog.Warn("some entities did not survive the round trip",
			"entities", len(spec.Entities), "tables", len(model.Tables))
	}

	return render(model, text)
}

func runIdea(cmd *cobra.Command, args []string) error {
	spec := idea.Expand(strings.Join(args, " "))
	if len(spec.Entities) == 0 {
		return fmt.Errorf("no Name(field, ...) groups found in %q", strings.Join(args, " "))
	}

	return writeOutput(func(w io.Writer) error {
		if emitSource {
			_, err := io.WriteString(w, generator.Generate(spec))
			return err
		}
		return writeJSON(w, spec)
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	srv := server.NewServer(cfg, slog.Default())

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-quit:
	}

	slog.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server exiting")
	return nil
}

func render(model *schema.Model, text string) error {
	outFormat := format
	if outFormat == "" {
		outFormat = cfg.Output.Format
	}

	// Validate flag combinations
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	// Multi-file output
	if outputDir != "" {
		if outFormat != formatter.FormatText && outFormat != formatter.FormatMarkdown {
			return fmt.Errorf("--output-dir supports text or markdown, got %s", outFormat)
		}
		multiFormatter := formatter.NewMultiFileFormatter(outputDir, outFormat)
		multiFormatter.Source = text
		if err := multiFormatter.Format(model); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		slog.Info("wrote model files", "dir", outputDir, "tables", len(model.Tables))
		return nil
	}

	return writeOutput(func(w io.Writer) error {
		var f formatter.Formatter
		if outFormat == formatter.FormatDDL {
			schemaName := pgSchema
			if schemaName == "" {
				schemaName = cfg.Output.Schema
			}
			f = formatter.NewDDLFormatter(w, schemaName)
		} else {
			var err error
			if f, err = formatter.New(outFormat, w); err != nil {
				return err
			}
		}
		if err := f.Format(model); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	})
}

func readSpec(args []string) (*schema.SchemaSpec, error) {
	data, err := readInput(args)
	if err != nil {
		return nil, err
	}

	name := specFormat
	if name == "" {
		name = cfg.Spec.Format
	}
	f, err := specfile.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	if f == specfile.FormatAuto && len(args) > 0 {
		f = specfile.FormatForPath(args[0])
	}

	spec, err := specfile.Parse(data, f)
	if err != nil {
		return nil, err
	}
	slog.Debug("parsed spec", "entities", len(spec.Entities))
	return spec, nil
}

func readModel(args []string) (*schema.Model, string, error) {
	data, err := readInput(args)
	if err != nil {
		return nil, "", err
	}

	text := string(data)
	model := extractor.Extract(text)
	filterTables(model, splitList(tables), splitList(exclude))

	slog.Debug("extracted model", "tables", len(model.Tables), "relations", len(model.Relations))
	return model, text, nil
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func writeOutput(write func(io.Writer) error) error {
	var writer io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("failed to close output file", "error", err)
			}
		}()
		writer = f
	}
	return write(writer)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	list := strings.Split(s, ",")
	for i, t := range list {
		list[i] = strings.TrimSpace(t)
	}
	return list
}

// filterTables keeps only the tables in include (all when empty), then
// drops the ones in excludeList. Relations leaving a dropped table go too.
func filterTables(m *schema.Model, include, excludeList []string) {
	if len(include) == 0 && len(excludeList) == 0 {
		return
	}

	includeSet := make(map[string]bool, len(include))
	for _, name := range include {
		includeSet[name] = true
	}
	excludeSet := make(map[string]bool, len(excludeList))
	for _, name := range excludeList {
		excludeSet[name] = true
	}

	kept := make(map[string]bool)
	filteredTables := make([]schema.Table, 0, len(m.Tables))
	for _, table := range m.Tables {
		if len(includeSet) > 0 && !includeSet[table.Name] {
			continue
		}
		if excludeSet[table.Name] {
			continue
		}
		filteredTables = append(filteredTables, table)
		kept[table.Name] = true
	}
	m.Tables = filteredTables

	filteredRelations := make([]schema.Relation, 0, len(m.Relations))
	for _, rel := range m.Relations {
		if kept[rel.From] {
			filteredRelations = append(filteredRelations, rel)
		}
	}
	m.Relations = filteredRelations
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
