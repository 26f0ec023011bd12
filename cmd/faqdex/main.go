// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/faqdex"
	"github.com/poiesic/faqdex/config"
	"github.com/poiesic/faqdex/core"
	"github.com/poiesic/faqdex/ingestion"
	"github.com/poiesic/faqdex/telemetry"
	"github.com/urfave/cli/v2"
)

// sectionOptions is the closed list of sections offered to users. The index
// itself accepts any section value; this list only gates the CLI filter so a
// typo fails fast instead of silently matching nothing.
var sectionOptions = []string{
	"About Institute", "Admission Process", "Certification", "Placement",
	"Courses Offered", "Contact Information", "Eligibility", "Facilities",
	"Demo Classes", "Batch Information", "Loan/EMI Support", "Blogs and Articles",
}

const (
	minTopK = 1
	maxTopK = 10
)

func main() {
	// A .env file is optional; environment variables win over config values.
	godotenv.Load()

	app := &cli.App{
		Name:  "faqdex",
		Usage: "Semantic FAQ retrieval over a persisted vector index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "faqdex.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build the index from a FAQ CSV file",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to FAQ CSV file (Question, Reply, Tagging columns)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to index database directory (overrides config)",
						EnvVars: []string{"FAQDEX_DB"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL (overrides config)",
						EnvVars: []string{"FAQDEX_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name (overrides config)",
						EnvVars: []string{"FAQDEX_EMBEDDING_MODEL"},
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for concurrent embedding requests",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Retrieve the best matching FAQ entries for a question",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to index database directory (overrides config)",
						EnvVars: []string{"FAQDEX_DB"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL (overrides config)",
						EnvVars: []string{"FAQDEX_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name (overrides config)",
						EnvVars: []string{"FAQDEX_EMBEDDING_MODEL"},
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   fmt.Sprintf("Number of results to return (%d-%d)", minTopK, maxTopK),
						Value:   3,
					},
					&cli.StringFlag{
						Name:    "section",
						Aliases: []string{"s"},
						Usage:   "Restrict results to one section",
					},
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "User identifier recorded in interaction logs",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate all index vectors with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to index database directory (overrides config)",
						EnvVars: []string{"FAQDEX_DB"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL (overrides config)",
						EnvVars: []string{"FAQDEX_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name (overrides config)",
						EnvVars:  []string{"FAQDEX_EMBEDDING_MODEL"},
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for concurrent embedding requests",
					},
				},
			},
			{
				Name:   "sections",
				Usage:  "List the sections present in the index",
				Action: sectionsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to index database directory (overrides config)",
						EnvVars: []string{"FAQDEX_DB"},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the YAML config and applies flag overrides.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if db := c.String("db"); db != "" {
		cfg.Index.Path = db
	}
	if host := c.String("embedding-host"); host != "" {
		cfg.Embedding.Host = host
	}
	if model := c.String("embedding-model"); model != "" {
		cfg.Embedding.Model = model
	}
	return cfg, nil
}

// openEngine opens the engine described by the config, wiring the
// file-backed telemetry sink when one is configured.
func openEngine(cfg *config.AppConfig) (*faqdex.Engine, error) {
	sinks := []telemetry.Sink{telemetry.NewSlogSink(slog.Default())}
	if cfg.Telemetry.StepLog != "" || cfg.Telemetry.EmbeddingLog != "" {
		sinks = append(sinks,
			telemetry.NewFileSink(cfg.Telemetry.StepLog, cfg.Telemetry.EmbeddingLog))
	}
	opts := []faqdex.EngineOption{
		faqdex.WithAIConfig(cfg.AIConfig()),
		faqdex.WithTelemetrySink(telemetry.NewMultiSink(sinks...)),
	}

	engine, err := faqdex.Open(cfg.Index.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", cfg.Index.Path, err)
	}
	return engine, nil
}

func buildCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	rows, err := ingestion.ReadCSVFile(c.String("csv"))
	if err != nil {
		return fmt.Errorf("failed to read FAQ source: %w", err)
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipelineOpts := []ingestion.Option{
		ingestion.WithBatchSize(cfg.Embedding.BatchSize),
	}
	if size := c.Int("pool-size"); size > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(size))
	}

	pipeline, err := engine.NewIngestionPipeline(pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Index.Path)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(os.Stderr)

	report, err := pipeline.BuildIndex(context.Background(), rows)
	if err != nil {
		return describeError(err)
	}

	fmt.Printf("Run %s: read %d rows, wrote %d records in %s\n",
		report.RunID, report.RowsRead, report.RecordsWritten, report.Elapsed.Round(time.Millisecond))
	for _, skipped := range report.Skipped {
		fmt.Printf("  skipped row %d: %s\n", skipped.Row, skipped.Reason)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipelineOpts := []ingestion.Option{
		ingestion.WithBatchSize(cfg.Embedding.BatchSize),
	}
	if size := c.Int("pool-size"); size > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(size))
	}

	pipeline, err := engine.NewIngestionPipeline(pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Index.Path)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(os.Stderr)

	report, err := pipeline.Reembed(context.Background())
	if err != nil {
		return describeError(err)
	}

	fmt.Printf("Run %s: reembedded %d records in %s\n",
		report.RunID, report.RecordsWritten, report.Elapsed.Round(time.Millisecond))
	return nil
}

func queryCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("please provide a question to search")
	}

	topK := c.Int("top-k")
	if err := validateTopK(topK); err != nil {
		return err
	}

	section := c.String("section")
	if err := validateSection(section); err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	retriever, err := engine.NewRetriever(ctx)
	if err != nil {
		return describeError(err)
	}

	results, err := retriever.Retrieve(ctx, &core.QueryRequest{
		QueryText:     question,
		TopK:          topK,
		SectionFilter: section,
		UserID:        c.String("user"),
	})
	if err != nil {
		return describeError(err)
	}

	fmt.Print(renderResults(results))

	if path := cfg.Telemetry.InteractionLog; path != "" && len(results) > 0 {
		if err := telemetry.AppendResults(path, time.Now(), results); err != nil {
			slog.Default().Warn("failed to append interaction log", "path", path, "err", err)
		}
	}
	return nil
}

func sectionsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	sections, err := engine.Index().Sections(context.Background())
	if err != nil {
		return describeError(err)
	}

	if len(sections) == 0 {
		fmt.Println("The index is empty. Run 'faqdex build' first.")
		return nil
	}
	for _, section := range sections {
		fmt.Println(section)
	}
	return nil
}

func validateTopK(topK int) error {
	if topK < minTopK || topK > maxTopK {
		return fmt.Errorf("top-k must be between %d and %d, got %d", minTopK, maxTopK, topK)
	}
	return nil
}

func validateSection(section string) error {
	if section == "" {
		return nil
	}
	for _, option := range sectionOptions {
		if section == option {
			return nil
		}
	}
	return fmt.Errorf("unknown section %q: valid sections are %s",
		section, strings.Join(sectionOptions, ", "))
}

// renderResults formats retrieval results for the terminal, one block per
// result with its section and original question.
func renderResults(results []*core.SearchResult) string {
	if len(results) == 0 {
		return "No relevant answer found. Please try a different question.\n"
	}

	var sb strings.Builder
	for i, result := range results {
		fmt.Fprintf(&sb, "Result %d (score %.3f)\n", i+1, result.Score)
		fmt.Fprintf(&sb, "Section: %s\n", result.Record.Section)
		fmt.Fprintf(&sb, "Original Question: %s\n", result.Record.Question)
		fmt.Fprintf(&sb, "%s\n\n", result.Record.Text)
	}
	return sb.String()
}

// describeError maps engine error kinds onto actionable messages.
func describeError(err error) error {
	switch {
	case errors.Is(err, core.ErrIndexNotFound):
		return fmt.Errorf("no index found, run 'faqdex build' first")
	case errors.Is(err, core.ErrModelMismatch):
		return fmt.Errorf("the index was built with a different embedding model: %w", err)
	case errors.Is(err, core.ErrEmbedding):
		return fmt.Errorf("the embedding service is unavailable: %w", err)
	case errors.Is(err, core.ErrIndexCorrupt):
		return fmt.Errorf("the index is corrupt, rebuild it with 'faqdex build': %w", err)
	default:
		return err
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
