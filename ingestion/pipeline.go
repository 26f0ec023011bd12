package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqdex/ai"
	"github.com/poiesic/faqdex/core"
	"github.com/poiesic/faqdex/storage"
	"github.com/poiesic/faqdex/telemetry"
)

// defaultBatchSize is the number of texts sent to the embedding service
// per request.
const defaultBatchSize = 32

// Pipeline builds the searchable index from FAQ source rows.
// Embedding requests run concurrently on a worker pool.
type Pipeline struct {
	index     storage.IndexRepository
	provider  ai.Provider
	pool      *ants.Pool
	batchSize int
	sink      telemetry.Sink
	tokens    *telemetry.TokenCounter
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding requests.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of texts per embedding request.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithSink sets the telemetry sink that receives build events.
// Default discards events.
func WithSink(sink telemetry.Sink) Option {
	return func(p *Pipeline) error {
		if sink == nil {
			sink = telemetry.NopSink{}
		}
		p.sink = sink
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline writing to the given index.
func NewPipeline(index storage.IndexRepository, provider ai.Provider, opts ...Option) (*Pipeline, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		index:     index,
		provider:  provider,
		pool:      pool,
		batchSize: defaultBatchSize,
		sink:      telemetry.NopSink{},
		tokens:    telemetry.NewTokenCounter(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// entry is a source row that survived normalization.
type entry struct {
	id       core.ID
	text     string
	section  string
	question string
}

// BuildIndex embeds the given rows and atomically replaces the persisted
// index with the result. Rows with an empty question or reply are skipped,
// as are rows whose composed text duplicates an earlier row; skips are
// reported, not fatal. If every row is skipped, or embedding fails, the
// previous index is left untouched and an error is returned.
func (p *Pipeline) BuildIndex(ctx context.Context, rows []core.SourceRow) (*core.IngestionReport, error) {
	start := time.Now()
	report := &core.IngestionReport{
		RunID:    uuid.NewString(),
		RowsRead: len(rows),
	}

	entries := p.prepare(rows, report)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no ingestible rows", core.ErrIngestion)
	}

	p.logger.Info("building index",
		"run_id", report.RunID,
		"rows_read", report.RowsRead,
		"rows_skipped", report.RowsSkipped,
		"corpus_size", len(entries))

	vectors, err := p.embedCorpus(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("embedding corpus: %w", err)
	}

	dimension := len(vectors[0])
	records := make([]*core.Record, len(entries))
	for i, e := range entries {
		vector := vectors[i]
		if len(vector) != dimension {
			return nil, fmt.Errorf("%w: inconsistent embedding dimensions %d and %d",
				core.ErrIngestion, dimension, len(vector))
		}
		if !core.NormalizeL2(vector) {
			return nil, fmt.Errorf("%w: zero-norm embedding for row %q", core.ErrIngestion, e.question)
		}
		records[i] = &core.Record{
			Id:       e.id,
			Text:     e.text,
			Vector:   vector,
			Section:  e.section,
			Question: e.question,
		}
	}

	manifest := &core.IndexManifest{
		Dimension: dimension,
		Metric:    core.MetricCosine,
		Model:     p.provider.Model(),
		CreatedAt: time.Now().UTC(),
	}
	if err := p.index.Rebuild(ctx, manifest, records); err != nil {
		return nil, err
	}

	report.RecordsWritten = len(records)
	report.Elapsed = time.Since(start)

	p.sink.PipelineStep(telemetry.StepEvent{
		Timestamp:   time.Now().UTC(),
		Step:        telemetry.StepIngestion,
		InputTokens: p.corpusTokens(entries),
		ResultCount: report.RecordsWritten,
		Elapsed:     report.Elapsed,
	})

	p.logger.Info("index built",
		"run_id", report.RunID,
		"records_written", report.RecordsWritten,
		"dimension", dimension,
		"elapsed", report.Elapsed)

	return report, nil
}

// prepare normalizes rows, recording skips on the report. Row numbers in
// skip reasons are 1-based data positions.
func (p *Pipeline) prepare(rows []core.SourceRow, report *core.IngestionReport) []entry {
	seen := make(map[core.ID]struct{}, len(rows))
	entries := make([]entry, 0, len(rows))

	skip := func(row int, reason string) {
		report.Skipped = append(report.Skipped, core.SkippedRow{Row: row, Reason: reason})
		p.logger.Warn("skipping row", "row", row, "reason", reason)
	}

	for i, row := range rows {
		rowNum := i + 1
		question := strings.TrimSpace(row.Question)
		reply := strings.TrimSpace(row.Reply)
		section := strings.TrimSpace(row.Tag)

		if question == "" {
			skip(rowNum, "empty question")
			continue
		}
		if reply == "" {
			skip(rowNum, "empty reply")
			continue
		}
		if section == "" {
			section = core.SectionUncategorized
		}

		text := core.ComposeText(question, reply)
		id := core.IDFromContent(text)
		if _, dup := seen[id]; dup {
			skip(rowNum, "duplicate of an earlier row")
			continue
		}
		seen[id] = struct{}{}

		entries = append(entries, entry{
			id:       id,
			text:     text,
			section:  section,
			question: question,
		})
	}

	report.RowsSkipped = len(report.Skipped)
	return entries
}

// embedCorpus embeds all entry texts in concurrent batches, preserving
// input order. The first batch error wins and fails the whole corpus.
func (p *Pipeline) embedCorpus(ctx context.Context, entries []entry) ([][]float32, error) {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.text
	}

	embedStart := time.Now()
	embedder := p.provider.Embedder()
	vectors := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for offset := 0; offset < len(texts); offset += p.batchSize {
		batchStart, batchEnd := offset, min(offset+p.batchSize, len(texts))

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()

			if failed() || ctx.Err() != nil {
				return
			}

			batch, err := embedder.EmbedTexts(ctx, texts[batchStart:batchEnd])
			if err != nil {
				setErr(err)
				return
			}
			copy(vectors[batchStart:batchEnd], batch)
		})
		if err != nil {
			wg.Done()
			setErr(err)
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.sink.EmbeddingCreated(telemetry.EmbeddingEvent{
		Timestamp:  time.Now().UTC(),
		Model:      p.provider.Model(),
		CorpusSize: len(texts),
		Elapsed:    time.Since(embedStart),
	})

	return vectors, nil
}

func (p *Pipeline) corpusTokens(entries []entry) int {
	total := 0
	for _, e := range entries {
		total += p.tokens.Count(e.text)
	}
	return total
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
