package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/faqdex/ai"
	"github.com/poiesic/faqdex/core"
	"github.com/poiesic/faqdex/storage"
	"github.com/poiesic/faqdex/telemetry"
)

// Retriever answers FAQ queries by semantic similarity over the index.
type Retriever struct {
	index    storage.IndexRepository
	embedder ai.Embedder
	sink     telemetry.Sink
	tokens   *telemetry.TokenCounter
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithSink sets the telemetry sink that receives retrieval events.
// Default discards events.
func WithSink(sink telemetry.Sink) Option {
	return func(r *Retriever) error {
		if sink == nil {
			sink = telemetry.NopSink{}
		}
		r.sink = sink
		return nil
	}
}

// NewRetriever creates a new retriever over the given index.
func NewRetriever(index storage.IndexRepository, provider ai.Provider, opts ...Option) (*Retriever, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	r := &Retriever{
		index:    index,
		embedder: provider.Embedder(),
		sink:     telemetry.NopSink{},
		tokens:   telemetry.NewTokenCounter(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve embeds the query and returns up to TopK index records ranked by
// similarity. A section filter restricts candidates to that exact section;
// a filter matching nothing yields an empty result, not an error. Every
// completed retrieval emits one telemetry step event.
func (r *Retriever) Retrieve(ctx context.Context, request *core.QueryRequest) ([]*core.SearchResult, error) {
	if err := core.ValidateQueryRequest(request); err != nil {
		return nil, err
	}

	start := time.Now()
	query := strings.TrimSpace(request.QueryText)

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		if errors.Is(err, core.ErrEmbedding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}

	results, err := r.index.Query(ctx, vector, request.TopK, request.SectionFilter)
	if err != nil {
		r.logger.Error("error querying index", "err", err)
		return nil, err
	}

	outputTokens := 0
	for _, result := range results {
		outputTokens += r.tokens.Count(result.Record.Text)
	}

	r.sink.PipelineStep(telemetry.StepEvent{
		Timestamp:     time.Now().UTC(),
		Step:          telemetry.StepRetrieval,
		UserID:        request.UserID,
		InputText:     query,
		InputTokens:   r.tokens.Count(query),
		OutputTokens:  outputTokens,
		SectionFilter: request.SectionFilter,
		ResultCount:   len(results),
		Elapsed:       time.Since(start),
	})

	r.logger.Debug("retrieval complete",
		"top_k", request.TopK,
		"section_filter", request.SectionFilter,
		"result_count", len(results),
		"elapsed", time.Since(start))

	return results, nil
}
