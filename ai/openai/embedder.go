package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/poiesic/faqdex/ai"
	"github.com/poiesic/faqdex/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// Failed requests are retried with exponential backoff up to the configured
// number of attempts; every request is bounded by the configured timeout.
type Embedder struct {
	embedder   embeddings.Embedder
	timeout    time.Duration
	maxRetries int
	logger     *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:   embedder,
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		logger:     slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", core.ErrEmbedding)
	}

	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: service returned no vector", core.ErrEmbedding)
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts provided", core.ErrEmbedding)
	}
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("%w: empty text at position %d", core.ErrEmbedding, i)
		}
	}

	e.logger.Debug("generating embeddings", "count", len(texts))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var vectors [][]float32
	operation := func() error {
		result, err := e.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return err
		}
		if len(result) != len(texts) {
			return backoff.Permanent(fmt.Errorf("got %d vectors for %d texts", len(result), len(texts)))
		}
		vectors = result
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second

	retry := backoff.WithMaxRetries(b, uint64(e.maxRetries))
	if err := backoff.Retry(operation, backoff.WithContext(retry, ctx)); err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		if errors.Is(err, core.ErrEmbedding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}

	return vectors, nil
}
