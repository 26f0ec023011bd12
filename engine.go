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


package faqdex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/faqdex/ai"
	"github.com/poiesic/faqdex/ai/openai"
	"github.com/poiesic/faqdex/core"
	"github.com/poiesic/faqdex/ingestion"
	"github.com/poiesic/faqdex/search"
	"github.com/poiesic/faqdex/storage"
	"github.com/poiesic/faqdex/storage/badger"
	"github.com/poiesic/faqdex/telemetry"
)

// Engine is the top-level handle over the persisted FAQ index and its
// embedding provider. It wires the storage backend, the index repository,
// and the AI provider together, and hands out ingestion pipelines and
// retrievers that share them.
type Engine struct {
	backend  *badger.Backend
	index    storage.IndexRepository
	provider ai.Provider
	sink     telemetry.Sink
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	sink     telemetry.Sink
	logger   *slog.Logger
}

// WithAIConfig sets the embedding service configuration used to build the
// default OpenAI-compatible provider. Ignored when WithProvider is given.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider supplies a pre-built AI provider instead of the default
// OpenAI-compatible one. The engine takes ownership and closes it.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithTelemetrySink sets the sink that receives ingestion and retrieval
// events. Default discards events.
func WithTelemetrySink(sink telemetry.Sink) EngineOption {
	return func(o *engineOptions) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open opens or creates the engine's storage at filePath.
func Open(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		sink:     telemetry.NopSink{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	index := badger.NewIndex(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			index.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Engine{
		backend:  backend,
		index:    index,
		provider: provider,
		sink:     options.sink,
		logger:   options.logger,
	}, nil
}

// Close releases the engine's provider and storage.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.index.Close(); err != nil {
		e.logger.Error("error closing index", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Index returns the engine's index repository.
func (e *Engine) Index() storage.IndexRepository {
	return e.index
}

// Provider returns the engine's AI provider.
func (e *Engine) Provider() ai.Provider {
	return e.provider
}

// NewIngestionPipeline creates an ingestion pipeline over the engine's
// index and provider. The engine's telemetry sink is wired in unless the
// options override it.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithSink(e.sink),
		ingestion.WithLogger(e.logger),
	}
	return ingestion.NewPipeline(e.index, e.provider, append(base, opts...)...)
}

// NewRetriever creates a retriever over the engine's index. It refuses to
// serve an index built with a different embedding model than the engine's
// provider reports, since the two vector spaces are not comparable.
func (e *Engine) NewRetriever(ctx context.Context, opts ...search.Option) (*search.Retriever, error) {
	manifest, err := e.index.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	if manifest.Model != e.provider.Model() {
		return nil, fmt.Errorf("%w: index built with %q, provider uses %q",
			core.ErrModelMismatch, manifest.Model, e.provider.Model())
	}

	base := []search.Option{
		search.WithSink(e.sink),
		search.WithLogger(e.logger),
	}
	return search.NewRetriever(e.index, e.provider, append(base, opts...)...)
}

// HasIndex reports whether a built index is present in storage.
func (e *Engine) HasIndex(ctx context.Context) (bool, error) {
	_, err := e.index.Manifest(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, core.ErrIndexNotFound) {
		return false, nil
	}
	return false, err
}
