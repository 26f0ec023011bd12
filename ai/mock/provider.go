package mock

import "github.com/poiesic/faqdex/ai"

// Provider is a test double for ai.Provider.
type Provider struct {
	embedder *Embedder
	model    string
	closed   bool
}

// NewProvider creates a mock provider with a default deterministic embedder
// reporting the given model identity. An empty model defaults to "mock-embed".
func NewProvider(model string) *Provider {
	if model == "" {
		model = "mock-embed"
	}
	return &Provider{
		embedder: NewEmbedder(),
		model:    model,
	}
}

// Embedder returns the mock embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// MockEmbedder returns the concrete embedder for test assertions
// and behavior injection.
func (p *Provider) MockEmbedder() *Embedder {
	return p.embedder
}

// Model returns the configured model identity.
func (p *Provider) Model() string {
	return p.model
}

// Close marks the provider closed.
func (p *Provider) Close() error {
	p.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (p *Provider) IsClosed() bool {
	return p.closed
}
