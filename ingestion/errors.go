package ingestion

import "errors"

var (
	// ErrIndexRequired is returned when a pipeline is created without an index.
	ErrIndexRequired = errors.New("index repository is required")

	// ErrProviderRequired is returned when a pipeline is created without an AI provider.
	ErrProviderRequired = errors.New("ai provider is required")
)
