package storage

import (
	"context"

	"github.com/poiesic/faqdex/core"
)

// IndexRepository provides access to a persisted FAQ index.
// Implementations must be thread-safe and support concurrent access.
type IndexRepository interface {
	// Manifest returns the manifest of the current index generation.
	// Returns core.ErrIndexNotFound if no index has been built yet, and
	// core.ErrIndexCorrupt if the persisted manifest cannot be decoded.
	Manifest(ctx context.Context) (*core.IndexManifest, error)

	// Rebuild atomically replaces the entire index with the given records.
	// The manifest is committed last: until it is, concurrent queries keep
	// seeing the prior index, and any failure leaves the prior index intact.
	// The manifest's Generation field is assigned by the implementation.
	Rebuild(ctx context.Context, manifest *core.IndexManifest, records []*core.Record) error

	// GetRecord retrieves a single record by ID from the current generation.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.Record, error)

	// GetRecords retrieves multiple records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error)

	// AllRecords returns every record in the current generation, ordered by
	// ascending ID. Returns core.ErrIndexNotFound if no index has been built.
	AllRecords(ctx context.Context) ([]*core.Record, error)

	// Sections returns the distinct section values present in the index,
	// sorted ascending. An unbuilt index yields an empty slice.
	Sections(ctx context.Context) ([]string, error)

	// Query scores every candidate record against the query vector and
	// returns up to topK results ordered by descending score, ties broken by
	// ascending ID. A non-empty section restricts candidates to records whose
	// Section equals it exactly (case-sensitive); a filter matching nothing
	// yields an empty result, not an error. Runs against a single consistent
	// snapshot of the index.
	Query(ctx context.Context, vector []float32, topK int, section string) ([]*core.SearchResult, error)

	// Close closes the repository. Further calls return ErrStorageClosed.
	Close() error
}
