// Package ingestion builds the searchable index from FAQ source rows.
//
// The pipeline normalizes and validates raw rows, skips the ones that cannot
// be ingested, embeds the surviving corpus in concurrent batches, and atomically
// replaces the persisted index through storage.IndexRepository.Rebuild. A run
// either replaces the whole index or leaves the previous one untouched.
package ingestion
