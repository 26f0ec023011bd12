// Package search answers FAQ queries against the persisted index.
//
// A Retriever embeds the query text through the configured AI provider,
// runs a cosine similarity search over the index, and returns the top
// matches ranked by score. Each retrieval emits one telemetry step event,
// including retrievals that produce no results.
package search
