package telemetry

import "time"

// Step names emitted by the engine.
const (
	StepIngestion = "ingestion"
	StepRetrieval = "retrieval"
)

// StepEvent describes one completed pipeline or retrieval step.
type StepEvent struct {
	// Timestamp records when the step finished.
	Timestamp time.Time

	// Step identifies the operation, one of the Step constants.
	Step string

	// UserID identifies the caller the step ran on behalf of, if known.
	UserID string

	// InputText is the text the step operated on, such as the query.
	InputText string

	// InputTokens and OutputTokens are approximate token counts for the
	// step's input and output text.
	InputTokens  int
	OutputTokens int

	// SectionFilter is the section restriction the step ran under, if any.
	SectionFilter string

	// ResultCount is the number of results the step produced.
	ResultCount int

	// Elapsed is the wall-clock duration of the step.
	Elapsed time.Duration
}

// EmbeddingEvent describes one corpus embedding pass during index construction.
type EmbeddingEvent struct {
	// Timestamp records when the pass finished.
	Timestamp time.Time

	// Model is the embedding model the vectors were produced with.
	Model string

	// CorpusSize is the number of texts embedded.
	CorpusSize int

	// Elapsed is the wall-clock duration of the pass.
	Elapsed time.Duration
}
