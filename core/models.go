package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for index records.
// It is derived from record content using BLAKE2b hashing, so identical
// content always maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SectionUncategorized is the section assigned to rows that carry no tag.
const SectionUncategorized = "Uncategorized"

// MetricCosine is the similarity metric recorded in the index manifest.
// Vectors are L2-normalized at write time, so scoring reduces to a dot product.
const MetricCosine = "cosine"

// Record is a single embedded FAQ entry. Records are write-once: they are
// created during ingestion and never mutated afterwards.
type Record struct {
	Id         ID
	Text       string            // canonical document string, "Question: {q}\nAnswer: {a}"
	Vector     []float32         // L2-normalized embedding, dimension fixed per index
	Section    string            // category tag, never empty
	Question   string            // original question text
	Extra      map[string]string // open extension mapping, ignored by the engine
	InsertedAt time.Time
}

// ComposeText builds the canonical document string for a question/reply pair.
func ComposeText(question, reply string) string {
	return "Question: " + question + "\nAnswer: " + reply
}

// IndexManifest describes a persisted index: the metadata needed to reopen it
// without re-embedding. The manifest is committed last during a rebuild, so a
// generation it points at is always fully written.
type IndexManifest struct {
	Generation  uint64
	Dimension   int
	Metric      string
	Model       string // embedding model identifier used at build time
	RecordCount int
	CreatedAt   time.Time
}

// QueryRequest describes a single retrieval call.
type QueryRequest struct {
	QueryText     string
	TopK          int
	SectionFilter string // exact section match; empty means no filter
	UserID        string // optional, carried into telemetry only
}

// SearchResult pairs a record with its similarity score.
type SearchResult struct {
	Record *Record
	Score  float32
}

// SourceRow is one raw question/answer row from the corpus source.
type SourceRow struct {
	Question string
	Reply    string
	Tag      string
}

// SkippedRow records why an input row was not ingested.
type SkippedRow struct {
	Row    int // 1-based position in the input sequence
	Reason string
}

// IngestionReport summarizes one index build run.
type IngestionReport struct {
	RunID          string
	RowsRead       int
	RowsSkipped    int
	Skipped        []SkippedRow
	RecordsWritten int
	Elapsed        time.Duration
}
