package telemetry

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlogSinkLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewSlogSink(logger)

	sink.PipelineStep(StepEvent{
		Timestamp:     time.Now(),
		Step:          StepRetrieval,
		UserID:        "u1",
		InputText:     "what is the fee structure",
		InputTokens:   6,
		OutputTokens:  42,
		SectionFilter: "Courses Offered",
		ResultCount:   3,
		Elapsed:       12 * time.Millisecond,
	})
	sink.EmbeddingCreated(EmbeddingEvent{
		Timestamp:  time.Now(),
		Model:      "all-minilm",
		CorpusSize: 80,
		Elapsed:    time.Second,
	})

	out := buf.String()
	assert.Contains(t, out, "pipeline step")
	assert.Contains(t, out, "step="+StepRetrieval)
	assert.Contains(t, out, "component=telemetry")
	assert.Contains(t, out, "result_count=3")
	assert.Contains(t, out, "embeddings created")
	assert.Contains(t, out, "corpus_size=80")
}

func TestSlogSinkQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	sink := NewSlogSink(logger)

	sink.PipelineStep(StepEvent{Step: StepIngestion})
	sink.EmbeddingCreated(EmbeddingEvent{Model: "all-minilm"})

	assert.Empty(t, buf.String())
}
