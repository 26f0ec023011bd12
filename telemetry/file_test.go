package telemetry

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/faqdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestFileSinkWritesStepCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.csv")
	sink := NewFileSink(path, "")

	sink.PipelineStep(StepEvent{
		Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Step:          StepRetrieval,
		UserID:        "user-1",
		InputText:     "What courses do you offer?",
		InputTokens:   6,
		OutputTokens:  40,
		SectionFilter: "Courses Offered",
		ResultCount:   3,
		Elapsed:       120 * time.Millisecond,
	})
	sink.PipelineStep(StepEvent{Step: StepIngestion})

	rows := readCSVFile(t, path)
	require.Len(t, rows, 3) // header plus two events
	assert.Equal(t, stepHeader, rows[0])
	assert.Equal(t, "retrieval", rows[1][1])
	assert.Equal(t, "user-1", rows[1][2])
	assert.Equal(t, "Courses Offered", rows[1][6])
	assert.Equal(t, "120", rows[1][8])
	assert.Equal(t, "ingestion", rows[2][1])
}

func TestFileSinkWritesEmbeddingJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.jsonl")
	sink := NewFileSink("", path)

	sink.EmbeddingCreated(EmbeddingEvent{Model: "all-minilm", CorpusSize: 81})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var event EmbeddingEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "all-minilm", event.Model)
	assert.Equal(t, 81, event.CorpusSize)
}

func TestAppendResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interactions.csv")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	results := []*core.SearchResult{
		{Record: &core.Record{Section: "Placement", Question: "Any placement help?", Text: "Question: Any placement help?\nAnswer: Yes."}, Score: 0.9},
		{Record: &core.Record{Section: "Fees", Question: "What are the fees?", Text: "Question: What are the fees?\nAnswer: See brochure."}, Score: 0.7},
	}

	require.NoError(t, AppendResults(path, now, results))
	require.NoError(t, AppendResults(path, now, results[:1]))

	rows := readCSVFile(t, path)
	require.Len(t, rows, 4) // header written once, then three result rows
	assert.Equal(t, resultsHeader, rows[0])
	assert.Equal(t, "1", rows[1][1])
	assert.Equal(t, "Placement", rows[1][2])
	assert.Equal(t, "2", rows[2][1])
	assert.Equal(t, "1", rows[3][1])
}
