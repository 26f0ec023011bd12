package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMUSRoundTrip(t *testing.T) {
	text := ComposeText("Do you offer demo classes?", "Yes, book one at the front desk.")
	record := Record{
		Id:         IDFromContent(text),
		Text:       text,
		Vector:     []float32{0.1, -0.25, 0.93},
		Section:    "Demo Classes",
		Question:   "Do you offer demo classes?",
		Extra:      map[string]string{"source": "q_and_a_dataset.csv"},
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	bs := make([]byte, RecordMUS.Size(record))
	n := RecordMUS.Marshal(record, bs)
	require.Equal(t, len(bs), n)

	decoded, n, err := RecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, record, decoded)
}

func TestRecordMUSRoundTripEmptyExtra(t *testing.T) {
	text := ComposeText("Where are you located?", "Indore.")
	record := Record{
		Id:         IDFromContent(text),
		Text:       text,
		Vector:     []float32{1},
		Section:    SectionUncategorized,
		Question:   "Where are you located?",
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	bs := make([]byte, RecordMUS.Size(record))
	RecordMUS.Marshal(record, bs)

	decoded, _, err := RecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Nil(t, decoded.Extra)
	assert.Equal(t, record, decoded)
}

func TestIndexManifestMUSRoundTrip(t *testing.T) {
	manifest := IndexManifest{
		Generation:  7,
		Dimension:   384,
		Metric:      MetricCosine,
		Model:       "all-minilm",
		RecordCount: 123,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	bs := make([]byte, IndexManifestMUS.Size(manifest))
	IndexManifestMUS.Marshal(manifest, bs)

	decoded, _, err := IndexManifestMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, manifest, decoded)
}

func TestRecordMUSUnmarshalTruncated(t *testing.T) {
	text := ComposeText("A", "B")
	record := Record{Id: 1, Text: text, Vector: []float32{0.5}, Section: "About Institute", Question: "A"}

	bs := make([]byte, RecordMUS.Size(record))
	RecordMUS.Marshal(record, bs)

	_, _, err := RecordMUS.Unmarshal(bs[:3])
	assert.Error(t, err)
}
