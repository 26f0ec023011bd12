package storage

import (
	"testing"
	"time"

	"github.com/poiesic/faqdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSerializationRoundTrip(t *testing.T) {
	text := core.ComposeText("Is there EMI support?", "Yes, zero-cost EMI is available.")
	record := &core.Record{
		Id:         core.IDFromContent(text),
		Text:       text,
		Vector:     []float32{0.12, 0.34, -0.56},
		Section:    "Loan/EMI Support",
		Question:   "Is there EMI support?",
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalRecord(record)
	decoded, err := UnmarshalRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestManifestSerializationRoundTrip(t *testing.T) {
	manifest := &core.IndexManifest{
		Generation:  2,
		Dimension:   384,
		Metric:      core.MetricCosine,
		Model:       "all-minilm",
		RecordCount: 42,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalManifest(manifest)
	decoded, err := UnmarshalManifest(data)
	require.NoError(t, err)
	assert.Equal(t, manifest, decoded)
}

func TestIDSerializationRoundTrip(t *testing.T) {
	id := core.IDFromContent("some content")
	decoded, err := UnmarshalID(MarshalID(id))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestUnmarshalRecordGarbage(t *testing.T) {
	_, err := UnmarshalRecord([]byte{0xff})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestUnmarshalManifestGarbage(t *testing.T) {
	_, err := UnmarshalManifest([]byte{0xff, 0x01})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
