package ingestion

import (
	"context"
	"testing"

	"github.com/poiesic/faqdex/ai/mock"
	"github.com/poiesic/faqdex/core"
	"github.com/poiesic/faqdex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReembed(t *testing.T) {
	index, backend, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer func() {
		index.Close()
		backend.Close()
	}()

	ctx := context.Background()
	rows := []core.SourceRow{
		{Question: "What courses do you offer?", Reply: "Data science.", Tag: "Courses Offered"},
		{Question: "Do you help with placement?", Reply: "Yes.", Tag: "Placement"},
	}

	// Build with the original model.
	original, err := NewPipeline(index, mock.NewProvider("all-minilm"))
	require.NoError(t, err)
	defer original.Release()
	_, err = original.BuildIndex(ctx, rows)
	require.NoError(t, err)

	before, err := index.AllRecords(ctx)
	require.NoError(t, err)

	// Reembed with a replacement model.
	replacement, err := NewPipeline(index, mock.NewProvider("text-embedding-3-small"))
	require.NoError(t, err)
	defer replacement.Release()

	report, err := replacement.Reembed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RowsRead)
	assert.Equal(t, 2, report.RecordsWritten)
	assert.Zero(t, report.RowsSkipped)

	manifest, err := index.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", manifest.Model)
	assert.Equal(t, 2, manifest.RecordCount)

	// Texts, sections, and IDs survive; only vectors change.
	after, err := index.AllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Id, after[i].Id)
		assert.Equal(t, before[i].Text, after[i].Text)
		assert.Equal(t, before[i].Section, after[i].Section)
	}
}

func TestReembed_EmptyIndex(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)

	_, err := pipeline.Reembed(context.Background())
	assert.ErrorIs(t, err, core.ErrIndexNotFound)
}
