package faqdex

import (
	"context"
	"testing"

	"github.com/poiesic/faqdex/ai/mock"
	"github.com/poiesic/faqdex/core"
	"github.com/poiesic/faqdex/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()

	opts = append([]EngineOption{WithProvider(mock.NewProvider("all-minilm"))}, opts...)
	engine, err := Open(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func buildTestIndex(t *testing.T, engine *Engine) *core.IngestionReport {
	t.Helper()

	pipeline, err := engine.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	rows := []core.SourceRow{
		{Question: "What courses do you offer?", Reply: "Data science and analytics.", Tag: "Courses Offered"},
		{Question: "Do you help with placement?", Reply: "Yes, we have a placement cell.", Tag: "Placement"},
		{Question: "Where is the institute located?", Reply: "Indore.", Tag: "Contact Information"},
	}

	report, err := pipeline.BuildIndex(context.Background(), rows)
	require.NoError(t, err)
	return report
}

func TestEngine_BuildAndRetrieve(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()

	report := buildTestIndex(t, engine)
	assert.Equal(t, 3, report.RecordsWritten)

	retriever, err := engine.NewRetriever(ctx)
	require.NoError(t, err)

	// Querying with a stored entry's exact composed text must surface that
	// entry first, reconstructing the ingested question and answer.
	target := core.ComposeText("Do you help with placement?", "Yes, we have a placement cell.")
	results, err := retriever.Retrieve(ctx, &core.QueryRequest{QueryText: target, TopK: 3})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, target, results[0].Record.Text)
	assert.Equal(t, "Do you help with placement?", results[0].Record.Question)
	assert.Equal(t, "Placement", results[0].Record.Section)
}

func TestEngine_HasIndex(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()

	built, err := engine.HasIndex(ctx)
	require.NoError(t, err)
	assert.False(t, built)

	buildTestIndex(t, engine)

	built, err = engine.HasIndex(ctx)
	require.NoError(t, err)
	assert.True(t, built)
}

func TestEngine_RetrieverWithoutIndex(t *testing.T) {
	engine := openTestEngine(t)

	_, err := engine.NewRetriever(context.Background())
	assert.ErrorIs(t, err, core.ErrIndexNotFound)
}

func TestEngine_ModelMismatch(t *testing.T) {
	dir := t.TempDir()

	engine, err := Open(dir, WithProvider(mock.NewProvider("all-minilm")))
	require.NoError(t, err)
	buildTestIndex(t, engine)
	require.NoError(t, engine.Close())

	// Reopen with a provider bound to a different embedding model.
	engine, err = Open(dir, WithProvider(mock.NewProvider("text-embedding-3-small")))
	require.NoError(t, err)
	defer engine.Close()

	_, err = engine.NewRetriever(context.Background())
	assert.ErrorIs(t, err, core.ErrModelMismatch)
}

func TestEngine_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	engine, err := Open(dir, WithProvider(mock.NewProvider("all-minilm")))
	require.NoError(t, err)
	buildTestIndex(t, engine)
	require.NoError(t, engine.Close())

	engine, err = Open(dir, WithProvider(mock.NewProvider("all-minilm")))
	require.NoError(t, err)
	defer engine.Close()

	sections, err := engine.Index().Sections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Contact Information", "Courses Offered", "Placement"}, sections)

	retriever, err := engine.NewRetriever(ctx)
	require.NoError(t, err)

	results, err := retriever.Retrieve(ctx, &core.QueryRequest{QueryText: "courses", TopK: 5})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestEngine_TelemetrySinkIsWired(t *testing.T) {
	capture := telemetry.NewCaptureSink()
	engine := openTestEngine(t, WithTelemetrySink(capture))
	ctx := context.Background()

	buildTestIndex(t, engine)

	retriever, err := engine.NewRetriever(ctx)
	require.NoError(t, err)
	_, err = retriever.Retrieve(ctx, &core.QueryRequest{QueryText: "placement", TopK: 2})
	require.NoError(t, err)

	steps := capture.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, telemetry.StepIngestion, steps[0].Step)
	assert.Equal(t, telemetry.StepRetrieval, steps[1].Step)
	assert.Len(t, capture.Embeddings(), 1)
}
