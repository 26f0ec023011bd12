package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/faqdex/core"
)

// Reembed regenerates every vector in the stored index with the pipeline's
// current provider and atomically rebuilds the index under the new model
// identity. Record texts, sections, and IDs are preserved. This is the
// recovery path when an index was built with a different embedding model
// than the one now configured.
func (p *Pipeline) Reembed(ctx context.Context) (*core.IngestionReport, error) {
	start := time.Now()

	stored, err := p.index.AllRecords(ctx)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("%w: index has no records", core.ErrIngestion)
	}

	report := &core.IngestionReport{
		RunID:    uuid.NewString(),
		RowsRead: len(stored),
	}

	p.logger.Info("reembedding index",
		"run_id", report.RunID,
		"corpus_size", len(stored),
		"model", p.provider.Model())

	entries := make([]entry, len(stored))
	for i, record := range stored {
		entries[i] = entry{
			id:       record.Id,
			text:     record.Text,
			section:  record.Section,
			question: record.Question,
		}
	}

	vectors, err := p.embedCorpus(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("embedding corpus: %w", err)
	}

	dimension := len(vectors[0])
	records := make([]*core.Record, len(stored))
	for i, old := range stored {
		vector := vectors[i]
		if !core.NormalizeL2(vector) {
			return nil, fmt.Errorf("%w: zero-norm embedding for record %d", core.ErrIngestion, old.Id)
		}
		records[i] = &core.Record{
			Id:       old.Id,
			Text:     old.Text,
			Vector:   vector,
			Section:  old.Section,
			Question: old.Question,
			Extra:    old.Extra,
		}
	}

	manifest := &core.IndexManifest{
		Dimension: dimension,
		Metric:    core.MetricCosine,
		Model:     p.provider.Model(),
		CreatedAt: time.Now().UTC(),
	}
	if err := p.index.Rebuild(ctx, manifest, records); err != nil {
		return nil, err
	}

	report.RecordsWritten = len(records)
	report.Elapsed = time.Since(start)

	p.logger.Info("index reembedded",
		"run_id", report.RunID,
		"records_written", report.RecordsWritten,
		"dimension", dimension,
		"elapsed", report.Elapsed)

	return report, nil
}
