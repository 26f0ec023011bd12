package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqdex/core"
	"github.com/poiesic/faqdex/storage"
)

// rebuildChunkSize bounds the number of records written per transaction so a
// rebuild never exceeds badger's transaction size limits.
const rebuildChunkSize = 64

// Index implements storage.IndexRepository for BadgerDB.
//
// Records live under generation-scoped keys; the manifest names the current
// generation. A rebuild writes the next generation completely, then flips the
// manifest in its own transaction. Badger's snapshot isolation guarantees a
// query transaction sees exactly one generation.
type Index struct {
	backend *Backend
	logger  *slog.Logger
	closed  atomic.Bool
}

var _ storage.IndexRepository = (*Index)(nil)

// NewIndex creates an Index on top of an open backend.
// The Index does not own the backend; closing the Index does not close it.
func NewIndex(backend *Backend) *Index {
	return &Index{
		backend: backend,
		logger:  slog.Default().With("component", "badger-index"),
	}
}

// Close marks the index closed. Subsequent calls fail with ErrStorageClosed.
func (x *Index) Close() error {
	x.closed.Store(true)
	return nil
}

// Manifest returns the manifest of the current index generation.
func (x *Index) Manifest(ctx context.Context) (*core.IndexManifest, error) {
	if x.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	var manifest *core.IndexManifest
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		manifest, err = readManifest(tx)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// readManifest reads and decodes the manifest within a transaction.
func readManifest(tx *badger.Txn) (*core.IndexManifest, error) {
	item, err := tx.Get([]byte(manifestKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, core.ErrIndexNotFound
		}
		return nil, err
	}

	var manifest *core.IndexManifest
	err = item.Value(func(val []byte) error {
		var err error
		manifest, err = storage.UnmarshalManifest(val)
		if err != nil {
			return fmt.Errorf("%w: manifest: %w", core.ErrIndexCorrupt, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// Rebuild atomically replaces the index contents.
func (x *Index) Rebuild(ctx context.Context, manifest *core.IndexManifest, records []*core.Record) error {
	if x.closed.Load() {
		return storage.ErrStorageClosed
	}
	if manifest == nil {
		return fmt.Errorf("%w: manifest is nil", storage.ErrInvalidQuery)
	}

	now := time.Now().UTC()
	for _, record := range records {
		if err := core.ValidateRecord(record, manifest.Dimension); err != nil {
			return err
		}
		if record.InsertedAt.IsZero() {
			record.InsertedAt = now
		}
	}

	// Determine the next generation from the current manifest, if any.
	var current uint64
	if existing, err := x.Manifest(ctx); err == nil {
		current = existing.Generation
	} else if !errors.Is(err, core.ErrIndexNotFound) {
		return err
	}
	next := current + 1

	// Sweep any leftovers from a previously aborted rebuild of this generation.
	if err := x.deleteGeneration(next); err != nil {
		return err
	}

	// Write records and section-index entries in bounded chunks. Nothing here
	// is visible to readers until the manifest flips below.
	for start := 0; start < len(records); start += rebuildChunkSize {
		end := min(start+rebuildChunkSize, len(records))
		chunk := records[start:end]

		err := x.backend.WithTx(func(tx *badger.Txn) error {
			for _, record := range chunk {
				if err := tx.Set(makeRecordKey(next, record.Id), storage.MarshalRecord(record)); err != nil {
					return err
				}
				if err := tx.Set(makeSectionKey(next, record.Section, record.Id), storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			x.rollbackGeneration(next)
			return err
		}

		if err := ctx.Err(); err != nil {
			x.rollbackGeneration(next)
			return err
		}
	}

	// Commit point: flip the manifest to the new generation.
	manifest.Generation = next
	manifest.RecordCount = len(records)
	if manifest.CreatedAt.IsZero() {
		manifest.CreatedAt = now
	}
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(manifestKey), storage.MarshalManifest(manifest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		x.rollbackGeneration(next)
		return err
	}

	// The old generation is unreachable now; reclaim its keys.
	if current > 0 {
		if err := x.deleteGeneration(current); err != nil {
			x.logger.Warn("failed to sweep previous index generation", "generation", current, "err", err)
		}
	}

	return nil
}

// rollbackGeneration removes a partially written generation after a failed
// rebuild, leaving the prior index untouched.
func (x *Index) rollbackGeneration(generation uint64) {
	if err := x.deleteGeneration(generation); err != nil {
		x.logger.Warn("failed to roll back partial index generation", "generation", generation, "err", err)
	}
}

// deleteGeneration removes all record and section keys of a generation.
func (x *Index) deleteGeneration(generation uint64) error {
	for _, prefix := range [][]byte{makeRecordPrefix(generation), makeSectionPrefix(generation)} {
		keys, err := x.collectKeys(prefix)
		if err != nil {
			return err
		}
		for start := 0; start < len(keys); start += rebuildChunkSize {
			end := min(start+rebuildChunkSize, len(keys))
			chunk := keys[start:end]
			err := x.backend.WithTx(func(tx *badger.Txn) error {
				for _, key := range chunk {
					if err := tx.Delete(key); err != nil {
						return err
					}
				}
				return tx.Commit()
			}, true)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// collectKeys returns a copy of all keys under a prefix.
func (x *Index) collectKeys(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// GetRecord retrieves a single record by ID.
func (x *Index) GetRecord(ctx context.Context, id core.ID) (*core.Record, error) {
	records, err := x.GetRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}

// GetRecords retrieves multiple records by their IDs.
// Missing IDs are skipped without error.
func (x *Index) GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error) {
	if x.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	var records []*core.Record
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		manifest, err := readManifest(tx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			record, err := readRecord(tx, makeRecordKey(manifest.Generation, id))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			records = append(records, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// readRecord reads and decodes one record within a transaction.
func readRecord(tx *badger.Txn, key []byte) (*core.Record, error) {
	item, err := tx.Get(key)
	if err != nil {
		return nil, err
	}
	var record *core.Record
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalRecord(val)
		if err != nil {
			return fmt.Errorf("%w: record %q: %w", core.ErrIndexCorrupt, key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// AllRecords returns every record in the current generation. Record keys
// encode IDs big-endian, so iteration order is ascending ID.
func (x *Index) AllRecords(ctx context.Context) ([]*core.Record, error) {
	if x.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	var records []*core.Record
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		manifest, err := readManifest(tx)
		if err != nil {
			return err
		}
		return x.scanAll(tx, manifest.Generation, func(record *core.Record) {
			records = append(records, record)
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Sections returns the distinct section values in the current generation.
func (x *Index) Sections(ctx context.Context) ([]string, error) {
	if x.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	seen := make(map[string]bool)
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		manifest, err := readManifest(tx)
		if err != nil {
			if errors.Is(err, core.ErrIndexNotFound) {
				return nil
			}
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSectionPrefix(manifest.Generation)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			section := sectionFromKey(iter.Item().Key(), manifest.Generation)
			if section != "" {
				seen[section] = true
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sections := make([]string, 0, len(seen))
	for section := range seen {
		sections = append(sections, section)
	}
	slices.Sort(sections)
	return sections, nil
}

// Query scores candidate records against the query vector and returns up to
// topK results. The whole operation runs inside one read transaction, so a
// concurrent rebuild is either entirely visible or entirely invisible.
func (x *Index) Query(ctx context.Context, vector []float32, topK int, section string) ([]*core.SearchResult, error) {
	if x.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	if topK < 1 {
		return nil, fmt.Errorf("%w: top-k must be >= 1", storage.ErrInvalidQuery)
	}

	query := slices.Clone(vector)
	if !core.NormalizeL2(query) {
		return nil, fmt.Errorf("%w: query vector has zero norm", storage.ErrInvalidQuery)
	}

	results := []*core.SearchResult{}
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		manifest, err := readManifest(tx)
		if err != nil {
			return err
		}
		if manifest.RecordCount == 0 {
			return nil
		}
		if len(query) != manifest.Dimension {
			return fmt.Errorf("%w: query dimension %d, index dimension %d",
				storage.ErrInvalidQuery, len(query), manifest.Dimension)
		}

		score := func(record *core.Record) {
			results = append(results, &core.SearchResult{
				Record: record,
				Score:  core.DotProduct(query, record.Vector),
			})
		}

		if section != "" {
			return x.scanSection(tx, manifest.Generation, section, score)
		}
		return x.scanAll(tx, manifest.Generation, score)
	}, false)
	if err != nil {
		return nil, err
	}

	// Descending score, ties broken by ascending ID for reproducible ordering.
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Record.Id < b.Record.Id {
			return -1
		}
		if a.Record.Id > b.Record.Id {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// scanAll visits every record of a generation.
func (x *Index) scanAll(tx *badger.Txn, generation uint64, visit func(*core.Record)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeRecordPrefix(generation)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var record *core.Record
		err := iter.Item().Value(func(val []byte) error {
			var err error
			record, err = storage.UnmarshalRecord(val)
			if err != nil {
				return fmt.Errorf("%w: %w", core.ErrIndexCorrupt, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		visit(record)
	}
	return nil
}

// scanSection visits the records of one section via the section index.
func (x *Index) scanSection(tx *badger.Txn, generation uint64, section string, visit func(*core.Record)) error {
	prefix := makeSectionValuePrefix(generation, section)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		// Prefix matching alone can overreach when one section value is a
		// prefix of another; require an exact section match.
		if sectionFromKey(item.Key(), generation) != section {
			continue
		}

		var id core.ID
		err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		record, err := readRecord(tx, makeRecordKey(generation, id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: section index references missing record %d", core.ErrIndexCorrupt, id)
			}
			return err
		}
		visit(record)
	}
	return nil
}
