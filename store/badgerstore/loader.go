package badgerstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// Bulk writer. Writes become visible to snapshots opened after Commit.
// Not safe for concurrent use.
type Loader struct {
	store   *Store
	batch   *badger.WriteBatch
	labels  map[string]struct{} // Schema keys already written.
	indexed map[string][]string // label -> indexed fields
	seq     map[graph.RawID]uint64
	counts  [2]uint64 // vertices, edges
}

func (s *Store) NewLoader() *Loader {
	return &Loader{
		store:   s,
		batch:   s.db.NewWriteBatch(),
		labels:  make(map[string]struct{}),
		indexed: make(map[string][]string),
		seq:     make(map[graph.RawID]uint64),
	}
}

// Indexes a vertex field for LookupByIndex. Only vertices added afterwards are indexed.
func (l *Loader) Index(label, field string) {
	l.indexed[label] = append(l.indexed[label], field)
}

func (l *Loader) schemaLabel(prefix []byte, label string) error {
	key := string(prefix) + label
	if _, ok := l.labels[key]; ok {
		return nil
	}
	l.labels[key] = struct{}{}
	return l.batch.Set([]byte(key), nil)
}

func (l *Loader) AddVertex(id graph.RawID, label string, fields graph.Fields) error {
	val, err := json.Marshal(record{Label: label, Fields: fields})
	if err != nil {
		return fmt.Errorf("badgerstore: vertex %d: %w", id, err)
	}
	if err := l.schemaLabel(prefixVertexLabel, label); err != nil {
		return err
	}
	if err := l.batch.Set(vertexKey(id), val); err != nil {
		return err
	}
	for _, field := range l.indexed[label] {
		if value, ok := fields[field]; ok {
			if err := l.batch.Set(indexKey(label, field, value), idBytes(id)); err != nil {
				return err
			}
		}
	}
	l.counts[0]++
	return nil
}

// Appends after any edges of src already in the store.
func (l *Loader) AddEdge(src, dst graph.RawID, label string, fields graph.Fields) error {
	val, err := json.Marshal(record{Label: label, Dst: dst, Fields: fields})
	if err != nil {
		return fmt.Errorf("badgerstore: edge %d->%d: %w", src, dst, err)
	}
	if err := l.schemaLabel(prefixEdgeLabel, label); err != nil {
		return err
	}
	seq, ok := l.seq[src]
	if !ok {
		if seq, err = l.store.nextEdgeSeq(src); err != nil {
			return err
		}
	}
	l.seq[src] = seq + 1
	if err := l.batch.Set(edgeKey(src, seq), val); err != nil {
		return err
	}
	l.counts[1]++
	return nil
}

// Flushes everything written so far. The loader cannot be used afterwards.
func (l *Loader) Commit() error {
	if err := l.batch.Flush(); err != nil {
		return fmt.Errorf("badgerstore: commit: %w", err)
	}
	log.Info().Msg("Committed " + fmt.Sprint(l.counts[0]) + " vertices and " + fmt.Sprint(l.counts[1]) + " edges.")
	return nil
}

// Drops anything not yet flushed.
func (l *Loader) Cancel() {
	l.batch.Cancel()
}

// One past the highest edge sequence number stored for src.
func (s *Store) nextEdgeSeq(src graph.RawID) (next uint64, err error) {
	prefix := edgePrefix(src)
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()
		it.Seek(append(append([]byte(nil), prefix...), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF))
		if it.ValidForPrefix(prefix) {
			key := it.Item().Key()
			next = binary.BigEndian.Uint64(key[len(prefix):]) + 1
		}
		return nil
	})
	return next, err
}
