package badgerstore

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/dgraph-io/badger/v4"
	"golang.org/x/exp/slices"
)

type snapshot struct {
	txn    *badger.Txn
	filter graph.LabelFilter
	schema graph.Schema
}

// Label keys are listed from the snapshot; badger iterators have no failure mode to report.
func (s *snapshot) readSchema() {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte("s/")
	it := s.txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().Key()
		switch {
		case len(key) > len(prefixVertexLabel) && string(key[:len(prefixVertexLabel)]) == string(prefixVertexLabel):
			s.schema.VertexLabels = append(s.schema.VertexLabels, string(key[len(prefixVertexLabel):]))
		case len(key) > len(prefixEdgeLabel) && string(key[:len(prefixEdgeLabel)]) == string(prefixEdgeLabel):
			s.schema.EdgeLabels = append(s.schema.EdgeLabels, string(key[len(prefixEdgeLabel):]))
		}
	}
}

func (s *snapshot) Schema() graph.Schema { return s.schema }

func (s *snapshot) acceptsVertex(label string) bool {
	return len(s.filter.VertexLabels) == 0 || slices.Contains(s.filter.VertexLabels, label)
}

func (s *snapshot) acceptsEdge(label string) bool {
	return len(s.filter.EdgeLabels) == 0 || slices.Contains(s.filter.EdgeLabels, label)
}

// Walks every key under prefix in order, decoding values into a record.
func (s *snapshot) scan(prefix []byte, fn func(key []byte, rec record) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := s.txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		var rec record
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return fmt.Errorf("badgerstore: key %q: %w", item.Key(), err)
		}
		if !fn(item.Key(), rec) {
			return nil
		}
	}
	return nil
}

func (s *snapshot) ForEachVertex(fn func(graph.VertexRecord) bool) error {
	return s.scan(prefixVertex, func(key []byte, rec record) bool {
		if !s.acceptsVertex(rec.Label) {
			return true
		}
		id := graph.RawID(binary.BigEndian.Uint64(key[len(prefixVertex):]))
		return fn(graph.VertexRecord{ID: id, Label: rec.Label, Fields: rec.Fields})
	})
}

func (s *snapshot) ForEachOutEdge(src graph.RawID, fn func(graph.EdgeRecord) bool) error {
	return s.scan(edgePrefix(src), func(_ []byte, rec record) bool {
		if !s.acceptsEdge(rec.Label) {
			return true
		}
		return fn(graph.EdgeRecord{Dst: rec.Dst, Label: rec.Label, Fields: rec.Fields})
	})
}

func (s *snapshot) LookupByIndex(label, field string, value any) (graph.RawID, error) {
	item, err := s.txn.Get(indexKey(label, field, value))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, fmt.Errorf("%s.%s = %v: %w", label, field, value, graph.ErrNotFound)
	} else if err != nil {
		return 0, err
	}
	var id graph.RawID
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("badgerstore: malformed index entry for %s.%s", label, field)
		}
		id = graph.RawID(binary.BigEndian.Uint64(val))
		return nil
	})
	return id, err
}

func (s *snapshot) Close() error {
	s.txn.Discard()
	return nil
}
