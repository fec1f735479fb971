// Package memstore is an in-memory graph store: maps behind a lock, with copy-on-open snapshots.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ScottSallinen/snapolap/graph"
	"golang.org/x/exp/slices"
)

type Store struct {
	mu       sync.RWMutex
	closed   bool
	schema   graph.Schema
	order    []graph.RawID // Vertices in insertion order.
	vertices map[graph.RawID]graph.VertexRecord
	edges    map[graph.RawID][]graph.EdgeRecord
	indexed  map[string]map[string]graph.RawID // "label/field" -> value -> id
}

func New() *Store {
	return &Store{
		vertices: make(map[graph.RawID]graph.VertexRecord),
		edges:    make(map[graph.RawID][]graph.EdgeRecord),
		indexed:  make(map[string]map[string]graph.RawID),
	}
}

// One vertex per id in [0, n) and one edge per entry, with default labels.
// Weights go to graph.DEFAULT_WEIGHT_FIELD when weights is non-nil.
func FromEdges(n int, edges [][2]graph.RawID, weights []float64) *Store {
	s := New()
	for i := 0; i < n; i++ {
		if err := s.AddVertex(graph.RawID(i), graph.DEFAULT_VERTEX_LABEL, nil); err != nil {
			panic(err)
		}
	}
	for i, e := range edges {
		var fields graph.Fields
		if weights != nil {
			fields = graph.Fields{graph.DEFAULT_WEIGHT_FIELD: weights[i]}
		}
		if err := s.AddEdge(e[0], e[1], graph.DEFAULT_EDGE_LABEL, fields); err != nil {
			panic(err)
		}
	}
	return s
}

func indexKey(label, field string) string { return label + "/" + field }

func valueKey(value any) string { return fmt.Sprint(value) }

func (s *Store) AddVertex(id graph.RawID, label string, fields graph.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vertices[id]; ok {
		return fmt.Errorf("memstore: vertex %d already exists", id)
	}
	if !s.schema.HasVertexLabel(label) {
		s.schema.VertexLabels = append(s.schema.VertexLabels, label)
	}
	s.vertices[id] = graph.VertexRecord{ID: id, Label: label, Fields: fields}
	s.order = append(s.order, id)
	for field, value := range fields {
		if idx, ok := s.indexed[indexKey(label, field)]; ok {
			idx[valueKey(value)] = id
		}
	}
	return nil
}

// Both endpoints must already exist.
func (s *Store) AddEdge(src, dst graph.RawID, label string, fields graph.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vertices[src]; !ok {
		return fmt.Errorf("memstore: edge source %d: %w", src, graph.ErrNotFound)
	}
	if _, ok := s.vertices[dst]; !ok {
		return fmt.Errorf("memstore: edge destination %d: %w", dst, graph.ErrNotFound)
	}
	if !s.schema.HasEdgeLabel(label) {
		s.schema.EdgeLabels = append(s.schema.EdgeLabels, label)
	}
	s.edges[src] = append(s.edges[src], graph.EdgeRecord{Dst: dst, Label: label, Fields: fields})
	return nil
}

// Indexes a vertex field for LookupByIndex, including vertices already added.
func (s *Store) AddIndex(label, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := make(map[string]graph.RawID)
	for _, id := range s.order {
		rec := s.vertices[id]
		if rec.Label != label {
			continue
		}
		if value, ok := rec.Fields[field]; ok {
			idx[valueKey(value)] = id
		}
	}
	s.indexed[indexKey(label, field)] = idx
}

// Later snapshots fail with graph.ErrStoreUnavailable; open ones stay readable.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Store) OpenReadSnapshot(ctx context.Context, filter graph.LabelFilter) (graph.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", graph.ErrStoreUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("%w: memstore closed", graph.ErrStoreUnavailable)
	}
	// Edge slices are append-only, so copying the headers freezes them.
	snap := &snapshot{
		filter: filter,
		schema: graph.Schema{
			VertexLabels: slices.Clone(s.schema.VertexLabels),
			EdgeLabels:   slices.Clone(s.schema.EdgeLabels),
		},
		order:    slices.Clone(s.order),
		vertices: make(map[graph.RawID]graph.VertexRecord, len(s.vertices)),
		edges:    make(map[graph.RawID][]graph.EdgeRecord, len(s.edges)),
		indexed:  make(map[string]map[string]graph.RawID, len(s.indexed)),
	}
	for id, rec := range s.vertices {
		snap.vertices[id] = rec
	}
	for id, list := range s.edges {
		snap.edges[id] = list[:len(list):len(list)]
	}
	for key, idx := range s.indexed {
		cp := make(map[string]graph.RawID, len(idx))
		for k, v := range idx {
			cp[k] = v
		}
		snap.indexed[key] = cp
	}
	return snap, nil
}

type snapshot struct {
	filter   graph.LabelFilter
	schema   graph.Schema
	order    []graph.RawID
	vertices map[graph.RawID]graph.VertexRecord
	edges    map[graph.RawID][]graph.EdgeRecord
	indexed  map[string]map[string]graph.RawID
	closed   bool
}

func (s *snapshot) Schema() graph.Schema { return s.schema }

func (s *snapshot) acceptsVertex(label string) bool {
	return len(s.filter.VertexLabels) == 0 || slices.Contains(s.filter.VertexLabels, label)
}

func (s *snapshot) acceptsEdge(label string) bool {
	return len(s.filter.EdgeLabels) == 0 || slices.Contains(s.filter.EdgeLabels, label)
}

func (s *snapshot) ForEachVertex(fn func(graph.VertexRecord) bool) error {
	if s.closed {
		return fmt.Errorf("%w: snapshot closed", graph.ErrStoreUnavailable)
	}
	for _, id := range s.order {
		rec := s.vertices[id]
		if !s.acceptsVertex(rec.Label) {
			continue
		}
		if !fn(rec) {
			return nil
		}
	}
	return nil
}

func (s *snapshot) ForEachOutEdge(src graph.RawID, fn func(graph.EdgeRecord) bool) error {
	if s.closed {
		return fmt.Errorf("%w: snapshot closed", graph.ErrStoreUnavailable)
	}
	if _, ok := s.vertices[src]; !ok {
		return fmt.Errorf("memstore: vertex %d: %w", src, graph.ErrNotFound)
	}
	for _, rec := range s.edges[src] {
		if !s.acceptsEdge(rec.Label) {
			continue
		}
		if !fn(rec) {
			return nil
		}
	}
	return nil
}

// Uses an index when the field has one, otherwise scans the label's vertices.
func (s *snapshot) LookupByIndex(label, field string, value any) (graph.RawID, error) {
	key := valueKey(value)
	if idx, ok := s.indexed[indexKey(label, field)]; ok {
		if id, ok := idx[key]; ok {
			return id, nil
		}
		return 0, fmt.Errorf("%s.%s = %v: %w", label, field, value, graph.ErrNotFound)
	}
	for _, id := range s.order {
		rec := s.vertices[id]
		if rec.Label != label {
			continue
		}
		if v, ok := rec.Fields[field]; ok && valueKey(v) == key {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%s.%s = %v: %w", label, field, value, graph.ErrNotFound)
}

func (s *snapshot) Close() error {
	s.closed = true
	return nil
}
