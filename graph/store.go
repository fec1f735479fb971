package graph

import (
	"context"

	"golang.org/x/exp/slices"
)

// Raw (external) identifier of a vertex inside the backing store. Stable across views;
// the dense id a view gives a vertex is not.
type RawID uint64

// Field values of a vertex or edge, as stored.
type Fields map[string]any

type VertexRecord struct {
	ID     RawID
	Label  string
	Fields Fields
}

type EdgeRecord struct {
	Dst    RawID
	Label  string
	Fields Fields
}

// Restricts a view to some vertex and edge labels. Empty means all labels.
type LabelFilter struct {
	VertexLabels []string `yaml:"vertex_labels"`
	EdgeLabels   []string `yaml:"edge_labels"`
}

func (f LabelFilter) acceptsVertex(label string) bool {
	return len(f.VertexLabels) == 0 || slices.Contains(f.VertexLabels, label)
}

func (f LabelFilter) acceptsEdge(label string) bool {
	return len(f.EdgeLabels) == 0 || slices.Contains(f.EdgeLabels, label)
}

// Labels known to the store.
type Schema struct {
	VertexLabels []string
	EdgeLabels   []string
}

func (s Schema) HasVertexLabel(label string) bool { return slices.Contains(s.VertexLabels, label) }
func (s Schema) HasEdgeLabel(label string) bool   { return slices.Contains(s.EdgeLabels, label) }

// The transactional graph store, as seen by the engine: only read snapshots.
type Store interface {
	// Fails with an error wrapping ErrStoreUnavailable if no snapshot can be opened.
	OpenReadSnapshot(ctx context.Context, filter LabelFilter) (Snapshot, error)
}

// A read-only, consistent snapshot of the store. Iterations are finite and restartable:
// every call walks a fresh iterator. Returning false from fn stops the iteration early.
type Snapshot interface {
	Schema() Schema
	ForEachVertex(fn func(VertexRecord) bool) error
	ForEachOutEdge(src RawID, fn func(EdgeRecord) bool) error
	// Resolves an external identifier; the error wraps ErrNotFound when there is no match.
	LookupByIndex(label string, field string, value any) (RawID, error)
	Close() error
}

// Labels and fields used when the input has none of its own (e.g. edge-list files).
const (
	DEFAULT_VERTEX_LABEL = "vertex"
	DEFAULT_EDGE_LABEL   = "edge"
	DEFAULT_WEIGHT_FIELD = "weight"
)
