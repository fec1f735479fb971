package graph

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Immutable snapshot of (a label-filtered part of) the store as compressed adjacency.
// Vertex ids are dense in [0, NumVertices()) regardless of the store's ids.
// Adjacency lists may hold duplicates and are in store order; see SortedGraphView.
type GraphView struct {
	numVertices uint32
	numEdges    uint64 // Adjacency entries; an undirected view stores each edge twice.

	outOffsets []uint64 // len numVertices+1
	outEdges   []Edge
	inOffsets  []uint64 // nil when built without in-edges.
	inEdges    []Edge

	undirected bool
	weighted   bool
	minWeight  float64

	originalIds []RawID
	rawToDense  map[RawID]uint32

	vertexTypes     []uint16
	vertexTypeNames []string
	edgeTypeNames   []string

	classLabels []int64     // -1 where the vertex has no label field.
	features    [][]float64 // nil unless feature fields were requested.
	featureDim  int
}

func (g *GraphView) NumVertices() uint32 { return g.numVertices }
func (g *GraphView) NumEdges() uint64    { return g.numEdges }

func (g *GraphView) OutEdges(v uint32) []Edge {
	return g.outEdges[g.outOffsets[v]:g.outOffsets[v+1]]
}

func (g *GraphView) OutDegree(v uint32) uint32 {
	return uint32(g.outOffsets[v+1] - g.outOffsets[v])
}

// Panics with an error wrapping ErrUnsupportedOperation if the view has no in-edge index.
func (g *GraphView) InEdges(v uint32) []Edge {
	g.requireInEdges()
	return g.inEdges[g.inOffsets[v]:g.inOffsets[v+1]]
}

func (g *GraphView) InDegree(v uint32) uint32 {
	g.requireInEdges()
	return uint32(g.inOffsets[v+1] - g.inOffsets[v])
}

func (g *GraphView) requireInEdges() {
	if g.inOffsets == nil {
		err := fmt.Errorf("%w: in-edges requested on a forward-only view", ErrUnsupportedOperation)
		log.Error().Err(err).Msg("View misuse; build with Reverse or Undirected.")
		panic(err)
	}
}

// True if InEdges may be called (reverse index, or undirected).
func (g *GraphView) HasInEdges() bool { return g.inOffsets != nil }
func (g *GraphView) Undirected() bool { return g.undirected }
func (g *GraphView) Weighted() bool   { return g.weighted }

// Smallest edge weight in the view; DEFAULT_WEIGHT for an unweighted or edgeless view.
func (g *GraphView) MinWeight() float64 { return g.minWeight }

func (g *GraphView) OriginalVid(v uint32) RawID { return g.originalIds[v] }

// Dense id of a store vertex, if it is part of the view.
func (g *GraphView) DenseID(raw RawID) (uint32, bool) {
	v, ok := g.rawToDense[raw]
	return v, ok
}

func (g *GraphView) VertexType(v uint32) uint16 { return g.vertexTypes[v] }

func (g *GraphView) VertexTypeName(t uint16) string {
	if int(t) < len(g.vertexTypeNames) {
		return g.vertexTypeNames[t]
	}
	return ""
}

func (g *GraphView) EdgeTypeName(t uint16) string {
	if int(t) < len(g.edgeTypeNames) {
		return g.edgeTypeNames[t]
	}
	return ""
}

func (g *GraphView) ClassLabel(v uint32) int64 { return g.classLabels[v] }

// Feature vector of v, shared with the view; do not modify. Nil without feature fields.
func (g *GraphView) Features(v uint32) []float64 {
	if g.features == nil {
		return nil
	}
	return g.features[v]
}

func (g *GraphView) FeatureDim() int { return g.featureDim }
