package graph

import (
	"cmp"

	"github.com/ScottSallinen/snapolap/utils"
	"golang.org/x/exp/slices"
)

// A view whose every adjacency list is sorted by neighbour id (then edge type).
// Algorithms that merge adjacency lists take this type, so the ordering is never assumed.
type SortedGraphView struct {
	*GraphView
}

// Sorts copies of the view's adjacency lists in parallel. The source view is unchanged.
func NewSortedView(g *GraphView, sched *Scheduler) (*SortedGraphView, error) {
	sorted := *g
	sorted.outEdges = slices.Clone(g.outEdges)
	if err := sortLists(sched, g.numVertices, sorted.outOffsets, sorted.outEdges); err != nil {
		return nil, err
	}
	switch {
	case g.undirected:
		sorted.inOffsets, sorted.inEdges = sorted.outOffsets, sorted.outEdges
	case g.inOffsets != nil:
		sorted.inEdges = slices.Clone(g.inEdges)
		if err := sortLists(sched, g.numVertices, sorted.inOffsets, sorted.inEdges); err != nil {
			return nil, err
		}
	}
	return &SortedGraphView{&sorted}, nil
}

func sortLists(sched *Scheduler, n uint32, offsets []uint64, edges []Edge) error {
	_, err := ProcessRange(sched, 0, n, func(v uint32) (struct{}, error) {
		slices.SortFunc(edges[offsets[v]:offsets[v+1]], compareEdges)
		return struct{}{}, nil
	}, Discard)
	return err
}

func compareEdges(a, b Edge) int {
	if c := cmp.Compare(a.Didx, b.Didx); c != 0 {
		return c
	}
	return cmp.Compare(a.Type, b.Type)
}

// Whether there is an edge u->v, by binary search over u's out-edges.
func (s *SortedGraphView) HasEdge(u, v uint32) bool {
	edges := s.OutEdges(u)
	_, found := utils.BinarySearchIdxFunc(edges, v, func(i int, target uint32) int {
		return cmp.Compare(edges[i].Didx, target)
	})
	return found
}
