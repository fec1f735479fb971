package algorithm

import (
	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

type LPAResult struct {
	Labels      []uint32
	Communities uint32
	Histogram   map[uint32]uint32 // Label -> members.
	Changes     []uint64          // Vertices that changed label, per iteration.
}

// Synchronous label propagation for a fixed number of iterations. Each vertex takes the
// most frequent label among its neighbours, the smallest one on ties. On a directed view
// with in-edges both directions are counted.
func RunLPA(sched *graph.Scheduler, g *graph.GraphView, iterations uint32) (*LPAResult, error) {
	if iterations == 0 {
		iterations = DEFAULT_ITERATIONS
	}
	n := g.NumVertices()
	withIn := !g.Undirected() && g.HasInEdges()
	curr, next := graph.NewParallelArray[uint32](n), graph.NewParallelArray[uint32](n)
	for v, s := uint32(0), curr.Slice(); v < n; v++ {
		s[v] = v
	}

	work := func(v uint32) (uint64, error) {
		tally := make(map[uint32]uint32, g.OutDegree(v))
		for _, e := range g.OutEdges(v) {
			tally[curr.Get(e.Didx)]++
		}
		if withIn {
			for _, e := range g.InEdges(v) {
				tally[curr.Get(e.Didx)]++
			}
		}
		best, bestCount := curr.Get(v), uint32(0)
		for l, c := range tally {
			if c > bestCount || (c == bestCount && l < best) {
				best, bestCount = l, c
			}
		}
		next.Set(v, best)
		if best != curr.Get(v) {
			return 1, nil
		}
		return 0, nil
	}

	res := &LPAResult{}
	for i := uint32(0); i < iterations; i++ {
		changed, err := graph.ProcessRange(sched, 0, n, work, graph.SumUint64)
		if err != nil {
			return nil, err
		}
		res.Changes = append(res.Changes, changed)
		log.Debug().Msg("LPA iteration " + utils.V(i+1) + " changed " + utils.V(changed))
		curr.Swap(next)
	}

	res.Labels = curr.Slice()
	res.Histogram, _, _ = labelHistogram(res.Labels)
	res.Communities = uint32(len(res.Histogram))
	return res, nil
}
