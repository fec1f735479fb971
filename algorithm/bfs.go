package algorithm

import (
	"sync/atomic"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

const UNVISITED = ^uint32(0)

type BFSResult struct {
	Parent     []uint32 // UNVISITED where unreachable; the root is its own parent.
	Discovered uint32
	Supersteps uint32
}

// Level-synchronous BFS. A vertex is claimed by whichever worker wins its activation,
// and only that worker writes its parent.
func RunBFS(sched *graph.Scheduler, g *graph.GraphView, root uint32) (*BFSResult, error) {
	if err := checkRoot(g, root); err != nil {
		return nil, err
	}
	n := g.NumVertices()
	parent := graph.NewParallelArrayFilled(n, UNVISITED)
	parent.Set(root, root)
	activeIn, activeOut := graph.NewActiveSet(n), graph.NewActiveSet(n)
	activeIn.Add(root)

	work := func(v uint32) (uint64, error) {
		activations := uint64(0)
		for _, e := range g.OutEdges(v) {
			d := e.Didx
			if atomic.LoadUint32(parent.Ptr(d)) != UNVISITED {
				continue
			}
			if activeOut.Add(d) {
				atomic.StoreUint32(parent.Ptr(d), v)
				activations++
			}
		}
		return activations, nil
	}

	res := &BFSResult{Discovered: 1}
	for {
		activations, err := graph.ProcessActive(sched, activeIn, work, graph.SumUint64)
		if err != nil {
			return nil, err
		}
		res.Supersteps++
		activationsTotal.WithLabelValues(BFS.String()).Add(float64(activations))
		log.Debug().Msg("BFS superstep " + utils.V(res.Supersteps) + " activations " + utils.V(activations))
		if activations == 0 {
			break
		}
		res.Discovered += uint32(activations)
		activeIn.Swap(activeOut)
		activeOut.Clear()
	}
	res.Parent = parent.Slice()
	return res, nil
}
