package algorithm

import (
	"fmt"
	"sync/atomic"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

type WCCResult struct {
	Labels       []uint32 // Smallest dense id in the vertex's component.
	Components   uint32
	Histogram    map[uint32]uint32 // Component label -> size.
	LargestLabel uint32
	LargestSize  uint32
	Supersteps   uint32
}

// Min-label propagation. Labels only decrease; a write re-checks under the target's lock.
// A directed view must carry in-edges, since components ignore direction.
func RunWCC(sched *graph.Scheduler, g *graph.GraphView, maxSupersteps uint32) (*WCCResult, error) {
	directed := !g.Undirected()
	if directed && !g.HasInEdges() {
		return nil, fmt.Errorf("%w: weakly connected components on a directed view need in-edges", graph.ErrUnsupportedOperation)
	}
	n := g.NumVertices()
	limit := superstepCap(g, maxSupersteps)
	label := graph.NewParallelArray[uint32](n)
	for v, s := uint32(0), label.Slice(); v < n; v++ {
		s[v] = v
	}
	locks := graph.NewVertexLockTable(n)
	activeIn, activeOut := graph.NewActiveSet(n), graph.NewActiveSet(n)
	activeIn.Fill()

	push := func(lv uint32, edges []graph.Edge) (activations uint64) {
		for _, e := range edges {
			d := e.Didx
			if atomic.LoadUint32(label.Ptr(d)) <= lv {
				continue
			}
			locks.Acquire(d)
			lower := label.Get(d) > lv
			if lower {
				atomic.StoreUint32(label.Ptr(d), lv)
			}
			locks.Release(d)
			if lower && activeOut.Add(d) {
				activations++
			}
		}
		return activations
	}
	work := func(v uint32) (uint64, error) {
		lv := atomic.LoadUint32(label.Ptr(v))
		activations := push(lv, g.OutEdges(v))
		if directed {
			activations += push(lv, g.InEdges(v))
		}
		return activations, nil
	}

	res := &WCCResult{}
	for {
		if res.Supersteps == limit {
			return nil, fmt.Errorf("%w: wcc still active after %d supersteps", graph.ErrConvergenceBudgetExceeded, limit)
		}
		activations, err := graph.ProcessActive(sched, activeIn, work, graph.SumUint64)
		if err != nil {
			return nil, err
		}
		res.Supersteps++
		activationsTotal.WithLabelValues(WCC.String()).Add(float64(activations))
		log.Debug().Msg("WCC superstep " + utils.V(res.Supersteps) + " activations " + utils.V(activations))
		if activations == 0 {
			break
		}
		activeIn.Swap(activeOut)
		activeOut.Clear()
	}

	res.Labels = label.Slice()
	res.Histogram, res.LargestLabel, res.LargestSize = labelHistogram(res.Labels)
	res.Components = uint32(len(res.Histogram))
	return res, nil
}
