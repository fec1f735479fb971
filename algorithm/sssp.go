package algorithm

import (
	"fmt"
	"math"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

type SSSPResult struct {
	Distance    []float64 // +Inf where unreachable.
	MaxDistance float64   // Largest finite distance.
	MaxVertex   uint32
	Reached     uint32
	Supersteps  uint32
}

// Frontier Bellman-Ford. Relaxations of a destination are serialized by its lock;
// distances only decrease. Negative weights are refused up front.
func RunSSSP(sched *graph.Scheduler, g *graph.GraphView, root uint32, maxSupersteps uint32) (*SSSPResult, error) {
	if err := checkRoot(g, root); err != nil {
		return nil, err
	}
	if g.MinWeight() < 0 {
		return nil, fmt.Errorf("%w: shortest paths with negative edge weight %v", graph.ErrUnsupportedOperation, g.MinWeight())
	}
	n := g.NumVertices()
	limit := superstepCap(g, maxSupersteps)
	dist := graph.NewParallelArrayFilled(n, math.Inf(1))
	dist.Set(root, 0)
	locks := graph.NewVertexLockTable(n)
	activeIn, activeOut := graph.NewActiveSet(n), graph.NewActiveSet(n)
	activeIn.Add(root)

	work := func(v uint32) (uint64, error) {
		activations := uint64(0)
		dv := utils.AtomicLoadFloat64(dist.Ptr(v))
		for _, e := range g.OutEdges(v) {
			d := e.Didx
			nd := dv + e.Weight
			if nd >= utils.AtomicLoadFloat64(dist.Ptr(d)) {
				continue
			}
			locks.Acquire(d)
			improved := nd < dist.Get(d)
			if improved {
				utils.AtomicStoreFloat64(dist.Ptr(d), nd)
			}
			locks.Release(d)
			if improved && activeOut.Add(d) {
				activations++
			}
		}
		return activations, nil
	}

	res := &SSSPResult{}
	for {
		if res.Supersteps == limit {
			return nil, fmt.Errorf("%w: sssp still active after %d supersteps", graph.ErrConvergenceBudgetExceeded, limit)
		}
		activations, err := graph.ProcessActive(sched, activeIn, work, graph.SumUint64)
		if err != nil {
			return nil, err
		}
		res.Supersteps++
		activationsTotal.WithLabelValues(SSSP.String()).Add(float64(activations))
		log.Debug().Msg("SSSP superstep " + utils.V(res.Supersteps) + " activations " + utils.V(activations))
		if activations == 0 {
			break
		}
		activeIn.Swap(activeOut)
		activeOut.Clear()
	}

	res.Distance = dist.Slice()
	far, err := graph.ProcessRange(sched, 0, n, func(v uint32) (vertexValue, error) {
		if math.IsInf(res.Distance[v], 1) {
			return vertexValue{}, nil
		}
		return vertexValue{V: v, Value: res.Distance[v], Ok: true}, nil
	}, maxVertexValue)
	if err != nil {
		return nil, err
	}
	res.MaxDistance, res.MaxVertex = far.Value, far.V
	reached, err := graph.ProcessRange(sched, 0, n, func(v uint32) (int, error) {
		if math.IsInf(res.Distance[v], 1) {
			return 0, nil
		}
		return 1, nil
	}, graph.SumInt)
	if err != nil {
		return nil, err
	}
	res.Reached = uint32(reached)
	return res, nil
}
