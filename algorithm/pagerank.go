package algorithm

import (
	"fmt"
	"math"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

type PageRankParams struct {
	Iterations uint32  // 0 means DEFAULT_ITERATIONS.
	Damping    float64 // 0 means DEFAULT_DAMPING.
	Epsilon    float64 // Stop once the summed delta of an iteration is below this; 0 disables.
}

type PageRankResult struct {
	Ranks      []float64 // Sums to 1.
	MaxRank    float64
	MaxVertex  uint32
	FinalDelta float64 // Summed |change| of the last iteration.
	Iterations uint32
}

// Pull-based PageRank over in-edges. Between iterations the rank of a vertex with
// out-edges is kept divided by its out-degree, so a pull is a plain sum.
// Mass of vertices without out-edges is spread evenly every iteration.
func RunPageRank(sched *graph.Scheduler, g *graph.GraphView, p PageRankParams) (*PageRankResult, error) {
	if !g.HasInEdges() {
		return nil, fmt.Errorf("%w: pagerank needs in-edges", graph.ErrUnsupportedOperation)
	}
	if p.Iterations == 0 {
		p.Iterations = DEFAULT_ITERATIONS
	}
	if p.Damping == 0 {
		p.Damping = DEFAULT_DAMPING
	}
	if p.Damping < 0 || p.Damping >= 1 {
		return nil, fmt.Errorf("%w: damping %v not in (0, 1)", graph.ErrUnsupportedOperation, p.Damping)
	}
	n := g.NumVertices()
	res := &PageRankResult{}
	if n == 0 {
		return res, nil
	}
	N := float64(n)
	d := p.Damping

	curr, next := graph.NewParallelArray[float64](n), graph.NewParallelArray[float64](n)
	if _, err := graph.ProcessRange(sched, 0, n, func(v uint32) (struct{}, error) {
		if deg := g.OutDegree(v); deg > 0 {
			curr.Set(v, 1/N/float64(deg))
		} else {
			curr.Set(v, 1/N)
		}
		return struct{}{}, nil
	}, graph.Discard); err != nil {
		return nil, err
	}

	danglingPass := func(v uint32) (float64, error) {
		if g.OutDegree(v) == 0 {
			return curr.Get(v), nil
		}
		return 0, nil
	}

	normalized := true // Whether curr holds rank/outdeg.
	for i := uint32(0); i < p.Iterations; i++ {
		last := i == p.Iterations-1
		dangling, err := graph.ProcessRange(sched, 0, n, danglingPass, graph.SumFloat)
		if err != nil {
			return nil, err
		}
		base := (1-d)/N + d*dangling/N

		delta, err := graph.ProcessRange(sched, 0, n, func(v uint32) (float64, error) {
			sum := 0.0
			for _, e := range g.InEdges(v) {
				sum += curr.Get(e.Didx)
			}
			r := d*sum + base
			deg := g.OutDegree(v)
			prev := curr.Get(v) * float64(max(deg, 1))
			if !last && deg > 0 {
				next.Set(v, r/float64(deg))
			} else {
				next.Set(v, r)
			}
			return math.Abs(r - prev), nil
		}, graph.SumFloat)
		if err != nil {
			return nil, err
		}
		curr.Swap(next)
		normalized = !last
		res.Iterations++
		res.FinalDelta = delta
		log.Debug().Msg("PageRank iteration " + utils.V(res.Iterations) + " delta " + utils.F("%.3e", delta))
		if p.Epsilon > 0 && delta < p.Epsilon {
			break
		}
	}

	if normalized {
		if _, err := graph.ProcessRange(sched, 0, n, func(v uint32) (struct{}, error) {
			if deg := g.OutDegree(v); deg > 0 {
				curr.Set(v, curr.Get(v)*float64(deg))
			}
			return struct{}{}, nil
		}, graph.Discard); err != nil {
			return nil, err
		}
	}

	res.Ranks = curr.Slice()
	top, err := graph.ProcessRange(sched, 0, n, func(v uint32) (vertexValue, error) {
		return vertexValue{V: v, Value: res.Ranks[v], Ok: true}, nil
	}, maxVertexValue)
	if err != nil {
		return nil, err
	}
	res.MaxRank, res.MaxVertex = top.Value, top.V
	return res, nil
}
