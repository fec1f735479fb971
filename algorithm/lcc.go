package algorithm

import (
	"fmt"
	"sync/atomic"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

type LCCResult struct {
	Coefficients []float64
	Triangles    []uint32
	Mean         float64
}

// Local clustering coefficient over sorted, undirected adjacency. Each triangle
// v < u < w is found once, from v, and credited to all three corners.
// Duplicate entries and self-loops are ignored.
func RunLCC(sched *graph.Scheduler, g *graph.SortedGraphView) (*LCCResult, error) {
	if !g.Undirected() {
		return nil, fmt.Errorf("%w: clustering coefficient needs an undirected view", graph.ErrUnsupportedOperation)
	}
	n := g.NumVertices()
	tri := graph.NewParallelArray[uint32](n)

	_, err := graph.ProcessRange(sched, 0, n, func(v uint32) (struct{}, error) {
		adjV := g.OutEdges(v)
		prev := v
		for _, e := range adjV {
			u := e.Didx
			if u <= prev {
				continue // Below v, a duplicate, or the self-loop.
			}
			prev = u
			for _, w := range commonAbove(adjV, g.OutEdges(u), u) {
				atomic.AddUint32(tri.Ptr(v), 1)
				atomic.AddUint32(tri.Ptr(u), 1)
				atomic.AddUint32(tri.Ptr(w), 1)
			}
		}
		return struct{}{}, nil
	}, graph.Discard)
	if err != nil {
		return nil, err
	}

	res := &LCCResult{Coefficients: make([]float64, n), Triangles: tri.Slice()}
	sum, err := graph.ProcessRange(sched, 0, n, func(v uint32) (float64, error) {
		deg := distinctDegree(g.OutEdges(v), v)
		if deg < 2 {
			return 0, nil
		}
		score := 2 * float64(tri.Get(v)) / float64(deg*(deg-1))
		res.Coefficients[v] = score
		return score, nil
	}, graph.SumFloat)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		res.Mean = sum / float64(n)
	}
	log.Debug().Msg("LCC triangles " + utils.V(utils.Sum(res.Triangles)/3) + " mean " + utils.F("%.4f", res.Mean))
	return res, nil
}

// Distinct ids above floor present in both sorted lists.
func commonAbove(a, b []graph.Edge, floor uint32) (common []uint32) {
	i, j := 0, 0
	last := floor
	for i < len(a) && j < len(b) {
		x, y := a[i].Didx, b[j].Didx
		switch {
		case x <= last:
			i++
		case y <= last:
			j++
		case x < y:
			i++
		case y < x:
			j++
		default:
			common = append(common, x)
			last = x
			i++
			j++
		}
	}
	return common
}

func distinctDegree(adj []graph.Edge, self uint32) (deg uint64) {
	for i, e := range adj {
		if e.Didx == self || (i > 0 && adj[i-1].Didx == e.Didx) {
			continue
		}
		deg++
	}
	return deg
}
