// Package algorithm holds the analytics that run over a graph view: each one is a small
// state machine of supersteps driven through the graph scheduler.
package algorithm

import (
	"fmt"
	"strings"
	"time"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

type Kind uint8

const (
	BFS Kind = iota
	SSSP
	WCC
	LPA
	PAGERANK
	LCC
	numKinds
)

var kindNames = [numKinds]string{"bfs", "sssp", "wcc", "lpa", "pagerank", "lcc"}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "Kind(" + utils.V(uint8(k)) + ")"
}

func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(name, n) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown algorithm %q (have %s)", graph.ErrUnsupportedOperation, name, strings.Join(kindNames[:], ", "))
}

const (
	DEFAULT_ITERATIONS = 10
	DEFAULT_DAMPING    = 0.85
)

type Params struct {
	Root          uint32  // BFS and SSSP; a dense id of the view.
	Iterations    uint32  // LPA and PageRank. 0 means DEFAULT_ITERATIONS.
	Damping       float64 // PageRank. 0 means DEFAULT_DAMPING.
	Epsilon       float64 // PageRank stops early once the total delta is below this. 0 never stops early.
	MaxSupersteps uint32  // SSSP and WCC. 0 means the number of vertices.
}

// Per-algorithm results; exactly one of the pointers is set.
type Summary struct {
	Kind       Kind
	Supersteps uint32
	Elapsed    time.Duration

	BFS      *BFSResult
	SSSP     *SSSPResult
	WCC      *WCCResult
	LPA      *LPAResult
	PageRank *PageRankResult
	LCC      *LCCResult
}

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapolap_algorithm_runs_total",
		Help: "Algorithm runs by algorithm and outcome.",
	}, []string{"algorithm", "outcome"})
	activationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapolap_activations_total",
		Help: "Vertices activated for a following superstep.",
	}, []string{"algorithm"})
)

// Runs one algorithm to termination. LCC needs an undirected view; the sorted adjacency
// it works on is built here.
func Run(sched *graph.Scheduler, kind Kind, g *graph.GraphView, params Params) (s *Summary, err error) {
	watch := utils.Watch{}
	watch.Start()
	s = &Summary{Kind: kind}

	switch kind {
	case BFS:
		s.BFS, err = RunBFS(sched, g, params.Root)
		if err == nil {
			s.Supersteps = s.BFS.Supersteps
		}
	case SSSP:
		s.SSSP, err = RunSSSP(sched, g, params.Root, params.MaxSupersteps)
		if err == nil {
			s.Supersteps = s.SSSP.Supersteps
		}
	case WCC:
		s.WCC, err = RunWCC(sched, g, params.MaxSupersteps)
		if err == nil {
			s.Supersteps = s.WCC.Supersteps
		}
	case LPA:
		s.LPA, err = RunLPA(sched, g, params.Iterations)
		if err == nil {
			s.Supersteps = uint32(len(s.LPA.Changes))
		}
	case PAGERANK:
		s.PageRank, err = RunPageRank(sched, g, PageRankParams{Iterations: params.Iterations, Damping: params.Damping, Epsilon: params.Epsilon})
		if err == nil {
			s.Supersteps = s.PageRank.Iterations
		}
	case LCC:
		var sv *graph.SortedGraphView
		if sv, err = graph.NewSortedView(g, sched); err == nil {
			log.Debug().Msg("LCC sorted adjacency in " + utils.V(watch.Lap().Milliseconds()) + "ms")
			s.LCC, err = RunLCC(sched, sv)
		}
		if err == nil {
			s.Supersteps = 2
		}
	default:
		err = fmt.Errorf("%w: algorithm %v", graph.ErrUnsupportedOperation, kind)
	}
	s.Elapsed = watch.Elapsed()

	if err != nil {
		runsTotal.WithLabelValues(kind.String(), "error").Inc()
		log.Error().Err(err).Msg(kind.String() + " failed after " + utils.V(s.Elapsed.Milliseconds()) + "ms")
		return nil, err
	}
	runsTotal.WithLabelValues(kind.String(), "ok").Inc()
	log.Info().Msg(kind.String() + " finished: supersteps " + utils.V(s.Supersteps) + " elapsed " + utils.V(s.Elapsed.Milliseconds()) + "ms")
	return s, nil
}

// Largest values first, with their dense vertex ids.
func TopN(values []float64, n uint32) []utils.Pair[uint32, float64] {
	return utils.FindTopNInArray(values, n)
}

func checkRoot(g *graph.GraphView, root uint32) error {
	if root >= g.NumVertices() {
		return fmt.Errorf("root %d outside view of %d vertices: %w", root, g.NumVertices(), graph.ErrNotFound)
	}
	return nil
}

func superstepCap(g *graph.GraphView, limit uint32) uint32 {
	if limit != 0 {
		return limit
	}
	return max(g.NumVertices(), 1)
}

// A vertex and a value, for argmax reductions. Ties go to the smaller vertex.
type vertexValue struct {
	V     uint32
	Value float64
	Ok    bool
}

var maxVertexValue = graph.Reducer[vertexValue]{
	Combine: func(a, b vertexValue) vertexValue {
		if !a.Ok {
			return b
		}
		if !b.Ok {
			return a
		}
		if b.Value > a.Value || (b.Value == a.Value && b.V < a.V) {
			return b
		}
		return a
	},
}

// Counts per label, and the most common label (smallest on ties).
func labelHistogram(labels []uint32) (hist map[uint32]uint32, largestLabel uint32, largestSize uint32) {
	hist = make(map[uint32]uint32)
	for _, l := range labels {
		hist[l]++
	}
	for l, c := range hist {
		if c > largestSize || (c == largestSize && l < largestLabel) {
			largestLabel, largestSize = l, c
		}
	}
	return hist, largestLabel, largestSize
}
