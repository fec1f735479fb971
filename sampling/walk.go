package sampling

import (
	"math/rand"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

const (
	streamWalk uint64 = iota + 1
	streamNegative
)

// Marks the first hop of a walk, which has no previous vertex.
const NO_PREV = ^uint32(0)

// Picks the index of the next out-edge of cur, given the vertex before it (NO_PREV on the first hop).
// ok is false when no edge can be taken, which ends the walk like a sink does.
type stepFunc func(rng *rand.Rand, prev, cur uint32, edges []graph.Edge) (next uint32, ok bool)

type walkOut struct {
	path    []uint32
	batch   EdgeBatch
	touched []uint32
	ok      bool
}

// Uniform random walks: each hop takes an out-edge uniformly at random.
func (s *Sampler) RandomWalk() (*Result, error) {
	return s.walk(func(rng *rand.Rand, _, _ uint32, edges []graph.Edge) (uint32, bool) {
		return uint32(rng.Intn(len(edges))), true
	})
}

// Second order biased walks. The first hop is drawn by edge weight; later hops weight a
// candidate x by w/p if x is the previous vertex, w if x neighbours it, and w/q otherwise.
func (s *Sampler) Node2Vec() (*Result, error) {
	sv, err := s.sortedView()
	if err != nil {
		return nil, err
	}
	n := s.g.NumVertices()
	s.nodeAlias = graph.NewParallelArray[*AliasTable](n)
	s.edgeAlias = graph.NewParallelArray[map[uint32]*AliasTable](n)
	// Edge indexes refer to the sorted adjacency from here on.
	s.g = sv.GraphView
	return s.walk(func(rng *rand.Rand, prev, cur uint32, edges []graph.Edge) (uint32, bool) {
		var t *AliasTable
		if prev == NO_PREV {
			t = s.firstHopTable(cur, edges)
		} else {
			t = s.secondOrderTable(sv, prev, cur, edges)
		}
		// All out-edges weigh zero.
		if t.Len() == 0 {
			return 0, false
		}
		return t.Sample(rng), true
	})
}

func (s *Sampler) firstHopTable(cur uint32, edges []graph.Edge) *AliasTable {
	s.locks.Acquire(cur)
	t := s.nodeAlias.Get(cur)
	s.locks.Release(cur)
	if t != nil {
		return t
	}
	weights := make([]float64, len(edges))
	for i, e := range edges {
		weights[i] = e.Weight
	}
	built := NewAliasTable(weights)
	s.locks.Acquire(cur)
	defer s.locks.Release(cur)
	if t = s.nodeAlias.Get(cur); t == nil {
		t = built
		s.nodeAlias.Set(cur, t)
	}
	return t
}

func (s *Sampler) secondOrderTable(sv *graph.SortedGraphView, prev, cur uint32, edges []graph.Edge) *AliasTable {
	s.locks.Acquire(cur)
	t := s.edgeAlias.Get(cur)[prev]
	s.locks.Release(cur)
	if t != nil {
		return t
	}
	weights := make([]float64, len(edges))
	for i, e := range edges {
		switch {
		case e.Didx == prev:
			weights[i] = e.Weight / s.params.P
		case sv.HasEdge(prev, e.Didx):
			weights[i] = e.Weight
		default:
			weights[i] = e.Weight / s.params.Q
		}
	}
	built := NewAliasTable(weights)
	s.locks.Acquire(cur)
	defer s.locks.Release(cur)
	m := s.edgeAlias.Get(cur)
	if m == nil {
		m = make(map[uint32]*AliasTable)
		s.edgeAlias.Set(cur, m)
	}
	if t = m[prev]; t == nil {
		t = built
		m[prev] = t
	}
	return t
}

// Runs WalksPerSeed walks from every seed in parallel, one RNG stream per walk.
func (s *Sampler) walk(step stepFunc) (*Result, error) {
	p := s.params
	n := s.g.NumVertices()
	total := uint32(len(p.Seeds)) * p.WalksPerSeed
	outs := make([]walkOut, total)

	_, err := graph.ProcessRange(s.sched, 0, total, func(w uint32) (struct{}, error) {
		out := &outs[w]
		seed := p.Seeds[w/p.WalksPerSeed]
		if seed >= n {
			log.Warn().Msg("Skipping seed " + utils.V(seed) + ": not in a view of " + utils.V(n) + " vertices")
			return struct{}{}, nil
		}
		out.ok = true
		rng := s.rng(streamWalk, uint64(w))
		out.path = append(make([]uint32, 0, p.Steps+1), seed)
		if s.touch(seed) {
			out.touched = append(out.touched, seed)
		}
		prev, cur := NO_PREV, seed
		for i := uint32(0); i < p.Steps; i++ {
			edges := s.g.OutEdges(cur)
			if len(edges) == 0 {
				break
			}
			next, ok := step(rng, prev, cur, edges)
			if !ok {
				break
			}
			e := edges[next]
			out.batch.add(cur, e.Didx, e.Type)
			out.path = append(out.path, e.Didx)
			if s.touch(e.Didx) {
				out.touched = append(out.touched, e.Didx)
			}
			prev, cur = cur, e.Didx
		}
		return struct{}{}, nil
	}, graph.Discard)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: s.runID, Walks: make([][]uint32, total), OK: make([]bool, total)}
	touched := make([][]uint32, total)
	for w := range outs {
		res.Walks[w] = outs[w].path
		res.OK[w] = outs[w].ok
		res.Edges.append(&outs[w].batch)
		touched[w] = outs[w].touched
	}
	res.Nodes = s.nodeBatch(touched)
	return res, nil
}
