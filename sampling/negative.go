package sampling

import (
	"fmt"
	"math"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

const (
	NEGATIVE_BLOCK      = 1024 // Draws per RNG stream.
	NEGATIVE_MAX_ROUNDS = 64
)

// How many uniform pairs to draw so that, with confidence r (in standard deviations),
// at least k of them are negatives when each draw is one with probability p.
// Solves k = N*p - r*sqrt(N*p*(1-p)) for N.
func oversample(k uint32, p float64, r float64) uint64 {
	if k == 0 {
		return 0
	}
	b := r * math.Sqrt(p*(1-p))
	x := (b + math.Sqrt(b*b+4*p*float64(k))) / (2 * p)
	return uint64(math.Ceil(x * x))
}

// Uniform pairs from V x V that are neither an edge nor a self-loop, exactly NumSamples of them.
// Draws are oversampled per round and shortfalls topped up by further rounds.
func (s *Sampler) Negative() (*Result, error) {
	sv, err := s.sortedView()
	if err != nil {
		return nil, err
	}
	n := s.g.NumVertices()
	want := s.params.NumSamples
	res := &Result{RunID: s.runID}
	if want == 0 {
		return res, nil
	}

	distinct, err := graph.ProcessRange(s.sched, 0, n, func(v uint32) (uint64, error) {
		count, last := uint64(0), NO_PREV
		for _, e := range sv.OutEdges(v) {
			if e.Didx != v && e.Didx != last {
				count++
			}
			last = e.Didx
		}
		return count, nil
	}, graph.SumUint64)
	if err != nil {
		return nil, err
	}
	N := float64(n)
	if n < 2 || distinct >= uint64(n)*uint64(n-1) {
		return nil, fmt.Errorf("%w: no negative pair exists in a view of %d vertices and %d edges", graph.ErrUnsupportedOperation, n, distinct)
	}
	pm := float64(distinct) / (N * N)
	pk := 1 - pm - 1/N

	var pairs EdgeBatch
	for round := uint64(0); pairs.Len() < int(want); round++ {
		if round == NEGATIVE_MAX_ROUNDS {
			return nil, fmt.Errorf("%w: %d of %d negative samples after %d rounds", graph.ErrConvergenceBudgetExceeded, pairs.Len(), want, round)
		}
		need := want - uint32(pairs.Len())
		draws := oversample(need, pk, s.params.Confidence)
		blocks := uint32((draws + NEGATIVE_BLOCK - 1) / NEGATIVE_BLOCK)
		found := make([]EdgeBatch, blocks)
		_, err := graph.ProcessRange(s.sched, 0, blocks, func(b uint32) (struct{}, error) {
			rng := s.rng(streamNegative, round<<32|uint64(b))
			count := uint64(NEGATIVE_BLOCK)
			if rest := draws - uint64(b)*NEGATIVE_BLOCK; rest < count {
				count = rest
			}
			for i := uint64(0); i < count; i++ {
				src, dst := uint32(rng.Int63n(int64(n))), uint32(rng.Int63n(int64(n)))
				if src == dst || sv.HasEdge(src, dst) {
					continue
				}
				found[b].add(src, dst, NEGATIVE_TYPE)
			}
			return struct{}{}, nil
		}, graph.Discard)
		if err != nil {
			return nil, err
		}
		for b := range found {
			pairs.append(&found[b])
		}
		log.Debug().Msg("Negative sampling round " + utils.V(round) + ": drew " + utils.V(draws) + " have " + utils.V(pairs.Len()) + "/" + utils.V(want))
	}
	res.Edges = EdgeBatch{Src: pairs.Src[:want], Dst: pairs.Dst[:want], Type: pairs.Type[:want]}

	// Features for endpoints, once per vertex.
	touched := make([][]uint32, want)
	_, err = graph.ProcessRange(s.sched, 0, want, func(i uint32) (struct{}, error) {
		for _, v := range [2]uint32{res.Edges.Src[i], res.Edges.Dst[i]} {
			if s.touch(v) {
				touched[i] = append(touched[i], v)
			}
		}
		return struct{}{}, nil
	}, graph.Discard)
	if err != nil {
		return nil, err
	}
	res.Nodes = s.nodeBatch(touched)
	return res, nil
}
