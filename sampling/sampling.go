// Package sampling draws training batches from a graph view: uniform random walks,
// node2vec walks and negative edges.
package sampling

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

type Kind uint8

const (
	RANDOM_WALK Kind = iota
	NODE2VEC
	NEGATIVE
	numKinds
)

var kindNames = [numKinds]string{"randomwalk", "node2vec", "negative"}

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
	return 0, fmt.Errorf("%w: unknown sampler %q (have %s)", graph.ErrUnsupportedOperation, name, strings.Join(kindNames[:], ", "))
}

// Edge type given to negative samples in an EdgeBatch.
const NEGATIVE_TYPE = ^uint16(0)

type Params struct {
	Seeds        []uint32 // Walk start vertices (dense ids).
	Steps        uint32   // Hops per walk.
	WalksPerSeed uint32   // 0 means 1.
	P            float64  // node2vec return parameter. 0 means 1.
	Q            float64  // node2vec in-out parameter. 0 means 1.
	NumSamples   uint32   // Negative pairs wanted.
	Confidence   float64  // r of the oversampling estimator.
	RandSeed     int64
}

// Columnar vertex batch: one row per distinct vertex touched, ordered by vertex id.
type NodeBatch struct {
	Vertex   []uint32
	Original []graph.RawID
	Features [][]float64 // Copies; nil rows when the view has no features.
	Label    []int64
	Type     []uint16
}

func (b *NodeBatch) Len() int { return len(b.Vertex) }

// Columnar edge batch.
type EdgeBatch struct {
	Src  []uint32
	Dst  []uint32
	Type []uint16
}

func (b *EdgeBatch) Len() int { return len(b.Src) }

func (b *EdgeBatch) add(src, dst uint32, t uint16) {
	b.Src = append(b.Src, src)
	b.Dst = append(b.Dst, dst)
	b.Type = append(b.Type, t)
}

func (b *EdgeBatch) append(other *EdgeBatch) {
	b.Src = append(b.Src, other.Src...)
	b.Dst = append(b.Dst, other.Dst...)
	b.Type = append(b.Type, other.Type...)
}

type Result struct {
	RunID uuid.UUID
	Nodes NodeBatch
	Edges EdgeBatch
	Walks [][]uint32 // Walk samplers only; one per (seed, walk), seed-major.
	OK    []bool     // Per walk; false when the seed is not in the view.
}

var sampledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "snapolap_sampled_items_total",
	Help: "Nodes and edges emitted by samplers.",
}, []string{"sampler", "batch"})

// One sampling run. Owns its caches (alias tables, first-touch marks); they are
// built on first access and go away with the Sampler. Samplers are single-use.
type Sampler struct {
	sched  *graph.Scheduler
	g      *graph.GraphView
	sorted *graph.SortedGraphView // Built on demand for node2vec and negative sampling.
	params Params
	runID  uuid.UUID

	locks     *graph.VertexLockTable
	copied    *graph.ParallelArray[bool]
	nodeAlias *graph.ParallelArray[*AliasTable]
	edgeAlias *graph.ParallelArray[map[uint32]*AliasTable] // current -> previous -> table
}

func NewSampler(sched *graph.Scheduler, g *graph.GraphView, params Params) *Sampler {
	n := g.NumVertices()
	if params.WalksPerSeed == 0 {
		params.WalksPerSeed = 1
	}
	if params.P == 0 {
		params.P = 1
	}
	if params.Q == 0 {
		params.Q = 1
	}
	return &Sampler{
		sched:  sched,
		g:      g,
		params: params,
		runID:  uuid.New(),
		locks:  graph.NewVertexLockTable(n),
		copied: graph.NewParallelArray[bool](n),
	}
}

func (s *Sampler) sortedView() (*graph.SortedGraphView, error) {
	if s.sorted == nil {
		sv, err := graph.NewSortedView(s.g, s.sched)
		if err != nil {
			return nil, err
		}
		s.sorted = sv
	}
	return s.sorted, nil
}

// Marks v as touched; true only for the first caller.
func (s *Sampler) touch(v uint32) bool {
	s.locks.Acquire(v)
	defer s.locks.Release(v)
	if s.copied.Get(v) {
		return false
	}
	s.copied.Set(v, true)
	return true
}

// Rows for the given first-touched vertices, sorted by vertex id.
func (s *Sampler) nodeBatch(touched [][]uint32) NodeBatch {
	var all []uint32
	for _, list := range touched {
		all = append(all, list...)
	}
	slices.Sort(all)
	b := NodeBatch{
		Vertex:   all,
		Original: make([]graph.RawID, len(all)),
		Features: make([][]float64, len(all)),
		Label:    make([]int64, len(all)),
		Type:     make([]uint16, len(all)),
	}
	for i, v := range all {
		b.Original[i] = s.g.OriginalVid(v)
		if f := s.g.Features(v); f != nil {
			b.Features[i] = slices.Clone(f)
		}
		b.Label[i] = s.g.ClassLabel(v)
		b.Type[i] = s.g.VertexType(v)
	}
	return b
}

// Independent stream per (run seed, purpose, index), so output does not depend on
// which worker handles which index.
func (s *Sampler) rng(stream uint64, idx uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(splitmix64(uint64(s.params.RandSeed) ^ splitmix64(stream<<40^idx)))))
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// Runs one sampler over the view.
func Run(sched *graph.Scheduler, kind Kind, g *graph.GraphView, params Params) (res *Result, err error) {
	s := NewSampler(sched, g, params)
	switch kind {
	case RANDOM_WALK:
		res, err = s.RandomWalk()
	case NODE2VEC:
		res, err = s.Node2Vec()
	case NEGATIVE:
		res, err = s.Negative()
	default:
		err = fmt.Errorf("%w: sampler %v", graph.ErrUnsupportedOperation, kind)
	}
	if err != nil {
		return nil, err
	}
	sampledTotal.WithLabelValues(kind.String(), "nodes").Add(float64(res.Nodes.Len()))
	sampledTotal.WithLabelValues(kind.String(), "edges").Add(float64(res.Edges.Len()))
	log.Info().Msg(kind.String() + " run " + res.RunID.String() + ": nodes " + utils.V(res.Nodes.Len()) + " edges " + utils.V(res.Edges.Len()))
	return res, nil
}
