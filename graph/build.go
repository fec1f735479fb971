package graph

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

// How a view is constructed from the store.
type BuildOptions struct {
	Reverse       bool       `yaml:"reverse"`        // Also build the in-edge index.
	Undirected    bool       `yaml:"undirected"`     // Mirror every edge; in-edges equal out-edges.
	WeightField   string     `yaml:"weight_field"`   // Edge field holding the weight.
	WeightKind    WeightKind `yaml:"-"`              // Set from WeightType by Options.Validate.
	WeightType    string     `yaml:"weight_type"`    // "none", "int" or "float".
	FeatureFields []string   `yaml:"feature_fields"` // Vertex fields copied into the feature vector, in order.
	LabelField    string     `yaml:"label_field"`    // Vertex field holding the class label.
}

const (
	BUILD_CTX_CHECK = 4096    // Every how-many vertices the context is checked while reading the store.
	MAX_TYPES       = 1 << 16 // Distinct vertex (or edge) labels a view can name.
)

type pendingEdge struct {
	src uint32
	e   Edge
}

// Reads a snapshot of the store into a view. Fails before anything is scheduled:
// ErrGraphNotFound for a filter label the schema does not know, ErrStoreUnavailable
// if no snapshot can be opened, ErrGraphBuild for anything else read from the store.
func Build(ctx context.Context, store Store, filter LabelFilter, opts BuildOptions) (g *GraphView, err error) {
	watch := utils.Watch{}
	watch.Start()

	snap, err := store.OpenReadSnapshot(ctx, filter)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer func() {
		if cerr := snap.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing snapshot: %w", ErrGraphBuild, cerr)
		}
	}()

	schema := snap.Schema()
	for _, l := range filter.VertexLabels {
		if !schema.HasVertexLabel(l) {
			return nil, fmt.Errorf("%w: vertex label %q", ErrGraphNotFound, l)
		}
	}
	for _, l := range filter.EdgeLabels {
		if !schema.HasEdgeLabel(l) {
			return nil, fmt.Errorf("%w: edge label %q", ErrGraphNotFound, l)
		}
	}

	g = &GraphView{
		rawToDense:      make(map[RawID]uint32),
		vertexTypeNames: append([]string(nil), schema.VertexLabels...),
		edgeTypeNames:   append([]string(nil), schema.EdgeLabels...),
		undirected:      opts.Undirected,
		weighted:        opts.WeightKind != NoWeight && opts.WeightField != "",
		featureDim:      len(opts.FeatureFields),
	}
	if len(schema.VertexLabels) > MAX_TYPES || len(schema.EdgeLabels) > MAX_TYPES {
		return nil, fmt.Errorf("%w: schema has more than %d vertex or edge labels", ErrGraphBuild, MAX_TYPES)
	}
	vertexTypeIdx := indexNames(g.vertexTypeNames)
	edgeTypeIdx := indexNames(g.edgeTypeNames)

	// Vertices first, so edges to vertices outside the view can be dropped.
	var fieldErr error
	iterErr := snap.ForEachVertex(func(rec VertexRecord) bool {
		if !filter.acceptsVertex(rec.Label) {
			return true
		}
		if len(g.originalIds)%BUILD_CTX_CHECK == 0 && ctx.Err() != nil {
			fieldErr = ctx.Err()
			return false
		}
		if _, dup := g.rawToDense[rec.ID]; dup {
			fieldErr = fmt.Errorf("duplicate vertex id %d", rec.ID)
			return false
		}
		vt, err := typeIndex(vertexTypeIdx, &g.vertexTypeNames, rec.Label)
		if err != nil {
			fieldErr = fmt.Errorf("vertex %d: %w", rec.ID, err)
			return false
		}
		g.rawToDense[rec.ID] = uint32(len(g.originalIds))
		g.originalIds = append(g.originalIds, rec.ID)
		g.vertexTypes = append(g.vertexTypes, vt)

		label := int64(-1)
		if opts.LabelField != "" {
			if raw, ok := rec.Fields[opts.LabelField]; ok {
				f, err := toFloat(raw)
				if err != nil {
					fieldErr = fmt.Errorf("vertex %d label field %q: %w", rec.ID, opts.LabelField, err)
					return false
				}
				label = int64(f)
			}
		}
		g.classLabels = append(g.classLabels, label)

		if len(opts.FeatureFields) > 0 {
			feat := make([]float64, len(opts.FeatureFields))
			for i, name := range opts.FeatureFields {
				if raw, ok := rec.Fields[name]; ok {
					f, err := toFloat(raw)
					if err != nil {
						fieldErr = fmt.Errorf("vertex %d feature field %q: %w", rec.ID, name, err)
						return false
					}
					feat[i] = f
				}
			}
			g.features = append(g.features, feat)
		}
		return true
	})
	if err := firstErr(iterErr, fieldErr); err != nil {
		return nil, fmt.Errorf("%w: reading vertices: %w", ErrGraphBuild, err)
	}
	if uint64(len(g.originalIds)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: %d vertices do not fit dense ids", ErrGraphBuild, len(g.originalIds))
	}
	g.numVertices = uint32(len(g.originalIds))

	pending := make([]pendingEdge, 0, g.numVertices)
	g.minWeight = DEFAULT_WEIGHT
	first := true
	for src := uint32(0); src < g.numVertices; src++ {
		if src%BUILD_CTX_CHECK == 0 && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrGraphBuild, ctx.Err())
		}
		iterErr = snap.ForEachOutEdge(g.originalIds[src], func(rec EdgeRecord) bool {
			if !filter.acceptsEdge(rec.Label) {
				return true
			}
			dst, ok := g.rawToDense[rec.Dst]
			if !ok {
				return true
			}
			w, err := opts.WeightKind.parse(rec.Fields, opts.WeightField)
			if err != nil {
				fieldErr = fmt.Errorf("edge %d->%d: %w", g.originalIds[src], rec.Dst, err)
				return false
			}
			if first || w < g.minWeight {
				g.minWeight = w
				first = false
			}
			et, err := typeIndex(edgeTypeIdx, &g.edgeTypeNames, rec.Label)
			if err != nil {
				fieldErr = fmt.Errorf("edge %d->%d: %w", g.originalIds[src], rec.Dst, err)
				return false
			}
			e := Edge{Didx: dst, Type: et, Weight: w}
			pending = append(pending, pendingEdge{src, e})
			if opts.Undirected {
				pending = append(pending, pendingEdge{dst, Edge{Didx: src, Type: e.Type, Weight: w}})
			}
			return true
		})
		if err := firstErr(iterErr, fieldErr); err != nil {
			return nil, fmt.Errorf("%w: reading edges: %w", ErrGraphBuild, err)
		}
	}
	g.numEdges = uint64(len(pending))

	g.outOffsets, g.outEdges = compress(g.numVertices, pending, false)
	if opts.Undirected {
		g.inOffsets, g.inEdges = g.outOffsets, g.outEdges
	} else if opts.Reverse {
		g.inOffsets, g.inEdges = compress(g.numVertices, pending, true)
	}

	buildSeconds.Observe(watch.Elapsed().Seconds())
	log.Info().Msg("Built view: V " + utils.V(g.numVertices) + " E " + utils.V(g.numEdges) +
		" undirected " + strconv.FormatBool(opts.Undirected) + " reverse " + strconv.FormatBool(g.HasInEdges()) +
		" in " + utils.V(watch.Elapsed().Milliseconds()) + "ms")
	return g, nil
}

// Counting sort of the pending edges into CSR, keeping the order they were read in.
// When transposed, the list is grouped by destination and entries point back to the source.
func compress(n uint32, pending []pendingEdge, transposed bool) (offsets []uint64, edges []Edge) {
	offsets = make([]uint64, n+1)
	for _, p := range pending {
		key := p.src
		if transposed {
			key = p.e.Didx
		}
		offsets[key+1]++
	}
	for i := uint32(0); i < n; i++ {
		offsets[i+1] += offsets[i]
	}
	fill := make([]uint64, n)
	copy(fill, offsets[:n])
	edges = make([]Edge, len(pending))
	for _, p := range pending {
		key, e := p.src, p.e
		if transposed {
			key = p.e.Didx
			e.Didx = p.src
		}
		edges[fill[key]] = e
		fill[key]++
	}
	return offsets, edges
}

func indexNames(names []string) map[string]uint16 {
	idx := make(map[string]uint16, len(names))
	for i, n := range names {
		idx[n] = uint16(i)
	}
	return idx
}

// Labels the schema did not list are appended as they are seen. Type indexes are uint16.
func typeIndex(idx map[string]uint16, names *[]string, label string) (uint16, error) {
	if t, ok := idx[label]; ok {
		return t, nil
	}
	if len(*names) >= MAX_TYPES {
		return 0, fmt.Errorf("label %q: more than %d distinct labels", label, MAX_TYPES)
	}
	t := uint16(len(*names))
	idx[label] = t
	*names = append(*names, label)
	return t, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
