package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/store/badgerstore"
	"github.com/ScottSallinen/snapolap/store/edgelist"
	"github.com/ScottSallinen/snapolap/store/memstore"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

// A store to read views from, and how to release it.
func (c *cli) openStore() (graph.Store, func() error, error) {
	path := c.opts.Store.Path
	if path == "" {
		return nil, nil, errors.New("no graph given (use -g)")
	}
	switch c.opts.Store.Kind {
	case "badger":
		s, err := badgerstore.Open(badgerstore.Config{Path: path, ReadOnly: true})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "edgelist":
		s := memstore.New()
		if _, err := edgelist.LoadFile(path, s, edgelist.Options{SkipWeights: c.opts.Build.WeightKind == graph.NoWeight}); err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store kind %q", c.opts.Store.Kind)
}

// Builds the configured view from a fresh snapshot, and resolves keys against the same store.
// found[i] is false when keys[i] names no vertex.
func (c *cli) view(ctx context.Context, keys ...graph.IndexKey) (g *graph.GraphView, keyed []graph.RawID, found []bool, err error) {
	s, closeStore, err := c.openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	defer closeStore()
	if len(keys) > 0 {
		if keyed, found, err = graph.Resolve(ctx, s, keys...); err != nil {
			return nil, nil, nil, err
		}
	}
	g, err = graph.Build(ctx, s, c.opts.Filter, c.opts.Build)
	return g, keyed, found, err
}

// Dense id of a raw id; the error wraps graph.ErrNotFound.
func denseID(g *graph.GraphView, raw graph.RawID) (uint32, error) {
	v, ok := g.DenseID(raw)
	if !ok {
		return 0, fmt.Errorf("%w: vertex %d is not in the view", graph.ErrNotFound, raw)
	}
	return v, nil
}

// Dense ids of walk seeds. Seeds outside the view become g.NumVertices(), which the
// sampler reports as a failed walk rather than failing the batch.
func denseSeeds(g *graph.GraphView, raw []graph.RawID) []uint32 {
	ids := make([]uint32, len(raw))
	for i, r := range raw {
		v, ok := g.DenseID(r)
		if !ok {
			log.Warn().Msg("Seed " + utils.V(r) + " is not in the view")
			v = g.NumVertices()
		}
		ids[i] = v
	}
	return ids
}

// Parses --seeds style decimal raw ids.
func parseRawIDs(values []string) ([]graph.RawID, error) {
	ids := make([]graph.RawID, len(values))
	for i, s := range values {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("raw id %q: %w", s, err)
		}
		ids[i] = graph.RawID(n)
	}
	return ids, nil
}
