// Package edgelist reads plain text edge lists ("src dst [weight]" per line, '#' comments)
// into any graph store writer.
package edgelist

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

// Implemented by memstore.Store and badgerstore.Loader.
type Writer interface {
	AddVertex(id graph.RawID, label string, fields graph.Fields) error
	AddEdge(src, dst graph.RawID, label string, fields graph.Fields) error
}

type Options struct {
	Transpose   bool   // Swap src and dst of every line.
	SkipWeights bool   // Ignore a third column.
	VertexLabel string // Defaults to graph.DEFAULT_VERTEX_LABEL.
	EdgeLabel   string // Defaults to graph.DEFAULT_EDGE_LABEL.
	BufferSize  int    // Line buffer; a longer line is an error. Defaults to 64KiB.
}

type Stats struct {
	Lines    uint64
	Vertices uint64
	Edges    uint64
}

const (
	DEFAULT_BUFFER_SIZE = 64 * 1024
	LOG_EVERY           = 1 << 22
)

// Vertices are created the first time an id appears, before the edge that mentions it.
func Load(r io.Reader, w Writer, opts Options) (stats Stats, err error) {
	if opts.VertexLabel == "" {
		opts.VertexLabel = graph.DEFAULT_VERTEX_LABEL
	}
	if opts.EdgeLabel == "" {
		opts.EdgeLabel = graph.DEFAULT_EDGE_LABEL
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DEFAULT_BUFFER_SIZE
	}

	scanner := utils.NewLineScanner(r, opts.BufferSize)

	seen := make(map[graph.RawID]struct{})
	addVertex := func(id graph.RawID) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}
		stats.Vertices++
		return w.AddVertex(id, opts.VertexLabel, nil)
	}

	fields := make([]string, 3)
	for {
		line := scanner.Scan()
		if line == nil {
			if err := scanner.Err(); err != nil {
				return stats, fmt.Errorf("edgelist: line %d: %w", stats.Lines+1, err)
			}
			break
		}
		stats.Lines++
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		n := utils.SplitFields(fields, line)
		if n == 0 {
			continue
		}
		if n < 2 {
			return stats, fmt.Errorf("edgelist: line %d: expected at least src and dst", stats.Lines)
		}
		src, ok := utils.ParseUint64(fields[0])
		if !ok {
			return stats, fmt.Errorf("edgelist: line %d: bad source id %q", stats.Lines, fields[0])
		}
		dst, ok := utils.ParseUint64(fields[1])
		if !ok {
			return stats, fmt.Errorf("edgelist: line %d: bad destination id %q", stats.Lines, fields[1])
		}
		if opts.Transpose {
			src, dst = dst, src
		}
		var edgeFields graph.Fields
		if n == 3 && !opts.SkipWeights {
			weight, perr := strconv.ParseFloat(fields[2], 64)
			if perr != nil {
				return stats, fmt.Errorf("edgelist: line %d: bad weight: %w", stats.Lines, perr)
			}
			edgeFields = graph.Fields{graph.DEFAULT_WEIGHT_FIELD: weight}
		}

		if err := addVertex(graph.RawID(src)); err != nil {
			return stats, err
		}
		if err := addVertex(graph.RawID(dst)); err != nil {
			return stats, err
		}
		if err := w.AddEdge(graph.RawID(src), graph.RawID(dst), opts.EdgeLabel, edgeFields); err != nil {
			return stats, err
		}
		stats.Edges++
		if stats.Edges%LOG_EVERY == 0 {
			log.Debug().Msg("Loaded " + utils.V(stats.Edges) + " edges")
		}
	}
	log.Info().Msg("Edge list: lines " + utils.V(stats.Lines) + " vertices " + utils.V(stats.Vertices) + " edges " + utils.V(stats.Edges))
	return stats, nil
}

func LoadFile(path string, w Writer, opts Options) (Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("edgelist: %w", err)
	}
	defer file.Close()
	return Load(file, w, opts)
}
