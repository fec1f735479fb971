package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/ScottSallinen/snapolap/algorithm"
	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRunCmd(c *cli) *cobra.Command {
	var (
		root    uint64
		rootKey string
		top     uint32
		out     string
	)
	cmd := &cobra.Command{
		Use:   "run <" + strings.Join(algorithmNames(), "|") + ">",
		Short: "Runs one analytic over a view of the graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := algorithm.ParseKind(args[0])
			if err != nil {
				return err
			}
			var keys []graph.IndexKey
			if rootKey != "" {
				k, err := graph.ParseIndexKey(rootKey)
				if err != nil {
					return err
				}
				keys = append(keys, k)
			}
			g, keyed, found, err := c.view(cmd.Context(), keys...)
			if err != nil {
				return err
			}
			params := algorithm.Params{
				Iterations:    c.opts.Algorithm.Iterations,
				Damping:       c.opts.Algorithm.Damping,
				Epsilon:       c.opts.Algorithm.Epsilon,
				MaxSupersteps: c.opts.Algorithm.MaxSupersteps,
			}
			if kind == algorithm.BFS || kind == algorithm.SSSP {
				raw := graph.RawID(root)
				if len(keys) > 0 {
					if !found[0] {
						return fmt.Errorf("%w: no vertex with %v", graph.ErrNotFound, keys[0])
					}
					raw = keyed[0]
				}
				if params.Root, err = denseID(g, raw); err != nil {
					return err
				}
			}
			summary, err := algorithm.Run(c.scheduler(), kind, g, params)
			if err != nil {
				return err
			}
			report(g, summary, top)
			if out != "" {
				return writeResults(out, g, summary)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Uint64VarP(&root, "root", "r", 0, "Raw id of the source vertex (bfs, sssp).")
	f.StringVar(&rootKey, "root-key", "", "Source vertex by an indexed field, as label.field=value. Overrides --root.")
	f.Uint32Var(&top, "top", 10, "How many of the highest valued vertices to print (pagerank, lcc).")
	f.StringVarP(&out, "out", "o", "", "Write one \"vertex value\" line per vertex to this file.")
	f.Uint32Var(&c.opts.Algorithm.Iterations, "iterations", c.opts.Algorithm.Iterations, "Iterations (lpa, pagerank).")
	f.Float64Var(&c.opts.Algorithm.Damping, "damping", c.opts.Algorithm.Damping, "Damping factor (pagerank).")
	f.Float64Var(&c.opts.Algorithm.Epsilon, "epsilon", c.opts.Algorithm.Epsilon, "Stop once the summed rank change is below this; 0 runs all iterations (pagerank).")
	f.Uint32Var(&c.opts.Algorithm.MaxSupersteps, "max-supersteps", c.opts.Algorithm.MaxSupersteps, "Superstep cap; 0 is the vertex count (sssp, wcc).")
	return cmd
}

func algorithmNames() (names []string) {
	for _, k := range []algorithm.Kind{algorithm.BFS, algorithm.SSSP, algorithm.WCC, algorithm.LPA, algorithm.PAGERANK, algorithm.LCC} {
		names = append(names, k.String())
	}
	return names
}

func report(g *graph.GraphView, s *algorithm.Summary, top uint32) {
	switch {
	case s.BFS != nil:
		log.Info().Msg("Discovered " + utils.V(s.BFS.Discovered) + " of " + utils.V(g.NumVertices()) + " vertices")
	case s.SSSP != nil:
		log.Info().Msg("Reached " + utils.V(s.SSSP.Reached) + " vertices; furthest " + utils.V(g.OriginalVid(s.SSSP.MaxVertex)) + " at " + utils.V(s.SSSP.MaxDistance))
	case s.WCC != nil:
		log.Info().Msg("Components " + utils.V(s.WCC.Components) + "; largest " + utils.V(s.WCC.LargestSize) + " vertices, labelled " + utils.V(g.OriginalVid(s.WCC.LargestLabel)))
	case s.LPA != nil:
		log.Info().Msg("Communities " + utils.V(s.LPA.Communities) + "; changes per iteration " + utils.V(s.LPA.Changes))
	case s.PageRank != nil:
		log.Info().Msg("Final delta " + utils.F("%.3e", s.PageRank.FinalDelta) + " after " + utils.V(s.PageRank.Iterations) + " iterations")
		printTop(g, s.PageRank.Ranks, top)
	case s.LCC != nil:
		log.Info().Msg("Mean clustering coefficient " + utils.F("%.6f", s.LCC.Mean))
		printTop(g, s.LCC.Coefficients, top)
	}
}

func printTop(g *graph.GraphView, values []float64, top uint32) {
	for i, p := range algorithm.TopN(values, top) {
		log.Info().Msg(utils.F("%3d", i) + ": " + utils.F("%10d", g.OriginalVid(p.First)) + " " + utils.F("%.6f", p.Second))
	}
}

// One line per vertex, by raw id. Unreached vertices and missing parents are written as "-".
func writeResults(path string, g *graph.GraphView, s *algorithm.Summary) error {
	file, err := utils.CreateFile(path)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	id := func(v uint32) string {
		if v == algorithm.UNVISITED {
			return "-"
		}
		return strconv.FormatUint(uint64(g.OriginalVid(v)), 10)
	}
	float := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
	for v := uint32(0); v < g.NumVertices(); v++ {
		var value string
		switch {
		case s.BFS != nil:
			value = id(s.BFS.Parent[v])
		case s.SSSP != nil:
			value = float(s.SSSP.Distance[v])
		case s.WCC != nil:
			value = id(s.WCC.Labels[v])
		case s.LPA != nil:
			value = id(s.LPA.Labels[v])
		case s.PageRank != nil:
			value = float(s.PageRank.Ranks[v])
		case s.LCC != nil:
			value = float(s.LCC.Coefficients[v])
		}
		w.WriteString(id(v) + " " + value + "\n")
	}
	return w.Flush()
}
