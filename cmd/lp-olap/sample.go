package main

import (
	"bufio"
	"strconv"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/sampling"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSampleCmd(c *cli) *cobra.Command {
	var (
		seeds      []string
		seedKeys   []string
		numSamples uint32
		out        string
	)
	cmd := &cobra.Command{
		Use:   "sample <randomwalk|node2vec|negative>",
		Short: "Draws a training batch from a view of the graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := sampling.ParseKind(args[0])
			if err != nil {
				return err
			}
			raw, err := parseRawIDs(seeds)
			if err != nil {
				return err
			}
			keys := make([]graph.IndexKey, len(seedKeys))
			for i, s := range seedKeys {
				if keys[i], err = graph.ParseIndexKey(s); err != nil {
					return err
				}
			}
			g, keyed, found, err := c.view(cmd.Context(), keys...)
			if err != nil {
				return err
			}
			sp := c.opts.Sampling
			params := sampling.Params{
				Steps:        sp.Steps,
				WalksPerSeed: sp.WalksPerSeed,
				P:            sp.P,
				Q:            sp.Q,
				NumSamples:   numSamples,
				Confidence:   sp.Confidence,
				RandSeed:     sp.RandSeed,
			}
			if kind != sampling.NEGATIVE {
				params.Seeds = denseSeeds(g, raw)
				// Unresolved keys still take a batch slot, as failed walks.
				for i, ok := range found {
					if ok {
						params.Seeds = append(params.Seeds, denseSeeds(g, keyed[i:i+1])...)
					} else {
						log.Warn().Msg("No vertex with " + keys[i].String())
						params.Seeds = append(params.Seeds, g.NumVertices())
					}
				}
				if len(seeds)+len(seedKeys) == 0 {
					params.Seeds = make([]uint32, g.NumVertices())
					for v := range params.Seeds {
						params.Seeds[v] = uint32(v)
					}
				}
			}
			res, err := sampling.Run(c.scheduler(), kind, g, params)
			if err != nil {
				return err
			}
			if out != "" {
				if err := writeBatches(out, g, res); err != nil {
					return err
				}
				log.Info().Msg("Wrote " + out + ".nodes and " + out + ".edges")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&seeds, "seeds", nil, "Raw ids to start walks from. Empty (with no --seed-keys) starts from every vertex.")
	f.StringSliceVar(&seedKeys, "seed-keys", nil, "Seeds by indexed field, as label.field=value.")
	f.Uint32Var(&numSamples, "samples", 1000, "Negative pairs to draw (negative).")
	f.StringVarP(&out, "out", "o", "", "Write the batch to <out>.nodes and <out>.edges.")
	f.Uint32Var(&c.opts.Sampling.Steps, "steps", c.opts.Sampling.Steps, "Hops per walk.")
	f.Uint32Var(&c.opts.Sampling.WalksPerSeed, "walks", c.opts.Sampling.WalksPerSeed, "Walks per seed.")
	f.Float64Var(&c.opts.Sampling.P, "p", c.opts.Sampling.P, "node2vec return parameter.")
	f.Float64Var(&c.opts.Sampling.Q, "q", c.opts.Sampling.Q, "node2vec in-out parameter.")
	f.Float64Var(&c.opts.Sampling.Confidence, "confidence", c.opts.Sampling.Confidence, "Standard deviations of headroom when oversampling negatives.")
	f.Int64Var(&c.opts.Sampling.RandSeed, "seed", c.opts.Sampling.RandSeed, "Random seed; equal seeds give equal batches.")
	return cmd
}

// Node rows are "vertex label type features..."; edge rows are "src dst type", all by raw id.
func writeBatches(prefix string, g *graph.GraphView, res *sampling.Result) error {
	nodes, err := utils.CreateFile(prefix + ".nodes")
	if err != nil {
		return err
	}
	defer nodes.Close()
	nw := bufio.NewWriter(nodes)
	for i := range res.Nodes.Vertex {
		nw.WriteString(strconv.FormatUint(uint64(res.Nodes.Original[i]), 10) + " " +
			strconv.FormatInt(res.Nodes.Label[i], 10) + " " + g.VertexTypeName(res.Nodes.Type[i]))
		for _, f := range res.Nodes.Features[i] {
			nw.WriteString(" " + strconv.FormatFloat(f, 'g', -1, 64))
		}
		nw.WriteString("\n")
	}

	if err := nw.Flush(); err != nil {
		return err
	}

	edges, err := utils.CreateFile(prefix + ".edges")
	if err != nil {
		return err
	}
	defer edges.Close()
	ew := bufio.NewWriter(edges)
	for i := range res.Edges.Src {
		t := "negative"
		if res.Edges.Type[i] != sampling.NEGATIVE_TYPE {
			t = g.EdgeTypeName(res.Edges.Type[i])
		}
		ew.WriteString(strconv.FormatUint(uint64(g.OriginalVid(res.Edges.Src[i])), 10) + " " +
			strconv.FormatUint(uint64(g.OriginalVid(res.Edges.Dst[i])), 10) + " " + t + "\n")
	}
	return ew.Flush()
}
