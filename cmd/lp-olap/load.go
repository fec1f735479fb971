package main

import (
	"github.com/ScottSallinen/snapolap/store/badgerstore"
	"github.com/ScottSallinen/snapolap/store/edgelist"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newLoadCmd(c *cli) *cobra.Command {
	var (
		dir   string
		elist edgelist.Options
		syncW bool
	)
	cmd := &cobra.Command{
		Use:   "load <edge-list file>",
		Short: "Loads a \"src dst [weight]\" edge list into a badger store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = graphName(args[0]) + ".badger"
			}
			s, err := badgerstore.Open(badgerstore.Config{Path: dir, SyncWrites: syncW})
			if err != nil {
				return err
			}
			defer s.Close()

			watch := utils.Watch{}
			watch.Start()
			loader := s.NewLoader()
			stats, err := edgelist.LoadFile(args[0], loader, elist)
			if err != nil {
				loader.Cancel()
				return err
			}
			parsed := watch.Lap()
			if err := loader.Commit(); err != nil {
				return err
			}
			log.Info().Msg("Loaded " + utils.V(stats.Edges) + " edges between " + utils.V(stats.Vertices) +
				" vertices into " + dir + " in " + utils.V(watch.Elapsed().Milliseconds()) + "ms" +
				" (parse " + utils.V(parsed.Milliseconds()) + "ms, commit " + utils.V(watch.Lap().Milliseconds()) + "ms)")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&dir, "out", "o", "", "Badger directory. Defaults to <graph>.badger.")
	f.BoolVar(&elist.Transpose, "tr", false, "Interpret the input edges in reverse (flip src and dst).")
	f.BoolVar(&elist.SkipWeights, "noweights", false, "Ignore a third (weight) column.")
	f.StringVar(&elist.VertexLabel, "vlabel", "", "Label given to every vertex.")
	f.StringVar(&elist.EdgeLabel, "elabel", "", "Label given to every edge.")
	f.BoolVar(&syncW, "sync", false, "Sync writes to disk.")
	return cmd
}
