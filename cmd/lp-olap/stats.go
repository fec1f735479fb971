package main

import (
	"github.com/spf13/cobra"
)

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Builds a view and prints its degree statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, _, _, err := c.view(cmd.Context())
			if err != nil {
				return err
			}
			g.ComputeStats()
			return nil
		},
	}
}
