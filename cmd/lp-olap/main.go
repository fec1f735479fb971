// Command lp-olap loads graphs into a store, and runs analytics and samplers over views of them.
package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// State shared by all subcommands of one invocation.
type cli struct {
	opts       graph.Options
	configPath string
	pprofAddr  string
	profile    bool
	vertexLbls string
	edgeLbls   string

	cpuProfile *os.File
}

func main() {
	if err := newRootCmd(&cli{opts: graph.DefaultOptions()}).Execute(); err != nil {
		log.Error().Err(err).Msg("lp-olap failed.")
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "lp-olap",
		Short:         "Parallel analytics and sampling over snapshots of a graph store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			c.teardown()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&c.configPath, "config", "", "Yaml options file. Flags given on the command line override it.")
	f.Uint32VarP(&c.opts.Threads, "threads", "t", c.opts.Threads, "Worker count for the scheduler.")
	f.IntVar(&c.opts.LogLevel, "debug", 0, "Log level: -1 warnings only, 0 info, 1 debug, 2+ trace.")
	f.BoolVar(&c.opts.NoColour, "nc", false, "Removes the colouring from the log output.")
	f.BoolVar(&c.opts.JSONLogs, "json", false, "Log JSON lines to stderr instead of the console writer.")
	f.StringVar(&c.opts.Metrics, "metrics", "", "If set, serves prometheus /metrics on the given address:port.")
	f.StringVar(&c.pprofAddr, "pprof", "", "If set, will serve pprof on the given address:port. E.g.\"0.0.0.0:6060\".")
	f.BoolVar(&c.profile, "profile", false, "Write a CPU profile of the command to <graph>.cpu.pprof and print memory stats.")

	f.StringVar(&c.opts.Store.Kind, "store", c.opts.Store.Kind, "Store kind: badger (a directory) or edgelist (a text file read into memory).")
	f.StringVarP(&c.opts.Store.Path, "graph", "g", "", "Badger directory or edge-list file.")
	f.StringVar(&c.vertexLbls, "vlabels", "", "Comma separated vertex labels of the view. Empty for all.")
	f.StringVar(&c.edgeLbls, "elabels", "", "Comma separated edge labels of the view. Empty for all.")
	f.BoolVarP(&c.opts.Build.Undirected, "undirected", "u", false, "Build an undirected view (every edge is mirrored).")
	f.BoolVar(&c.opts.Build.Reverse, "reverse", false, "Also build in-edges for a directed view.")
	f.StringVar(&c.opts.Build.WeightType, "weights", c.opts.Build.WeightType, "Edge weight type: none, int or float.")
	f.StringVar(&c.opts.Build.WeightField, "wfield", "", "Edge field holding the weight. Defaults to \""+graph.DEFAULT_WEIGHT_FIELD+"\" when weights are on.")

	root.AddCommand(newLoadCmd(c), newRunCmd(c), newSampleCmd(c), newStatsCmd(c))
	return root
}

// Applies the options file under any flags that were set, then configures logging and servers.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.configPath != "" {
		given := map[string]string{}
		cmd.Flags().Visit(func(f *pflag.Flag) {
			// Slice flags append on a second Set, and none of them live in the options.
			if !strings.HasSuffix(f.Value.Type(), "Slice") {
				given[f.Name] = f.Value.String()
			}
		})
		loaded, err := graph.LoadOptions(c.configPath)
		if err != nil {
			return err
		}
		c.opts = loaded
		for name, value := range given {
			if err := cmd.Flags().Set(name, value); err != nil {
				return err
			}
		}
	}
	if c.vertexLbls != "" {
		c.opts.Filter.VertexLabels = strings.Split(c.vertexLbls, ",")
	}
	if c.edgeLbls != "" {
		c.opts.Filter.EdgeLabels = strings.Split(c.edgeLbls, ",")
	}
	if err := c.opts.Validate(); err != nil {
		return err
	}
	if c.opts.Build.WeightKind != graph.NoWeight && c.opts.Build.WeightField == "" {
		c.opts.Build.WeightField = graph.DEFAULT_WEIGHT_FIELD
	}

	if c.opts.JSONLogs {
		utils.SetLoggerJSON(os.Stderr)
	} else if c.opts.NoColour {
		utils.SetLoggerConsole(true)
	}
	utils.SetLevel(c.opts.LogLevel)

	if c.pprofAddr != "" {
		go func() {
			log.Info().Msg("pprof Starting on " + c.pprofAddr)
			if err := http.ListenAndServe(c.pprofAddr, nil); err != nil {
				log.Error().Err(err).Msg("pprof Failed to start.")
			}
		}()
	}
	if c.opts.Metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info().Msg("Metrics on " + c.opts.Metrics + "/metrics")
			if err := http.ListenAndServe(c.opts.Metrics, mux); err != nil {
				log.Error().Err(err).Msg("Metrics server failed to start.")
			}
		}()
	}
	if c.profile {
		var err error
		if c.cpuProfile, err = utils.CreateFile(graphName(c.opts.Store.Path) + ".cpu.pprof"); err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(c.cpuProfile); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
	}
	return nil
}

func (c *cli) teardown() {
	if c.cpuProfile != nil {
		pprof.StopCPUProfile()
		c.cpuProfile.Close()
		utils.MemoryStats()
	}
}

func (c *cli) scheduler() *graph.Scheduler {
	return graph.NewScheduler(c.opts.Threads)
}

// Name of a graph for output files: the file or directory name without its extension.
func graphName(path string) string {
	path = strings.TrimRight(path, "/")
	name := path[strings.LastIndex(path, "/")+1:]
	if dot := strings.LastIndex(name, "."); dot > 0 {
		return name[:dot]
	}
	if name == "" {
		return "graph"
	}
	return name
}
