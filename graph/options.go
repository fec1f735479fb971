package graph

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Run configuration, as read from a yaml file. The CLI overrides fields with flags.
type Options struct {
	Threads   uint32            `yaml:"threads"`   // Workers for the scheduler. 0 means one per CPU.
	LogLevel  int               `yaml:"log_level"` // -1 warn, 0 info, 1 debug, 2+ trace.
	NoColour  bool              `yaml:"no_colour"`
	JSONLogs  bool              `yaml:"json_logs"`
	Metrics   string            `yaml:"metrics"` // Address to serve /metrics on; empty disables.
	Store     StoreConfig       `yaml:"store"`
	Filter    LabelFilter       `yaml:"filter"`
	Build     BuildOptions      `yaml:"build"`
	Algorithm AlgorithmDefaults `yaml:"algorithm"`
	Sampling  SamplingDefaults  `yaml:"sampling"`
}

type StoreConfig struct {
	Kind string `yaml:"kind"` // "badger" or "edgelist".
	Path string `yaml:"path"` // Badger directory, or edge-list file.
}

type AlgorithmDefaults struct {
	Iterations    uint32  `yaml:"iterations"`     // LPA and PageRank.
	Damping       float64 `yaml:"damping"`        // PageRank.
	Epsilon       float64 `yaml:"epsilon"`        // PageRank early exit; 0 disables.
	MaxSupersteps uint32  `yaml:"max_supersteps"` // 0 means the algorithm's own bound.
}

type SamplingDefaults struct {
	Steps        uint32  `yaml:"steps"`
	WalksPerSeed uint32  `yaml:"walks_per_seed"`
	P            float64 `yaml:"p"`
	Q            float64 `yaml:"q"`
	Confidence   float64 `yaml:"confidence"` // r of the negative sampling estimator.
	RandSeed     int64   `yaml:"rand_seed"`
}

func DefaultOptions() Options {
	return Options{
		Threads: uint32(runtime.NumCPU()),
		Store:   StoreConfig{Kind: "badger"},
		Build:   BuildOptions{WeightType: "none"},
		Algorithm: AlgorithmDefaults{
			Iterations: 10,
			Damping:    0.85,
		},
		Sampling: SamplingDefaults{
			Steps:        5,
			WalksPerSeed: 1,
			P:            1,
			Q:            1,
			Confidence:   3,
			RandSeed:     1,
		},
	}
}

// Reads a yaml file over the defaults. Unknown keys are an error.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	file, err := os.Open(path)
	if err != nil {
		return opts, err
	}
	defer file.Close()
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		return opts, fmt.Errorf("options %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("options %s: %w", path, err)
	}
	return opts, nil
}

// Checks ranges and resolves derived fields (the weight kind).
func (o *Options) Validate() error {
	var errs []error
	if o.Threads == 0 {
		o.Threads = uint32(runtime.NumCPU())
	} else if o.Threads > uint32(runtime.NumCPU()) {
		log.Warn().Msg("Thread count is greater than CPU count?")
	}
	switch o.Store.Kind {
	case "badger", "edgelist":
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", o.Store.Kind))
	}
	kind, err := ParseWeightKind(o.Build.WeightType)
	if err != nil {
		errs = append(errs, err)
	}
	o.Build.WeightKind = kind
	if o.Algorithm.Damping <= 0 || o.Algorithm.Damping >= 1 {
		errs = append(errs, fmt.Errorf("damping %v not in (0, 1)", o.Algorithm.Damping))
	}
	if o.Algorithm.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("epsilon %v is negative", o.Algorithm.Epsilon))
	}
	if o.Sampling.P <= 0 || o.Sampling.Q <= 0 {
		errs = append(errs, fmt.Errorf("node2vec p %v and q %v must be positive", o.Sampling.P, o.Sampling.Q))
	}
	if o.Sampling.Confidence < 0 {
		errs = append(errs, fmt.Errorf("confidence %v is negative", o.Sampling.Confidence))
	}
	return errors.Join(errs...)
}
