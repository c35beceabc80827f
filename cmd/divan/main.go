package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/ja7ad/divan/pkg/divan/bench"
	"github.com/ja7ad/divan/pkg/divan/counter"
	"github.com/ja7ad/divan/pkg/divan/divan"
	"github.com/ja7ad/divan/pkg/divan/report"
)

type opts struct {
	sampleCount int
	sampleSize  uint64
	minTime     time.Duration
	maxTime     time.Duration
	threads     []int

	itemsCount uint64
	bytesCount uint64
	charsCount uint64

	skipExtTime bool
	ignored     bool
	exact       bool
	list        bool
	test        bool

	skip       []string
	configPath string

	allocProfile bool
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "divan [name-filter]...",
		Short: "In-process micro-benchmarking harness",
		Long: `Divan runs registered in-process benchmarks, calibrating a monotonic
timer, scheduling enough iterations to measure precisely, and printing a
hierarchical, natural-sorted comparison table.

* GitHub: https://github.com/ja7ad/divan

Examples:
  divan
  divan --sample-count 50 --threads 1,2,4 encode
  divan --list
  divan --test`,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := run(cmd.Context(), o, args)
			exitCode = code
			return err
		},
	}

	flags := root.Flags()
	flags.IntVar(&o.sampleCount, "sample-count", 0, "number of samples to collect (0 = use config/group default)")
	flags.Uint64Var(&o.sampleSize, "sample-size", 0, "fixed iterations per sample (0 = choose automatically)")
	flags.DurationVar(&o.minTime, "min-time", 0, "minimum total measurement time per benchmark")
	flags.DurationVar(&o.maxTime, "max-time", 0, "maximum total measurement time per benchmark")
	flags.IntSliceVar(&o.threads, "threads", nil, "thread counts to sweep, e.g. 1,2,4 (0 = available parallelism)")

	flags.Uint64Var(&o.itemsCount, "items-count", 0, "attach a fixed items/sec counter to benchmarks with no counter of their own")
	flags.Uint64Var(&o.bytesCount, "bytes-count", 0, "attach a fixed bytes/sec counter to benchmarks with no counter of their own")
	flags.Uint64Var(&o.charsCount, "chars-count", 0, "attach a fixed chars/sec counter to benchmarks with no counter of their own")

	flags.BoolVar(&o.skipExtTime, "skip-ext-time", false, "defer disposal of benchmark outputs until after the timed region")
	flags.BoolVar(&o.ignored, "ignored", false, "run only benchmarks marked Ignore, instead of skipping them")
	flags.BoolVar(&o.exact, "exact", false, "match name filters as glob patterns instead of regular expressions")
	flags.BoolVar(&o.list, "list", false, "list matching benchmarks without running them")
	flags.BoolVar(&o.test, "test", false, "run every benchmark once, reporting pass/fail on panic only")
	flags.StringArrayVar(&o.skip, "skip", nil, "exclude benchmarks matching this name filter (repeatable)")
	flags.StringVar(&o.configPath, "config", "divan.toml", "path to an optional project defaults file")
	flags.BoolVar(&o.allocProfile, "alloc-profile", false, "enable the allocation profiler")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// exitCode communicates the non-error "benchmark panicked" exit status
// (101) out of RunE, since a run that completes without a Go error can
// still need a nonzero exit.
var exitCode int

func run(ctx context.Context, o opts, filters []string) (int, error) {
	cliOpts, err := cliOptions(o)
	if err != nil {
		return 1, fmt.Errorf("%w: %v", divan.ErrConfig, err)
	}

	envOpts, err := divan.EnvOptions(nil)
	if err != nil {
		return 1, err
	}

	cfg := divan.Config{
		Global: bench.DefaultOptions(),
		Env:    envOpts,
		CLI:    cliOpts,
	}

	if fileOpts, ok, ferr := loadTOML(o.configPath); ferr != nil {
		return 1, fmt.Errorf("%w: %s: %v", divan.ErrConfig, o.configPath, ferr)
	} else if ok {
		cfg.Global = cfg.Global.Merge(fileOpts)
	}

	filter := divan.Filter{Include: filters, Exclude: o.skip, Exact: o.exact}

	driverOpts := []divan.Option{divan.WithFilter(filter)}
	if o.test {
		driverOpts = append(driverOpts, divan.WithTestMode())
	}
	if o.ignored {
		driverOpts = append(driverOpts, divan.WithIgnoredOnly())
	}
	if o.allocProfile {
		maxSlots := 1
		for _, n := range cliOpts.Threads {
			if n > maxSlots {
				maxSlots = n
			}
		}
		driverOpts = append(driverOpts, divan.WithAllocProfiling(maxSlots))
	}

	d := divan.NewDriver(cfg, driverOpts...)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if o.list {
		return listMatching(d), nil
	}

	result, err := d.Run(ctx)
	if err != nil {
		return 1, err
	}

	for _, w := range result.Warnings {
		if w.Entry != "" {
			slog.Warn("benchmark warning", "entry", w.Entry, "err", w.Err)
		} else {
			slog.Warn("run warning", "err", w.Err)
		}
	}

	report.Render(os.Stdout, result.Tree, result.ActiveCounters, result.ShowAlloc)

	if len(result.Failed) > 0 {
		for _, path := range result.Failed {
			slog.Error("benchmark panicked", "entry", path)
		}
		return 101, nil
	}
	return 0, nil
}

func cliOptions(o opts) (bench.Options, error) {
	var out bench.Options
	out.SampleCount = o.sampleCount
	out.SampleSize = o.sampleSize
	out.MinTime = o.minTime
	out.MaxTime = o.maxTime
	if len(o.threads) > 0 {
		out.Threads = o.threads
	}
	out.SkipExtTime = o.skipExtTime

	switch {
	case o.itemsCount > 0:
		out.CounterKind, out.CounterIsSet, out.CounterValue = counter.ItemsCount, true, o.itemsCount
	case o.bytesCount > 0:
		out.CounterKind, out.CounterIsSet, out.CounterValue = counter.BytesCount, true, o.bytesCount
	case o.charsCount > 0:
		out.CounterKind, out.CounterIsSet, out.CounterValue = counter.CharsCount, true, o.charsCount
	}

	if out.MinTime > 0 && out.MaxTime > 0 && out.MinTime > out.MaxTime {
		return out, fmt.Errorf("min-time (%s) exceeds max-time (%s)", out.MinTime, out.MaxTime)
	}
	return out, nil
}

// tomlDefaults is the shape of an optional divan.toml project file,
// loaded with github.com/BurntSushi/toml the way the rest of this
// corpus loads checked-in defaults.
type tomlDefaults struct {
	SampleCount int    `toml:"sample_count"`
	SampleSize  uint64 `toml:"sample_size"`
	MinTime     string `toml:"min_time"`
	MaxTime     string `toml:"max_time"`
	Threads     []int  `toml:"threads"`
	SkipExtTime bool   `toml:"skip_ext_time"`
}

func loadTOML(path string) (bench.Options, bool, error) {
	if path == "" {
		return bench.Options{}, false, nil
	}
	if _, err := os.Stat(path); err != nil {
		return bench.Options{}, false, nil
	}

	var raw tomlDefaults
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return bench.Options{}, false, err
	}

	var out bench.Options
	out.SampleCount = raw.SampleCount
	out.SampleSize = raw.SampleSize
	out.Threads = raw.Threads
	out.SkipExtTime = raw.SkipExtTime
	if raw.MinTime != "" {
		d, err := time.ParseDuration(raw.MinTime)
		if err != nil {
			return out, false, err
		}
		out.MinTime = d
	}
	if raw.MaxTime != "" {
		d, err := time.ParseDuration(raw.MaxTime)
		if err != nil {
			return out, false, err
		}
		out.MaxTime = d
	}
	return out, true, nil
}

func listMatching(d *divan.Driver) int {
	for _, path := range d.Matching() {
		fmt.Println(path)
	}
	return 0
}
