package divan

import (
	"context"
	"fmt"
	stdpath "path"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/ja7ad/divan/pkg/divan/alloc"
	"github.com/ja7ad/divan/pkg/divan/bench"
	"github.com/ja7ad/divan/pkg/divan/counter"
	"github.com/ja7ad/divan/pkg/divan/report"
	"github.com/ja7ad/divan/pkg/divan/timer"
)

// Filter selects which registered entries a run considers, by dotted
// path. A path matching any Exclude pattern is dropped outright; the
// remainder is kept if Include is empty or it matches at least one
// Include pattern.
type Filter struct {
	Include []string
	Exclude []string
	Exact   bool // Exact selects glob matching (path.Match); unset selects regex
}

// Match reports whether path survives the filter.
func (f Filter) Match(path string) bool {
	for _, p := range f.Exclude {
		if matchPattern(p, path, f.Exact) {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, p := range f.Include {
		if matchPattern(p, path, f.Exact) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path string, exact bool) bool {
	if exact {
		ok, err := stdpath.Match(pattern, path)
		return err == nil && ok
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return strings.Contains(path, pattern)
	}
	return re.MatchString(path)
}

// Warning is a non-fatal problem observed during a run: an entry's panic
// or configuration error (Entry set), or a run-wide CPU-pinning failure,
// allocator conflict, or filter producing no matches (Entry empty).
// Driver.Run collects these instead of logging them directly —
// library packages stay silent; cmd/divan logs what it's handed.
type Warning struct {
	Entry string
	Err   error
}

// RunResult is everything a completed run produced: the rendered report
// tree, any entries whose body panicked, and non-fatal warnings.
type RunResult struct {
	Tree     *report.Tree
	Failed   []string
	Warnings []Warning

	ActiveCounters []counter.Kind
	ShowAlloc      bool
}

// Driver is the top-level orchestrator. It
// owns the process-wide thread pool and timer, resolves configuration
// per entry, runs the scheduler (or the multi-thread protocol) for each
// (entry, thread-count) pair, and aggregates the results into a report
// tree.
type Driver struct {
	cfg    Config
	filter Filter

	tm       *timer.Timer
	pool     *bench.Pool
	profiler *alloc.Profiler

	testMode    bool
	ignoredOnly bool
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithFilter sets the name filter applied to the registry before a run.
func WithFilter(f Filter) Option {
	return func(d *Driver) { d.filter = f }
}

// WithAllocProfiling enables the allocation profiler for every entry in
// the run. Disabled by default, since the runtime.ReadMemStats brackets
// add a per-sample setup cost to a run's total wall time. The brackets
// sit entirely outside each sample's timed region, so recorded
// durations need no discount for them.
func WithAllocProfiling(maxSlots int) Option {
	return func(d *Driver) {
		d.profiler = alloc.NewProfiler(maxSlots)
	}
}

// WithTestMode runs every benchmark exactly once with SampleCount=1,
// SampleSize=1, reporting pass/fail on panic only — Divan's "go test
// compatibility mode", since Go has no single universal "am I
// running under go test" signal the way some other ecosystems do.
func WithTestMode() Option {
	return func(d *Driver) { d.testMode = true }
}

// WithIgnoredOnly inverts entry selection to run only entries whose
// resolved Options.Ignore is true, instead of skipping them — the
// "--ignored" escape hatch for exercising benchmarks normally excluded
// by default (expensive ones, flaky ones under CI).
func WithIgnoredOnly() Option {
	return func(d *Driver) { d.ignoredOnly = true }
}

// NewDriver constructs a Driver ready to Run against the current
// process-global registry.
func NewDriver(cfg Config, opts ...Option) *Driver {
	d := &Driver{
		cfg:  cfg,
		tm:   timer.New(),
		pool: bench.NewPool(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Run walks the registry in natural order, applies the filter, runs
// every surviving entry at each of its resolved thread counts, and
// renders the aggregated results into a report.Tree. Cancelling ctx
// stops the run at the next sample boundary — an in-flight sample is
// never interrupted.
func (d *Driver) Run(ctx context.Context) (*RunResult, error) {
	all := sortedEntries()
	tree := report.NewTree()
	result := &RunResult{Tree: tree, ShowAlloc: d.profiler != nil}

	activeCounters := map[counter.Kind]bool{}
	matched := 0

	for _, entry := range all {
		if !d.filter.Match(entry.Path) {
			continue
		}
		matched++

		opts := d.cfg.Resolve(entry)
		if d.testMode {
			opts.SampleCount = 1
			opts.SampleSize = 1
		}
		if opts.Ignore != d.ignoredOnly {
			continue
		}

		threads := opts.ResolvedThreads(runtime.GOMAXPROCS(0))
		for _, n := range threads {
			leaf, kind, hasCounter, failed, local, err := d.runOne(entry, opts, n, func() bool {
				select {
				case <-ctx.Done():
					return true
				default:
					return false
				}
			})
			if err != nil {
				result.Warnings = append(result.Warnings, Warning{Entry: entry.Path, Err: err})
			}
			if failed {
				result.Failed = append(result.Failed, entry.Path)
			}
			if hasCounter {
				activeCounters[kind] = true
			}
			tree.Insert(entry.Path, entry.GenericLabel, leaf)

			if local {
				// BenchLocal forces single-threaded; the sweep's
				// remaining thread counts would be redundant repeats.
				break
			}
		}
	}

	if matched == 0 {
		result.Warnings = append(result.Warnings, Warning{Err: ErrNoMatch})
	}

	for k := range activeCounters {
		result.ActiveCounters = append(result.ActiveCounters, k)
	}

	if d.profiler != nil && d.profiler.Conflicted() {
		result.ShowAlloc = false
		result.Warnings = append(result.Warnings, Warning{Err: ErrAllocatorConflict})
	}
	if d.pool.PinWarning != nil {
		result.Warnings = append(result.Warnings, Warning{
			Err: fmt.Errorf("%w: %v", ErrPinUnavailable, d.pool.PinWarning),
		})
	}
	return result, nil
}

// sortedEntries snapshots the registry in natural path order, the same
// ordering the rendered tree uses, so entries run in the order they will
// be reported.
func sortedEntries() []BenchmarkEntry {
	all := entries()
	sort.SliceStable(all, func(i, j int) bool {
		return report.NaturalLess(all[i].Path, all[j].Path)
	})
	return all
}

// Matching lists the registered paths that would be run, applying the
// filter and the --ignored/ignore-default rule without executing
// anything — the "--list" CLI mode.
func (d *Driver) Matching() []string {
	var out []string
	for _, entry := range sortedEntries() {
		if !d.filter.Match(entry.Path) {
			continue
		}
		opts := d.cfg.Resolve(entry)
		if opts.Ignore != d.ignoredOnly {
			continue
		}
		out = append(out, entry.Path)
	}
	return out
}

// runOne runs one (entry, thread-count) measurement and returns its
// leaf entry for the report tree, plus whether the entry forced
// single-threaded execution via BenchLocal.
func (d *Driver) runOne(entry BenchmarkEntry, opts bench.Options, threads int, cancelled func() bool) (leaf report.LeafEntry, kind counter.Kind, hasCounter bool, failed bool, local bool, err error) {
	b, execErr := d.exec(entry, opts)
	if execErr != nil {
		return report.LeafEntry{Threads: threads, Failed: true}, 0, false, true, false, execErr
	}
	if !b.set {
		return report.LeafEntry{Threads: threads, Failed: true}, 0, false, true, false,
			fmt.Errorf("%w: %s: no Bench/BenchValues/BenchRefs/BenchLocal call", ErrConfig, entry.Path)
	}

	local = b.local
	if local {
		threads = 1
	}

	kind, hasCounter = ResolveCounter(b, opts)

	if d.profiler != nil {
		d.profiler.EnsureSlots(threads)
	}

	var samples []bench.Sample
	var runErr error
	if threads <= 1 {
		sched := &bench.Scheduler{Timer: d.tm, Profiler: d.profiler, SlotIdx: 0}
		samples, runErr = sched.Run(opts, b.region, cancelled)
	} else {
		samples, runErr = d.runMultiThreaded(opts, threads, entry, cancelled)
	}
	if runErr != nil {
		return report.LeafEntry{Threads: threads, Failed: true}, kind, hasCounter, true, local,
			fmt.Errorf("%w: %s: %v", ErrBenchmarkPanic, entry.Path, runErr)
	}

	if len(samples) == 0 {
		return report.LeafEntry{Threads: threads}, kind, hasCounter, false, local, nil
	}

	stats := report.Aggregate(samples)
	if hasCounter && opts.CounterValue > 0 && !stats.Counters.Active(kind) {
		// The benchmark body supplied no per-input counter of its own;
		// apply the CLI/env/config's fixed per-iteration count uniformly
		// (--items-count/--bytes-count/--chars-count N).
		stats.Counters.Add(kind, opts.CounterValue*stats.Iters)
	}
	return report.LeafEntry{Threads: threads, Stats: stats}, kind, hasCounter, false, local, nil
}

func (d *Driver) exec(entry BenchmarkEntry, opts bench.Options) (b *Bencher, err error) {
	b = newBencher(opts.SkipExtTime)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrBenchmarkPanic, entry.Path, r)
		}
	}()
	entry.Exec(b)
	return b, nil
}

func (d *Driver) runMultiThreaded(opts bench.Options, participants int, entry BenchmarkEntry, cancelled func() bool) ([]bench.Sample, error) {
	prepare := func(participant int) bench.RegionFunc {
		b, err := d.exec(entry, opts)
		if err != nil || !b.set {
			return func(uint64) bench.Region { return bench.Region{} }
		}
		return b.region
	}

	iters, err := d.chooseItersMulti(opts, participants, prepare)
	if err != nil {
		return nil, err
	}
	samples := make([]bench.Sample, 0, maxInt(opts.SampleCount, 1))

	var elapsed time.Duration
	for sampleIdx := 0; ; sampleIdx++ {
		results := d.pool.RunMultiThreadedSample(participants, d.tm, d.profiler, iters, prepare)
		if err := bench.FirstError(results); err != nil {
			return nil, err
		}
		wall := bench.WallDuration(results)

		var totals counter.Totals
		var tallies []alloc.Tally
		for _, r := range results {
			totals.Merge(r.Counters)
			if r.Alloc != nil {
				tallies = append(tallies, *r.Alloc)
			}
		}
		var tally *alloc.Tally
		if len(tallies) > 0 {
			m := alloc.Merge(tallies...)
			tally = &m
		}

		samples = append(samples, bench.Sample{Duration: wall, Iterations: iters, Counters: totals, Alloc: tally})
		elapsed += wall

		lastSample := opts.SampleCount > 0 && sampleIdx+1 >= opts.SampleCount
		timeUp := opts.MaxTime > 0 && elapsed >= opts.MaxTime
		minMet := opts.MinTime <= 0 || elapsed >= opts.MinTime

		if timeUp {
			break
		}
		if lastSample && minMet {
			break
		}
		if cancelled != nil && cancelled() {
			break
		}
	}
	return samples, nil
}

// chooseItersMulti mirrors Scheduler.chooseItersPerSample for the
// multi-thread protocol, where a probe must run every participant
// through Pool.RunMultiThreadedSample rather than a single inline call.
func (d *Driver) chooseItersMulti(opts bench.Options, participants int, prepare func(int) bench.RegionFunc) (uint64, error) {
	if opts.SampleSize > 0 {
		return opts.SampleSize, nil
	}

	target := d.tm.Granularity() * 1000
	iters := uint64(1)
	var lastProbe time.Duration
	for {
		results := d.pool.RunMultiThreadedSample(participants, d.tm, nil, iters, prepare)
		if err := bench.FirstError(results); err != nil {
			return 0, err
		}
		lastProbe = bench.WallDuration(results)
		if lastProbe >= target || iters >= 1<<30 {
			break
		}
		iters *= 2
	}

	if opts.MaxTime > 0 && opts.SampleCount > 0 && lastProbe > 0 {
		perIter := float64(lastProbe) / float64(iters)
		budgetPerSample := float64(opts.MaxTime) / float64(opts.SampleCount)
		if perIter > 0 {
			if capIters := uint64(budgetPerSample / perIter); capIters > 0 && capIters < iters {
				iters = capIters
			}
		}
	}
	return iters, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
