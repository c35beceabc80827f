package bench

import (
	"time"

	"github.com/ja7ad/divan/pkg/divan/alloc"
	"github.com/ja7ad/divan/pkg/divan/timer"
)

// Scheduler chooses iters_per_sample, runs the warmup probe, and
// collects samples for one (entry, thread-count) run until the
// sample-count/time budgets in Options are met.
type Scheduler struct {
	Timer *timer.Timer

	// Profiler and SlotIdx are both optional; a nil Profiler disables
	// allocation attribution entirely (allocator-conflict handling
	// lives one layer up, in the driver).
	Profiler *alloc.Profiler
	SlotIdx  int
}

// Run executes the sample loop and returns the raw sample vector.
// cancelled, if non-nil, is polled at sample boundaries only: a running
// sample is never interrupted. A benchmark body that panics inside the
// timed region is recovered and reported as the returned error; samples
// collected before the panic are discarded.
func (s *Scheduler) Run(opts Options, run RegionFunc, cancelled func() bool) ([]Sample, error) {
	if opts.Ignore {
		return nil, nil
	}

	iters, err := s.chooseItersPerSample(opts, run)
	if err != nil {
		return nil, err
	}
	samples := make([]Sample, 0, maxInt(opts.SampleCount, 1))

	var elapsed time.Duration
	for sampleIdx := 0; ; sampleIdx++ {
		sample, raw, err := s.runOneSample(iters, run)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
		elapsed += raw

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

func (s *Scheduler) runOneSample(iters uint64, run RegionFunc) (Sample, time.Duration, error) {
	if s.Profiler != nil {
		s.Profiler.Start(s.SlotIdx)
	}

	t0 := s.Timer.Now()
	region, err := runRegion(run, iters)
	t1 := s.Timer.Now()

	var tally *alloc.Tally
	if s.Profiler != nil {
		t := s.Profiler.Stop(s.SlotIdx)
		tally = &t
	}
	if err != nil {
		return Sample{}, 0, err
	}

	raw := s.Timer.Elapsed(t0, t1)
	dur := raw - s.Timer.SampleOverhead(iters)
	if dur < 0 {
		dur = 0
	}

	if region.Defer != nil {
		region.Defer()
	}

	return Sample{
		Duration:   dur,
		Iterations: iters,
		Counters:   region.Counters,
		Alloc:      tally,
	}, raw, nil
}

// chooseItersPerSample picks how many iterations make up one sample:
// an explicit SampleSize wins outright; otherwise a doubling probe runs
// until a single probe's duration clears 1000x the timer's granularity,
// then the result is capped so that the target sample count at that
// size fits within the maximum time budget.
func (s *Scheduler) chooseItersPerSample(opts Options, run RegionFunc) (uint64, error) {
	if opts.SampleSize > 0 {
		return opts.SampleSize, nil
	}

	target := s.Timer.Granularity() * 1000
	iters := uint64(1)
	var lastProbe time.Duration
	for {
		t0 := s.Timer.Now()
		if _, err := runRegion(run, iters); err != nil {
			return 0, err
		}
		lastProbe = s.Timer.Since(t0)
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
