package bench

import (
	"runtime"
	"sync"
	"time"

	"github.com/ja7ad/divan/pkg/divan/alloc"
	"github.com/ja7ad/divan/pkg/divan/counter"
	"github.com/ja7ad/divan/pkg/divan/timer"
)

// job is the unit of work handed to a pool worker over its rendezvous
// channel. The zero-capacity channel keeps the pool's memory footprint
// small and keeps a sampling profiler's traces clean.
type job struct {
	run func()
}

// worker is one pinned, reusable goroutine in the pool.
type worker struct {
	ch      chan job
	pinErr  error
	pinOnce sync.Once
}

func newWorker(cpu int) *worker {
	w := &worker{ch: make(chan job)}
	ready := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		w.pinOnce.Do(func() {
			w.pinErr = pinCurrentThreadToCPU(cpu)
		})
		close(ready)
		for j := range w.ch {
			j.run()
		}
	}()
	<-ready
	return w
}

// Pool is a single process-wide pool of reusable worker goroutines
// pinned to inherit the main goroutine's OS-thread affinity, lazily
// sized to the largest thread count requested across every benchmark
// entry run so far.
type Pool struct {
	mu      sync.Mutex
	workers []*worker
	mainCPU int

	// PinWarning is set (non-fatal) the first time pinning a worker to a
	// CPU fails; pinning failure is an operational warning, not an error
	// that stops measurement.
	PinWarning error
}

// NewPool constructs an empty pool. Workers are created lazily by
// Ensure (which RunMultiThreadedSample calls) as larger thread counts are
// requested.
func NewPool() *Pool {
	return &Pool{mainCPU: pinMainThreadToCPU0()}
}

// Ensure grows the pool, if necessary, to support n participants total
// (1 inline on the caller plus n-1 pool workers).
func (p *Pool) Ensure(n int) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.workers) < n-1 {
		w := newWorker(p.mainCPU)
		if w.pinErr != nil && p.PinWarning == nil {
			p.PinWarning = w.pinErr
		}
		p.workers = append(p.workers, w)
	}
}

// MultiSample is one participant's contribution to a multi-threaded
// sample: its own measured duration, the iteration count it ran, its
// counter totals, and (if profiling is active) its allocation tally.
type MultiSample struct {
	Duration   time.Duration
	Iterations uint64
	Counters   counter.Totals
	Alloc      *alloc.Tally

	// Err is set when this participant's benchmark body panicked inside
	// the timed region; the other fields are then zero.
	Err error
}

// RunMultiThreadedSample drives one sample of the multi-thread
// protocol: each participant prepares and publishes its allocation
// slot, all rendezvous at Barrier-A, each times and runs its own
// iterations, all rendezvous at Barrier-B, then each finalizes its own
// sample. prepare is called once per participant, before Barrier-A, and
// must return the RegionFunc that participant will run.
func (p *Pool) RunMultiThreadedSample(
	participants int,
	tm *timer.Timer,
	profiler *alloc.Profiler,
	iters uint64,
	prepare func(participant int) RegionFunc,
) []MultiSample {
	p.Ensure(participants)
	bar := newBarrier(participants)
	results := make([]MultiSample, participants)

	run := func(participant int) {
		region := prepare(participant)
		if profiler != nil {
			profiler.Start(participant)
		}

		bar.Wait() // Barrier-A: all participants ready

		t0 := tm.Now()
		// runRegion recovers a panicking body here, before Barrier-B, so
		// the remaining participants are never left waiting on a dead one.
		reg, err := runRegion(region, iters)
		t1 := tm.Now()

		bar.Wait() // Barrier-B: all participants done

		var tally *alloc.Tally
		if profiler != nil {
			t := profiler.Stop(participant)
			tally = &t
		}

		if err != nil {
			results[participant] = MultiSample{Err: err}
			return
		}

		raw := tm.Elapsed(t0, t1)
		dur := raw - tm.SampleOverhead(iters)
		if dur < 0 {
			dur = 0
		}

		results[participant] = MultiSample{
			Duration:   dur,
			Iterations: iters,
			Counters:   reg.Counters,
			Alloc:      tally,
		}

		if reg.Defer != nil {
			reg.Defer()
		}
	}

	var wg sync.WaitGroup
	for i := 1; i < participants; i++ {
		participant := i
		w := p.workers[participant-1]
		wg.Add(1)
		w.ch <- job{run: func() {
			defer wg.Done()
			run(participant)
		}}
	}
	run(0)
	wg.Wait()

	return results
}

// FirstError returns the first participant's Err in results, if any
// benchmark body panicked during the sample.
func FirstError(results []MultiSample) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// WallDuration is the slowest participant's own duration: the sample's
// wall time for throughput purposes is the max across participants,
// since the slowest thread defines when the sample ends.
func WallDuration(results []MultiSample) time.Duration {
	var max time.Duration
	for _, r := range results {
		if r.Duration > max {
			max = r.Duration
		}
	}
	return max
}
