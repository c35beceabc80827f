package alloc

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Tally is the per-sample allocation accounting described by the data
// model's AllocTally: counts and byte totals for allocation and freeing,
// plus MaxLiveBytes and MaxLiveCount. Those two are read at the end of
// the window, not tracked as peaks: MaxLiveBytes is the process's
// HeapAlloc when Stop runs, and MaxLiveCount is the window's net
// allocation count (AllocCount minus FreeCount, or 0).
type Tally struct {
	AllocCount uint64
	FreeCount  uint64
	AllocBytes uint64
	FreeBytes  uint64

	MaxLiveBytes uint64
	MaxLiveCount uint64
}

// merge folds other's counts into t, used to combine per-slot tallies
// from a multi-threaded sample into one reported AllocTally.
func (t *Tally) merge(other Tally) {
	t.AllocCount += other.AllocCount
	t.FreeCount += other.FreeCount
	t.AllocBytes += other.AllocBytes
	t.FreeBytes += other.FreeBytes
	if other.MaxLiveBytes > t.MaxLiveBytes {
		t.MaxLiveBytes = other.MaxLiveBytes
	}
	if other.MaxLiveCount > t.MaxLiveCount {
		t.MaxLiveCount = other.MaxLiveCount
	}
}

// slot holds the activation-window flag for one thread-pool
// participant. An unset active means "do not attribute". Go has no
// allocator hook to consult it from, so instead Profiler brackets each
// timed region with runtime.ReadMemStats and only ever touches a slot
// from the goroutine that owns it, keeping the flag off any hot path
// entirely.
type slot struct {
	active atomic.Bool
	before runtime.MemStats
}

// Profiler is the allocation attribution engine. One Profiler instance
// is shared by a benchmark run; each thread-pool participant is given a
// distinct slot index (0 for the main thread, 1..N-1 for workers).
//
// Unlike an allocator-hook shim, whose bookkeeping runs inside the
// timed region on every allocation, the Start/Stop brackets here sit
// entirely outside the region's two clock reads (Start before the
// first, Stop after the second), so recorded sample durations carry no
// per-allocation profiler cost to discount.
type Profiler struct {
	mu    sync.Mutex
	slots []*slot

	conflict atomic.Bool // set once Start observes a window that was never Stopped
}

// NewProfiler constructs a Profiler with room for up to maxSlots
// concurrent participants.
func NewProfiler(maxSlots int) *Profiler {
	if maxSlots < 1 {
		maxSlots = 1
	}
	p := &Profiler{slots: make([]*slot, maxSlots)}
	for i := range p.slots {
		p.slots[i] = &slot{}
	}
	return p
}

// EnsureSlots grows the slot table, if necessary, to hold n participants.
// Callers must not have any sample window open while growing: the driver
// calls this between runs, before dispatching a multi-threaded sample
// whose participant count exceeds anything seen so far, so Start/Stop
// never observe the table mid-resize.
func (p *Profiler) EnsureSlots(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.slots) < n {
		p.slots = append(p.slots, &slot{})
	}
}

// Start publishes the activation window for slotIdx: allocations
// performed by the owning goroutine from this point until Stop are
// attributed to this sample. Nothing observed outside this window
// enters any sample.
//
// If slotIdx's previous window was never closed by Stop — a caller bug,
// since the scheduler and pool always pair Start with Stop around a
// single sample — the new snapshot would be attributed against a stale
// baseline and silently under/over-count. Start detects that case and
// latches Conflicted instead of corrupting the tally.
func (p *Profiler) Start(slotIdx int) {
	s := p.slots[slotIdx]
	if s.active.Load() {
		p.conflict.Store(true)
	}
	runtime.ReadMemStats(&s.before)
	s.active.Store(true)
}

// Conflicted reports whether this Profiler ever observed an overlapping
// Start/Stop window (ErrAllocatorConflict). The caller should disable
// allocation columns for the run but need not stop it — the conflict
// degrades attribution fidelity, it doesn't invalidate timing.
func (p *Profiler) Conflicted() bool {
	return p.conflict.Load()
}

// Stop clears the activation window for slotIdx and returns the Tally
// accumulated during it.
func (p *Profiler) Stop(slotIdx int) Tally {
	s := p.slots[slotIdx]
	s.active.Store(false)

	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	t := Tally{
		AllocCount: after.Mallocs - s.before.Mallocs,
		FreeCount:  after.Frees - s.before.Frees,
		AllocBytes: after.TotalAlloc - s.before.TotalAlloc,
	}
	// HeapAlloc is live bytes, not a cumulative freed counter; approximate
	// bytes freed during the window as what came in minus what's still live.
	live := s.before.HeapAlloc + t.AllocBytes
	if live > after.HeapAlloc {
		t.FreeBytes = live - after.HeapAlloc
	}
	t.MaxLiveBytes = after.HeapAlloc
	if t.AllocCount > t.FreeCount {
		t.MaxLiveCount = t.AllocCount - t.FreeCount
	}
	return t
}

// Merge combines tallies from every participant's slot into a single
// AllocTally for the reporter, as the multi-thread protocol's finalize
// phase requires.
func Merge(tallies ...Tally) Tally {
	var out Tally
	for _, t := range tallies {
		out.merge(t)
	}
	return out
}
