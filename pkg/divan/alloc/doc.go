// Package alloc implements Divan's allocation profiler: an optional
// attribution layer that tallies allocation count, freed count, and
// total/peak bytes, scoped to the sample currently executing.
//
// Go exposes no global-allocator hook comparable to Rust's GlobalAlloc,
// so this package samples runtime.MemStats immediately before and after
// a timed region and attributes the delta to that region. This means
// attribution is precise to "what happened between these two reads,"
// not to a specific allocation site, and is accurate only when a single
// sample is active process-wide at a time: runtime.MemStats is
// process-wide, so in a multi-threaded sample each participant's Tally
// also counts the other participants' allocations.
//
// Thread-local attribution: Go exposes no portable TLS to user code, so
// rather than simulate per-OS-thread storage, the thread pool assigns
// each participant a small integer slot index up front; Profiler keys
// its tallies on that slot rather than on a goroutine or OS thread
// identity.
package alloc
