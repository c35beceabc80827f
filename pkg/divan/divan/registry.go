package divan

import (
	"sync"

	"github.com/ja7ad/divan/pkg/divan/bench"
)

// BenchmarkEntry is one record in the process-wide registry, populated
// by a call to Register from a registered benchmark's init function.
// Path is a "/"-separated group path (e.g. "encode/json"); GenericLabel,
// when non-empty, names the argument value a RegisterArgs/RegisterConsts
// record captured (its fmt.Sprint form, e.g. "16", "1024") and becomes
// its own level beneath the entry in the reported tree.
type BenchmarkEntry struct {
	Path         string
	GenericLabel string
	Exec         func(b *Bencher)
	Defaults     bench.Options
}

var (
	registryMu sync.Mutex
	registry   []BenchmarkEntry
)

// Register appends entry to the global registry. Benchmarks call this
// from their own init() function — Go's nearest equivalent to
// link-time/constructor-based discovery (see DESIGN.md,
// "Pre-main registration"). Safe to call concurrently, though in
// practice every call happens during single-threaded package
// initialization.
func Register(entry BenchmarkEntry) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, entry)
}

// entries returns a snapshot of the registry. The registry is
// effectively read-only once the driver starts walking it, but a copy
// avoids any chance of a caller mutating the backing array of the live
// slice.
func entries() []BenchmarkEntry {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]BenchmarkEntry, len(registry))
	copy(out, registry)
	return out
}

// resetRegistry clears the global registry. Used only by the package's
// tests, which must not leak entries across test cases.
func resetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = nil
}
