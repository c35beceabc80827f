// Package bench implements Divan's measurement core: the sample
// scheduler that decides how many iterations make up a sample and
// collects samples under time/sample budgets, the execution harness that
// runs a benchmark body inside a timed region, and the thread pool and
// barrier protocol that drives multi-threaded contention benchmarks.
//
// The package intentionally knows nothing about how a benchmark body was
// registered; pkg/divan/divan's Bencher facade adapts a user's closure
// into a RegionFunc and hands it to Scheduler.Run or Pool's
// multi-threaded entry point.
package bench
