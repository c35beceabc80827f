// Package divan is Divan's public surface: the process-wide benchmark
// registry, the Bencher facade a registered benchmark's body uses to
// select its execution shape, and the Driver that walks the registry,
// runs every entry through pkg/divan/bench, and renders the results
// with pkg/divan/report.
//
// A typical benchmark file registers itself from init:
//
//	func init() {
//	    divan.Register(divan.BenchmarkEntry{
//	        Path: "encode/json",
//	        Exec: func(b *divan.Bencher) {
//	            divan.Bench(b, func() []byte {
//	                return mustMarshal(payload)
//	            })
//	        },
//	    })
//	}
//
// cmd/divan builds a Config from flags/environment/divan.toml, calls
// NewDriver, and runs it once per invocation.
package divan
