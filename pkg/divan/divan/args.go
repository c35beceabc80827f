package divan

import (
	"fmt"

	"github.com/ja7ad/divan/pkg/divan/bench"
)

// RegisterArgs expands one benchmark over a set of runtime argument
// values, appending one registry record per value. The records share
// path and defaults and differ only in the value captured by their Exec
// closure; each value's formatted form becomes the record's
// GenericLabel, so the report tree shows the argument sweep as a child
// level beneath the entry.
func RegisterArgs[T any](path string, defaults bench.Options, values []T, exec func(b *Bencher, arg T)) {
	for _, v := range values {
		Register(BenchmarkEntry{
			Path:         path,
			GenericLabel: fmt.Sprint(v),
			Defaults:     defaults,
			Exec:         func(b *Bencher) { exec(b, v) },
		})
	}
}

// RegisterConsts is RegisterArgs for compile-time-style constant sweeps
// (buffer sizes, batch widths): a fixed list of unsigned constants, one
// registry record each. Go has no const-generic instantiation, so the
// constants are ordinary captured values; keeping a distinct entry point
// preserves the caller's intent that these are structural parameters of
// the benchmark, not data inputs.
func RegisterConsts(path string, defaults bench.Options, consts []uint64, exec func(b *Bencher, c uint64)) {
	for _, c := range consts {
		Register(BenchmarkEntry{
			Path:         path,
			GenericLabel: fmt.Sprint(c),
			Defaults:     defaults,
			Exec:         func(b *Bencher) { exec(b, c) },
		})
	}
}
