package divan

import (
	"github.com/ja7ad/divan/pkg/divan/bench"
	"github.com/ja7ad/divan/pkg/divan/counter"
)

// Bencher is handed to a registered benchmark's Exec function. One of
// Bench, BenchLocal, or BenchValues(WithInputs(...), ...)/
// BenchRefs(WithInputs(...), ...) must be called on it; calling none is
// a configuration error the driver reports per entry rather than panics
// over, since a benchmark author's mistake shouldn't take the whole run
// down. Calling more than one is not reported: each call replaces the
// execution shape the previous one selected.
//
// Go forbids generic methods, so every operation needing a type
// parameter beyond its receiver's (Bench, BenchLocal, WithInputs,
// BenchValues, BenchRefs) is a free function taking the receiver as
// its first argument rather than a method on it.
type Bencher struct {
	skipExtTime bool
	local       bool

	counterKind  counter.Kind
	counterIsSet bool

	region bench.RegionFunc
	set    bool
}

func newBencher(skipExtTime bool) *Bencher {
	return &Bencher{skipExtTime: skipExtTime}
}

// CountInputsAs attaches a fixed per-iteration counter kind to a
// no-input benchmark, whose throughput isn't naturally countable from
// generated values the way an input_counter is: every iteration counts
// as 1 towards k. Call it before Bench/BenchLocal; the kind is captured
// when the execution shape is selected.
func (b *Bencher) CountInputsAs(k counter.Kind) *Bencher {
	b.counterKind = k
	b.counterIsSet = true
	return b
}

// iterCounter resolves the no-input shape's per-iteration counter: nil
// unless CountInputsAs attached a kind, in which case every iteration
// contributes 1 towards it.
func (b *Bencher) iterCounter() func() counter.Totals {
	if !b.counterIsSet {
		return nil
	}
	kind := b.counterKind
	return func() counter.Totals {
		var t counter.Totals
		t.Add(kind, 1)
		return t
	}
}

// Bench registers f as the no-input/values-out shape: f is called once
// per iteration and its result passed through the black-box barrier.
func Bench[O any](b *Bencher, f func() O) {
	b.region = bench.RunNoInput(f, b.iterCounter(), b.skipExtTime)
	b.set = true
}

// BenchLocal is identical to Bench except it forces this entry to run
// single-threaded even when the driver's thread sweep would otherwise
// run it at multiple thread counts — for benchmarks whose body isn't
// meaningful (or safe) to contend across threads.
func BenchLocal[O any](b *Bencher, f func() O) {
	b.region = bench.RunNoInput(f, b.iterCounter(), b.skipExtTime)
	b.set = true
	b.local = true
}

// Inputs carries a per-iteration input generator ahead of selecting the
// values-in or refs-in execution shape, and any counter the caller
// wants associated with it.
type Inputs[T any] struct {
	b       *Bencher
	gen     func() T
	counter func(T) counter.Totals
}

// WithInputs begins the values-in/refs-in chain: gen is called once per
// pre-generated input, ahead of the timed region.
func WithInputs[T any](b *Bencher, gen func() T) *Inputs[T] {
	return &Inputs[T]{b: b, gen: gen}
}

// InputCounter attaches a per-input counter function, taking precedence
// over any entry- or group-level counter default.
func (in *Inputs[T]) InputCounter(f func(T) counter.Totals) *Inputs[T] {
	in.counter = f
	return in
}

// CountInputsAs is InputCounter's fixed-kind convenience form: every
// input contributes 1 towards kind k, useful for simple "items/sec" or
// "bytes/sec" counters that don't depend on the input's own size.
func (in *Inputs[T]) CountInputsAs(k counter.Kind) *Inputs[T] {
	in.b.counterKind = k
	in.b.counterIsSet = true
	return in
}

// pool is the bounded size of the pre-generated input slice every
// values-in/refs-in benchmark draws from, cycling once exhausted (see
// pkg/divan/bench/harness.go and DESIGN.md). 4096 is large enough that
// realistic per-iteration state (cache lines, small buffers) doesn't
// repeat within a single CPU cache's working set for the vast majority
// of benchmarks, while staying a fixed, bounded allocation regardless of
// how many iterations the scheduler ultimately chooses to run.
const pool = 4096

// valuesCounter resolves the effective per-input counter function: an
// explicit InputCounter wins outright; otherwise, if CountInputsAs set a
// fixed kind, every input counts as 1 towards it.
func (in *Inputs[T]) valuesCounter() func(T) counter.Totals {
	if in.counter != nil {
		return in.counter
	}
	if !in.b.counterIsSet {
		return nil
	}
	kind := in.b.counterKind
	return func(T) counter.Totals {
		var t counter.Totals
		t.Add(kind, 1)
		return t
	}
}

// BenchValues registers f as the values-in/values-out shape: each
// iteration consumes a pre-generated input by value and its result is
// carried back through the black-box barrier the same as Bench's. A
// second type parameter on a *method* of Inputs[T] is forbidden by Go
// (a method can't declare type parameters beyond its receiver's), so
// BenchValues is a free function with T fixed by in and O inferred from
// f, the same pattern Bench/WithInputs already use (see DESIGN.md).
func BenchValues[T, O any](in *Inputs[T], f func(T) O) {
	inputs := bench.GenerateInputs(in.gen, pool)
	in.b.region = bench.RunValues(inputs, f, in.valuesCounter(), in.b.skipExtTime)
	in.b.set = true
}

// BenchRefs registers f as the refs-in shape, covering both the
// refs-in/values-out and refs-in/refs-out cases (see
// pkg/divan/bench/harness.go's RunRefs doc comment for why Go doesn't
// need to distinguish them). Like BenchValues, it is a free function
// rather than a method for the same generic-output reason.
func BenchRefs[T, O any](in *Inputs[T], f func(*T) O) {
	inputs := bench.GenerateInputs(in.gen, pool)
	valuesCounter := in.valuesCounter()
	var counterFn func(*T) counter.Totals
	if valuesCounter != nil {
		counterFn = func(p *T) counter.Totals { return valuesCounter(*p) }
	}
	in.b.region = bench.RunRefs(inputs, f, counterFn, in.b.skipExtTime)
	in.b.set = true
}
