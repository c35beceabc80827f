// Package blackbox provides an optimization barrier: an opaque identity
// function the compiler cannot see through, used to wrap every value
// that crosses a benchmark's timed region so the value's production or
// consumption can't be constant-folded or eliminated as dead code.
//
// Go's compiler does not perform the kind of aggressive whole-program
// constant propagation that necessitates this in C/C++/Rust, but it does
// eliminate obviously-dead stores and can inline away trivial wrappers.
// Opaque and Drop defeat both: they pass the value to escape, which is
// marked noinline and stores it in an interface-typed package variable,
// which the escape analyzer must treat as globally observable.
package blackbox

// sink is written by escape but never read; its only purpose is to give
// the compiler a reason to believe every value passed to Opaque or Drop
// is live until that write completes.
var sink any

// Opaque returns v, having first forced it through a barrier the
// optimizer cannot see through. Wrap every value that enters or leaves a
// benchmark's timed region in Opaque so the compiler cannot fold away
// the work that produced it.
func Opaque[T any](v T) T {
	escape(v)
	return v
}

// Drop takes ownership of v, forces it through the same barrier as
// Opaque, and then lets it become garbage at an unpredictable point
// (Go has no manual free; a value is disposed of by making it
// collectible without returning it).
func Drop[T any](v T) {
	escape(v)
}

//go:noinline
func escape(v any) {
	sink = v
}
