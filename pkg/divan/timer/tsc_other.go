//go:build !amd64

package timer

// No portable invariant-TSC primitive on this architecture; callers fall
// back to the wall-clock backend.
func newTSCBackend() (backend, bool) { return nil, false }
