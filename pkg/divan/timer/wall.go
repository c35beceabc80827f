package timer

import "time"

type wallBackend struct{}

func newWallBackend() backend { return wallBackend{} }

func (wallBackend) now() Instant { return Instant{wall: time.Now()} }

func (wallBackend) elapsed(start, end Instant) time.Duration {
	return end.wall.Sub(start.wall)
}

func (wallBackend) name() string { return "wall" }
