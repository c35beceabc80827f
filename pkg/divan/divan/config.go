package divan

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ja7ad/divan/pkg/divan/bench"
	"github.com/ja7ad/divan/pkg/divan/counter"
)

// GroupDefault attaches a bench.Options override to every registry path
// sharing the given prefix. A group is just the common prefix of a set
// of dotted paths; there is no separate group-declaration type to
// register.
type GroupDefault struct {
	PathPrefix string
	Options    bench.Options
}

// Config is the full option-precedence chain: entry defaults (carried
// on each BenchmarkEntry) widen into ancestor group defaults, then
// Global, then Env, then CLI, each later layer overriding every field it
// sets to a non-zero value (see bench.Options.Merge).
type Config struct {
	Groups []GroupDefault
	Global bench.Options
	Env    bench.Options
	CLI    bench.Options
}

// Resolve computes the final bench.Options for one registry entry by
// applying every precedence layer in ascending order.
func (c Config) Resolve(entry BenchmarkEntry) bench.Options {
	out := entry.Defaults
	for _, g := range c.Groups {
		if strings.HasPrefix(entry.Path, g.PathPrefix) {
			out = out.Merge(g.Options)
		}
	}
	out = out.Merge(c.Global)
	out = out.Merge(c.Env)
	out = out.Merge(c.CLI)
	return out
}

// ResolveCounter decides which counter kind, if any, should drive the
// throughput column for one (entry, Bencher) run. Precedence (highest
// first): a counter kind the benchmark body itself attached via
// CountInputsAs, then whatever the resolved configuration
// (CLI/env/global/group, already merged by Resolve) carries. A counter
// kind set directly on the benchmark describes that specific body's
// data better than any ambient default, so it always wins when set. An
// InputCounter function carries no single kind and is not consulted here.
func ResolveCounter(b *Bencher, opts bench.Options) (counter.Kind, bool) {
	if b.counterIsSet {
		return b.counterKind, true
	}
	if opts.CounterIsSet {
		return opts.CounterKind, true
	}
	return 0, false
}

// EnvOptions reads the DIVAN_* environment variables into a bench.Options
// overlay, parsed with the same strconv/time.ParseDuration conventions
// as the corresponding CLI flags. A malformed value is reported as
// ErrConfig, naming the offending variable, rather than silently ignored.
func EnvOptions(getenv func(string) string) (bench.Options, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	var out bench.Options

	if v := getenv("DIVAN_SAMPLE_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return out, fmt.Errorf("%w: DIVAN_SAMPLE_COUNT: %v", ErrConfig, err)
		}
		out.SampleCount = n
	}
	if v := getenv("DIVAN_SAMPLE_SIZE"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return out, fmt.Errorf("%w: DIVAN_SAMPLE_SIZE: %v", ErrConfig, err)
		}
		out.SampleSize = n
	}
	if v := getenv("DIVAN_MIN_TIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return out, fmt.Errorf("%w: DIVAN_MIN_TIME: %v", ErrConfig, err)
		}
		out.MinTime = d
	}
	if v := getenv("DIVAN_MAX_TIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return out, fmt.Errorf("%w: DIVAN_MAX_TIME: %v", ErrConfig, err)
		}
		out.MaxTime = d
	}
	if v := getenv("DIVAN_THREADS"); v != "" {
		threads, err := parseThreadList(v)
		if err != nil {
			return out, fmt.Errorf("%w: DIVAN_THREADS: %v", ErrConfig, err)
		}
		out.Threads = threads
	}
	if v := getenv("DIVAN_ITEMS_COUNT"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return out, fmt.Errorf("%w: DIVAN_ITEMS_COUNT: %v", ErrConfig, err)
		}
		out.CounterKind, out.CounterIsSet, out.CounterValue = counter.ItemsCount, true, n
	}
	if v := getenv("DIVAN_BYTES_COUNT"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return out, fmt.Errorf("%w: DIVAN_BYTES_COUNT: %v", ErrConfig, err)
		}
		out.CounterKind, out.CounterIsSet, out.CounterValue = counter.BytesCount, true, n
	}
	if v := getenv("DIVAN_CHARS_COUNT"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return out, fmt.Errorf("%w: DIVAN_CHARS_COUNT: %v", ErrConfig, err)
		}
		out.CounterKind, out.CounterIsSet, out.CounterValue = counter.CharsCount, true, n
	}

	return out, nil
}

func parseThreadList(v string) ([]int, error) {
	parts := strings.Split(v, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
