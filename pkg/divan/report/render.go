package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ja7ad/divan/pkg/divan/counter"
)

// Render writes the tree as an aligned table built on text/tabwriter,
// one row per (entry, thread-count) measurement, group rows indented
// above their children.
func Render(w io.Writer, t *Tree, activeCounters []counter.Kind, showAlloc bool) {
	t.Sort()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeHeader(tw, activeCounters, showAlloc)
	for _, c := range t.Root.Children {
		renderNode(tw, c, "", activeCounters, showAlloc)
	}
	tw.Flush()
}

func writeHeader(tw *tabwriter.Writer, activeCounters []counter.Kind, showAlloc bool) {
	cols := []string{"name", "fastest", "slowest", "median", "mean", "samples", "iters"}
	for _, k := range activeCounters {
		cols = append(cols, k.String()+"/s")
	}
	if showAlloc {
		cols = append(cols, "allocs", "alloc B")
	}
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func renderNode(tw *tabwriter.Writer, n *Node, indent string, activeCounters []counter.Kind, showAlloc bool) {
	for _, entry := range n.Entries {
		name := indent + n.Name
		if entry.Threads > 1 {
			name = fmt.Sprintf("%s (t=%d)", name, entry.Threads)
		}
		if entry.Failed {
			fmt.Fprintf(tw, "%s\tFAILED\t\t\t\t\t\n", name)
			continue
		}
		writeRow(tw, name, entry.Stats, activeCounters, showAlloc)
	}
	if len(n.Entries) == 0 && n.Name != "" {
		fmt.Fprintf(tw, "%s%s\t\t\t\t\t\t\n", indent, n.Name)
	}
	for _, c := range n.Children {
		renderNode(tw, c, indent+"  ", activeCounters, showAlloc)
	}
}

func writeRow(tw *tabwriter.Writer, name string, s Statistics, activeCounters []counter.Kind, showAlloc bool) {
	row := []string{
		name,
		fmtDuration(s.Fastest),
		fmtDuration(s.Slowest),
		fmtDuration(s.Median),
		fmtDuration(s.Mean),
		fmt.Sprintf("%d", s.Samples),
		fmt.Sprintf("%d", s.Iters),
	}
	for _, k := range activeCounters {
		row = append(row, fmtThroughput(s.Throughput(k), k))
	}
	if showAlloc {
		if s.Alloc != nil {
			row = append(row,
				fmt.Sprintf("%d", s.Alloc.AllocCount),
				fmt.Sprintf("%d", s.Alloc.AllocBytes),
			)
		} else {
			row = append(row, "-", "-")
		}
	}
	fmt.Fprintln(tw, strings.Join(row, "\t"))
}

func fmtDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%d ns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.2f µs", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2f ms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3f s", d.Seconds())
	}
}

func fmtThroughput(v float64, k counter.Kind) string {
	unit := "/s"
	if k == counter.CyclesCount {
		unit = " Hz"
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2f G%s", v/1e9, unit)
	case v >= 1e6:
		return fmt.Sprintf("%.2f M%s", v/1e6, unit)
	case v >= 1e3:
		return fmt.Sprintf("%.2f K%s", v/1e3, unit)
	default:
		return fmt.Sprintf("%.2f%s", v, unit)
	}
}
