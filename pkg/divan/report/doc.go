// Package report computes robust statistics over a benchmark's sample
// vector and renders them into the hierarchical, natural-sorted
// comparison table Divan prints at the end of a run.
//
// Aggregate turns []bench.Sample into Statistics; Tree groups
// Statistics by dotted benchmark path, mirroring the group/entry
// structure of the registry; Render writes the tree as an aligned table
// using text/tabwriter.
package report
