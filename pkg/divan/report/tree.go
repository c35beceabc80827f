package report

import (
	"sort"
	"strings"
)

// Node is one node in the report tree. Interior nodes are groups and
// carry no Statistics of their own (unless a caller explicitly attaches
// some by inserting a leaf at the group's own path); leaf nodes are
// individual (entry, thread-count) measurements.
type Node struct {
	Name     string
	Children []*Node
	Entries  []LeafEntry // leaves attached directly at this node, one per thread-count
}

// LeafEntry is one (entry, thread-count) measurement at a tree leaf.
type LeafEntry struct {
	Threads int
	Stats   Statistics
	Failed  bool // true if the benchmark body panicked; Stats is then zero
}

// Tree is the root of a report. Insert benchmark paths into it in any
// order; Sort arranges every level by natural sort before rendering.
type Tree struct {
	Root Node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Insert attaches a LeafEntry at the node addressed by a dotted path
// (segments separated by "/"), creating intermediate group nodes as
// needed. A generic-type label, if present, becomes its own child level
// beneath the entry, so an argument or type sweep renders as siblings
// under one name.
func (t *Tree) Insert(path string, genericLabel string, entry LeafEntry) {
	segments := strings.Split(path, "/")
	if genericLabel != "" {
		segments = append(segments, genericLabel)
	}

	cur := &t.Root
	for _, seg := range segments {
		cur = cur.child(seg)
	}
	cur.Entries = append(cur.Entries, entry)
}

func (n *Node) child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	c := &Node{Name: name}
	n.Children = append(n.Children, c)
	return c
}

// Sort orders every level of the tree by natural sort, recursively, and
// orders each node's leaf entries by thread count.
func (t *Tree) Sort() {
	sortNode(&t.Root)
}

func sortNode(n *Node) {
	sort.Slice(n.Children, func(i, j int) bool {
		return NaturalLess(n.Children[i].Name, n.Children[j].Name)
	})
	sort.Slice(n.Entries, func(i, j int) bool {
		return n.Entries[i].Threads < n.Entries[j].Threads
	})
	for _, c := range n.Children {
		sortNode(c)
	}
}
