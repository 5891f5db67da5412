// Package flow implements the rooted directed graphs the decompiler builds
// over basic blocks, and the dominance analyses (depth-first spanning tree,
// Lengauer-Tarjan dominator tree, dominance frontiers) SSA construction
// consumes.
package flow

import (
	"fmt"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("flow")

// Key identifies a basic block, typically its address.
type Key uint64

// Node is a graph vertex with ordered successor and predecessor lists.
// Analysis results (Dfnum, Idom, frontier) live on the nodes of the derived
// graph that computed them, never on the input graph's nodes.
type Node struct {
	key Key
	out []*Node
	in  []*Node

	dfnum int   // pre-order rank within a spanning tree
	idom  *Node // immediate dominator within a dominator tree

	df     []*Node // memoized dominance frontier
	dfDone bool
}

func (n *Node) Key() Key { return n.key }

// Dfnum is the node's pre-order DFS rank; meaningful on spanning-tree and
// dominator-tree nodes.
func (n *Node) Dfnum() int { return n.dfnum }

// Idom is the node's immediate dominator; nil on the root and on nodes that
// do not belong to a dominator tree.
func (n *Node) Idom() *Node { return n.idom }

// Successors returns the outbound neighbors in edge-insertion order.
func (n *Node) Successors() []*Node { return n.out }

// Predecessors returns the inbound neighbors in edge-insertion order.
func (n *Node) Predecessors() []*Node { return n.in }

// Graph is a directed graph with unique keys, insertion-ordered node
// iteration and an optional root.
type Graph struct {
	nodes map[Key]*Node
	order []*Node
	root  *Node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[Key]*Node)}
}

// NewDirected builds a rooted graph from node keys and (src, dst) edge
// pairs, preserving both orders.
func NewDirected(keys []Key, edges [][2]Key, root Key) *Graph {
	g := NewGraph()
	for _, k := range keys {
		g.AddNode(k)
	}
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	g.SetRoot(root)
	return g
}

// AddNode adds a node for key and returns it. Re-adding an existing key
// overwrites: the node is reset in place and its edges are dropped from
// both endpoints.
func (g *Graph) AddNode(k Key) *Node {
	if n, ok := g.nodes[k]; ok {
		g.isolate(n)
		return n
	}
	n := &Node{key: k}
	g.nodes[k] = n
	g.order = append(g.order, n)
	return n
}

// isolate removes every edge touching n, keeping neighbor lists consistent.
func (g *Graph) isolate(n *Node) {
	for _, s := range n.out {
		s.in = remove(s.in, n)
	}
	for _, p := range n.in {
		p.out = remove(p.out, n)
	}
	n.out = nil
	n.in = nil
}

func remove(list []*Node, n *Node) []*Node {
	kept := list[:0]
	for _, m := range list {
		if m != n {
			kept = append(kept, m)
		}
	}
	return kept
}

// AddEdge records the edge src -> dst at the end of both endpoint lists.
// Referencing a key without a node is a programming error and panics.
func (g *Graph) AddEdge(src, dst Key) {
	s, ok := g.nodes[src]
	if !ok {
		panic(fmt.Sprintf("flow: edge %#x -> %#x references unknown node %#x", uint64(src), uint64(dst), uint64(src)))
	}
	d, ok := g.nodes[dst]
	if !ok {
		panic(fmt.Sprintf("flow: edge %#x -> %#x references unknown node %#x", uint64(src), uint64(dst), uint64(dst)))
	}
	s.out = append(s.out, d)
	d.in = append(d.in, s)
}

// Node returns the node stored under k, or nil.
func (g *Graph) Node(k Key) *Node { return g.nodes[k] }

// Nodes returns the nodes in insertion order. The slice is shared with the
// graph; callers must not modify it.
func (g *Graph) Nodes() []*Node { return g.order }

// Len is the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// SetRoot marks the entry node. The key must already be present.
func (g *Graph) SetRoot(k Key) {
	n, ok := g.nodes[k]
	if !ok {
		panic(fmt.Sprintf("flow: root %#x references unknown node", uint64(k)))
	}
	g.root = n
}

// Root returns the entry node, or nil for an unrooted graph.
func (g *Graph) Root() *Node { return g.root }
