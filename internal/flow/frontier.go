package flow

// Frontier returns the dominance frontier of the node stored under k: the
// keys where k's dominance ends. The result is a set; its order carries no
// meaning. Frontiers are memoized on the tree nodes, so repeated queries
// are cheap.
func (dt *DomTree) Frontier(k Key) []Key {
	n := dt.Node(k)
	if n == nil {
		return nil
	}
	df := dt.frontier(n)
	keys := make([]Key, len(df))
	for i, w := range df {
		keys[i] = w.key
	}
	return keys
}

// frontier computes DF(n) as DF-local (CFG successors n does not
// immediately dominate) joined with DF-up (the parts of each dominator-tree
// child's frontier that escape n).
func (dt *DomTree) frontier(n *Node) []*Node {
	if n.dfDone {
		return n.df
	}

	var df []*Node
	seen := make(map[Key]bool)
	add := func(w *Node) {
		if !seen[w.key] {
			seen[w.key] = true
			df = append(df, w)
		}
	}

	for _, s := range dt.src.Node(n.key).out {
		y := dt.Node(s.key)
		if y != nil && y.idom != n {
			add(y)
		}
	}
	for _, c := range n.out {
		for _, w := range dt.frontier(c) {
			if !dt.dominatesNode(n, w) || n == w {
				add(w)
			}
		}
	}

	n.df = df
	n.dfDone = true
	return df
}
