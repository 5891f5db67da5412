package flow

import "fmt"

// DomTree is the immediate-dominator tree of a control-flow graph. Edges
// run from a dominator to the nodes it immediately dominates; every node's
// Idom is its unique tree predecessor.
type DomTree struct {
	Graph
	src *Graph // the analyzed CFG, needed for frontier computation
}

// ltNode carries the per-node scratch of the Lengauer-Tarjan construction.
// It lives only for the duration of Dominators, keeping the public Node
// free of algorithm state.
type ltNode struct {
	tree     *Node // node in the spanning tree
	cfg      *Node // same key in the analyzed graph
	parent   *ltNode
	semi     *ltNode
	ancestor *ltNode
	best     *ltNode
	samedom  *ltNode
	idom     *ltNode
	bucket   []*ltNode
}

func (n *ltNode) dfnum() int { return n.tree.dfnum }

// Dominators computes the dominator tree of a rooted graph with the
// Lengauer-Tarjan algorithm. Nodes unreachable from the root are left out
// of the result; dominance queries against them report false.
func Dominators(g *Graph) (*DomTree, error) {
	t, err := SpanningTree(g)
	if err != nil {
		return nil, fmt.Errorf("flow: dominator tree: %w", err)
	}
	if t.Len() < g.Len() {
		log.Warningf("flow: %d of %d nodes unreachable from root %#x, omitted from dominator tree",
			g.Len()-t.Len(), g.Len(), uint64(g.Root().key))
	}

	// Scratch table in DFS order; seq[0] is the root.
	byKey := make(map[Key]*ltNode, t.Len())
	seq := make([]*ltNode, 0, t.Len())
	for _, tn := range t.Nodes() {
		n := &ltNode{tree: tn, cfg: g.Node(tn.key)}
		byKey[tn.key] = n
		seq = append(seq, n)
	}
	for _, n := range seq {
		if p := t.Parent(n.tree); p != nil {
			n.parent = byKey[p.key]
		}
	}

	// Semidominators and buckets, in reverse DFS order.
	for i := len(seq) - 1; i >= 1; i-- {
		n := seq[i]
		p := n.parent
		s := p
		for _, pred := range n.cfg.in {
			v, ok := byKey[pred.key]
			if !ok {
				continue // predecessor unreachable from the root
			}
			var cand *ltNode
			if v.dfnum() <= n.dfnum() {
				cand = v
			} else {
				cand = ancestorWithLowestSemi(v).semi
			}
			if cand.dfnum() < s.dfnum() {
				s = cand
			}
		}
		n.semi = s
		addToBucket(s, n)

		// Link n under its spanning-tree parent.
		n.ancestor = p
		n.best = n

		for len(p.bucket) > 0 {
			v := p.bucket[len(p.bucket)-1]
			p.bucket = p.bucket[:len(p.bucket)-1]
			y := ancestorWithLowestSemi(v)
			if y.semi == v.semi {
				v.idom = p
			} else {
				v.samedom = y
			}
		}
	}

	// Deferred idoms, in DFS order.
	for _, n := range seq[1:] {
		if n.samedom != nil {
			n.idom = n.samedom.idom
		}
	}

	dt := &DomTree{Graph: Graph{nodes: make(map[Key]*Node)}, src: g}
	for _, n := range seq {
		dt.AddNode(n.tree.key).dfnum = n.dfnum()
	}
	for _, n := range seq[1:] {
		dt.AddEdge(n.idom.tree.key, n.tree.key)
	}
	dt.SetRoot(seq[0].tree.key)
	for _, dn := range dt.order {
		if len(dn.in) > 0 {
			dn.idom = dn.in[0]
		}
	}
	return dt, nil
}

// addToBucket appends n to s's bucket unless it is already there.
func addToBucket(s, n *ltNode) {
	for _, m := range s.bucket {
		if m == n {
			return
		}
	}
	s.bucket = append(s.bucket, n)
}

// ancestorWithLowestSemi walks n's linked ancestors with path compression
// and returns the one whose semidominator has the lowest DFS rank.
func ancestorWithLowestSemi(n *ltNode) *ltNode {
	a := n.ancestor
	if a.ancestor != nil {
		b := ancestorWithLowestSemi(a)
		n.ancestor = a.ancestor
		if b.semi.dfnum() < n.best.semi.dfnum() {
			n.best = b
		}
	}
	return n.best
}

// Dominates reports whether v dominates u. Every node dominates itself.
// Keys absent from the tree (unreachable in the CFG) never dominate and are
// never dominated.
func (dt *DomTree) Dominates(v, u Key) bool {
	vn := dt.Node(v)
	un := dt.Node(u)
	if vn == nil || un == nil {
		return false
	}
	for n := un; n != nil; n = n.idom {
		if n == vn {
			return true
		}
	}
	return false
}

// StrictlyDominates reports whether v dominates u and v != u.
func (dt *DomTree) StrictlyDominates(v, u Key) bool {
	return v != u && dt.Dominates(v, u)
}

func (dt *DomTree) dominatesNode(v, u *Node) bool {
	for n := u; n != nil; n = n.idom {
		if n == v {
			return true
		}
	}
	return false
}
