package simplify

import (
	"github.com/tliron/commonlog"

	"raven/internal/ir"
)

var log = commonlog.GetLogger("simplify")

// ReduceExpr rewrites the tree rooted at e until no rule matches any
// subexpression, and returns the root of the reduced tree. Rewrites are
// committed in place through the tree's parent links; the returned root
// differs from e only when a rewrite replaced the root itself.
func ReduceExpr(e ir.Expr) ir.Expr {
	for {
		alt, changed := reduceOnce(e)
		if !changed {
			return e
		}
		e = alt
	}
}

// ReduceStmt reduces every expression slot the statement exposes.
func ReduceStmt(s ir.Stmt) {
	for i, e := range s.Exprs() {
		s.SetExpr(i, ReduceExpr(e))
	}
}

// reduceOnce runs a single pass: visit every subexpression in post-order,
// try the rules in priority order, commit the first rewrite and stop. The
// snapshot taken up front keeps the walk stable while the tree mutates.
func reduceOnce(root ir.Expr) (ir.Expr, bool) {
	var nodes []ir.Expr
	root.Walk(func(e ir.Expr) { nodes = append(nodes, e) })

	for _, e := range nodes {
		for _, r := range rules {
			alt := r.Apply(e)
			if alt == nil {
				continue
			}
			log.Debugf("%s: %s => %s", r.Name(), e, alt)
			if e == root {
				return ir.Detach(alt), true
			}
			e.Replace(alt)
			return root, true
		}
	}
	return root, false
}
