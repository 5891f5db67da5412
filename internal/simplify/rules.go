// Package simplify rewrites expression trees to a fixed point using an
// ordered set of local rules. The rule order is load-bearing: sign and
// reference corrections run before folding so folding always sees canonical
// operators, boolean normalization runs before arithmetic regrouping, and
// plain constant folding runs before the contextual folds that re-associate
// constants toward it.
package simplify

import (
	"raven/internal/ir"
)

// Rule is one rewrite. Apply returns the replacement for e, or nil when the
// rule does not match. Rules never mutate e; the driver commits replacements.
type Rule interface {
	Name() string
	Apply(e ir.Expr) ir.Expr
}

// rules in priority order; the first match per subexpression wins.
var rules = []Rule{
	correctArith{},
	correctSign{},
	correctRef{},
	correctBitwise{},
	equality{},
	negate{},
	convergedCond{},
	constantFolding{},
	foldAssoc{},
	foldArith{},
}

func valueIs(e ir.Expr, v int64) bool {
	c, ok := e.(*ir.Value)
	return ok && c.Val == v
}

// allOnes reports whether e is the all-bits-set constant at the given width.
// Values store sign-extended representations, so the check is width-safe up
// to and including 64 bits.
func allOnes(e ir.Expr, width int) bool {
	c, ok := e.(*ir.Value)
	return ok && c.Size() == width && c.Val == ir.AllOnes(width)
}

// correctArith drops the identity operand: x+0, x-0, x*1, x/1.
type correctArith struct{}

func (correctArith) Name() string { return "correct_arith" }

func (correctArith) Apply(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.BinaryExpr)
	if !ok {
		return nil
	}
	switch b.Op {
	case ir.ADD, ir.SUB:
		if valueIs(b.R, 0) {
			return b.L
		}
	case ir.MUL, ir.DIV:
		if valueIs(b.R, 1) {
			return b.L
		}
	}
	return nil
}

// correctSign normalizes addition and subtraction of a negative constant:
// x + (-c) becomes x - c, x - (-c) becomes x + c.
type correctSign struct{}

func (correctSign) Name() string { return "correct_sign" }

func (correctSign) Apply(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.BinaryExpr)
	if !ok || (b.Op != ir.ADD && b.Op != ir.SUB) {
		return nil
	}
	c, ok := b.R.(*ir.Value)
	if !ok || c.Val >= 0 {
		return nil
	}
	op := ir.SUB
	if b.Op == ir.SUB {
		op = ir.ADD
	}
	return ir.NewBinary(op, b.Size(), b.L, ir.NewValue(-c.Val, c.Size()))
}

// correctRef cancels an address-of/dereference pair in either nesting.
type correctRef struct{}

func (correctRef) Name() string { return "correct_ref" }

func (correctRef) Apply(e ir.Expr) ir.Expr {
	u, ok := e.(*ir.UnaryExpr)
	if !ok {
		return nil
	}
	inner, ok := u.X.(*ir.UnaryExpr)
	if !ok {
		return nil
	}
	if u.Op == ir.ADDR_OF && inner.Op == ir.DEREF {
		return inner.X
	}
	if u.Op == ir.DEREF && inner.Op == ir.ADDR_OF {
		return inner.X
	}
	return nil
}

// correctBitwise simplifies xor and or against zero, self and the all-ones
// mask, and against zero and self, and collapses the (x >> c) << c masking
// idiom.
type correctBitwise struct{}

func (correctBitwise) Name() string { return "correct_bitwise" }

func (correctBitwise) Apply(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.BinaryExpr)
	if !ok {
		return nil
	}
	switch b.Op {
	case ir.XOR:
		if valueIs(b.R, 0) {
			return b.L
		}
		if b.L.Equals(b.R) {
			return ir.NewValue(0, b.Size())
		}
		if allOnes(b.R, b.Size()) {
			return ir.NewUnary(ir.NOT, b.Size(), b.L)
		}
	case ir.OR:
		if valueIs(b.R, 0) || b.L.Equals(b.R) {
			return b.L
		}
		if allOnes(b.R, b.Size()) {
			return b.R
		}
	case ir.AND:
		if valueIs(b.R, 0) {
			return ir.NewValue(0, b.Size())
		}
		if b.L.Equals(b.R) {
			return b.L
		}
	case ir.SHL:
		return maskedShift(b)
	}
	return nil
}

// maskedShift rewrites (x >> c) << c to x & ~((1<<c)-1), the form the rest
// of the pipeline recognizes as an alignment mask.
func maskedShift(b *ir.BinaryExpr) ir.Expr {
	inner, ok := b.L.(*ir.BinaryExpr)
	if !ok || inner.Op != ir.SHR {
		return nil
	}
	c, ok := b.R.(*ir.Value)
	if !ok {
		return nil
	}
	ci, ok := inner.R.(*ir.Value)
	if !ok || ci.Val != c.Val {
		return nil
	}
	if c.Val <= 0 || int(c.Val) >= b.Size() {
		return nil
	}
	mask := ^((int64(1) << uint(c.Val)) - 1)
	return ir.NewBinary(ir.AND, b.Size(), inner.L, ir.NewValue(mask, b.Size()))
}

// equality moves constants across == and cancels zero comparisons of sums
// and differences.
type equality struct{}

func (equality) Name() string { return "equality" }

func (equality) Apply(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.BinaryExpr)
	if !ok || b.Op != ir.EQ {
		return nil
	}
	c2, ok := b.R.(*ir.Value)
	if !ok {
		return nil
	}
	inner, ok := b.L.(*ir.BinaryExpr)
	if !ok {
		return nil
	}
	if c1, ok := inner.R.(*ir.Value); ok {
		switch inner.Op {
		case ir.ADD:
			return ir.NewBinary(ir.EQ, b.Size(), inner.L, ir.NewValue(c2.Val-c1.Val, c2.Size()))
		case ir.SUB:
			return ir.NewBinary(ir.EQ, b.Size(), inner.L, ir.NewValue(c2.Val+c1.Val, c2.Size()))
		}
	}
	if c2.Val == 0 {
		switch inner.Op {
		case ir.SUB:
			return ir.NewBinary(ir.EQ, b.Size(), inner.L, inner.R)
		case ir.ADD:
			return ir.NewBinary(ir.EQ, b.Size(), inner.L, ir.NewUnary(ir.NEG, inner.R.Size(), inner.R))
		}
	}
	return nil
}

// negate pushes a logical NOT inward: De Morgan over the boolean
// connectives, inversion of comparisons, and cancellation of a double NOT.
// A NOT over a bare sum or difference is read as "is zero", the way lifted
// condition codes use it, and becomes the matching equality.
type negate struct{}

func (negate) Name() string { return "negate" }

func (negate) Apply(e ir.Expr) ir.Expr {
	u, ok := e.(*ir.UnaryExpr)
	if !ok || u.Op != ir.BOOL_NOT {
		return nil
	}
	switch x := u.X.(type) {
	case *ir.UnaryExpr:
		if x.Op == ir.BOOL_NOT {
			return x.X
		}
	case *ir.BinaryExpr:
		switch x.Op {
		case ir.BOOL_AND:
			return ir.NewBinary(ir.BOOL_OR, x.Size(),
				ir.NewUnary(ir.BOOL_NOT, x.L.Size(), x.L),
				ir.NewUnary(ir.BOOL_NOT, x.R.Size(), x.R))
		case ir.BOOL_OR:
			return ir.NewBinary(ir.BOOL_AND, x.Size(),
				ir.NewUnary(ir.BOOL_NOT, x.L.Size(), x.L),
				ir.NewUnary(ir.BOOL_NOT, x.R.Size(), x.R))
		case ir.ADD:
			return ir.NewBinary(ir.EQ, x.Size(), x.L, ir.NewUnary(ir.NEG, x.R.Size(), x.R))
		case ir.SUB:
			return ir.NewBinary(ir.EQ, x.Size(), x.L, x.R)
		}
		if inv, ok := x.Op.Inverted(); ok {
			return ir.NewBinary(inv, x.Size(), x.L, x.R)
		}
	}
	return nil
}

// convergedCond merges a disjunction of two comparisons over the same
// operand pair into the single covering comparison.
type convergedCond struct{}

func (convergedCond) Name() string { return "converged_cond" }

func (convergedCond) Apply(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.BinaryExpr)
	if !ok || b.Op != ir.BOOL_OR {
		return nil
	}
	l, ok := b.L.(*ir.BinaryExpr)
	if !ok {
		return nil
	}
	r, ok := b.R.(*ir.BinaryExpr)
	if !ok {
		return nil
	}
	if !l.L.Equals(r.L) || !l.R.Equals(r.R) {
		return nil
	}
	var op ir.BinaryOp
	switch {
	case pairIs(l.Op, r.Op, ir.GT, ir.EQ):
		op = ir.GE
	case pairIs(l.Op, r.Op, ir.LT, ir.EQ):
		op = ir.LE
	case pairIs(l.Op, r.Op, ir.LT, ir.GT):
		op = ir.NE
	default:
		return nil
	}
	return ir.NewBinary(op, b.Size(), l.L, l.R)
}

func pairIs(a, b, want1, want2 ir.BinaryOp) bool {
	return (a == want1 && b == want2) || (a == want2 && b == want1)
}

// constantFolding evaluates +, -, *, /, %, &, | or ^ over two literals of
// the same width; shifts are not folded. Division and modulo by zero never
// fire; the result inherits the left operand's width and is truncated to it.
type constantFolding struct{}

func (constantFolding) Name() string { return "constant_folding" }

func (constantFolding) Apply(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.BinaryExpr)
	if !ok {
		return nil
	}
	l, ok := b.L.(*ir.Value)
	if !ok {
		return nil
	}
	r, ok := b.R.(*ir.Value)
	if !ok || l.Size() != r.Size() {
		return nil
	}
	var v int64
	switch b.Op {
	case ir.ADD:
		v = l.Val + r.Val
	case ir.SUB:
		v = l.Val - r.Val
	case ir.MUL:
		v = l.Val * r.Val
	case ir.DIV:
		if r.Val == 0 {
			return nil
		}
		v = l.Val / r.Val
	case ir.MOD:
		if r.Val == 0 {
			return nil
		}
		v = l.Val % r.Val
	case ir.AND:
		v = l.Val & r.Val
	case ir.OR:
		v = l.Val | r.Val
	case ir.XOR:
		v = l.Val ^ r.Val
	default:
		return nil
	}
	return ir.NewValue(v, l.Size())
}

// foldAssoc re-brackets ((x op c1) op c0) to (x op (c1 op c0)) for an
// associative operator, moving both constants into one subtree that the
// next constant_folding pass collapses.
type foldAssoc struct{}

func (foldAssoc) Name() string { return "ctx_fold_assoc" }

func (foldAssoc) Apply(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.BinaryExpr)
	if !ok || !associative(b.Op) {
		return nil
	}
	inner, ok := b.L.(*ir.BinaryExpr)
	if !ok || inner.Op != b.Op {
		return nil
	}
	c0, ok := b.R.(*ir.Value)
	if !ok {
		return nil
	}
	c1, ok := inner.R.(*ir.Value)
	if !ok {
		return nil
	}
	return ir.NewBinary(b.Op, b.Size(), inner.L,
		ir.NewBinary(b.Op, c1.Size(), c1, c0))
}

func associative(op ir.BinaryOp) bool {
	switch op {
	case ir.ADD, ir.MUL, ir.AND, ir.OR, ir.XOR:
		return true
	}
	return false
}

// foldArith combines the constants of a mixed add/sub chain
// ((x op1 c1) op0 c0): the outer operator survives and the inner constant
// changes sign when the operators disagree. The next constant_folding pass
// collapses the fresh right-hand side.
type foldArith struct{}

func (foldArith) Name() string { return "ctx_fold_arith" }

func (foldArith) Apply(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.BinaryExpr)
	if !ok || (b.Op != ir.ADD && b.Op != ir.SUB) {
		return nil
	}
	inner, ok := b.L.(*ir.BinaryExpr)
	if !ok || (inner.Op != ir.ADD && inner.Op != ir.SUB) {
		return nil
	}
	c0, ok := b.R.(*ir.Value)
	if !ok {
		return nil
	}
	c1, ok := inner.R.(*ir.Value)
	if !ok {
		return nil
	}
	signed := c1.Val
	if inner.Op != b.Op {
		signed = -signed
	}
	return ir.NewBinary(b.Op, b.Size(), inner.L,
		ir.NewBinary(ir.ADD, c0.Size(), ir.NewValue(signed, c1.Size()), c0))
}
