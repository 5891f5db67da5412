package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raven/internal/ir"
)

func reg(name string) *ir.Register { return ir.NewRegister(name, 32) }
func val(v int64) *ir.Value        { return ir.NewValue(v, 32) }

func TestCorrectArith(t *testing.T) {
	r := correctArith{}
	x := reg("x")

	assert.Same(t, ir.Expr(x), r.Apply(ir.NewBinary(ir.ADD, 32, x, val(0))))
	assert.Same(t, ir.Expr(x), r.Apply(ir.NewBinary(ir.SUB, 32, x, val(0))))
	assert.Same(t, ir.Expr(x), r.Apply(ir.NewBinary(ir.MUL, 32, x, val(1))))
	assert.Same(t, ir.Expr(x), r.Apply(ir.NewBinary(ir.DIV, 32, x, val(1))))

	assert.Nil(t, r.Apply(ir.NewBinary(ir.ADD, 32, x, val(1))))
	assert.Nil(t, r.Apply(ir.NewBinary(ir.MUL, 32, x, val(0))), "x*0 is not an identity")
	assert.Nil(t, r.Apply(ir.NewBinary(ir.ADD, 32, val(0), x)), "identity operand must be on the right")
}

func TestCorrectSign(t *testing.T) {
	r := correctSign{}

	got := r.Apply(ir.NewBinary(ir.ADD, 32, reg("x"), val(-3)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.SUB, 32, reg("x"), val(3))))

	got = r.Apply(ir.NewBinary(ir.SUB, 32, reg("x"), val(-3)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.ADD, 32, reg("x"), val(3))))

	assert.Nil(t, r.Apply(ir.NewBinary(ir.ADD, 32, reg("x"), val(3))))
	assert.Nil(t, r.Apply(ir.NewBinary(ir.MUL, 32, reg("x"), val(-3))))
}

func TestCorrectRef(t *testing.T) {
	r := correctRef{}
	x := reg("x")

	got := r.Apply(ir.NewUnary(ir.ADDR_OF, 32, ir.NewUnary(ir.DEREF, 32, x)))
	assert.Same(t, ir.Expr(x), got)

	y := reg("y")
	got = r.Apply(ir.NewUnary(ir.DEREF, 32, ir.NewUnary(ir.ADDR_OF, 32, y)))
	assert.Same(t, ir.Expr(y), got)

	assert.Nil(t, r.Apply(ir.NewUnary(ir.DEREF, 32, ir.NewUnary(ir.DEREF, 32, reg("z")))))
}

func TestCorrectBitwiseXor(t *testing.T) {
	r := correctBitwise{}
	x := reg("x")

	assert.Same(t, ir.Expr(x), r.Apply(ir.NewBinary(ir.XOR, 32, x, val(0))))

	got := r.Apply(ir.NewBinary(ir.XOR, 32, reg("x"), reg("x")))
	require.NotNil(t, got, "xor of a register with itself zeroes it")
	assert.True(t, got.Equals(val(0)))

	got = r.Apply(ir.NewBinary(ir.XOR, 32, reg("x"), val(-1)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewUnary(ir.NOT, 32, reg("x"))))
}

func TestCorrectBitwiseXorAllOnes64(t *testing.T) {
	r := correctBitwise{}
	got := r.Apply(ir.NewBinary(ir.XOR, 64, ir.NewRegister("rax", 64), ir.NewValue(-1, 64)))
	require.NotNil(t, got, "64-bit mask must not overflow")
	assert.True(t, got.Equals(ir.NewUnary(ir.NOT, 64, ir.NewRegister("rax", 64))))
}

func TestCorrectBitwiseOr(t *testing.T) {
	r := correctBitwise{}
	x := reg("x")

	assert.Same(t, ir.Expr(x), r.Apply(ir.NewBinary(ir.OR, 32, x, val(0))))

	self := ir.NewBinary(ir.OR, 32, reg("x"), reg("x"))
	assert.Same(t, self.L, r.Apply(self))

	ones := val(-1)
	assert.Same(t, ir.Expr(ones), r.Apply(ir.NewBinary(ir.OR, 32, reg("x"), ones)))
}

func TestCorrectBitwiseAnd(t *testing.T) {
	r := correctBitwise{}

	got := r.Apply(ir.NewBinary(ir.AND, 32, reg("x"), val(0)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(val(0)))

	self := ir.NewBinary(ir.AND, 32, reg("x"), reg("x"))
	assert.Same(t, self.L, r.Apply(self))

	assert.Nil(t, r.Apply(ir.NewBinary(ir.AND, 32, reg("x"), val(7))))
}

func TestCorrectBitwiseShiftMask(t *testing.T) {
	r := correctBitwise{}

	shr := ir.NewBinary(ir.SHR, 32, reg("x"), val(4))
	got := r.Apply(ir.NewBinary(ir.SHL, 32, shr, val(4)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.AND, 32, reg("x"), val(-16))),
		"(x >> 4) << 4 is x with the low 4 bits masked off")

	// Different shift amounts keep the expression as is.
	shr = ir.NewBinary(ir.SHR, 32, reg("x"), val(4))
	assert.Nil(t, r.Apply(ir.NewBinary(ir.SHL, 32, shr, val(2))))
}

func TestEqualityConstantMigration(t *testing.T) {
	r := equality{}

	got := r.Apply(ir.NewBinary(ir.EQ, 32, ir.NewBinary(ir.ADD, 32, reg("x"), val(2)), val(10)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.EQ, 32, reg("x"), val(8))))

	got = r.Apply(ir.NewBinary(ir.EQ, 32, ir.NewBinary(ir.SUB, 32, reg("x"), val(2)), val(10)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.EQ, 32, reg("x"), val(12))))
}

func TestEqualityAgainstZero(t *testing.T) {
	r := equality{}

	got := r.Apply(ir.NewBinary(ir.EQ, 32, ir.NewBinary(ir.SUB, 32, reg("x"), reg("y")), val(0)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.EQ, 32, reg("x"), reg("y"))))

	got = r.Apply(ir.NewBinary(ir.EQ, 32, ir.NewBinary(ir.ADD, 32, reg("x"), reg("y")), val(0)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.EQ, 32, reg("x"), ir.NewUnary(ir.NEG, 32, reg("y")))))
}

func TestNegate(t *testing.T) {
	r := negate{}
	a, b := reg("a"), reg("b")

	got := r.Apply(ir.NewUnary(ir.BOOL_NOT, 32, ir.NewBinary(ir.BOOL_AND, 32, a, b)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.BOOL_OR, 32,
		ir.NewUnary(ir.BOOL_NOT, 32, reg("a")),
		ir.NewUnary(ir.BOOL_NOT, 32, reg("b")))))

	got = r.Apply(ir.NewUnary(ir.BOOL_NOT, 32, ir.NewBinary(ir.LT, 32, reg("a"), reg("b"))))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.GE, 32, reg("a"), reg("b"))))

	x := reg("x")
	got = r.Apply(ir.NewUnary(ir.BOOL_NOT, 32, ir.NewUnary(ir.BOOL_NOT, 32, x)))
	assert.Same(t, ir.Expr(x), got)
}

func TestNegateComparisonTable(t *testing.T) {
	pairs := map[ir.BinaryOp]ir.BinaryOp{
		ir.EQ: ir.NE, ir.NE: ir.EQ,
		ir.GT: ir.LE, ir.LE: ir.GT,
		ir.GE: ir.LT, ir.LT: ir.GE,
	}
	r := negate{}
	for op, want := range pairs {
		got := r.Apply(ir.NewUnary(ir.BOOL_NOT, 32, ir.NewBinary(op, 32, reg("a"), reg("b"))))
		require.NotNil(t, got, "op %s", op)
		assert.Equal(t, want, got.(*ir.BinaryExpr).Op)
	}
}

func TestNegateZeroTestHeuristic(t *testing.T) {
	r := negate{}

	got := r.Apply(ir.NewUnary(ir.BOOL_NOT, 32, ir.NewBinary(ir.SUB, 32, reg("x"), reg("y"))))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.EQ, 32, reg("x"), reg("y"))))

	got = r.Apply(ir.NewUnary(ir.BOOL_NOT, 32, ir.NewBinary(ir.ADD, 32, reg("x"), reg("y"))))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.EQ, 32, reg("x"), ir.NewUnary(ir.NEG, 32, reg("y")))))
}

func TestConvergedCond(t *testing.T) {
	r := convergedCond{}
	cmp := func(op ir.BinaryOp) *ir.BinaryExpr {
		return ir.NewBinary(op, 32, reg("x"), reg("y"))
	}

	got := r.Apply(ir.NewBinary(ir.BOOL_OR, 32, cmp(ir.GT), cmp(ir.EQ)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(cmp(ir.GE)))

	got = r.Apply(ir.NewBinary(ir.BOOL_OR, 32, cmp(ir.EQ), cmp(ir.LT)))
	require.NotNil(t, got, "operand order of the disjunction does not matter")
	assert.True(t, got.Equals(cmp(ir.LE)))

	got = r.Apply(ir.NewBinary(ir.BOOL_OR, 32, cmp(ir.LT), cmp(ir.GT)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(cmp(ir.NE)))

	// Different operand pairs must not merge.
	other := ir.NewBinary(ir.EQ, 32, reg("x"), reg("z"))
	assert.Nil(t, r.Apply(ir.NewBinary(ir.BOOL_OR, 32, cmp(ir.LT), other)))
}

func TestConstantFolding(t *testing.T) {
	r := constantFolding{}
	cases := []struct {
		op   ir.BinaryOp
		l, r int64
		want int64
	}{
		{ir.ADD, 5, 3, 8},
		{ir.SUB, 5, 3, 2},
		{ir.MUL, 5, 3, 15},
		{ir.DIV, 7, 2, 3},
		{ir.MOD, 7, 2, 1},
		{ir.AND, 0b1100, 0b1010, 0b1000},
		{ir.OR, 0b1100, 0b1010, 0b1110},
		{ir.XOR, 0b1100, 0b1010, 0b0110},
	}
	for _, tt := range cases {
		got := r.Apply(ir.NewBinary(tt.op, 32, val(tt.l), val(tt.r)))
		require.NotNil(t, got, "op %s", tt.op)
		assert.True(t, got.Equals(val(tt.want)), "op %s", tt.op)
	}
}

func TestConstantFoldingGuards(t *testing.T) {
	r := constantFolding{}

	assert.Nil(t, r.Apply(ir.NewBinary(ir.DIV, 32, val(6), val(0))), "division by zero never fires")
	assert.Nil(t, r.Apply(ir.NewBinary(ir.MOD, 32, val(6), val(0))))
	assert.Nil(t, r.Apply(ir.NewBinary(ir.ADD, 32, ir.NewValue(1, 32), ir.NewValue(2, 64))), "mixed widths never fire")
	assert.Nil(t, r.Apply(ir.NewBinary(ir.SHL, 32, val(1), val(4))), "shifts are not folded")
	assert.Nil(t, r.Apply(ir.NewBinary(ir.ADD, 32, reg("x"), val(2))))
}

func TestConstantFoldingTruncatesToWidth(t *testing.T) {
	r := constantFolding{}
	got := r.Apply(ir.NewBinary(ir.ADD, 8, ir.NewValue(200, 8), ir.NewValue(100, 8)))
	require.NotNil(t, got)
	assert.Equal(t, ir.Truncate(300, 8), got.(*ir.Value).Val)
	assert.Equal(t, 8, got.Size())
}

func TestFoldAssoc(t *testing.T) {
	r := foldAssoc{}

	inner := ir.NewBinary(ir.ADD, 32, reg("x"), val(2))
	got := r.Apply(ir.NewBinary(ir.ADD, 32, inner, val(3)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.ADD, 32, reg("x"),
		ir.NewBinary(ir.ADD, 32, val(2), val(3)))))

	// Mixed operators are not associative.
	inner = ir.NewBinary(ir.MUL, 32, reg("x"), val(2))
	assert.Nil(t, r.Apply(ir.NewBinary(ir.ADD, 32, inner, val(3))))

	inner = ir.NewBinary(ir.SUB, 32, reg("x"), val(2))
	assert.Nil(t, r.Apply(ir.NewBinary(ir.SUB, 32, inner, val(3))), "subtraction is not associative")
}

func TestFoldArith(t *testing.T) {
	r := foldArith{}

	// ((x - 2) + 5): operators disagree, so the inner constant flips sign.
	inner := ir.NewBinary(ir.SUB, 32, reg("x"), val(2))
	got := r.Apply(ir.NewBinary(ir.ADD, 32, inner, val(5)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.ADD, 32, reg("x"),
		ir.NewBinary(ir.ADD, 32, val(-2), val(5)))))

	// ((x - 2) - 5): same operator, constants accumulate.
	inner = ir.NewBinary(ir.SUB, 32, reg("x"), val(2))
	got = r.Apply(ir.NewBinary(ir.SUB, 32, inner, val(5)))
	require.NotNil(t, got)
	assert.True(t, got.Equals(ir.NewBinary(ir.SUB, 32, reg("x"),
		ir.NewBinary(ir.ADD, 32, val(2), val(5)))))
}
