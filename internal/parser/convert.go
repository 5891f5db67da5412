package parser

import (
	"fmt"
	"strconv"

	"raven/internal/errors"
	"raven/internal/ir"
)

// defaultWidth is assumed for leaves without a :width suffix.
const defaultWidth = 32

var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"<<": 7, ">>": 7,
	"+": 8, "-": 8,
	"*": 9, "/": 9, "%": 9,
}

var binaryOps = map[string]ir.BinaryOp{
	"||": ir.BOOL_OR,
	"&&": ir.BOOL_AND,
	"==": ir.EQ, "!=": ir.NE, "<": ir.LT, "<=": ir.LE, ">": ir.GT, ">=": ir.GE,
	"|":  ir.OR,
	"^":  ir.XOR,
	"&":  ir.AND,
	"<<": ir.SHL, ">>": ir.SHR,
	"+": ir.ADD, "-": ir.SUB,
	"*": ir.MUL, "/": ir.DIV, "%": ir.MOD,
}

var unaryOps = map[string]ir.UnaryOp{
	"-": ir.NEG,
	"~": ir.NOT,
	"!": ir.BOOL_NOT,
	"&": ir.ADDR_OF,
	"*": ir.DEREF,
}

// Parse reads one expression in the debug notation and returns its ir tree.
func Parse(name, src string) (ir.Expr, error) {
	node, err := exprParser.ParseString(name, src)
	if err != nil {
		return nil, err
	}
	return convertExpression(node)
}

func convertExpression(e *Expression) (ir.Expr, error) {
	left, err := convertUnary(e.Left)
	if err != nil {
		return nil, err
	}
	folded, rest, err := fold(left, e.Ops, 0)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("parser: trailing operator %q", rest[0].Op)
	}
	return folded, nil
}

// fold resolves the flat operator chain with precedence climbing; every
// operator is left-associative. Binary nodes inherit the left operand's
// width, matching how the lifter sizes them.
func fold(left ir.Expr, ops []*OpRHS, min int) (ir.Expr, []*OpRHS, error) {
	for len(ops) > 0 && precedence[ops[0].Op] >= min {
		op := ops[0]
		ops = ops[1:]
		right, err := convertUnary(op.Right)
		if err != nil {
			return nil, nil, err
		}
		for len(ops) > 0 && precedence[ops[0].Op] > precedence[op.Op] {
			right, ops, err = fold(right, ops, precedence[ops[0].Op])
			if err != nil {
				return nil, nil, err
			}
		}
		left = ir.NewBinary(binaryOps[op.Op], left.Size(), left, right)
	}
	return left, ops, nil
}

func convertUnary(u *Unary) (ir.Expr, error) {
	if u.Primary != nil {
		return convertPrimary(u.Primary)
	}
	x, err := convertUnary(u.Operand)
	if err != nil {
		return nil, err
	}
	// A minus in front of a literal is the literal's sign, not an
	// operation.
	if v, ok := x.(*ir.Value); ok && u.Op == "-" {
		return ir.NewValue(-v.Val, v.Size()), nil
	}
	return ir.NewUnary(unaryOps[u.Op], x.Size(), x), nil
}

func convertPrimary(p *Primary) (ir.Expr, error) {
	switch {
	case p.Mem != nil:
		addr, _, err := literalValue(p.Mem.Addr)
		if err != nil {
			return nil, err
		}
		return ir.NewMemory(uint64(addr), width(p.Mem.Width)), nil
	case p.Var != nil:
		return ir.NewVariable(p.Var.Name, width(p.Var.Width)), nil
	case p.Lit != nil:
		v, w, err := literalValue(p.Lit)
		if err != nil {
			return nil, err
		}
		return ir.NewValue(v, w), nil
	case p.Reg != nil:
		return ir.NewRegister(p.Reg.Name, width(p.Reg.Width)), nil
	default:
		return convertExpression(p.Sub)
	}
}

func literalValue(l *Literal) (int64, int, error) {
	var (
		raw uint64
		err error
		txt string
	)
	if l.Hex != nil {
		txt = *l.Hex
		raw, err = strconv.ParseUint(txt[2:], 16, 64)
	} else {
		txt = *l.Int
		raw, err = strconv.ParseUint(txt, 10, 64)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("parser: bad literal %q: %w", txt, err)
	}
	w := width(l.Width)
	if w < 64 && raw > (uint64(1)<<uint(w))-1 {
		return 0, 0, fmt.Errorf("parser: literal %s does not fit in %d bits (%s)",
			txt, w, errors.ErrorBadWidth)
	}
	return int64(raw), w, nil
}

func width(w *int) int {
	if w == nil {
		return defaultWidth
	}
	return *w
}
