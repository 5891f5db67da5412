package ir

func (*Value) Kind() Kind      { return VALUE }
func (*Register) Kind() Kind   { return REGISTER }
func (*Variable) Kind() Kind   { return VARIABLE }
func (*Memory) Kind() Kind     { return MEMORY }
func (*UnaryExpr) Kind() Kind  { return UNARY_EXPR }
func (*BinaryExpr) Kind() Kind { return BINARY_EXPR }

func (*Value) Operands() []Expr        { return nil }
func (*Register) Operands() []Expr     { return nil }
func (*Variable) Operands() []Expr     { return nil }
func (*Memory) Operands() []Expr       { return nil }
func (u *UnaryExpr) Operands() []Expr  { return []Expr{u.X} }
func (b *BinaryExpr) Operands() []Expr { return []Expr{b.L, b.R} }

func (v *Value) Walk(fn func(Expr))      { postorder(v, fn) }
func (r *Register) Walk(fn func(Expr))   { postorder(r, fn) }
func (v *Variable) Walk(fn func(Expr))   { postorder(v, fn) }
func (m *Memory) Walk(fn func(Expr))     { postorder(m, fn) }
func (u *UnaryExpr) Walk(fn func(Expr))  { postorder(u, fn) }
func (b *BinaryExpr) Walk(fn func(Expr)) { postorder(b, fn) }

func (v *Value) Replace(alt Expr)      { splice(v, alt) }
func (r *Register) Replace(alt Expr)   { splice(r, alt) }
func (v *Variable) Replace(alt Expr)   { splice(v, alt) }
func (m *Memory) Replace(alt Expr)     { splice(m, alt) }
func (u *UnaryExpr) Replace(alt Expr)  { splice(u, alt) }
func (b *BinaryExpr) Replace(alt Expr) { splice(b, alt) }

// Leaves have no operand slots; a bad index is a programming error.

func (*Value) setOperand(int, Expr)    { panic("ir: Value has no operands") }
func (*Register) setOperand(int, Expr) { panic("ir: Register has no operands") }
func (*Variable) setOperand(int, Expr) { panic("ir: Variable has no operands") }
func (*Memory) setOperand(int, Expr)   { panic("ir: Memory has no operands") }

func (u *UnaryExpr) setOperand(i int, e Expr) {
	if i != 0 {
		panic("ir: UnaryExpr operand index out of range")
	}
	u.X = e
	adopt(u, 0, e)
}

func (b *BinaryExpr) setOperand(i int, e Expr) {
	switch i {
	case 0:
		b.L = e
	case 1:
		b.R = e
	default:
		panic("ir: BinaryExpr operand index out of range")
	}
	adopt(b, i, e)
}

func (v *Value) Equals(other Expr) bool {
	o, ok := other.(*Value)
	return ok && v.size == o.size && v.Val == o.Val
}

// Register, Variable and Memory stand for unknowns; two leaves are equal
// when they name the same referent at the same width.

func (r *Register) Equals(other Expr) bool {
	o, ok := other.(*Register)
	return ok && r.size == o.size && r.Name == o.Name
}

func (v *Variable) Equals(other Expr) bool {
	o, ok := other.(*Variable)
	return ok && v.size == o.size && v.Name == o.Name
}

func (m *Memory) Equals(other Expr) bool {
	o, ok := other.(*Memory)
	return ok && m.size == o.size && m.Addr == o.Addr
}

func (u *UnaryExpr) Equals(other Expr) bool {
	o, ok := other.(*UnaryExpr)
	return ok && u.size == o.size && u.Op == o.Op && u.X.Equals(o.X)
}

func (b *BinaryExpr) Equals(other Expr) bool {
	o, ok := other.(*BinaryExpr)
	return ok && b.size == o.size && b.Op == o.Op && b.L.Equals(o.L) && b.R.Equals(o.R)
}
