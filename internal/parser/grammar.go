// Package parser reads the one-line expression notation used by tests, the
// debug shell and bug reports, and lifts it into ir trees.
//
// The notation, smallest pieces first: literals are decimal or 0x hex with
// an optional :width suffix (width defaults to 32); bare identifiers are
// registers; $name is a variable; [addr] is a memory cell. Unary -, ~, !, &
// and * bind tightest; binary operators follow, tightest first: * / %, + -,
// << >>, &, ^, |, the six comparisons (one shared level), &&, ||.
package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Hex", `0x[0-9a-fA-F]+`, nil},
		{"Int", `[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Operator", `(\|\||&&|==|!=|<=|>=|<<|>>|[-+*/%&|^<>~!])`, nil},
		{"Punct", `[()\[\]$:]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})

var exprParser = participle.MustBuild[Expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Expression is a flat operator chain; precedence is resolved when the
// chain is folded into an ir tree.
type Expression struct {
	Left *Unary   `@@`
	Ops  []*OpRHS `@@*`
}

type OpRHS struct {
	Op    string `@("||" | "&&" | "==" | "!=" | "<=" | ">=" | "<<" | ">>" | "<" | ">" | "+" | "-" | "*" | "/" | "%" | "&" | "|" | "^")`
	Right *Unary `@@`
}

type Unary struct {
	Op      string   `  ( @("-" | "~" | "!" | "&" | "*")`
	Operand *Unary   `    @@ )`
	Primary *Primary `| @@`
}

type Primary struct {
	Mem *MemRef     `  @@`
	Var *VarRef     `| @@`
	Lit *Literal    `| @@`
	Reg *RegRef     `| @@`
	Sub *Expression `| "(" @@ ")"`
}

type Literal struct {
	Hex   *string `( @Hex`
	Int   *string `| @Int )`
	Width *int    `[ ":" @Int ]`
}

type RegRef struct {
	Name  string `@Ident`
	Width *int   `[ ":" @Int ]`
}

type VarRef struct {
	Name  string `"$" @Ident`
	Width *int   `[ ":" @Int ]`
}

type MemRef struct {
	Addr  *Literal `"[" @@ "]"`
	Width *int     `[ ":" @Int ]`
}
