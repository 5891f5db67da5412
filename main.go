// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"raven/internal/errors"
	"raven/internal/parser"
	"raven/internal/simplify"
)

// raven's debug shell: feed it expressions in the debug notation, get back
// the simplified form. Not part of the library surface; it exists so rule
// behavior can be poked at without writing a test first.
func main() {
	args := os.Args[1:]
	verbosity := 0
	if len(args) > 0 && args[0] == "-v" {
		verbosity = 1
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Println("Usage: raven [-v] <expression> ...")
		fmt.Println(`Example: raven "(eax + 2:32) + 3:32"`)
		os.Exit(1)
	}

	commonlog.Configure(verbosity, nil)

	for _, src := range args {
		expr, err := parser.Parse("arg", src)
		if err != nil {
			reportParseError(src, err)
			os.Exit(1)
		}
		reduced := simplify.ReduceExpr(expr)
		fmt.Printf("%s\n", color.GreenString("%s", reduced))
	}
}

// reportParseError prints a caret-style message for a bad expression.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("error: %s", err)
		return
	}
	pos := pe.Position()
	r := errors.NewReporter("arg", src)
	fmt.Fprint(os.Stderr, r.Format(errors.Diagnostic{
		Level:   errors.Error,
		Code:    errors.ErrorBadNotation,
		Message: pe.Message(),
		Line:    pos.Line,
		Column:  pos.Column,
	}))
}
