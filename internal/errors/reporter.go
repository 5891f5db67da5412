package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a diagnostic.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
)

// Diagnostic is a positioned message about a piece of expression notation.
type Diagnostic struct {
	Level   Level
	Code    string // stable code like E0001, may be empty
	Message string
	Line    int // 1-based
	Column  int // 1-based
}

// Reporter formats diagnostics against the source text they refer to.
type Reporter struct {
	name   string
	source string
	lines  []string
}

// NewReporter creates a reporter for one piece of source text.
func NewReporter(name, source string) *Reporter {
	return &Reporter{
		name:   name,
		source: source,
		lines:  strings.Split(source, "\n"),
	}
}

// Format renders a diagnostic with a caret under the offending column:
//
//	error[E0001]: unexpected end of input
//	 --> fixture:1:12
//	  eax + [0x10
//	             ^
func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := r.levelColor(d.Level)
	dim := color.New(color.Faint).SprintFunc()

	if d.Code != "" {
		out.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, d.Message))
	} else {
		out.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(d.Level)), d.Message))
	}

	out.WriteString(fmt.Sprintf(" %s %s:%d:%d\n", dim("-->"), r.name, d.Line, d.Column))

	if d.Line >= 1 && d.Line <= len(r.lines) {
		line := r.lines[d.Line-1]
		out.WriteString("  " + line + "\n")
		if d.Column >= 1 && d.Column <= len(line)+1 {
			out.WriteString("  " + strings.Repeat(" ", d.Column-1) + levelColor("^") + "\n")
		}
	}

	return out.String()
}

func (r *Reporter) levelColor(l Level) func(a ...interface{}) string {
	switch l {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgCyan).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}
