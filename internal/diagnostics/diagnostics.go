// Package diagnostics implements the error taxonomy and rendering this
// front-end reports through (spec.md §7): input-shape errors that abort
// immediately, validation errors that batch into a CompilationException,
// and type/lowering errors that raise as soon as they are detected.
//
// funvibe-funxy's own internal/diagnostics package is referenced
// throughout its tree (diagnostics.NewError(code, token, msg), appended
// to ctx.Errors) but was not present in the retrieved pack; this package
// is rebuilt from those call sites, generalised to this front-end's
// error taxonomy.
package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/montyc/internal/token"
)

// Severity classifies a Diagnostic. Only Error is produced by this
// front-end today; Warning is carried for forward compatibility with a
// future lint pass.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Code tags the category of a Diagnostic for programmatic matching,
// mirroring funxy's diagnostics.NewError(code, ...) call shape.
type Code string

const (
	CodeInputShape Code = "input-shape"
	CodeValidation Code = "validation"
	CodeType       Code = "type"
	CodeLowering   Code = "lowering"
)

// Diagnostic is one structured error record: a severity, a stable code,
// a human-readable message and the source position it concerns.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Pos      token.Token
}

// NewError constructs an Error-severity Diagnostic the way funxy call
// sites build one: diagnostics.NewError(code, tok, msg).
func NewError(code Code, tok token.Token, msg string) Diagnostic {
	return Diagnostic{Severity: Error, Code: code, Message: msg, Pos: tok}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
}

// CompilationException is raised when validation collects one or more
// diagnostics (spec.md §7.2) — the only phase that batches rather than
// raising on the first hit.
type CompilationException struct {
	Diagnostics []Diagnostic
}

func (e *CompilationException) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "compilation failed with %d diagnostic(s):\n", len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		sb.WriteString("  ")
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// TypeCheckError is a type-phase error record (spec.md §7.3) with a
// source position. The type store and checker in this module do not
// construct it: unification failures and unsupported annotation
// builtins are reported as typesystem.TypeCheckError instead.
type TypeCheckError struct {
	Message string
	Pos     token.Token
}

func (e *TypeCheckError) Error() string { return e.Message }

// LowerError is a lowering-phase error (spec.md §7.4): unknown opcode
// mapping, unsupported operator, unknown operand kind, or reveal_type
// finding no binding. NodeDump, when set, is appended to the message;
// the lowering and type-checking code in this module sets only Message
// and Pos, so NodeDump is empty for every error it returns.
type LowerError struct {
	Message string
	NodeDump string
	Pos      token.Token
}

func (e *LowerError) Error() string {
	if e.NodeDump == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.NodeDump)
}

// RuntimeError mirrors the source's RuntimeError: reveal_type failures
// (an operand type mismatch in a binary op, or a name with no binding
// anywhere in the scope chain) — raised immediately, never collected.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// InputShapeError is raised immediately (spec.md §7.1, never collected)
// when the driver receives input that is not source text.
type InputShapeError struct {
	Message string
}

func (e *InputShapeError) Error() string { return e.Message }

// Collector accumulates validation diagnostics during scope-building,
// matching funxy's ctx.Errors append-then-raise-at-the-end convention.
type Collector struct {
	items []Diagnostic
}

// Add appends a diagnostic to the collector.
func (c *Collector) Add(d Diagnostic) { c.items = append(c.items, d) }

// HasErrors reports whether any diagnostic was collected.
func (c *Collector) HasErrors() bool { return len(c.items) > 0 }

// Raise returns a *CompilationException if any diagnostics were
// collected, or nil otherwise.
func (c *Collector) Raise() error {
	if !c.HasErrors() {
		return nil
	}
	return &CompilationException{Diagnostics: append([]Diagnostic(nil), c.items...)}
}

// Render writes diagnostics to w, one per line, colorizing the severity
// tag when w is a TTY (funvibe-funxy's mattn/go-isatty dependency,
// repurposed here for diagnostic-stream TTY detection rather than
// terminal builtins).
func Render(w io.Writer, diags []Diagnostic) {
	color := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, d := range diags {
		if color {
			fmt.Fprintf(w, "\x1b[31m%s:%d:%d:\x1b[0m %s\n", d.Severity, d.Pos.Line, d.Pos.Column, d.Message)
		} else {
			fmt.Fprintf(w, "%s:%d:%d: %s\n", d.Severity, d.Pos.Line, d.Pos.Column, d.Message)
		}
	}
}
