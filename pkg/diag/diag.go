// Package diag defines the structured diagnostic records accumulated by the
// front-end passes. Malformed source never aborts a pass; each problem is
// recorded here and rendering happens once, after all passes complete.
package diag

import (
	"fmt"
	"strings"
)

// Category classifies a diagnostic. SYNTAX is the only category the
// front-end currently emits.
type Category string

// Syntax covers lexical, structural, and header-form problems.
const Syntax Category = "SYNTAX"

// UnknownLine is the line-number value used when a diagnostic cannot be
// attached to a source position (for example a missing Main class).
const UnknownLine = -1

// Diagnostic is one reported problem. Source carries the original text of
// the offending line, recovered best-effort from the character buffer.
type Diagnostic struct {
	File       string   `json:"file"`
	Category   Category `json:"category"`
	Line       int      `json:"line"`
	Source     string   `json:"source,omitempty"`
	Cause      string   `json:"cause"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Format renders the diagnostic as its five-line textual block.
func (d Diagnostic) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", d.File)
	fmt.Fprintf(&b, "Error[%s] at line %d\n", d.Category, d.Line)
	if d.Line > 0 && d.Source != "" {
		fmt.Fprintf(&b, "  %4d | %s\n", d.Line, d.Source)
	} else {
		b.WriteString("       | (source unavailable)\n")
	}
	fmt.Fprintf(&b, "Cause: %s\n", d.Cause)
	fmt.Fprintf(&b, "Suggestion: %s\n", d.Suggestion)
	return b.String()
}

// Error implements the error interface so a Diagnostic can travel through
// error-shaped plumbing when callers want it to.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Cause)
}

// List accumulates diagnostics across passes and recursive compiler
// invocations. The zero value is ready to use.
type List struct {
	items []Diagnostic
}

// NewList returns an empty diagnostic list.
func NewList() *List {
	return &List{}
}

// Add appends a fully formed diagnostic.
func (l *List) Add(d Diagnostic) {
	if d.Category == "" {
		d.Category = Syntax
	}
	l.items = append(l.items, d)
}

// Merge appends every diagnostic from other, preserving order.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.items = append(l.items, other.items...)
}

// Len returns the number of accumulated diagnostics.
func (l *List) Len() int {
	return len(l.items)
}

// Empty reports whether no diagnostics were recorded.
func (l *List) Empty() bool {
	return len(l.items) == 0
}

// Items returns the accumulated diagnostics in report order.
func (l *List) Items() []Diagnostic {
	return l.items
}

// Format renders every diagnostic, blocks separated by blank lines.
func (l *List) Format() string {
	var b strings.Builder
	for i, d := range l.items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d.Format())
	}
	return b.String()
}

// SourceLine recovers the 1-based line text from a character buffer by
// splitting on newlines. Returns "" when the line is out of range.
func SourceLine(buffer string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(buffer, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}
