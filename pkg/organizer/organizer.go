// Package organizer groups the assembled line records of one entry file (and
// its imports) into classes, functions, directives, and use-aliases, then
// normalizes every operator into method-call form and numbers each distinct
// name reference. The passes run strictly in sequence and never abort on
// malformed input; every problem becomes a diagnostic and the pass continues
// with the most forgiving local recovery.
package organizer

import (
	"github.com/dubya62/tcab/pkg/diag"
	"github.com/dubya62/tcab/pkg/token"
)

// Access is a class or function access specifier.
type Access string

// Access specifiers. Private is the default when none is written.
// Protected is legal on functions, forbidden on classes.
const (
	AccessPublic    Access = "public"
	AccessPrivate   Access = "private"
	AccessProtected Access = "protected"
)

// IsAccess reports whether lex is one of the access specifier keywords.
func IsAccess(lex string) bool {
	switch Access(lex) {
	case AccessPublic, AccessPrivate, AccessProtected:
		return true
	}
	return false
}

// Use is one class-scope alias declaration: `use target [as alias]`. Both
// sides are dotted-path component sequences; Alias defaults to the last
// component of Target when no `as` clause is written.
type Use struct {
	Target []string `json:"target"`
	Alias  []string `json:"alias"`
}

// Function is a named block with a parameter lexeme sequence, a return-type
// lexeme sequence, and optionally a paired test predicate collected from a
// `${ ... }` block directly after the closing brace.
type Function struct {
	Name       string       `json:"name"`
	Params     []string     `json:"params"`
	ReturnType []string     `json:"return_type"`
	Access     Access       `json:"access"`
	Static     bool         `json:"static,omitempty"`
	Lines      []token.Line `json:"-"`
	Directives []token.Line `json:"-"`
	Test       *Function    `json:"test,omitempty"`
}

// Class is a brace-delimited block extended with a name, parent list,
// subclasses, functions, directives, and use-aliases. IsGlobal is true only
// for classes written in the entry file; classes introduced by imports have
// it cleared, which later stages use to enforce cross-file access rules.
type Class struct {
	Name       string       `json:"name"`
	Parents    []string     `json:"parents,omitempty"`
	Access     Access       `json:"access"`
	File       string       `json:"file"`
	IsGlobal   bool         `json:"is_global"`
	StartLine  int          `json:"start_line"`
	EndLine    int          `json:"end_line"`
	Lines      []token.Line `json:"-"`
	Subclasses []*Class     `json:"subclasses,omitempty"`
	Functions  []*Function  `json:"functions,omitempty"`
	Directives []token.Line `json:"-"`
	Uses       []Use        `json:"uses,omitempty"`

	// startIdx and endIdx are positions in the extraction-time line list.
	// Textual containment is decided on these, not on breadcrumbs: a class
	// written on one source line still nests correctly.
	startIdx, endIdx int
}

// Program is the organized representation handed to code generation: the
// top-level classes, the residual global lines, the global directives, and
// every accumulated diagnostic.
type Program struct {
	File       string       `json:"file"`
	Source     string       `json:"-"`
	Classes    []*Class     `json:"classes"`
	Globals    []token.Line `json:"-"`
	Directives []token.Line `json:"-"`
	Diags      *diag.List   `json:"-"`
}

// NewProgram creates an empty Program for one source buffer.
func NewProgram(file string, source []byte, diags *diag.List) *Program {
	if diags == nil {
		diags = diag.NewList()
	}
	return &Program{File: file, Source: string(source), Diags: diags}
}

// report appends a SYNTAX diagnostic, recovering the source text of the
// named line from the program's character buffer.
func (p *Program) report(line int, cause, suggestion string) {
	p.Diags.Add(diag.Diagnostic{
		File:       p.File,
		Category:   diag.Syntax,
		Line:       line,
		Source:     diag.SourceLine(p.Source, line),
		Cause:      cause,
		Suggestion: suggestion,
	})
}

// lineNumber extracts a line's breadcrumb, falling back to 0 when the line
// was produced without one.
func lineNumber(l token.Line) int {
	if n, ok := l.Breadcrumb(); ok {
		return n
	}
	return 0
}

// Organize runs the intra-file stages over an extracted program, in
// dependency order: function organizing, directive and use harvesting, the
// residual global check, operator rewriting, and name numbering. Class
// extraction, subclass nesting, and import resolution happen earlier, driven
// by the compiler so that imports can recurse through file loading.
func (p *Program) Organize() {
	p.OrganizeFunctions()
	p.HarvestDirectives()
	p.HarvestUses()
	p.CheckGlobals()
	p.RewriteOperators()
	p.NumberNames()
}

// Walk visits every class in the program, subclasses after their parent.
func (p *Program) Walk(visit func(*Class)) {
	var walk func(*Class)
	walk = func(c *Class) {
		visit(c)
		for _, sub := range c.Subclasses {
			walk(sub)
		}
	}
	for _, c := range p.Classes {
		walk(c)
	}
}

// EachFunction visits every function of every class, paired test functions
// included.
func (p *Program) EachFunction(visit func(*Class, *Function)) {
	p.Walk(func(c *Class) {
		for _, fn := range c.Functions {
			visit(c, fn)
			if fn.Test != nil {
				visit(c, fn.Test)
			}
		}
	})
}

// FindClass returns the first top-level class with the given name.
func (p *Program) FindClass(name string) *Class {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindFunction returns the first function with the given name.
func (c *Class) FindFunction(name string) *Function {
	for _, fn := range c.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// LocateMain asserts that a top-level class named Main carries a function
// named main. On failure it records a SYNTAX diagnostic with line -1 and
// file "*"; the caller is expected to terminate before codegen.
func (p *Program) LocateMain() bool {
	if main := p.FindClass("Main"); main != nil && main.FindFunction("main") != nil {
		return true
	}
	p.Diags.Add(diag.Diagnostic{
		File:       "*",
		Category:   diag.Syntax,
		Line:       diag.UnknownLine,
		Cause:      "no Main class with a main function was found",
		Suggestion: "define `class Main { void main() { ... } }` in the entry file",
	})
	return false
}
