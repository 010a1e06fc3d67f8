package organizer

import (
	"encoding/json"
	"strings"

	"github.com/dubya62/tcab/pkg/diag"
	"github.com/dubya62/tcab/pkg/token"
)

// The dump types are the stable JSON handoff form consumed by the code
// generator. Token lines serialize as space-joined strings; the leading
// breadcrumb stays in place so the backend can attribute emitted C lines.

type dumpFunction struct {
	Name       string        `json:"name"`
	Access     Access        `json:"access"`
	Static     bool          `json:"static,omitempty"`
	Params     string        `json:"params"`
	ReturnType string        `json:"return_type"`
	Directives []string      `json:"directives,omitempty"`
	Lines      []string      `json:"lines"`
	Test       *dumpFunction `json:"test,omitempty"`
}

type dumpClass struct {
	Name       string         `json:"name"`
	Access     Access         `json:"access"`
	Parents    []string       `json:"parents,omitempty"`
	File       string         `json:"file"`
	IsGlobal   bool           `json:"is_global"`
	StartLine  int            `json:"start_line"`
	EndLine    int            `json:"end_line"`
	Uses       []Use          `json:"uses,omitempty"`
	Directives []string       `json:"directives,omitempty"`
	Attributes []string       `json:"attributes,omitempty"`
	Functions  []*dumpFunction `json:"functions,omitempty"`
	Subclasses []*dumpClass   `json:"subclasses,omitempty"`
}

type dumpProgram struct {
	File        string            `json:"file"`
	Classes     []*dumpClass      `json:"classes"`
	Directives  []string          `json:"directives,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

// Dump renders the organized program as indented JSON for the backend
// handoff.
func (p *Program) Dump() ([]byte, error) {
	out := dumpProgram{
		File:        p.File,
		Classes:     make([]*dumpClass, 0, len(p.Classes)),
		Directives:  joinLines(p.Directives),
		Diagnostics: p.Diags.Items(),
	}
	for _, c := range p.Classes {
		out.Classes = append(out.Classes, dumpOneClass(c))
	}
	return json.MarshalIndent(out, "", "  ")
}

func dumpOneClass(c *Class) *dumpClass {
	d := &dumpClass{
		Name:       c.Name,
		Access:     c.Access,
		Parents:    c.Parents,
		File:       c.File,
		IsGlobal:   c.IsGlobal,
		StartLine:  c.StartLine,
		EndLine:    c.EndLine,
		Uses:       c.Uses,
		Directives: joinLines(c.Directives),
		Attributes: joinLines(c.Lines),
	}
	for _, fn := range c.Functions {
		d.Functions = append(d.Functions, dumpOneFunction(fn))
	}
	for _, sub := range c.Subclasses {
		d.Subclasses = append(d.Subclasses, dumpOneClass(sub))
	}
	return d
}

func dumpOneFunction(fn *Function) *dumpFunction {
	d := &dumpFunction{
		Name:       fn.Name,
		Access:     fn.Access,
		Static:     fn.Static,
		Params:     strings.Join(fn.Params, " "),
		ReturnType: strings.Join(fn.ReturnType, " "),
		Directives: joinLines(fn.Directives),
		Lines:      joinLines(fn.Lines),
	}
	if fn.Test != nil {
		d.Test = dumpOneFunction(fn.Test)
	}
	return d
}

func joinLines(lines []token.Line) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}
