package organizer

import (
	"github.com/dubya62/tcab/pkg/token"
)

// HarvestDirectives pulls every '#'-prefixed line out of the global
// residual, each class body, and each function body into the owning
// entity's directive list. Directives stay opaque to the front-end.
func (p *Program) HarvestDirectives() {
	p.Globals, p.Directives = splitDirectives(p.Globals, p.Directives)
	p.Walk(func(c *Class) {
		c.Lines, c.Directives = splitDirectives(c.Lines, c.Directives)
	})
	p.EachFunction(func(_ *Class, fn *Function) {
		fn.Lines, fn.Directives = splitDirectives(fn.Lines, fn.Directives)
	})
}

func splitDirectives(lines, directives []token.Line) ([]token.Line, []token.Line) {
	kept := lines[:0]
	for _, line := range lines {
		if line.First() == "#" {
			directives = append(directives, line)
			continue
		}
		kept = append(kept, line)
	}
	return kept, directives
}

// TakeGlobalDirectives removes and returns the '#' lines of the residual
// global list. The import resolver uses it to propagate an imported file's
// global directives to the importing program before the residual check.
func (p *Program) TakeGlobalDirectives() []token.Line {
	var dirs []token.Line
	p.Globals, dirs = splitDirectives(p.Globals, nil)
	return dirs
}

// HarvestUses moves `use target [as alias]` lines into the owning class's
// alias table. The alias defaults to the last component of the target.
func (p *Program) HarvestUses() {
	p.Walk(func(c *Class) {
		kept := c.Lines[:0]
		for _, line := range c.Lines {
			if line.First() != "use" {
				kept = append(kept, line)
				continue
			}
			c.Uses = append(c.Uses, p.parseUse(line))
		}
		c.Lines = kept
	})
}

func (p *Program) parseUse(line token.Line) Use {
	toks := line.Body()[1:] // past `use`
	var u Use
	i := 0
	for ; i < len(toks) && toks[i] != "as"; i++ {
		if toks[i] != "." {
			u.Target = append(u.Target, toks[i])
		}
	}
	if i < len(toks) && toks[i] == "as" {
		for i++; i < len(toks); i++ {
			if toks[i] != "." {
				u.Alias = append(u.Alias, toks[i])
			}
		}
	}
	if len(u.Alias) == 0 && len(u.Target) > 0 {
		u.Alias = []string{u.Target[len(u.Target)-1]}
	}
	if len(u.Target) == 0 {
		p.report(lineNumber(line), "use statement has no target path",
			"write `use dotted.path [as alias]`")
	}
	return u
}

// CheckGlobals reports every residual global line: after class extraction,
// import resolution, and directive harvesting, nothing else is legal at the
// top level of a file.
func (p *Program) CheckGlobals() {
	for _, line := range p.Globals {
		p.report(lineNumber(line),
			"only class definitions, imports, and '#' directives may appear at the top level",
			"move this line inside a class")
	}
}
