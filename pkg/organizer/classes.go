package organizer

import (
	"github.com/dubya62/tcab/pkg/token"
)

// isClassHeader triggers class-header parsing when the line's leading run
// of keywords contains `class`. Scanning every line (not just lines
// still marked global) is what lets textually nested classes surface as
// their own records for the subclass nester to reparent.
func isClassHeader(l token.Line) bool {
	for _, tok := range l.Body() {
		switch tok {
		case "public", "private", "protected", "static":
			continue
		case "class":
			return true
		}
		return false
	}
	return false
}

// ExtractClasses partitions the assembled lines into class records and the
// residual global list (stage 5), then relocates textually nested classes
// into their enclosing class's subclass list (stage 6).
func (p *Program) ExtractClasses(lines []token.Line) {
	globalScope := make([]bool, len(lines))
	for i := range globalScope {
		globalScope[i] = true
	}

	for i := 0; i < len(lines); i++ {
		if !isClassHeader(lines[i]) {
			continue
		}
		cls, ok := p.parseClassHeader(lines[i])
		if !ok {
			// Malformed beyond recovery: treat the header as absent.
			continue
		}

		end, closed := findBlockEnd(lines, i)
		if !closed {
			p.report(cls.StartLine,
				"class body has no matching '}' before end of file",
				"add a closing '}' for class "+cls.Name)
		}

		cls.Lines = copyLines(lines[i : end+1])
		cls.EndLine = lineNumber(lines[end])
		cls.startIdx, cls.endIdx = i, end
		for j := i; j <= end; j++ {
			globalScope[j] = false
		}
		p.Classes = append(p.Classes, cls)
	}

	for i, line := range lines {
		if globalScope[i] {
			p.Globals = append(p.Globals, line.Clone())
		}
	}

	p.nestSubclasses()
}

// parseClassHeader parses `[access] class Name [extends P[, P]*] {`.
// Specifier-level problems (static, protected, duplicate access, wrong
// order) are reported but still yield a class record; structural problems
// (missing name, missing '{' or extends) report and yield none.
func (p *Program) parseClassHeader(l token.Line) (*Class, bool) {
	ln := lineNumber(l)
	toks := l.Body()

	cls := &Class{
		Access:    AccessPrivate,
		File:      p.File,
		IsGlobal:  true,
		StartLine: ln,
	}

	i := 0
	accessSeen := 0
	for i < len(toks) && toks[i] != "class" {
		switch toks[i] {
		case "static":
			p.report(ln, "a class cannot be declared static",
				"remove the 'static' keyword")
		case "protected":
			p.report(ln, "a class cannot be declared protected",
				"use 'public' or 'private'")
			accessSeen++
		case "public", "private":
			accessSeen++
			cls.Access = Access(toks[i])
		}
		i++
	}
	if accessSeen > 1 {
		p.report(ln, "a class cannot carry more than one access specifier",
			"keep a single 'public' or 'private'")
	}
	if i >= len(toks) {
		return nil, false
	}
	i++ // consume `class`

	if i >= len(toks) || toks[i] == "{" {
		p.report(ln, "class name is missing",
			"add an identifier between 'class' and '{'")
		return nil, false
	}
	if IsAccess(toks[i]) || toks[i] == "static" {
		p.report(ln, "access specifier must come before the 'class' keyword",
			"write '"+toks[i]+" class ...' instead")
		i++
		if i >= len(toks) || toks[i] == "{" {
			return nil, false
		}
	}
	cls.Name = toks[i]
	i++

	switch {
	case i < len(toks) && toks[i] == "extends":
		i++
		for i < len(toks) && toks[i] != "{" {
			if toks[i] == "," {
				i++
				continue
			}
			cls.Parents = append(cls.Parents, toks[i])
			i++
		}
		if len(cls.Parents) == 0 {
			p.report(ln, "'extends' is not followed by a parent class list",
				"name at least one parent class after 'extends'")
		}
		if i >= len(toks) {
			p.report(ln, "class header is missing its opening '{'",
				"end the class header with '{'")
			return nil, false
		}
	case i < len(toks) && toks[i] == "{":
		// Plain class with no parents.
	default:
		p.report(ln, "expected '{' or 'extends' after the class name",
			"end the class header with '{' or add an 'extends' clause")
		return nil, false
	}

	return cls, true
}

// findBlockEnd runs the balanced-brace scan across lines, starting at the
// header line (which carries the opening '{'). It returns the index of the
// line that closes the block and whether a close was found; an unbalanced
// block extends to end of file.
func findBlockEnd(lines []token.Line, start int) (int, bool) {
	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		for _, tok := range lines[i].Tokens {
			switch tok {
			case "{":
				depth++
				opened = true
			case "}":
				depth--
			}
		}
		if opened && depth <= 0 {
			return i, true
		}
	}
	return len(lines) - 1, false
}

// nestSubclasses relocates any class textually contained inside another
// into the innermost enclosing class's subclass list, splicing the nested
// class's lines out of the adopter.
func (p *Program) nestSubclasses() {
	adopted := make(map[*Class]bool)
	for i, c := range p.Classes {
		for j := i - 1; j >= 0; j-- {
			outer := p.Classes[j]
			if outer.startIdx < c.startIdx && outer.endIdx >= c.endIdx {
				outer.adopt(c)
				adopted[c] = true
				break
			}
		}
	}
	if len(adopted) == 0 {
		return
	}
	kept := p.Classes[:0]
	for _, c := range p.Classes {
		if !adopted[c] {
			kept = append(kept, c)
		}
	}
	p.Classes = kept
}

// adopt makes sub a subclass of c and removes sub's lines from c's line
// list. The splice point is found by matching sub's first line (breadcrumb
// and tokens) inside c.
func (c *Class) adopt(sub *Class) {
	c.Subclasses = append(c.Subclasses, sub)
	if len(sub.Lines) == 0 {
		return
	}
	first := sub.Lines[0]
	for i, line := range c.Lines {
		if sameLine(line, first) {
			end := i + len(sub.Lines)
			if end > len(c.Lines) {
				end = len(c.Lines)
			}
			c.Lines = append(c.Lines[:i], c.Lines[end:]...)
			return
		}
	}
}

func sameLine(a, b token.Line) bool {
	if len(a.Tokens) != len(b.Tokens) {
		return false
	}
	for i := range a.Tokens {
		if a.Tokens[i] != b.Tokens[i] {
			return false
		}
	}
	return true
}

func copyLines(lines []token.Line) []token.Line {
	out := make([]token.Line, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}
