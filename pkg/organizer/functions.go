package organizer

import (
	"github.com/dubya62/tcab/pkg/token"
)

// OrganizeFunctions partitions each class body into Function records,
// leaving directive, use, and attribute lines in place for the harvesters.
// Subclasses are organized after their enclosing class.
func (p *Program) OrganizeFunctions() {
	p.Walk(func(c *Class) {
		p.organizeClassFunctions(c)
	})
}

func (p *Program) organizeClassFunctions(c *Class) {
	body := c.Lines
	// Drop the header line carrying the opening '{' and the closing '}'.
	if len(body) > 0 && body[0].Last() == "{" {
		body = body[1:]
	}
	if n := len(body); n > 0 && body[n-1].First() == "}" {
		body = body[:n-1]
	}

	var residual []token.Line
	i := 0
	for i < len(body) {
		line := body[i]
		if line.Last() != "{" || isClassHeader(line) || line.First() == "#" {
			residual = append(residual, line)
			i++
			continue
		}

		fn, ok := p.parseFunctionHeader(line)
		if !ok {
			residual = append(residual, line)
			i++
			continue
		}

		end, closed := findBlockEnd(body, i)
		if closed {
			fn.Lines = copyLines(body[i+1 : end])
			i = end + 1
		} else {
			p.report(lineNumber(line),
				"function body has no matching '}' before end of file",
				"add a closing '}' for function "+fn.Name)
			fn.Lines = copyLines(body[i+1:])
			i = len(body)
		}

		// A `${ ... }` block directly after the close is the paired test
		// predicate: same parameters, bool return, name prefixed with $.
		if closed && i < len(body) && body[i].First() == "$" {
			testLine := body[i]
			rest := testLine.Body()
			if len(rest) < 2 || rest[1] != "{" {
				p.report(lineNumber(testLine),
					"'$' is not followed by '{'",
					"open the test block with '${'")
				residual = append(residual, testLine)
				i++
			} else {
				tEnd, tClosed := findBlockEnd(body, i)
				bodyEnd := tEnd
				if !tClosed {
					p.report(lineNumber(testLine),
						"test block has no matching '}' before end of file",
						"add a closing '}' for the '$' block of "+fn.Name)
					bodyEnd = len(body)
				}
				fn.Test = &Function{
					Name:       "$" + fn.Name,
					Params:     append([]string(nil), fn.Params...),
					ReturnType: []string{"bool"},
					Access:     fn.Access,
					Lines:      copyLines(body[i+1 : bodyEnd]),
				}
				i = tEnd + 1
			}
		}

		c.Functions = append(c.Functions, fn)
	}

	c.Lines = residual
}

// parseFunctionHeader parses a line of the shape
// `[access] [static] <return-type> name ( params ) {` by walking backward
// from the trailing '{' to the matching parenthesis pair.
func (p *Program) parseFunctionHeader(line token.Line) (*Function, bool) {
	ln := lineNumber(line)
	toks := line.Body()

	last := len(toks) - 1 // the '{'
	if last < 1 || toks[last-1] != ")" {
		p.report(ln, "function header is missing ')' before '{'",
			"close the parameter list with ')'")
		return nil, false
	}

	// Walk backward to the '(' matching the ')' before the '{'.
	open := -1
	depth := 0
	for i := last - 1; i >= 0; i-- {
		switch toks[i] {
		case ")":
			depth++
		case "(":
			depth--
			if depth == 0 {
				open = i
			}
		}
		if open >= 0 {
			break
		}
	}
	if open < 0 {
		p.report(ln, "function header is missing '(' before the parameter list",
			"open the parameter list with '('")
		return nil, false
	}

	nameIdx := open - 1
	if nameIdx < 0 || toks[nameIdx] == "static" || IsAccess(toks[nameIdx]) {
		p.report(ln, "function name is missing",
			"add an identifier before the parameter list")
		return nil, false
	}

	fn := &Function{
		Name:   toks[nameIdx],
		Params: append([]string(nil), toks[open+1:last-1]...),
		Access: AccessPrivate,
	}

	i := 0
	if i < nameIdx && IsAccess(toks[i]) {
		fn.Access = Access(toks[i])
		i++
	}
	if i < nameIdx && toks[i] == "static" {
		fn.Static = true
		i++
	}
	fn.ReturnType = append([]string(nil), toks[i:nameIdx]...)
	return fn, true
}
