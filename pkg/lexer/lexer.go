// Package lexer turns a raw character buffer into the flat lexeme stream the
// organizer passes consume. The scan is context-sensitive rather than
// grammar-driven: string and comment state override the break alphabet, and
// positional breadcrumbs are injected after every newline so that later
// passes can mutate lines heavily without losing source positions.
package lexer

import (
	"github.com/dubya62/tcab/pkg/diag"
	"github.com/dubya62/tcab/pkg/token"
)

// Lexer scans one character buffer. It is single-use; create a new Lexer per
// file.
type Lexer struct {
	src   []byte
	file  string
	diags *diag.List
}

// New creates a Lexer for src. Lexical problems (unterminated strings or
// comments) are appended to diags; the scan itself never fails.
func New(src []byte, file string, diags *diag.List) *Lexer {
	if diags == nil {
		diags = diag.NewList()
	}
	return &Lexer{src: src, file: file, diags: diags}
}

// Tokenize scans the buffer into lexemes with embedded breadcrumbs.
//
// Scan state: inString suppresses the break alphabet until the closing quote;
// comment/multi track the two comment flavors; doc marks a documentation
// block, which is closed by the next '}' regardless of brace nesting. The
// physical line counter advances on every newline character whether or not a
// newline lexeme is emitted, so breadcrumbs always name true source lines.
func (l *Lexer) Tokenize() []string {
	src := l.src
	out := make([]string, 0, len(src)/2+8)
	cur := make([]byte, 0, 32)
	line := 1
	out = append(out, token.Breadcrumb(1))

	inString := false
	stringStart := 0
	comment, multi, doc := false, false, false
	commentStart := 0

	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}

		if inString {
			cur = append(cur, c)
			if c == '\n' {
				line++
			}
			if c == '"' {
				// A quote sandwiched between single quotes is the
				// character-literal case and stays ordinary.
				sandwiched := i > 0 && src[i-1] == '\'' && next == '\''
				if !sandwiched {
					inString = false
					flush()
				}
			}
			continue
		}

		if comment {
			switch {
			case doc:
				if c == '}' {
					comment, multi, doc = false, false, false
				} else if c == '\n' {
					line++
				}
			case multi:
				if c == '*' && next == '/' {
					comment, multi = false, false
					i++
				} else if c == '\n' {
					line++
				}
			default:
				// Single-line comments consume everything up to the
				// newline, nested comment openers included.
				if c == '\n' {
					comment = false
					line++
					out = append(out, "\n", token.Breadcrumb(line))
				}
			}
			continue
		}

		switch {
		case c == '/' && next == '*':
			flush()
			comment, multi = true, true
			commentStart = line
			i++
		case c == '/' && next == '/':
			flush()
			comment, multi = true, false
			i++
		case c == '@':
			flush()
			comment, multi, doc = true, true, true
			commentStart = line
		case c == '"':
			flush()
			if i > 0 && src[i-1] == '\'' && next == '\'' {
				// '"' character literal: the quote is an ordinary lexeme.
				out = append(out, `"`)
				continue
			}
			inString = true
			stringStart = line
			cur = append(cur, '"')
		case c == '\n':
			flush()
			line++
			out = append(out, "\n", token.Breadcrumb(line))
		case c == ' ' || c == '\t':
			flush()
		case c == '{' || c == '}':
			// Braces always start a fresh line carrying position, so a
			// brace followed by more tokens still reports its own line.
			flush()
			out = append(out, string(c), "\n", token.Breadcrumb(line))
		case token.IsBreak(c):
			flush()
			out = append(out, string(c))
		default:
			cur = append(cur, c)
		}
	}

	if inString {
		l.diags.Add(diag.Diagnostic{
			File:       l.file,
			Category:   diag.Syntax,
			Line:       stringStart,
			Cause:      "string literal is not terminated before end of file",
			Suggestion: "add a closing '\"'",
		})
		flush()
	}
	if comment && multi && !doc {
		l.diags.Add(diag.Diagnostic{
			File:       l.file,
			Category:   diag.Syntax,
			Line:       commentStart,
			Cause:      "multi-line comment is not terminated before end of file",
			Suggestion: "add a closing '*/'",
		})
	}
	// A documentation block reaching end of file terminates silently.
	flush()
	return out
}
