package lexer

import (
	"strings"

	"github.com/dubya62/tcab/pkg/diag"
	"github.com/dubya62/tcab/pkg/token"
)

// NormalizeContinuations folds backslash-newline pairs so that a logical
// line broken across physical lines becomes one token run. The breadcrumb
// following the folded newline is kept; the line assembler ignores
// breadcrumbs past the first one on a line. Running this pass on its own
// output is a no-op.
func NormalizeContinuations(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if tokens[i] == `\` && i+1 < len(tokens) && tokens[i+1] == "\n" {
			i++
			continue
		}
		out = append(out, tokens[i])
	}
	return out
}

// NormalizeTerminators makes ';' equivalent to a newline. A ';' directly
// before a newline is dropped; a ';' mid-line becomes a newline followed by
// a copy of the current breadcrumb, so the synthetic line still knows its
// source position. Running this pass on its own output is a no-op.
func NormalizeTerminators(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	line := 1
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if n, ok := token.BreadcrumbLine(tok); ok {
			line = n
		}
		if tok == ";" {
			if i+1 < len(tokens) && tokens[i+1] == "\n" {
				continue
			}
			out = append(out, "\n", token.Breadcrumb(line))
			continue
		}
		out = append(out, tok)
	}
	return out
}

// AssembleLines groups the token stream into Line records, discarding the
// newline terminators. A line keeps at most one breadcrumb, always first;
// breadcrumbs stranded mid-line by continuation folding are dropped. Lines
// holding nothing but a breadcrumb are empty and omitted.
func AssembleLines(tokens []string) []token.Line {
	var lines []token.Line
	var cur []string

	flush := func() {
		if len(cur) == 0 {
			return
		}
		if len(cur) == 1 && token.IsBreadcrumb(cur[0]) {
			cur = nil
			return
		}
		lines = append(lines, token.Line{Tokens: cur})
		cur = nil
	}

	for _, tok := range tokens {
		switch {
		case tok == "\n":
			flush()
		case token.IsBreadcrumb(tok):
			if len(cur) == 0 {
				cur = append(cur, tok)
			}
		default:
			cur = append(cur, tok)
		}
	}
	flush()
	return lines
}

// Scan runs the full lexical front half over a buffer: tokenize, fold
// continuations, normalize terminators, assemble lines.
func Scan(src []byte, file string, diags *diag.List) []token.Line {
	toks := New(src, file, diags).Tokenize()
	toks = NormalizeContinuations(toks)
	toks = NormalizeTerminators(toks)
	return AssembleLines(toks)
}

// DumpTokens renders a token stream one lexeme per line, with newline
// lexemes escaped, for inspection and snapshot tests.
func DumpTokens(toks []string) string {
	var b strings.Builder
	for _, t := range toks {
		if t == "\n" {
			b.WriteString("\\n\n")
			continue
		}
		b.WriteString(t)
		b.WriteByte('\n')
	}
	return b.String()
}
