package organizer

import (
	"strconv"
	"strings"

	"github.com/dubya62/tcab/pkg/token"
)

// builtinNames are the keywords and type names the numberer leaves alone.
// Punctuation lexemes and literals are recognized structurally.
var builtinNames = map[string]bool{
	"int": true, "bool": true, "float": true, "short": true, "long": true,
	"double": true, "char": true, "void": true, "if": true, "while": true,
	"for": true, "switch": true, "case": true, "return": true,
}

// NumberNames assigns a dense ordinal to every distinct name referenced in
// each function body. Dotted chains are coalesced first, so `a.b.c` is one
// numbered name, distinct from `a` and from `a.b`; `$` fuses with the
// lexeme that follows it. Ordinals are per-function, monotonic from 0, and
// stable across repeated occurrences.
func (p *Program) NumberNames() {
	p.EachFunction(func(_ *Class, fn *Function) {
		numberFunction(fn)
	})
}

func numberFunction(fn *Function) {
	ordinals := make(map[string]int)
	for i := range fn.Lines {
		fn.Lines[i].Tokens = numberTokens(coalesceNames(fn.Lines[i].Tokens), ordinals)
	}
}

// coalesceNames fuses `id . id` runs into one dotted lexeme and `$` with
// its follower into one lexeme.
func coalesceNames(toks []string) []string {
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if tok == "$" && i+1 < len(toks) && isWord(toks[i+1]) {
			out = append(out, "$"+toks[i+1])
			i++
			continue
		}
		if tok == "'" && i+2 < len(toks) && toks[i+2] == "'" {
			// Re-fuse character literals split by the break alphabet.
			out = append(out, "'"+toks[i+1]+"'")
			i += 2
			continue
		}
		if !isWord(tok) {
			out = append(out, tok)
			continue
		}
		joined := tok
		for i+2 < len(toks) && toks[i+1] == "." && isWord(toks[i+2]) {
			joined += "." + toks[i+2]
			i += 2
		}
		out = append(out, joined)
	}
	return out
}

// numbered reports whether lex already carries an ordinal, which keeps the
// pass idempotent.
func numbered(lex string) bool {
	if len(lex) < 2 || lex[0] != '#' {
		return false
	}
	_, err := strconv.Atoi(lex[1:])
	return err == nil
}

func isBuiltin(lex string) bool {
	if builtinNames[lex] {
		return true
	}
	if len(lex) == 1 && token.IsBreak(lex[0]) {
		return true
	}
	if token.IsStringLiteral(lex) || token.IsNumericLiteral(lex) {
		return true
	}
	if strings.HasPrefix(lex, "'") {
		return true
	}
	return false
}

func numberTokens(toks []string, ordinals map[string]int) []string {
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		if token.IsBreadcrumb(tok) || isBuiltin(tok) || numbered(tok) {
			out = append(out, tok)
			continue
		}
		n, ok := ordinals[tok]
		if !ok {
			n = len(ordinals)
			ordinals[tok] = n
		}
		out = append(out, "#"+strconv.Itoa(n))
	}
	return out
}
