package lexer

import (
	"regexp"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dubya62/tcab/pkg/diag"
	"github.com/dubya62/tcab/pkg/token"
)

func tokenize(t *testing.T, src string) []string {
	t.Helper()
	return New([]byte(src), "test.tcab", diag.NewList()).Tokenize()
}

func TestTokenizeBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "identifiers and breaks",
			input: "x = y + 1",
			want:  []string{"`1", "x", "=", "y", "+", "1"},
		},
		{
			name:  "newline emits breadcrumb",
			input: "a\nb",
			want:  []string{"`1", "a", "\n", "`2", "b"},
		},
		{
			name:  "brace starts fresh line with current position",
			input: "class A {",
			want:  []string{"`1", "class", "A", "{", "\n", "`1"},
		},
		{
			name:  "string kept as one lexeme with quotes",
			input: `x = "hello world"`,
			want:  []string{"`1", "x", "=", `"hello world"`},
		},
		{
			name:  "tabs and spaces are separators only",
			input: "a\t b",
			want:  []string{"`1", "a", "b"},
		},
		{
			name:  "dotted chain splits on dots",
			input: "a.b.c",
			want:  []string{"`1", "a", ".", "b", ".", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(t, tt.input))
		})
	}
}

func TestTokenizeComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single line comment consumed until newline",
			input: "x // hidden /* still hidden\ny",
			want:  []string{"`1", "x", "\n", "`2", "y"},
		},
		{
			name:  "multi line comment swallows newlines",
			input: "a /* one\ntwo */ b",
			want:  []string{"`1", "a", "b"},
		},
		{
			name:  "documentation block closed by brace",
			input: "@ docs here } x",
			want:  []string{"`1", "x"},
		},
		{
			name:  "doc brace closes even inside nesting",
			input: "@ { not a block } y",
			want:  []string{"`1", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(t, tt.input))
		})
	}
}

func TestTokenizeLineCountSurvivesComments(t *testing.T) {
	// The physical line counter advances inside multi-line comments, so
	// breadcrumbs after the comment still name true source lines.
	got := tokenize(t, "a /* x\ny */\nb")
	assert.Equal(t, []string{"`1", "a", "\n", "`3", "b"}, got)
}

func TestTokenizeQuoteCharacterLiteral(t *testing.T) {
	// '"' must not flip the string flag.
	got := tokenize(t, `c = '"'`)
	assert.Equal(t, []string{"`1", "c", "=", "'", `"`, "'"}, got)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	diags := diag.NewList()
	New([]byte("x = \"oops\ny"), "test.tcab", diags).Tokenize()
	require.Equal(t, 1, diags.Len())
	d := diags.Items()[0]
	assert.Equal(t, diag.Syntax, d.Category)
	assert.Equal(t, 1, d.Line)
	assert.Contains(t, d.Cause, "string")
}

func TestTokenizeUnterminatedComment(t *testing.T) {
	diags := diag.NewList()
	New([]byte("x /* never closed"), "test.tcab", diags).Tokenize()
	require.Equal(t, 1, diags.Len())
	assert.Contains(t, diags.Items()[0].Cause, "comment")
}

func TestTokenizeDocAtEOFIsSilent(t *testing.T) {
	diags := diag.NewList()
	got := New([]byte("x @ doc runs off"), "test.tcab", diags).Tokenize()
	assert.Equal(t, 0, diags.Len())
	assert.Equal(t, []string{"`1", "x"}, got)
}

var breadcrumbRe = regexp.MustCompile("^`[0-9]+$")

// Every emitted lexeme is a break character, a run of non-break characters,
// a quoted string, or a breadcrumb.
func TestTokenizeLexemeInvariant(t *testing.T) {
	src := "class A {\n\tint x = \"s\" + 2 // c\n\t/* m */ y[1:2]\n}\n"
	for _, lex := range tokenize(t, src) {
		if breadcrumbRe.MatchString(lex) || token.IsStringLiteral(lex) {
			continue
		}
		if len(lex) == 1 && token.IsBreak(lex[0]) {
			continue
		}
		for i := 0; i < len(lex); i++ {
			assert.False(t, token.IsBreak(lex[i]),
				"lexeme %q contains break character %q", lex, lex[i])
		}
	}
}

func TestTokenDumpSnapshot(t *testing.T) {
	src := "public class Main {\n\tvoid main() {\n\t\tx += 2 * 3 // note\n\t}\n}\n"
	toks := tokenize(t, src)
	snaps.MatchSnapshot(t, DumpTokens(toks))
}
