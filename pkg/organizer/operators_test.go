package organizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dubya62/tcab/pkg/diag"
	"github.com/dubya62/tcab/pkg/lexer"
	"github.com/dubya62/tcab/pkg/token"
)

// rewrite runs the operator passes over the scanned lines of a snippet and
// returns the space-joined body of each resulting line.
func rewrite(t *testing.T, src string) []string {
	t.Helper()
	diags := diag.NewList()
	lines := lexer.Scan([]byte(src), "test.tcab", diags)
	prog := NewProgram("test.tcab", []byte(src), diags)
	out := prog.rewriteBody(lines)

	joined := make([]string, len(out))
	for i, l := range out {
		joined[i] = strings.Join(l.Body(), " ")
	}
	return joined
}

func TestCompoundAssignmentAndPrecedence(t *testing.T) {
	got := rewrite(t, "x += 2 * 3 + 4\n")
	require.Len(t, got, 1)
	assert.Equal(t, "x = x . plus ( ( 2 . times ( 3 ) . plus ( 4 ) ) )", got[0])
}

func TestCompoundAssignmentVariants(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x -= 1", "x = x . minus ( ( 1 ) )"},
		{"x *= y", "x = x . times ( ( y ) )"},
		{"x ||= y", "x = x . logicalOr ( ( y ) )"},
		{"x &&= y", "x = x . logicalAnd ( ( y ) )"},
		{"x ^= 2", "x = x . xor ( ( 2 ) )"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := rewrite(t, tt.input+"\n")
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestSliceRewrites(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a[2:]", "a . splice ( 2 , 0 )"},
		{"a[:5]", "a . splice ( 0 , 5 )"},
		{"a[2:5]", "a . splice ( 2 , 5 )"},
		{"a[2]", "a . getElement ( 2 )"},
		{"a[i][j]", "a . getElement ( i ) . getElement ( j )"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := rewrite(t, tt.input+"\n")
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestUnaryRewrites(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x = !y", "x = 0 . logicalNot ( y )"},
		{"x = ~y", "x = 0 . not ( y )"},
		{"x = -y", "x = ( y ) . negate ( )"},
		{"x = a - b", "x = a . minus ( b )"},
		{"f(-1, 2)", "f ( ( 1 ) . negate ( ) , 2 )"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := rewrite(t, tt.input+"\n")
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestComparisonAndLogicalRewrites(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"r = a == b", "r = a . equals ( b )"},
		{"r = a != b", "r = a . doesNotEqual ( b )"},
		{"r = a <= b", "r = a . isLessThanOrEqual ( b )"},
		{"r = a >> 2", "r = a . rightShift ( 2 )"},
		{"r = a && b || c", "r = a . logicalAnd ( b ) . logicalOr ( c )"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := rewrite(t, tt.input+"\n")
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestDeclarationSplitting(t *testing.T) {
	got := rewrite(t, "int x = 1 + 2\n")
	require.Len(t, got, 2)
	assert.Equal(t, "int x =", got[0])
	assert.Equal(t, "x = 1 . plus ( 2 )", got[1])
}

func TestDeclarationSplitKeepsBreadcrumbs(t *testing.T) {
	diags := diag.NewList()
	lines := lexer.Scan([]byte("y = 0\nint x = 1\n"), "test.tcab", diags)
	prog := NewProgram("test.tcab", nil, diags)
	out := prog.rewriteBody(lines)

	require.Len(t, out, 3)
	assert.True(t, out[1].IsDeclaration)
	declLine, ok := out[1].Breadcrumb()
	require.True(t, ok)
	assignLine, ok := out[2].Breadcrumb()
	require.True(t, ok)
	assert.Equal(t, 2, declLine)
	assert.Equal(t, declLine, assignLine)
}

func TestDeclarationPatterns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		split bool
	}{
		{"two words", "int x = 1", true},
		{"pointer", "int * p = q", true},
		{"array", "int [ ] a = b", true},
		{"plain assignment", "x = 1", false},
		{"element assignment", "a[i] = 1", false},
		{"comparison is not assignment", "x == 1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rewrite(t, tt.input+"\n")
			if tt.split {
				assert.Len(t, got, 2)
			} else {
				assert.Len(t, got, 1)
			}
		})
	}
}

// standaloneOps is the operator alphabet that must be eliminated from
// function bodies by canonicalization.
var standaloneOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"<<": true, ">>": true, "&": true, "|": true, "^": true,
	"&&": true, "||": true, "~": true, "!": true,
}

func TestNoOperatorsSurviveCanonicalization(t *testing.T) {
	src := "r = a + b * c - d / e % f\ns = a << 2 | b & c ^ ~d\nok = a <= b && c != d || !e\n"
	for _, line := range rewrite(t, src) {
		for _, tok := range strings.Fields(line) {
			assert.False(t, standaloneOps[tok],
				"operator %q survived in %q", tok, line)
		}
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	once := canonicalize(strings.Fields("x = a + b [ 2 ]"))
	twice := canonicalize(append([]string(nil), once...))
	assert.Equal(t, once, twice)
}

func TestMultiLineArrayLiteralJoined(t *testing.T) {
	got := rewrite(t, "int [ ] a = [ 1 ,\n2 ]\n")
	require.Len(t, got, 2)
	assert.Equal(t, "int [ ] a =", got[0])
	assert.Equal(t, "a = [ 1 , 2 ]", got[1])
}

func TestRewriteBodySetsIsDeclaration(t *testing.T) {
	diags := diag.NewList()
	lines := lexer.Scan([]byte("double d = 0.5\n"), "test.tcab", diags)
	prog := NewProgram("test.tcab", nil, diags)
	out := prog.rewriteBody(lines)
	require.Len(t, out, 2)
	assert.True(t, out[0].IsDeclaration)
	assert.False(t, out[1].IsDeclaration)
}

func TestRewritePreservesLineOwnership(t *testing.T) {
	// Canonicalization builds fresh buffers; the input lines are movable
	// values, not aliases.
	in := token.NewLine("`1", "x", "=", "a", "+", "b")
	prog := NewProgram("test.tcab", nil, diag.NewList())
	out := prog.rewriteBody([]token.Line{in.Clone()})
	require.Len(t, out, 1)
	assert.Equal(t, []string{"`1", "x", "=", "a", "+", "b"}, in.Tokens)
	assert.NotEqual(t, in.Tokens, out[0].Tokens)
}
