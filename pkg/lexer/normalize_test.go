package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dubya62/tcab/pkg/diag"
	"github.com/dubya62/tcab/pkg/token"
)

func TestNormalizeContinuations(t *testing.T) {
	in := []string{"`1", "x", "=", "1", "+", `\`, "\n", "`2", "2"}
	got := NormalizeContinuations(in)
	assert.Equal(t, []string{"`1", "x", "=", "1", "+", "`2", "2"}, got)

	// Second run is a no-op.
	assert.Equal(t, got, NormalizeContinuations(got))
}

func TestNormalizeTerminators(t *testing.T) {
	t.Run("semicolon before newline is dropped", func(t *testing.T) {
		in := []string{"`1", "x", ";", "\n", "`2", "y"}
		got := NormalizeTerminators(in)
		assert.Equal(t, []string{"`1", "x", "\n", "`2", "y"}, got)
	})

	t.Run("mid-line semicolon becomes newline with position", func(t *testing.T) {
		in := []string{"`3", "x", ";", "y"}
		got := NormalizeTerminators(in)
		assert.Equal(t, []string{"`3", "x", "\n", "`3", "y"}, got)
	})

	t.Run("idempotent", func(t *testing.T) {
		in := []string{"`1", "a", ";", "b", ";", "\n", "`2", "c"}
		once := NormalizeTerminators(in)
		assert.Equal(t, once, NormalizeTerminators(once))
	})
}

func TestAssembleLines(t *testing.T) {
	in := []string{"`1", "a", "b", "\n", "`2", "\n", "`3", "c"}
	lines := AssembleLines(in)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"`1", "a", "b"}, lines[0].Tokens)
	assert.Equal(t, []string{"`3", "c"}, lines[1].Tokens)
}

func TestAssembleLinesSingleLeadingBreadcrumb(t *testing.T) {
	// A breadcrumb stranded mid-line by continuation folding is dropped.
	in := []string{"`1", "x", "`2", "y", "\n"}
	lines := AssembleLines(in)
	require.Len(t, lines, 1)
	assert.Equal(t, []string{"`1", "x", "y"}, lines[0].Tokens)

	crumbs := 0
	for _, tok := range lines[0].Tokens {
		if token.IsBreadcrumb(tok) {
			crumbs++
		}
	}
	assert.Equal(t, 1, crumbs)
	_, ok := lines[0].Breadcrumb()
	assert.True(t, ok)
}

func TestScanBreadcrumbRoundTrip(t *testing.T) {
	src := "class A {\n\nint x = 1\n}\n"
	lines := Scan([]byte(src), "test.tcab", diag.NewList())

	// Every assembled line's breadcrumb names the source line where its
	// first token appeared.
	want := map[string]int{
		"class": 1,
		"int":   3,
		"}":     4,
	}
	for _, line := range lines {
		n, ok := line.Breadcrumb()
		require.True(t, ok, "line %v has no breadcrumb", line.Tokens)
		if expected, tracked := want[line.First()]; tracked {
			assert.Equal(t, expected, n, "line %v", line.Tokens)
		}
	}
}

func TestScanBrokenLine(t *testing.T) {
	src := "x = 1 + \\\n2\n"
	lines := Scan([]byte(src), "test.tcab", diag.NewList())
	require.Len(t, lines, 1)
	assert.Equal(t, []string{"`1", "x", "=", "1", "+", "2"}, lines[0].Tokens)
}
