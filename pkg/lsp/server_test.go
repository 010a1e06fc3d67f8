package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/dubya62/tcab/pkg/diag"
)

func TestToProtocolDiagnostic(t *testing.T) {
	d := diag.Diagnostic{
		File:       "main.tcab",
		Category:   diag.Syntax,
		Line:       5,
		Source:     "class {",
		Cause:      "class name is missing",
		Suggestion: "add an identifier",
	}

	got := toProtocol(d)
	assert.Equal(t, uint32(4), got.Range.Start.Line)
	assert.Equal(t, uint32(0), got.Range.Start.Character)
	assert.Equal(t, protocol.DiagnosticSeverityError, got.Severity)
	assert.Equal(t, "tcab", got.Source)
	assert.Contains(t, got.Message, "class name is missing")
	assert.Contains(t, got.Message, "add an identifier")
}

func TestToProtocolUnknownLineClampsToZero(t *testing.T) {
	d := diag.Diagnostic{File: "*", Line: -1, Cause: "no Main"}
	got := toProtocol(d)
	assert.Equal(t, uint32(0), got.Range.Start.Line)
}

func TestNewServerDefaults(t *testing.T) {
	s := NewServer(ServerConfig{})
	require.NotNil(t, s)
	assert.NotNil(t, s.config.Logger)
	assert.NotNil(t, s.config.Compiler)
}
