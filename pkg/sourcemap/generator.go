// Package sourcemap emits and validates Source Map v3 files relating the
// organized-program dump back to original source lines. The breadcrumbs the
// tokenizer injects survive every rewrite, so each organized line still
// knows the 1-based source line it came from; this package serializes that
// relation for external tooling.
package sourcemap

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/dubya62/tcab/pkg/organizer"
)

// Mapping relates one line of the organized dump to its source line.
type Mapping struct {
	GenLine    int // 1-based line in the organized output
	SourceLine int // 1-based line in the original source file
}

// Generator collects line mappings and renders them as a source map.
type Generator struct {
	sourceFile string
	genFile    string
	mappings   []Mapping
}

// NewGenerator creates a generator for one source/output file pair.
func NewGenerator(sourceFile, genFile string) *Generator {
	return &Generator{
		sourceFile: sourceFile,
		genFile:    genFile,
		mappings:   make([]Mapping, 0),
	}
}

// AddMapping records that generated line genLine originates at sourceLine.
func (g *Generator) AddMapping(genLine, sourceLine int) {
	g.mappings = append(g.mappings, Mapping{GenLine: genLine, SourceLine: sourceLine})
}

// Mappings returns the recorded mappings sorted by generated line.
func (g *Generator) Mappings() []Mapping {
	out := make([]Mapping, len(g.mappings))
	copy(out, g.mappings)
	sort.Slice(out, func(i, j int) bool { return out[i].GenLine < out[j].GenLine })
	return out
}

// FromProgram builds a generator covering every organized function body
// line of the program, in walk order. The generated line counter follows
// the dump order of the lines.
func FromProgram(prog *organizer.Program, genFile string) *Generator {
	g := NewGenerator(prog.File, genFile)
	genLine := 0
	prog.EachFunction(func(_ *organizer.Class, fn *organizer.Function) {
		for _, line := range fn.Lines {
			genLine++
			if n, ok := line.Breadcrumb(); ok {
				g.AddMapping(genLine, n)
			}
		}
	})
	return g
}

// v3 is the Source Map v3 wire form.
type v3 struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// MarshalJSON renders the collected mappings as a Source Map v3 document
// with base64-VLQ encoded segments, one segment per generated line.
func (g *Generator) MarshalJSON() ([]byte, error) {
	return json.Marshal(v3{
		Version:  3,
		File:     g.genFile,
		Sources:  []string{g.sourceFile},
		Names:    []string{},
		Mappings: g.encodeMappings(),
	})
}

func (g *Generator) encodeMappings() string {
	mappings := g.Mappings()
	var b strings.Builder

	genLine := 1
	prevSrcLine := 0 // zero-based, delta-encoded across segments
	for _, m := range mappings {
		for genLine < m.GenLine {
			b.WriteByte(';')
			genLine++
		}
		srcLine := m.SourceLine - 1
		// Segment fields: generated column, source index, source line,
		// source column. All but the first are deltas from the previous
		// segment.
		b.WriteString(encodeVLQ(0))
		b.WriteString(encodeVLQ(0))
		b.WriteString(encodeVLQ(srcLine - prevSrcLine))
		b.WriteString(encodeVLQ(0))
		prevSrcLine = srcLine
	}
	return b.String()
}

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeVLQ encodes one integer as base64 VLQ per the source map spec: the
// low bit of the first digit carries the sign, each digit holds five value
// bits, and the continuation bit marks further digits.
func encodeVLQ(n int) string {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	var out []byte
	for {
		digit := v & 31
		v >>= 5
		if v > 0 {
			digit |= 32
		}
		out = append(out, base64Alphabet[digit])
		if v == 0 {
			break
		}
	}
	return string(out)
}
