package sourcemap

import (
	"fmt"

	"github.com/go-sourcemap/sourcemap"
)

// Consumer wraps the go-sourcemap parser for lookups against an emitted
// map. Lines and columns are 1-based on both sides.
type Consumer struct {
	sm *sourcemap.Consumer
}

// NewConsumer parses raw source map data.
func NewConsumer(data []byte) (*Consumer, error) {
	sm, err := sourcemap.Parse("", data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source map: %w", err)
	}
	return &Consumer{sm: sm}, nil
}

// Source looks up the original position of a generated line. The column
// query is 0 so the first segment of the line always matches.
func (c *Consumer) Source(genLine int) (file string, line int, ok bool) {
	file, _, line, _, ok = c.sm.Source(genLine, 0)
	return file, line, ok
}

// Validate re-parses an emitted source map and checks that every recorded
// mapping survives the round trip.
func Validate(data []byte, want []Mapping) error {
	consumer, err := NewConsumer(data)
	if err != nil {
		return err
	}
	for _, m := range want {
		_, line, ok := consumer.Source(m.GenLine)
		if !ok {
			return fmt.Errorf("generated line %d has no mapping", m.GenLine)
		}
		if line != m.SourceLine {
			return fmt.Errorf("generated line %d maps to source line %d, want %d",
				m.GenLine, line, m.SourceLine)
		}
	}
	return nil
}
