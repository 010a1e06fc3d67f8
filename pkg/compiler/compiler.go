// Package compiler provides the tcab front-end as a library, so the CLI and
// the LSP server can organize files without shelling out. One Compiler can
// be reused across files; each Compile call threads its own imported-file
// set through the recursive import resolution.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dubya62/tcab/pkg/config"
	"github.com/dubya62/tcab/pkg/diag"
	"github.com/dubya62/tcab/pkg/lexer"
	"github.com/dubya62/tcab/pkg/organizer"
)

// Compiler runs the front-end pipeline.
type Compiler struct {
	cfg *config.Config
	log *zap.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger attaches a structured logger; the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) {
		c.log = l
	}
}

// New creates a Compiler. A nil config selects the defaults.
func New(cfg *config.Config, opts ...Option) *Compiler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &Compiler{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileFile loads and organizes one entry file and everything it imports.
// An unreadable entry or import file is fatal and returned as an error;
// every structural problem instead accumulates on the program's diagnostic
// list.
func (c *Compiler) CompileFile(path string) (*organizer.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return c.CompileSource(path, src)
}

// CompileSource organizes an in-memory buffer as if it were the contents of
// path. Imports still resolve relative to path on disk.
func (c *Compiler) CompileSource(path string, src []byte) (*organizer.Program, error) {
	start := time.Now()
	visited := map[string]bool{canonicalKey(path): true}

	prog, err := c.organize(path, src, visited)
	if err != nil {
		return nil, err
	}

	prog.Organize()
	prog.LocateMain()

	c.log.Debug("front-end complete",
		zap.String("file", path),
		zap.Int("classes", len(prog.Classes)),
		zap.Int("diagnostics", prog.Diags.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return prog, nil
}

// organize runs stages 1 through 7 for one file: scan, class extraction,
// subclass nesting, and recursive import resolution.
func (c *Compiler) organize(path string, src []byte, visited map[string]bool) (*organizer.Program, error) {
	scanStart := time.Now()
	diags := diag.NewList()
	lines := lexer.Scan(src, path, diags)
	c.log.Debug("scan complete",
		zap.String("file", path),
		zap.Int("lines", len(lines)),
		zap.Duration("elapsed", time.Since(scanStart)))

	prog := organizer.NewProgram(path, src, diags)
	prog.ExtractClasses(lines)

	if err := c.resolveImports(prog, visited); err != nil {
		return nil, err
	}
	return prog, nil
}

// resolveImports pulls every import line out of the program, compiles each
// referenced file once, and wraps the resulting classes in synthetic
// classes named after the path components.
func (c *Compiler) resolveImports(prog *organizer.Program, visited map[string]bool) error {
	for _, decl := range prog.TakeImports() {
		resolved := decl.ResolvePath(prog.File, c.cfg.Build.SourceExtension)
		key := canonicalKey(resolved)
		if visited[key] {
			c.log.Debug("import already resolved", zap.String("path", resolved))
			continue
		}
		visited[key] = true

		src, err := os.ReadFile(resolved)
		if err != nil {
			return fmt.Errorf("failed to read import %s (from %s): %w",
				resolved, prog.File, err)
		}

		sub, err := c.organize(resolved, src, visited)
		if err != nil {
			return err
		}

		prog.Directives = append(prog.Directives, sub.TakeGlobalDirectives()...)
		sub.CheckGlobals()
		prog.Diags.Merge(sub.Diags)

		if wrapper := organizer.WrapImported(decl, sub.Classes, resolved); wrapper != nil {
			prog.Classes = append(prog.Classes, wrapper)
		}
		c.log.Debug("import resolved",
			zap.String("path", resolved),
			zap.Int("classes", len(sub.Classes)))
	}
	return nil
}

// canonicalKey normalizes a path for the imported-file set so that cycles
// terminate regardless of how the path was spelled.
func canonicalKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
