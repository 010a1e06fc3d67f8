package organizer

import (
	"path/filepath"
	"strings"

	"github.com/dubya62/tcab/pkg/token"
)

// ImportDecl is one parsed `import` line. Dots counts the leading dot run:
// one dot means the importing file's own directory, each additional dot
// ascends one parent. Components are the dotted path pieces joined with '/'
// during resolution.
type ImportDecl struct {
	Dots       int
	Components []string
	Line       int
}

// TakeImports removes every `import` line from the residual globals and
// parses it. Malformed imports (no components, empty mid-path component)
// are reported and dropped.
func (p *Program) TakeImports() []ImportDecl {
	var decls []ImportDecl
	kept := p.Globals[:0]
	for _, line := range p.Globals {
		if line.First() != "import" {
			kept = append(kept, line)
			continue
		}
		if decl, ok := p.parseImport(line); ok {
			decls = append(decls, decl)
		}
	}
	p.Globals = kept
	return decls
}

func (p *Program) parseImport(line token.Line) (ImportDecl, bool) {
	ln := lineNumber(line)
	decl := ImportDecl{Line: ln}

	toks := line.Body()[1:] // past `import`
	i := 0
	for i < len(toks) && toks[i] == "." {
		decl.Dots++
		i++
	}
	wantComponent := true
	for ; i < len(toks); i++ {
		if toks[i] == "." {
			if wantComponent {
				p.report(ln, "import path has an empty component",
					"remove the doubled '.' from the import path")
				return decl, false
			}
			wantComponent = true
			continue
		}
		decl.Components = append(decl.Components, toks[i])
		wantComponent = false
	}
	if len(decl.Components) == 0 || wantComponent {
		p.report(ln, "import path is incomplete",
			"write `import [.]*component[.component]*`")
		return decl, false
	}
	return decl, true
}

// ResolvePath joins an import declaration against the importing file's
// directory, appending the configured source extension. The result is
// cleaned and prefixed with './' when relative, matching the canonical form
// used by the imported-file set.
func (d ImportDecl) ResolvePath(importingFile, ext string) string {
	dir := filepath.Dir(importingFile)
	for i := 1; i < d.Dots; i++ {
		dir = filepath.Join(dir, "..")
	}
	path := filepath.Join(dir, filepath.Join(d.Components...)) + ext
	path = filepath.Clean(path)
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") && !strings.HasPrefix(path, "../") {
		path = "./" + path
	}
	return path
}

// WrapImported wraps an imported file's top-level classes in a chain of
// synthetic classes named after the path components, innermost last. The
// innermost synthetic class is public; the enclosing ones are protected.
// Every class below the wrapper has IsGlobal cleared, which downstream
// access checks use to distinguish imported code.
func WrapImported(decl ImportDecl, imported []*Class, file string) *Class {
	markImported(imported)
	if len(decl.Components) == 0 {
		return nil
	}

	inner := &Class{
		Name:       decl.Components[len(decl.Components)-1],
		Access:     AccessPublic,
		File:       file,
		IsGlobal:   false,
		Subclasses: imported,
	}
	for i := len(decl.Components) - 2; i >= 0; i-- {
		inner = &Class{
			Name:       decl.Components[i],
			Access:     AccessProtected,
			File:       file,
			IsGlobal:   false,
			Subclasses: []*Class{inner},
		}
	}
	return inner
}

func markImported(classes []*Class) {
	for _, c := range classes {
		c.IsGlobal = false
		markImported(c.Subclasses)
	}
}
