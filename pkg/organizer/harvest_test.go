package organizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarvestDirectives(t *testing.T) {
	src := `# global directive
class A {
	# class directive
	void f() {
		# function directive
		x = 1
	}
}
`
	prog := organize(t, src)
	require.True(t, prog.Diags.Empty(), "diags: %s", prog.Diags.Format())

	require.Len(t, prog.Directives, 1)
	assert.Contains(t, prog.Directives[0].String(), "global")

	c := prog.Classes[0]
	require.Len(t, c.Directives, 1)
	assert.Contains(t, c.Directives[0].String(), "class")

	fn := c.Functions[0]
	require.Len(t, fn.Directives, 1)
	assert.Contains(t, fn.Directives[0].String(), "function")
	require.Len(t, fn.Lines, 1, "directive was removed from the body")
}

func TestHarvestUses(t *testing.T) {
	src := `class A {
	use util.math as m
	use util.strings
}
`
	prog := organize(t, src)
	require.True(t, prog.Diags.Empty(), "diags: %s", prog.Diags.Format())

	c := prog.Classes[0]
	require.Len(t, c.Uses, 2)

	if diff := cmp.Diff(Use{
		Target: []string{"util", "math"},
		Alias:  []string{"m"},
	}, c.Uses[0]); diff != "" {
		t.Errorf("aliased use mismatch (-want +got):\n%s", diff)
	}

	// Without an `as` clause the alias defaults to the last component.
	if diff := cmp.Diff(Use{
		Target: []string{"util", "strings"},
		Alias:  []string{"strings"},
	}, c.Uses[1]); diff != "" {
		t.Errorf("default-alias use mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, c.Lines, "use lines were removed from the class body")
}

func TestLocateMain(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		prog := organize(t, "class Main {\nvoid main() {\n}\n}\n")
		assert.True(t, prog.LocateMain())
		assert.True(t, prog.Diags.Empty())
	})

	t.Run("missing", func(t *testing.T) {
		prog := organize(t, "class Other {\nvoid main() {\n}\n}\n")
		assert.False(t, prog.LocateMain())
		require.Equal(t, 1, prog.Diags.Len())
		d := prog.Diags.Items()[0]
		assert.Equal(t, "*", d.File)
		assert.Equal(t, -1, d.Line)
		assert.Contains(t, d.Cause, "Main")
	})

	t.Run("main class without main function", func(t *testing.T) {
		prog := organize(t, "class Main {\nvoid other() {\n}\n}\n")
		assert.False(t, prog.LocateMain())
	})
}
