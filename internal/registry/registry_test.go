package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func leafModule(file string, line int) Module {
	return Module{
		Name:     "leaf",
		Inputs:   []Port{{Direction: DirInput, Name: "a"}},
		Location: Location{File: file, Line: line, Column: 12},
	}
}

func TestInsertFirstDefinitionWins(t *testing.T) {
	r := New()

	require.Equal(t, Inserted, r.Insert(leafModule("a.v", 1)))
	require.Equal(t, ConflictRecorded, r.Insert(Module{
		Name:     "leaf",
		Outputs:  []Port{{Direction: DirOutput, Name: "y"}},
		Location: Location{File: "b.v", Line: 7, Column: 12},
	}))

	kept, ok := r.Lookup("leaf")
	require.True(t, ok)
	require.Equal(t, "a.v", kept.Location.File)
	require.Len(t, kept.Inputs, 1)
	require.Empty(t, kept.Outputs)

	conflicts := r.Conflicts()
	require.Len(t, conflicts, 1)
	require.Equal(t, Conflict{Name: "leaf", Location: Location{File: "b.v", Line: 7, Column: 12}}, conflicts[0])
}

func TestDescribe(t *testing.T) {
	r := New()
	r.Insert(Module{Name: "empty", Location: Location{File: "e.v", Line: 3, Column: 13}})

	s, err := r.Describe("empty")
	require.NoError(t, err)
	require.Equal(t, "empty", s.Name)
	require.NotNil(t, s.Inputs)
	require.Empty(t, s.Inputs)
	require.Empty(t, s.Outputs)
	require.Empty(t, s.Instances)
	require.Equal(t, 3, s.Line)

	_, err = r.Describe("missing")
	if !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestModulesKeepInsertionOrder(t *testing.T) {
	r := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.Insert(Module{Name: name})
	}
	require.Equal(t, []string{"zeta", "alpha", "mid"}, r.Names())
	require.Equal(t, 3, r.Len())
}

func TestReplaceAllAndClear(t *testing.T) {
	r := New("SYNTH")
	r.Insert(leafModule("a.v", 1))
	r.Insert(leafModule("b.v", 1))
	require.Len(t, r.Conflicts(), 1)

	r.ReplaceAll([]Module{{Name: "top"}, {Name: "leaf"}, {Name: "top", Location: Location{File: "dup.v"}}})
	require.Equal(t, []string{"top", "leaf"}, r.Names())
	require.Empty(t, r.Conflicts())
	top, _ := r.Lookup("top")
	require.Equal(t, "", top.Location.File)

	r.Clear()
	require.Equal(t, 0, r.Len())
	require.False(t, r.Has("top"))
	require.True(t, r.Defines().IsDefined("SYNTH"))
}

func TestInsertCopiesSlices(t *testing.T) {
	r := New()
	m := Module{Name: "top", Instances: []Instance{{Type: "leaf", Name: "u0"}}}
	r.Insert(m)
	m.Instances[0].Name = "changed"

	got, _ := r.Lookup("top")
	require.Equal(t, "u0", got.Instances[0].Name)
}

func TestZeroValueRegistry(t *testing.T) {
	var r Registry

	require.False(t, r.Has("leaf"))
	require.Equal(t, Inserted, r.Insert(leafModule("a.v", 1)))
	require.Equal(t, ConflictRecorded, r.Insert(leafModule("b.v", 3)))
	require.True(t, r.Has("leaf"))
	require.Equal(t, []string{"leaf"}, r.Names())
	require.Len(t, r.Conflicts(), 1)

	r.Defines().Define("SIM")
	require.Equal(t, []string{"SIM"}, r.Defines().Names())
}
