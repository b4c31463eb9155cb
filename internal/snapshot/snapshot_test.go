package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

func sampleRegistry() *registry.Registry {
	reg := registry.New("SYNTHESIS")
	reg.Insert(registry.Module{
		Name:    "top",
		Inputs:  []registry.Port{{Direction: registry.DirInput, Name: "clk"}, {Direction: registry.DirInout, Name: "sda"}},
		Outputs: []registry.Port{{Direction: registry.DirOutput, Name: "q", Width: "[7:0]"}, {Direction: registry.DirInout, Name: "sda"}},
		Instances: []registry.Instance{
			{Type: "leaf", Name: "u0"},
			{Type: "leaf", Name: "u1"},
		},
		Location: registry.Location{File: "rtl/top.v", Line: 3, Column: 11},
	})
	reg.Insert(registry.Module{Name: "leaf", Location: registry.Location{File: "rtl/leaf.v", Line: 1, Column: 12}})
	return reg
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "vhier_modules.db"))

	src := sampleRegistry()
	saved, err := Save(ctx, store, src)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	dst := registry.New()
	dst.Insert(registry.Module{Name: "stale"})
	loaded, err := Load(ctx, store, dst)
	require.NoError(t, err)
	require.Equal(t, saved.ID, loaded.ID)
	require.Equal(t, SchemaVersion, loaded.Schema)

	require.Equal(t, src.Names(), dst.Names())
	for _, name := range src.Names() {
		want, _ := src.Lookup(name)
		got, ok := dst.Lookup(name)
		require.True(t, ok)
		require.Equal(t, want.Location, got.Location)
		require.Equal(t, len(want.Inputs), len(got.Inputs))
		require.Equal(t, len(want.Outputs), len(got.Outputs))
		for i := range want.Inputs {
			require.Equal(t, want.Inputs[i], got.Inputs[i])
		}
		for i := range want.Outputs {
			require.Equal(t, want.Outputs[i], got.Outputs[i])
		}
		require.Equal(t, len(want.Instances), len(got.Instances))
		for i := range want.Instances {
			require.Equal(t, want.Instances[i], got.Instances[i])
		}
	}
	require.True(t, dst.Defines().IsDefined("SYNTHESIS"))
	require.False(t, dst.Has("stale"))
}

func TestSQLitePutReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "vhier_modules.db"))

	_, err := Save(ctx, store, sampleRegistry())
	require.NoError(t, err)

	second := registry.New()
	second.Insert(registry.Module{Name: "only"})
	_, err = Save(ctx, store, second)
	require.NoError(t, err)

	p, err := store.Get(ctx)
	require.NoError(t, err)
	require.Len(t, p.Modules, 1)
	require.Equal(t, "only", p.Modules[0].Name)
}

func TestSQLiteMissingAndDrop(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "vhier_modules.db"))

	_, err := store.Get(ctx)
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	removed, err := store.Drop()
	require.NoError(t, err)
	require.False(t, removed)

	_, err = Save(ctx, store, sampleRegistry())
	require.NoError(t, err)
	removed, err = store.Drop()
	require.NoError(t, err)
	require.True(t, removed)

	_, err = Load(ctx, store, registry.New())
	require.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSQLiteSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "vhier_modules.db"))

	p := NewPayload(sampleRegistry())
	p.Schema = SchemaVersion + 1
	require.NoError(t, store.Put(ctx, p))

	_, err := store.Get(ctx)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}
