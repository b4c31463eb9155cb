package facts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got, "input %q", in)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestMarshalReadTablesRoundTrip(t *testing.T) {
	tables := BuildTables(sampleRegistry())
	dir := t.TempDir()

	for _, name := range []string{"facts.json", "facts.yaml"} {
		path := filepath.Join(dir, name)
		data, err := Marshal(tables, FormatForPath(path))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		got, err := ReadTables(path)
		require.NoError(t, err)
		require.True(t, ComputeDelta(tables, got).Empty(), "%s round trip changed rows", name)
	}
}

func TestReadTablesMissing(t *testing.T) {
	_, err := ReadTables(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
