package indexer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/vhier/internal/config"
	"github.com/robert-at-pretension-io/vhier/internal/extractor"
	"github.com/robert-at-pretension-io/vhier/internal/preprocess"
)

const topSrc = `module top(input clk, output y);
  leaf u0 (.clk(clk), .y(y));
endmodule
`

const leafSrc = `module leaf(input clk, output y);
endmodule
`

func TestIngestTwoFiles(t *testing.T) {
	dir := t.TempDir()
	top := writeVerilog(t, dir, "top.v", topSrc)
	leaf := writeVerilog(t, dir, "leaf.v", leafSrc)

	idx := newTestIndexer()
	stats, err := idx.IngestFiles([]string{top, leaf})
	require.NoError(t, err)
	require.Equal(t, 2, stats.Files)
	require.Equal(t, 2, stats.Modules)
	require.Zero(t, stats.Conflicts)
	require.Equal(t, []string{"top", "leaf"}, idx.Registry.Names())

	summary, err := idx.Registry.Describe("top")
	require.NoError(t, err)
	require.Len(t, summary.Instances, 1)
	require.Equal(t, "leaf", summary.Instances[0].Type)
	require.Equal(t, "u0", summary.Instances[0].Name)
	require.Equal(t, top, summary.File)
	require.Equal(t, 1, summary.Line)
}

func TestIngestTwiceRecordsOneConflictPerModule(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeVerilog(t, dir, "top.v", topSrc),
		writeVerilog(t, dir, "leaf.v", leafSrc),
	}

	idx := newTestIndexer()
	_, err := idx.IngestFiles(files)
	require.NoError(t, err)
	before := idx.Registry.Modules()

	stats, err := idx.IngestFiles(files)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Conflicts)
	require.Equal(t, before, idx.Registry.Modules())

	conflicts := idx.Registry.Conflicts()
	require.Len(t, conflicts, 2)
	require.Equal(t, "top", conflicts[0].Name)
	require.Equal(t, "leaf", conflicts[1].Name)
}

func TestIngestSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	leaf := writeVerilog(t, dir, "leaf.v", leafSrc)
	missing := filepath.Join(dir, "missing.v")

	idx := newTestIndexer()
	stats, err := idx.IngestFiles([]string{missing, leaf})
	require.NoError(t, err)
	require.Equal(t, []string{missing}, stats.Skipped)
	require.True(t, idx.Registry.Has("leaf"))

	err = idx.IngestFile(missing)
	require.ErrorIs(t, err, ErrMissingFile)
}

func TestIngestStopsOnParseError(t *testing.T) {
	dir := t.TempDir()
	good := writeVerilog(t, dir, "good.v", leafSrc)
	bad := writeVerilog(t, dir, "bad.v", "module half(input a);\n  leaf u0 (.a(a));\n")
	after := writeVerilog(t, dir, "after.v", topSrc)

	idx := newTestIndexer()
	_, err := idx.IngestFiles([]string{good, bad, after})
	require.Error(t, err)
	require.ErrorIs(t, err, extractor.ErrUnterminatedModule)

	var perr *extractor.ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "half", perr.Module)

	require.True(t, idx.Registry.Has("leaf"))
	require.False(t, idx.Registry.Has("half"))
	require.False(t, idx.Registry.Has("top"))
}

func TestIngestDefinesFlowBetweenFiles(t *testing.T) {
	dir := t.TempDir()
	defs := writeVerilog(t, dir, "defs.vh", "`define WITH_LEAF\n")
	top := writeVerilog(t, dir, "top.v", "module top;\n`ifdef WITH_LEAF\n  leaf u0 ();\n`endif\n`ifdef FROM_CONFIG\n  extra u1 ();\n`endif\nendmodule\n")

	cfg := config.DefaultConfig()
	cfg.Defines = []string{"FROM_CONFIG"}
	idx := NewWithConfig(cfg, log.New(io.Discard))

	_, err := idx.IngestFiles([]string{defs, top})
	require.NoError(t, err)

	m, ok := idx.Registry.Lookup("top")
	require.True(t, ok)
	require.Len(t, m.Instances, 2)
	require.Equal(t, []string{"FROM_CONFIG", "WITH_LEAF"}, idx.Registry.Defines().Names())
}

func TestIngestFileLists(t *testing.T) {
	dir := t.TempDir()
	top := writeVerilog(t, dir, "top.v", topSrc)
	leaf := writeVerilog(t, dir, "leaf.v", leafSrc)
	list := writeVerilog(t, dir, "design.f", "# rtl\n"+leaf+"\n+incdir+"+dir+"\n")

	idx := newTestIndexer()
	stats, err := idx.Ingest([]string{top}, []string{list, filepath.Join(dir, "nope.f")})
	require.NoError(t, err)
	require.Equal(t, 2, stats.Files)
	require.Equal(t, []string{"top", "leaf"}, idx.Registry.Names())
}

func TestIngestUsesExtractorFactory(t *testing.T) {
	dir := t.TempDir()
	top := writeVerilog(t, dir, "top.v", topSrc)

	calls := 0
	idx := newTestIndexer()
	idx.extractorFactory = func(_ *preprocess.Defines) FactsExtractor {
		return extractorFunc(func(path string) (extractor.FileFacts, error) {
			calls++
			return extractor.FileFacts{File: path}, nil
		})
	}
	_, err := idx.IngestFiles([]string{top})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Zero(t, idx.Registry.Len())
}

type extractorFunc func(path string) (extractor.FileFacts, error)

func (f extractorFunc) Extract(path string) (extractor.FileFacts, error) { return f(path) }

func newTestIndexer() *Indexer {
	return New(log.New(io.Discard))
}

func writeVerilog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
