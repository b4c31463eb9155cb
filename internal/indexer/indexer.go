package indexer

// =============================================================================
// INGESTION IS SEQUENTIAL
// =============================================================================
//
// The indexer feeds files to the extractor one at a time, in the order they
// were given, and inserts every recognised module into the registry.
//
// `define names are run-global: a name defined in one file is visible to
// every file read after it. Reordering or parallelising ingestion changes
// which `ifdef branches are seen, so it must not be done here.
//
// After ingestion the registry is read-only; hierarchy queries may then run
// concurrently (see internal/hierarchy).
// =============================================================================

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/robert-at-pretension-io/vhier/internal/config"
	"github.com/robert-at-pretension-io/vhier/internal/extractor"
	"github.com/robert-at-pretension-io/vhier/internal/preprocess"
	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

// ErrMissingFile is returned by IngestFile when the path is not a regular file.
var ErrMissingFile = errors.New("not a file")

// Indexer reads Verilog files into a module registry.
type Indexer struct {
	// Configuration loaded from vhier.json / vhier.toml
	Config *config.Config

	// Registry receives every module; its define set is shared by all files
	Registry *registry.Registry

	// Logger receives progress and diagnostics
	Logger *log.Logger

	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	// Optional extractor factory (for tests)
	extractorFactory func(defines *preprocess.Defines) FactsExtractor
}

// IngestStats summarises one ingestion run.
type IngestStats struct {
	Files     int      `json:"files"`
	Lines     int      `json:"lines"`
	Modules   int      `json:"modules"`
	Conflicts int      `json:"conflicts"`
	Skipped   []string `json:"skipped,omitempty"`
}

// FactsExtractor abstracts extraction for tests
type FactsExtractor interface {
	Extract(path string) (extractor.FileFacts, error)
}

// New creates an Indexer with default configuration
func New(logger *log.Logger) *Indexer {
	return NewWithConfig(config.DefaultConfig(), logger)
}

// NewWithConfig creates an Indexer whose registry is seeded with the
// configured defines.
func NewWithConfig(cfg *config.Config, logger *log.Logger) *Indexer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Indexer{
		Config:   cfg,
		Registry: registry.New(cfg.Defines...),
		Logger:   logger,
		Timing:   cfg.Timing,
	}
}

func (idx *Indexer) logger() *log.Logger {
	if idx.Logger == nil {
		idx.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "vhier"})
	}
	return idx.Logger
}

func (idx *Indexer) newExtractor() FactsExtractor {
	if idx.extractorFactory != nil {
		return idx.extractorFactory(idx.Registry.Defines())
	}
	ext := extractor.New(idx.Registry.Defines())
	ext.Logger = idx.logger()
	return ext
}

// Ingest reads the given files, then every file named by the file lists.
func (idx *Indexer) Ingest(files, fileLists []string) (IngestStats, error) {
	paths := append([]string(nil), files...)
	for _, listPath := range fileLists {
		fl, err := config.ReadFileList(listPath)
		if err != nil {
			idx.logger().Error("file list is not readable", "filelist", listPath, "error", err)
			continue
		}
		for _, missing := range fl.Missing() {
			idx.logger().Debug("not a file", "entry", missing, "filelist", listPath)
		}
		paths = append(paths, fl.Files()...)
	}
	return idx.IngestFiles(paths)
}

// IngestFile reads a single file. Unlike IngestFiles, a missing file is
// an error.
func (idx *Indexer) IngestFile(path string) error {
	stats, err := idx.IngestFiles([]string{path})
	if err != nil {
		return err
	}
	if len(stats.Skipped) > 0 {
		return fmt.Errorf("ingest %s: %w", path, ErrMissingFile)
	}
	return nil
}

// IngestFiles reads files in order. Missing files are logged and skipped.
// A structural parse error stops the run; modules from files read before
// it stay in the registry, the failing file contributes none.
func (idx *Indexer) IngestFiles(paths []string) (IngestStats, error) {
	runStart := time.Now()
	timing := newTimingRecorder(runStart, idx.resolveTimingPath())
	if err := timing.Err(); err != nil {
		idx.logger().Warn("timing output disabled", "error", err)
	}
	defer timing.Close()

	var stats IngestStats
	ext := idx.newExtractor()
	for _, path := range paths {
		fileStart := time.Now()
		status, err := idx.ingest(ext, path, &stats)
		timing.RecordFile("ingest", path, status, fileStart, time.Since(fileStart))
		if err != nil {
			timing.RecordStage("total", runStart, time.Since(runStart), "error")
			return stats, err
		}
	}
	timing.RecordStage("total", runStart, time.Since(runStart), "ok")

	idx.logger().Debug("ingestion complete",
		"files", stats.Files,
		"modules", stats.Modules,
		"conflicts", stats.Conflicts,
		"skipped", len(stats.Skipped),
		"duration", formatDuration(time.Since(runStart)))
	return stats, nil
}

func (idx *Indexer) ingest(ext FactsExtractor, path string, stats *IngestStats) (string, error) {
	logger := idx.logger()

	if info, err := os.Stat(path); err != nil || info.IsDir() {
		logger.Warn("not a file, skipping", "file", path)
		stats.Skipped = append(stats.Skipped, path)
		return "missing", nil
	}

	logger.Info("reading in", "file", path)
	facts, err := ext.Extract(path)
	if err != nil {
		logger.Error("parse failed", "file", path, "error", err)
		return "error", fmt.Errorf("ingest %s: %w", path, err)
	}

	stats.Files++
	stats.Lines += facts.Lines
	for _, m := range facts.Modules {
		logger.Debug("module",
			"name", m.Name,
			"at", m.Location.String(),
			"inputs", len(m.Inputs),
			"outputs", len(m.Outputs),
			"instances", len(m.Instances))
		if idx.Registry.Insert(m) == registry.ConflictRecorded {
			stats.Conflicts++
			continue
		}
		stats.Modules++
	}
	return "ok", nil
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
