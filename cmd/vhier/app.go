package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/robert-at-pretension-io/vhier/internal/config"
	"github.com/robert-at-pretension-io/vhier/internal/hierarchy"
	"github.com/robert-at-pretension-io/vhier/internal/indexer"
	"github.com/robert-at-pretension-io/vhier/internal/registry"
	"github.com/robert-at-pretension-io/vhier/internal/snapshot"
)

const multiDefinedReport = "multi_defined_module_list.txt"

var errNoDesign = errors.New("no design files given, no snapshot saved and no configured sources found")

// app is the state shared by every subcommand, built once by setup.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *snapshot.SQLiteStore
}

var state app

func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()

	cfgPath, _ := flags.GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if cfgPath != "" {
		cfg, err = config.LoadFile(cfgPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flags.Changed("color") {
		cfg.Output.Color, _ = flags.GetString("color")
	}
	if db, _ := flags.GetString("db"); db != "" {
		cfg.Snapshot.Path = db
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "vhier"})
	if verbose, _ := flags.GetBool("verbose"); verbose {
		logger.SetLevel(log.DebugLevel)
	}

	color.NoColor = !useColor(cfg.Output.Color)

	state = app{
		cfg:    cfg,
		logger: logger,
		store:  snapshot.NewSQLiteStore(cfg.SnapshotPath()),
	}
	return nil
}

func useColor(mode string) bool {
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	}
	return os.Getenv("NO_COLOR") == "" && isTerminal(os.Stdout)
}

// isTerminal reports whether f is attached to a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// outputPath places a report file in the configured output directory.
func outputPath(name string) string {
	return filepath.Join(state.cfg.OutputPath(), name)
}

// sourceFlags are the design inputs accepted by every query command.
type sourceFlags struct {
	files     []string
	fileLists []string
	defines   []string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&s.files, "file", "f", nil, "Verilog file to ingest (repeatable)")
	cmd.Flags().StringArrayVarP(&s.fileLists, "filelist", "F", nil, "file list (.f) to ingest (repeatable)")
	cmd.Flags().StringArrayVarP(&s.defines, "define", "D", nil, "predefine a `define name (repeatable)")
}

func (s *sourceFlags) given() bool {
	return len(s.files) > 0 || len(s.fileLists) > 0
}

// loadDesign ingests the given sources, or loads the last snapshot when
// none are given. Without a snapshot the configured sources are ingested.
func loadDesign(ctx context.Context, src sourceFlags) (*registry.Registry, error) {
	if src.given() {
		return ingestDesign(ctx, src)
	}

	cfg, logger := state.cfg, state.logger
	if cfg.SnapshotEnabled() {
		reg := registry.New(cfg.Defines...)
		for _, d := range src.defines {
			reg.Defines().Define(d)
		}
		p, err := snapshot.Load(ctx, state.store, reg)
		switch {
		case err == nil:
			logger.Info("no file specified, using snapshot",
				"path", state.store.Path(),
				"modules", len(p.Modules),
				"saved", p.CreatedAt.Local().Format(time.DateTime))
			return reg, nil
		case errors.Is(err, snapshot.ErrSnapshotNotFound), errors.Is(err, snapshot.ErrSchemaMismatch):
			logger.Warn("snapshot unusable, falling back to configured sources", "path", state.store.Path(), "reason", err)
		default:
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
	}

	files, err := cfg.ResolveSources(".")
	if err != nil {
		return nil, fmt.Errorf("resolving sources: %w", err)
	}
	if len(files) == 0 && len(cfg.Sources.FileLists) == 0 {
		return nil, errNoDesign
	}
	return ingestDesign(ctx, sourceFlags{files: files, fileLists: cfg.Sources.FileLists, defines: src.defines})
}

// ingestDesign clears the snapshot, reads every source in order, saves the
// new snapshot and reports duplicate definitions.
func ingestDesign(ctx context.Context, src sourceFlags) (*registry.Registry, error) {
	cfg, logger := state.cfg, state.logger

	idx := indexer.NewWithConfig(cfg, logger)
	for _, d := range src.defines {
		idx.Registry.Defines().Define(d)
	}

	if cfg.SnapshotEnabled() {
		removed, err := state.store.Drop()
		if err != nil {
			return nil, fmt.Errorf("clearing snapshot: %w", err)
		}
		if removed {
			logger.Info("removed snapshot", "path", state.store.Path())
		}
	}

	stats, err := idx.Ingest(src.files, src.fileLists)
	if err != nil {
		return nil, err
	}
	logger.Info("ingestion complete",
		"files", stats.Files,
		"lines", stats.Lines,
		"modules", stats.Modules,
		"conflicts", stats.Conflicts)

	if cfg.SnapshotEnabled() {
		p, err := snapshot.Save(ctx, state.store, idx.Registry)
		if err != nil {
			return nil, err
		}
		logger.Info("saving modules", "path", state.store.Path(), "snapshot", p.ID)
	}

	if err := writeConflictReport(idx.Registry); err != nil {
		return nil, err
	}
	return idx.Registry, nil
}

// writeConflictReport rewrites multi_defined_module_list.txt; the file is
// removed when no module was defined twice.
func writeConflictReport(reg *registry.Registry) error {
	path := outputPath(multiDefinedReport)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}

	conflicts := reg.Conflicts()
	if len(conflicts) == 0 {
		_, err := hierarchy.ReportConflicts(nil, nil, state.logger)
		return err
	}

	f, err := createReport(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := hierarchy.ReportConflicts(f, conflicts, state.logger); err != nil {
		return err
	}
	return f.Close()
}

func createReport(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}
