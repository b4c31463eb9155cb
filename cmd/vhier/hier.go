package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/vhier/internal/config"
	"github.com/robert-at-pretension-io/vhier/internal/hierarchy"
)

const (
	unusedModulesReport = "unused_modules.txt"
	unusedFilesReport   = "unused_files.txt"
	minimizedFileList   = "minimized_filelist.f"
)

var (
	hierSources    sourceFlags
	hierMaxDepth   int
	hierUnused     bool
	hierCycleGuard bool
)

var hierCmd = &cobra.Command{
	Use:   "hier MODULE",
	Short: "Report the instantiation tree below a module",
	Long: `Writes the tree below MODULE to hierarchy_<MODULE>.txt and echoes it to
the console. With --unused, modules and files the tree never reached are
written to unused_modules.txt and unused_files.txt; when file lists were
given, minimized_filelist.f keeps only the files that were used.`,
	Args: cobra.ExactArgs(1),
	RunE: runHier,
}

func init() {
	hierSources.register(hierCmd)
	hierCmd.Flags().IntVarP(&hierMaxDepth, "max-depth", "M", 0, "levels of hierarchy to report (0 = no limit, default from config)")
	hierCmd.Flags().BoolVarP(&hierUnused, "unused", "u", false, "report modules and files that were read in but unused")
	hierCmd.Flags().BoolVar(&hierCycleGuard, "cycle-guard", true, "stop descending into a module already on the path")
}

func runHier(cmd *cobra.Command, args []string) error {
	reg, err := loadDesign(cmd.Context(), hierSources)
	if err != nil {
		return err
	}
	if reg.Len() == 0 {
		state.logger.Info("no modules registered, skipping hierarchy report")
		return nil
	}

	root := args[0]
	if !reg.Has(root) {
		state.logger.Warn("module is not defined", "module", root)
	}

	opts := hierarchy.TreeOptions{
		MaxDepth:     state.cfg.Hierarchy.MaxDepth,
		ReportUnused: hierUnused || state.cfg.Hierarchy.ReportUnused,
		CycleGuard:   state.cfg.CycleGuardEnabled(),
	}
	if cmd.Flags().Changed("max-depth") {
		opts.MaxDepth = hierMaxDepth
	}
	if cmd.Flags().Changed("cycle-guard") {
		opts.CycleGuard = hierCycleGuard
	}

	treeFile, err := createReport(outputPath("hierarchy_" + root + ".txt"))
	if err != nil {
		return err
	}
	defer treeFile.Close()

	reporter := hierarchy.NewReporter(reg, state.logger)
	reporter.Tree = treeFile
	reporter.Console = os.Stdout

	if opts.ReportUnused {
		modulesFile, err := createReport(outputPath(unusedModulesReport))
		if err != nil {
			return err
		}
		defer modulesFile.Close()
		filesFile, err := createReport(outputPath(unusedFilesReport))
		if err != nil {
			return err
		}
		defer filesFile.Close()
		reporter.UnusedModules = modulesFile
		reporter.UnusedFiles = filesFile
	}

	result, err := reporter.Report(root, opts)
	if err != nil {
		return err
	}
	if len(result.CyclesCut) > 0 {
		state.logger.Warn("instantiation cycles were cut", "count", len(result.CyclesCut))
	}

	if opts.ReportUnused && len(hierSources.fileLists) > 0 {
		return writeMinimizedFileList(hierSources.fileLists, result.UnusedFiles)
	}
	return nil
}

// writeMinimizedFileList merges the given file lists, in order, and drops
// every file whose modules were all unused.
func writeMinimizedFileList(lists, unusedFiles []string) error {
	unused := make(map[string]bool, len(unusedFiles))
	for _, f := range unusedFiles {
		unused[f] = true
	}

	merged := config.FileList{Path: minimizedFileList}
	for _, path := range lists {
		fl, err := config.ReadFileList(path)
		if err != nil {
			state.logger.Error("file list is not readable", "filelist", path, "error", err)
			continue
		}
		merged.Entries = append(merged.Entries, fl.Entries...)
	}

	out := outputPath(minimizedFileList)
	if err := config.WriteMinimizedFileList(out, merged, unused); err != nil {
		return fmt.Errorf("minimized file list: %w", err)
	}
	state.logger.Info("wrote minimized file list", "path", out, "dropped", len(unused))
	return nil
}
