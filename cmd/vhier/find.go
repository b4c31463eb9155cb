package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/vhier/internal/hierarchy"
)

var (
	findSources   sourceFlags
	findUnder     string
	findMethod    string
	findSeparator string
)

var findCmd = &cobra.Command{
	Use:   "find TARGET[,TARGET...] --under SCOPE",
	Short: "List every instance path from a scope down to a module",
	Long: `Finds every hierarchical path from SCOPE down to instances matching each
TARGET and writes them to <TARGET>_under_<SCOPE>.txt, one per line.

Match methods:
  type           instance module type equals TARGET
  type-contains  instance module type contains TARGET
  name-contains  instance name contains TARGET`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	findSources.register(findCmd)
	findCmd.Flags().StringVarP(&findUnder, "under", "r", "", "module to search under (required)")
	findCmd.Flags().StringVar(&findMethod, "method", "type", "match method (type|type-contains|name-contains)")
	findCmd.Flags().StringVar(&findSeparator, "separator", "", "path separator (default from config)")
	_ = findCmd.MarkFlagRequired("under")
}

func runFind(cmd *cobra.Command, args []string) error {
	match, err := hierarchy.ParseMatch(findMethod)
	if err != nil {
		return err
	}

	var targets []string
	for _, t := range strings.Split(args[0], ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return errors.New("no target module given")
	}

	reg, err := loadDesign(cmd.Context(), findSources)
	if err != nil {
		return err
	}

	if !reg.Has(findUnder) {
		return fmt.Errorf("scope module %s is not defined", findUnder)
	}
	queries := make([]hierarchy.Query, 0, len(targets))
	for _, t := range targets {
		if match == hierarchy.MatchType && !reg.Has(t) {
			return fmt.Errorf("target module %s is not defined", t)
		}
		queries = append(queries, hierarchy.Query{Target: t, Match: match, Scope: findUnder})
	}

	sep := state.cfg.Separator
	if findSeparator != "" {
		sep = findSeparator
	}
	finder := hierarchy.NewPathFinder(reg, sep, state.logger)
	finder.CycleGuard = state.cfg.CycleGuardEnabled()

	results, err := finder.FindAll(cmd.Context(), queries)
	if err != nil {
		return err
	}

	for i, q := range queries {
		if err := writePaths(q, results[i]); err != nil {
			return err
		}
	}
	return nil
}

// writePaths writes one query's paths to its report file and the console.
// A query with no paths leaves no file behind.
func writePaths(q hierarchy.Query, paths []string) error {
	out := outputPath(q.OutputName())
	if len(paths) == 0 {
		if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", out, err)
		}
		state.logger.Warn(fmt.Sprintf("No instances of %s found under %s", q.Target, q.Scope))
		return nil
	}

	f, err := createReport(out)
	if err != nil {
		return err
	}
	defer f.Close()

	body := strings.Join(paths, "\n") + "\n"
	if _, err := f.WriteString(body); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Print(body)
	state.logger.Info("wrote instance paths", "path", out, "count", len(paths))
	return f.Close()
}
