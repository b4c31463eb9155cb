package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/vhier/internal/facts"
	"github.com/robert-at-pretension-io/vhier/internal/validator"
)

var (
	factsSources   sourceFlags
	factsOutput    string
	factsFormat    string
	factsDeltaFrom string
	factsDeltaOut  string
	factsOnly      []string
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Export the registry as relational fact tables",
	Long: `Writes files, modules, ports, instances, conflicts and defines as JSON or
YAML tables, validated against the facts schema. With --delta-from and
--delta-out the rows added and removed since a previous export are
written as well.`,
	Args: cobra.NoArgs,
	RunE: runFacts,
}

func init() {
	factsSources.register(factsCmd)
	factsCmd.Flags().StringVarP(&factsOutput, "output", "o", "", "write facts to file (default: stdout)")
	factsCmd.Flags().StringVar(&factsFormat, "format", "", "json or yaml (default: from --output extension, else json)")
	factsCmd.Flags().StringVar(&factsDeltaFrom, "delta-from", "", "previous facts file to compute delta from")
	factsCmd.Flags().StringVar(&factsDeltaOut, "delta-out", "", "write delta to file (requires --delta-from)")
	factsCmd.Flags().StringArrayVar(&factsOnly, "only-file", nil, "keep only rows from this source file (repeatable)")
}

func runFacts(cmd *cobra.Command, _ []string) error {
	if (factsDeltaFrom == "") != (factsDeltaOut == "") {
		return errors.New("--delta-from and --delta-out must be used together")
	}

	format := facts.FormatJSON
	if factsOutput != "" {
		format = facts.FormatForPath(factsOutput)
	}
	if factsFormat != "" {
		var err error
		if format, err = facts.ParseFormat(factsFormat); err != nil {
			return err
		}
	}

	reg, err := loadDesign(cmd.Context(), factsSources)
	if err != nil {
		return err
	}

	v, err := validator.NewFactsValidator()
	if err != nil {
		return err
	}

	tables := facts.BuildTables(reg)
	if len(factsOnly) > 0 {
		tables = facts.FilterTablesByFiles(tables, fileSet(factsOnly))
	}
	if err := v.Validate(tables); err != nil {
		return err
	}

	data, err := facts.Marshal(tables, format)
	if err != nil {
		return fmt.Errorf("encoding facts: %w", err)
	}
	if factsOutput != "" {
		if err := os.WriteFile(factsOutput, data, 0o644); err != nil {
			return fmt.Errorf("writing facts: %w", err)
		}
		state.logger.Info("wrote facts", "path", factsOutput, "rows", tables.Len())
	} else if _, err := os.Stdout.Write(data); err != nil {
		return err
	}

	if factsDeltaFrom == "" {
		return nil
	}

	prev, err := facts.ReadTables(factsDeltaFrom)
	if err != nil {
		return err
	}
	if err := v.Validate(prev); err != nil {
		return fmt.Errorf("%s: %w", factsDeltaFrom, err)
	}
	delta := facts.ComputeDelta(prev, tables)
	if len(factsOnly) > 0 {
		delta = facts.FilterDeltaByFiles(delta, fileSet(factsOnly))
	}

	data, err = facts.Marshal(delta, facts.FormatForPath(factsDeltaOut))
	if err != nil {
		return fmt.Errorf("encoding delta: %w", err)
	}
	if err := os.WriteFile(factsDeltaOut, data, 0o644); err != nil {
		return fmt.Errorf("writing delta: %w", err)
	}
	state.logger.Info("wrote delta", "path", factsDeltaOut,
		"added", delta.Added.Len(), "removed", delta.Removed.Len())
	return nil
}

func fileSet(files []string) map[string]bool {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f] = true
	}
	return set
}
