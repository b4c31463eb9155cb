package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/vhier/internal/indexer"
)

var (
	usersSources sourceFlags
	usersJSON    bool
)

var usersCmd = &cobra.Command{
	Use:   "users MODULE",
	Short: "List the modules that transitively instantiate a module",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsers,
}

func init() {
	usersSources.register(usersCmd)
	usersCmd.Flags().BoolVar(&usersJSON, "json", false, "print the report as JSON")
}

func runUsers(cmd *cobra.Command, args []string) error {
	reg, err := loadDesign(cmd.Context(), usersSources)
	if err != nil {
		return err
	}

	module := args[0]
	if !reg.Has(module) {
		state.logger.Warn("module is not defined; reporting instantiations of the name", "module", module)
	}

	report := indexer.Users(reg, module)
	if usersJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Print(indexer.FormatImpactReport(report))
	return nil
}
