package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var ingestSources sourceFlags

var ingestCmd = &cobra.Command{
	Use:   "ingest -f FILE... -F FILELIST...",
	Short: "Read Verilog sources and save a new snapshot",
	Long: `Clears the snapshot, reads every -f file and then every file named by
the -F file lists, saves the snapshot and reports modules defined more
than once to multi_defined_module_list.txt.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestSources.register(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if !ingestSources.given() {
		return errors.New("nothing to ingest: pass -f FILE or -F FILELIST")
	}
	_, err := ingestDesign(cmd.Context(), ingestSources)
	return err
}
