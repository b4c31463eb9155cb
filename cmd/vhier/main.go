package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vhier",
	Short: "Verilog module hierarchy extractor",
	Long: `vhier reads Verilog sources, records every module definition with its
ports and instances, and reports the instantiation hierarchy.

Files given with -f/-F are ingested and saved to a snapshot database;
commands run without files load the last snapshot instead.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func main() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(hierCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(clearCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (default: vhier.json / vhier.toml search)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("db", "", "snapshot database path (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
