package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the snapshot database",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func runClear(_ *cobra.Command, _ []string) error {
	removed, err := state.store.Drop()
	if err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	if removed {
		state.logger.Info("removed snapshot", "path", state.store.Path())
	} else {
		state.logger.Info("no snapshot to remove", "path", state.store.Path())
	}
	return nil
}
