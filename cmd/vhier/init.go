package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/vhier/internal/config"
)

var (
	initForce bool
	initTOML  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a vhier.json configuration file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	initCmd.Flags().BoolVar(&initTOML, "toml", false, "write vhier.toml instead of vhier.json")
}

func runInit(_ *cobra.Command, _ []string) error {
	configPath := "vhier.json"
	if initTOML {
		configPath = "vhier.toml"
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", configPath, err)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("creating config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Source globs and file lists")
	fmt.Println("  - Predefined `define names")
	fmt.Println("  - Report directory and snapshot database")
	return nil
}
