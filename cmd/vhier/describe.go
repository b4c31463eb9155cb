package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

var (
	describeSources sourceFlags
	describeJSON    bool
)

var describeCmd = &cobra.Command{
	Use:   "describe MODULE",
	Short: "Print the ports, instances and location of a module",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	describeSources.register(describeCmd)
	describeCmd.Flags().BoolVar(&describeJSON, "json", false, "print the module as JSON")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	reg, err := loadDesign(cmd.Context(), describeSources)
	if err != nil {
		return err
	}

	name := args[0]
	summary, err := reg.Describe(name)
	if errors.Is(err, registry.ErrModuleNotFound) {
		state.logger.Error("module was not found", "module", name)
		return fmt.Errorf("describe %s: %w", name, err)
	}
	if err != nil {
		return err
	}

	if describeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return writeSummary(os.Stdout, summary)
}

func writeSummary(w io.Writer, s registry.Summary) error {
	label := color.New(color.Bold).SprintFunc()

	var b strings.Builder
	b.WriteString("-------------------------------------\n")
	fmt.Fprintf(&b, "%s       %s\n", label("NAME:"), s.Name)
	fmt.Fprintf(&b, "%s   %s:%d:%d\n", label("FILEPATH:"), s.File, s.Line, s.Column)
	fmt.Fprintf(&b, "%s     %s\n", label("INPUTS:"), formatPorts(s.Inputs))
	fmt.Fprintf(&b, "%s    %s\n", label("OUTPUTS:"), formatPorts(s.Outputs))
	fmt.Fprintf(&b, "%s   %s\n", label("INSTANCE:"), formatInstances(s.Instances))
	b.WriteString("-------------------------------------\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func formatPorts(ports []registry.Port) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		if p.Width == "" {
			parts[i] = p.Direction + " " + p.Name
			continue
		}
		parts[i] = p.Direction + " " + p.Width + " " + p.Name
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatInstances(insts []registry.Instance) string {
	parts := make([]string, len(insts))
	for i, inst := range insts {
		parts[i] = inst.Name + " (" + inst.Type + ")"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
