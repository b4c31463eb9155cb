package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/vhier/internal/facts"
	"github.com/robert-at-pretension-io/vhier/internal/policy"
	"github.com/robert-at-pretension-io/vhier/internal/validator"
)

var (
	checkSources sourceFlags
	checkJSON    bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run design checks over the registry",
	Long: `Evaluates the built-in rules against the fact tables:

  undefined_module         (info)    instance of a module type never defined
  multiply_defined         (warning) module name defined more than once
  self_instantiation       (error)   module instantiates itself
  duplicate_instance_name  (warning) instance name reused within a module

Exits non-zero when any error-severity violation is found. Duplicate
definitions are only known right after ingestion, so pass -f/-F for
multiply_defined to fire.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkSources.register(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print violations as JSON")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	reg, err := loadDesign(ctx, checkSources)
	if err != nil {
		return err
	}

	fv, err := validator.NewFactsValidator()
	if err != nil {
		return err
	}
	tables := facts.BuildTables(reg)
	if err := fv.Validate(tables); err != nil {
		return err
	}

	engine, err := policy.New(ctx)
	if err != nil {
		return err
	}
	result, err := engine.Evaluate(ctx, tables)
	if err != nil {
		return err
	}

	if checkJSON {
		ov, err := validator.NewOutputValidator()
		if err != nil {
			return err
		}
		if err := ov.Validate(result); err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if err := writeViolations(os.Stdout, result); err != nil {
		return err
	}

	if result.HasErrors() {
		return fmt.Errorf("%d error(s) found", result.Summary.Errors)
	}
	return nil
}

func writeViolations(w io.Writer, result *policy.Result) error {
	severity := map[string]*color.Color{
		policy.SeverityError:   color.New(color.FgRed, color.Bold),
		policy.SeverityWarning: color.New(color.FgYellow),
		policy.SeverityInfo:    color.New(color.FgCyan),
	}

	var b strings.Builder
	for _, v := range result.Violations {
		label := strings.ToUpper(v.Severity)
		if c, ok := severity[v.Severity]; ok {
			label = c.Sprint(label)
		}
		fmt.Fprintf(&b, "%s : %s:%d [%s] %s\n", label, v.File, v.Line, v.Rule, v.Message)
	}
	fmt.Fprintf(&b, "\n%d violation(s): %d error, %d warning, %d info\n",
		result.Summary.Total, result.Summary.Errors, result.Summary.Warnings, result.Summary.Info)
	_, err := io.WriteString(w, b.String())
	return err
}
