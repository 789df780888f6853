package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/coderabbit-agent/pkg/formatter"
	"github.com/helmcode/coderabbit-agent/pkg/model"
)

var (
	debugFixedOnly bool
	debugWrite     bool
)

func NewDebugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug [FILE]",
		Short: "Report defects and advisories, with auto-fixes",
		Long: `Scan code for defects (error, critical) and advisories (warning, info).
Single-line fixes for defects are applied to produce fixed code.

Examples:
  # Show the report for a file
  coderabbit debug app.py

  # Print only the auto-fixed code
  coderabbit debug app.py --fixed-only

  # Apply the fixes in place
  coderabbit debug app.py --write`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDebug,
	}

	cmd.Flags().BoolVar(&debugFixedOnly, "fixed-only", false, "Print only the fixed code (the input when nothing was fixed)")
	cmd.Flags().BoolVarP(&debugWrite, "write", "w", false, "Write the fixed code back to FILE")

	return cmd
}

func runDebug(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	snippet, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if debugWrite && (len(args) == 0 || args[0] == "-") {
		return fmt.Errorf("--write needs a FILE argument")
	}
	if debugWrite && snippet.Fenced {
		return fmt.Errorf("--write cannot rewrite code extracted from a markdown fence")
	}
	a, _ := newAgent(cfg)

	report := a.Analyze(cmd.Context(), model.Request{Code: snippet.Code, Language: snippet.Language})

	fixed := snippet.Code
	if report.HasFixedCode() {
		fixed = report.FixedCode
	}

	if debugWrite {
		if !report.HasFixedCode() {
			printSuccess(os.Stderr, "Nothing to fix")
			return nil
		}
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", args[0], err)
		}
		if err := os.WriteFile(args[0], []byte(fixed), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write fixes: %w", err)
		}
		printSuccess(os.Stderr, fmt.Sprintf("Applied fixes for %d defects to %s", len(report.Defects), args[0]))
		return nil
	}

	if debugFixedOnly {
		_, err := fmt.Fprint(cmd.OutOrStdout(), fixed)
		return err
	}

	if cfg.Output == formatter.FormatHuman {
		printHeader(os.Stderr, "🐞 CodeRabbit Debugger", snippet)
	}
	return formatter.DisplayReport(cmd.OutOrStdout(), report, cfg.Output)
}
