package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/coderabbit-agent/pkg/formatter"
	"github.com/helmcode/coderabbit-agent/pkg/model"
)

func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [FILE]",
		Short: "Run the full analyze, verify and optimize pipeline",
		Long: `Detect defects, simulate tests against the auto-fixed code, and optimize it.

Reads FILE, or stdin when FILE is omitted or "-".

Examples:
  # Analyze a file, detecting the language from its extension
  coderabbit analyze src/cart.js

  # Analyze stdin as Python with reproducible test outcomes
  cat script.py | coderabbit analyze -l python --seed 42

  # Machine-readable output
  coderabbit analyze Main.java -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	snippet, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	a, _ := newAgent(cfg)

	if cfg.Output == formatter.FormatHuman {
		printHeader(os.Stderr, "🐰 CodeRabbit Analysis", snippet)
	}
	p := newProgress(cfg)
	p.start("Running analysis pipeline...")

	res, err := a.RunFullPipeline(cmd.Context(), model.Request{Code: snippet.Code, Language: snippet.Language})
	if err != nil {
		p.s.Stop()
		printError(os.Stderr, "Pipeline interrupted")
		return fmt.Errorf("analysis failed: %w", err)
	}
	p.done(fmt.Sprintf("Found %d defects and %d advisories", len(res.Report.Defects), len(res.Report.Advisories)))

	return formatter.DisplayResult(cmd.OutOrStdout(), res, cfg.Output)
}
