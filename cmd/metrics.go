package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/coderabbit-agent/pkg/formatter"
	"github.com/helmcode/coderabbit-agent/pkg/metrics"
)

func NewMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics [FILE]",
		Short: "Estimate complexity of code",
		Long: `Report cyclomatic and cognitive complexity, loop nesting, recursion and
the Big-O labels derived from them. These are heuristics, not proofs.

Examples:
  coderabbit metrics solver.py
  coderabbit metrics solver.py -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMetrics,
	}
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	snippet, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Output == formatter.FormatHuman {
		printHeader(os.Stderr, "📈 CodeRabbit Metrics", snippet)
	}
	return formatter.DisplayProfile(cmd.OutOrStdout(), metrics.Analyze(snippet.Code), cfg.Output)
}
