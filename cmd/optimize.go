package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/coderabbit-agent/pkg/formatter"
)

var optimizeCodeOnly bool

func NewOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize [FILE]",
		Short: "Rewrite code with hygiene passes and language transforms",
		Long: `Optimize code as if no defects had been found. Transforms are pattern
based and are not guaranteed to preserve behavior: review the output.

Examples:
  # Show improvements and the performance estimate
  coderabbit optimize utils.js

  # Print only the optimized code
  coderabbit optimize utils.js --code-only > utils.opt.js`,
		Args: cobra.MaximumNArgs(1),
		RunE: runOptimize,
	}

	cmd.Flags().BoolVar(&optimizeCodeOnly, "code-only", false, "Print only the optimized code")

	return cmd
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	snippet, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	a, _ := newAgent(cfg)

	if optimizeCodeOnly {
		_, err := fmt.Fprint(cmd.OutOrStdout(), a.OptimizeOnly(cmd.Context(), snippet.Code, snippet.Language))
		return err
	}

	if cfg.Output == formatter.FormatHuman {
		printHeader(os.Stderr, "🚀 CodeRabbit Optimizer", snippet)
	}
	opt := a.Optimize(cmd.Context(), snippet.Code, snippet.Language)
	return formatter.DisplayOptimization(cmd.OutOrStdout(), opt, cfg.Output)
}
