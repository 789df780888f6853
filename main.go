package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/coderabbit-agent/cmd"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coderabbit",
		Short: "Static code analysis, simulated verification and optimization",
		Long: `coderabbit scans code snippets for defects, simulates a test run against
the auto-fixed code, and rewrites it with language-specific optimizations.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewAnalyzeCmd(),
		cmd.NewDebugCmd(),
		cmd.NewOptimizeCmd(),
		cmd.NewMetricsCmd(),
		cmd.NewServeCmd(version),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("coderabbit version %s\n", version)
		},
	}
}
