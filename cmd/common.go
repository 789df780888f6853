package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmcode/coderabbit-agent/pkg/agent"
	"github.com/helmcode/coderabbit-agent/pkg/config"
	"github.com/helmcode/coderabbit-agent/pkg/formatter"
	"github.com/helmcode/coderabbit-agent/pkg/parser"
)

var (
	configPath   string
	language     string
	outputFormat string
	seed         int64
	verbose      bool
)

// AddGlobalFlags registers the flags shared by every subcommand.
func AddGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVarP(&language, "language", "l", "", "Language of the input (javascript, typescript, react, python, java); detected from the file when omitted")
	flags.StringVarP(&outputFormat, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	flags.Int64Var(&seed, "seed", 0, "Seed for simulated test outcomes (0 = random)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// loadConfig reads the config file and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = outputFormat
	}
	if cmd.Flags().Changed("seed") {
		cfg.Verifier.Seed = seed
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newAgent(cfg *config.Config) (*agent.Agent, *slog.Logger) {
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return agent.NewFromConfig(cfg, logger), logger
}

// readInput loads the snippet named by args, or stdin when there is none.
func readInput(cmd *cobra.Command, args []string) (parser.Snippet, error) {
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	return parser.ReadSource(path, language, cmd.InOrStdin())
}

// progress shows a spinner on stderr for human output only, so machine
// readable output stays clean.
type progress struct {
	s     *spinner.Spinner
	quiet bool
}

func newProgress(cfg *config.Config) *progress {
	return &progress{
		s:     spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr)),
		quiet: cfg.Output != formatter.FormatHuman,
	}
}

func (p *progress) start(msg string) {
	if p.quiet {
		return
	}
	p.s.Suffix = " " + msg
	p.s.Start()
}

func (p *progress) done(msg string) {
	if p.quiet {
		return
	}
	p.s.Stop()
	printSuccess(os.Stderr, msg)
}

func printHeader(w io.Writer, title string, snippet parser.Snippet) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, title)
	lang := snippet.Language
	if lang == "" {
		lang = "unknown (generic rules)"
	}
	fmt.Fprintf(w, "📝 Language: %s\n", lang)
	fmt.Fprintf(w, "📏 Size: %d bytes\n\n", len(snippet.Code))
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}
