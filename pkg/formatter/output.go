package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/coderabbit-agent/pkg/agent"
	"github.com/helmcode/coderabbit-agent/pkg/metrics"
	"github.com/helmcode/coderabbit-agent/pkg/model"
)

// Output formats accepted by the Display functions.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidFormat reports whether format is one of the supported outputs.
func ValidFormat(format string) bool {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// display writes v as JSON or YAML, or hands w to human for anything else.
func display(w io.Writer, format string, v any, human func(io.Writer)) error {
	switch format {
	case FormatJSON:
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(output))
		return err
	case FormatYAML:
		output, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, string(output))
		return err
	default:
		human(w)
	}
	return nil
}

// DisplayResult renders a full pipeline result.
func DisplayResult(w io.Writer, res *model.Result, format string) error {
	return display(w, format, res, func(w io.Writer) {
		header(w, fmt.Sprintf("🔍 CODE ANALYSIS (%s)", res.Language))
		fmt.Fprintf(w, "   ID: %s\n\n", color.HiBlackString(res.ID))
		humanReport(w, &res.Report)
		humanVerification(w, &res.Verification)
		humanOptimization(w, &model.Optimization{
			Code:         res.OptimizedCode,
			Improvements: res.Improvements,
			Metrics:      res.PerformanceGains,
		})
		footer(w)
	})
}

// DisplayReport renders the analyzer's findings.
func DisplayReport(w io.Writer, report *model.Report, format string) error {
	return display(w, format, report, func(w io.Writer) {
		humanReport(w, report)
		if report.HasFixedCode() {
			color.New(color.FgGreen, color.Bold).Fprintln(w, "🩹 FIXED CODE:")
			fmt.Fprintln(w, indentBlock(report.FixedCode, "   "))
			fmt.Fprintln(w)
		}
		footer(w)
	})
}

// DisplayOptimization renders optimized code with its improvements.
func DisplayOptimization(w io.Writer, opt *model.Optimization, format string) error {
	return display(w, format, opt, func(w io.Writer) {
		humanOptimization(w, opt)
		footer(w)
	})
}

// DisplayProfile renders complexity counts for a snippet.
func DisplayProfile(w io.Writer, p metrics.Profile, format string) error {
	return display(w, format, p, func(w io.Writer) {
		header(w, "📈 COMPLEXITY PROFILE")
		rows := [][2]string{
			{"Time complexity", p.TimeLabel},
			{"Space complexity", p.SpaceLabel},
			{"Cyclomatic", fmt.Sprint(p.Cyclomatic)},
			{"Cognitive", fmt.Sprintf("%.1f", p.Cognitive)},
			{"Loops", fmt.Sprintf("%d (max depth %d)", p.Loops, p.LoopDepth)},
			{"Recursive", yesNo(p.Recursive)},
			{"Sorts", yesNo(p.Sorts)},
			{"Allocations", fmt.Sprint(p.Allocations)},
		}
		for _, r := range rows {
			fmt.Fprintf(w, "   %-17s %s\n", r[0]+":", r[1])
		}
		fmt.Fprintln(w)
		footer(w)
	})
}

// DisplayStatus renders agent readiness and cache counters.
func DisplayStatus(w io.Writer, st agent.Status, format string) error {
	return display(w, format, st, func(w io.Writer) {
		if st.Ready {
			header(w, "✅ AGENT READY")
		} else {
			color.New(color.FgRed, color.Bold).Fprintln(w, "❌ AGENT NOT READY")
		}
		stages := make([]string, 0, len(st.Stages))
		for s := range st.Stages {
			stages = append(stages, s)
		}
		sort.Strings(stages)
		for _, s := range stages {
			fmt.Fprintf(w, "   %s %s\n", statusIcon(st.Stages[s]), s)
		}
		fmt.Fprintf(w, "\n   Languages: %s\n", strings.Join(st.Languages, ", "))
		fmt.Fprintf(w, "   Cache: %d entries, %d hits, %d misses, %d collisions, %d evictions\n\n",
			st.CacheSize, st.Cache.Hits, st.Cache.Misses, st.Cache.Collisions, st.Cache.Evictions)
	})
}

func humanReport(w io.Writer, report *model.Report) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	if len(report.Defects) == 0 && len(report.Advisories) == 0 {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "✓ NO ISSUES FOUND")
		fmt.Fprintln(w)
	}

	if len(report.Defects) > 0 {
		red.Fprintln(w, "🐞 DEFECTS:")
		for i, d := range report.Defects {
			fmt.Fprintf(w, "   %d. %s %s %s\n", i+1, getSeverityIcon(d.Severity), location(d.Line, d.Column), d.Message)
			if d.Fix != "" {
				fmt.Fprintf(w, "      Fix: %s\n", color.GreenString(d.Fix))
			}
		}
		fmt.Fprintln(w)
	}

	if len(report.Advisories) > 0 {
		yellow.Fprintln(w, "⚠️  ADVISORIES:")
		for i, a := range report.Advisories {
			fmt.Fprintf(w, "   %d. %s %s %s\n", i+1, getSeverityIcon(a.Severity), location(a.Line, a.Column), a.Message)
			if a.Suggestion != "" {
				fmt.Fprintf(w, "      Suggestion: %s\n", color.CyanString(a.Suggestion))
			}
		}
		fmt.Fprintln(w)
	}

	if len(report.Suggestions) > 0 {
		cyan.Fprintln(w, "💡 SUGGESTIONS:")
		for i, s := range report.Suggestions {
			fmt.Fprintf(w, "   %d. %s\n", i+1, s)
		}
		fmt.Fprintln(w)
	}
}

func humanVerification(w io.Writer, v *model.Verification) {
	c := color.New(color.FgGreen, color.Bold)
	verdict := "PASSED"
	if !v.Passed {
		c = color.New(color.FgRed, color.Bold)
		verdict = "FAILED"
	}
	c.Fprintf(w, "🧪 TESTS %s: %d/%d passed, %d%% coverage\n", verdict, v.TestsPassed, v.TotalTests, v.Coverage)
	for _, name := range v.FailedTests {
		fmt.Fprintf(w, "   ✗ %s\n", name)
	}
	fmt.Fprintln(w)
}

func humanOptimization(w io.Writer, opt *model.Optimization) {
	green := color.New(color.FgGreen, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	if len(opt.Improvements) > 0 {
		green.Fprintln(w, "🚀 IMPROVEMENTS:")
		for i, imp := range opt.Improvements {
			fmt.Fprintf(w, "   %d. %s\n", i+1, imp)
		}
		fmt.Fprintln(w)
	}

	if m := opt.Metrics; m != nil {
		white.Fprintln(w, "📊 PERFORMANCE ESTIMATE:")
		fmt.Fprintf(w, "   Time:   %s\n", m.TimeComplexity)
		fmt.Fprintf(w, "   Space:  %s\n", m.SpaceComplexity)
		fmt.Fprintf(w, "   Speed:  +%.1f%%\n", m.EstimatedSpeedUp)
		fmt.Fprintf(w, "   Memory: -%.1f%%\n\n", m.MemoryOptimization)
	}

	if strings.TrimSpace(opt.Code) != "" {
		white.Fprintln(w, "📄 OPTIMIZED CODE:")
		fmt.Fprintln(w, indentBlock(opt.Code, "   "))
		fmt.Fprintln(w)
	}
}

func header(w io.Writer, title string) {
	fmt.Fprintln(w)
	color.New(color.FgCyan, color.Bold).Fprintln(w, title)
}

func footer(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func location(line, column int) string {
	if column > 0 {
		return fmt.Sprintf("[%d:%d]", line, column)
	}
	return fmt.Sprintf("[%d]", line)
}

func getSeverityIcon(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityError:
		return "🟠"
	case model.SeverityWarning:
		return "🟡"
	case model.SeverityInfo:
		return "🔵"
	default:
		return "⚪"
	}
}

func statusIcon(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// indentBlock prefixes every non-empty line of text.
func indentBlock(text, indent string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, "\n")
}
