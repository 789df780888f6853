package analyzer

import (
	"log/slog"
	"strings"

	"github.com/helmcode/coderabbit-agent/pkg/metrics"
	"github.com/helmcode/coderabbit-agent/pkg/model"
	"github.com/helmcode/coderabbit-agent/pkg/rules"
)

// Analyzer scans code against the rule table of its language and attempts a
// single auto-fix pass over the defects it finds.
type Analyzer struct {
	registry *rules.Registry
	logger   *slog.Logger
}

type Option func(*Analyzer)

// WithRegistry replaces the built-in rule tables.
func WithRegistry(r *rules.Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{registry: rules.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ready is a static readiness probe.
func (a *Analyzer) Ready() bool { return a != nil && a.registry != nil }

// Analyze never fails: empty code and unknown languages yield a report,
// the latter through the generic table.
func (a *Analyzer) Analyze(req model.Request) *model.Report {
	report := &model.Report{
		Defects:     []model.Defect{},
		Advisories:  []model.Advisory{},
		Suggestions: []string{},
	}
	if model.IsBlank(req.Code) {
		return report
	}

	table, known := a.registry.Lookup(req.Language)
	if !known {
		a.logger.Debug("no rule table for language, using generic rules",
			slog.String("language", req.Language))
	}

	src := rules.NewSource(req.Code)
	for _, f := range table.Scan(src) {
		metrics.ObserveFinding(string(f.Severity))
		if f.Severity.Blocking() {
			report.Defects = append(report.Defects, model.Defect{
				Line:     f.Line,
				Column:   f.Column,
				Severity: f.Severity,
				Message:  f.Message,
				Fix:      f.Fix,
			})
			continue
		}
		report.Advisories = append(report.Advisories, model.Advisory{
			Line:       f.Line,
			Column:     f.Column,
			Severity:   f.Severity,
			Message:    f.Message,
			Suggestion: f.Fix,
		})
	}
	report.Suggestions = append(report.Suggestions, table.Suggestions(src)...)

	if fixed, ok := AutoFix(req.Code, report.Defects); ok {
		report.FixedCode = fixed
	}

	a.logger.Debug("analysis complete",
		slog.String("language", string(table.Language)),
		slog.Int("defects", len(report.Defects)),
		slog.Int("advisories", len(report.Advisories)),
		slog.Bool("fixed", report.HasFixedCode()))
	return report
}

// AutoFix replaces each targeted line with its defect's fix. Fixes are
// applied in order, so the last fix for a line wins. Fixes spanning several
// lines and out-of-range line numbers are skipped. A CRLF line keeps its
// carriage return. The bool reports whether any fix was applied.
func AutoFix(code string, defects []model.Defect) (string, bool) {
	lines := strings.Split(code, "\n")
	applied := false
	for _, d := range defects {
		if d.Fix == "" || strings.Contains(d.Fix, "\n") {
			continue
		}
		if d.Line < 1 || d.Line > len(lines) {
			continue
		}
		fix := d.Fix
		if strings.HasSuffix(lines[d.Line-1], "\r") && !strings.HasSuffix(fix, "\r") {
			fix += "\r"
		}
		lines[d.Line-1] = fix
		applied = true
	}
	if !applied {
		return code, false
	}
	return strings.Join(lines, "\n"), true
}
