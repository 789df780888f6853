package optimizer

import (
	"fmt"
	"log/slog"

	"github.com/helmcode/coderabbit-agent/pkg/metrics"
	"github.com/helmcode/coderabbit-agent/pkg/model"
	"github.com/helmcode/coderabbit-agent/pkg/rules"
)

// Input is what the Optimizer consumes. Report and Verification come from
// the earlier stages and may be nil.
type Input struct {
	Code         string
	Language     string
	Report       *model.Report
	Verification *model.Verification
}

// Optimizer rewrites code with regex-driven transforms. The output is not
// guaranteed to be semantically equivalent to the input.
type Optimizer struct {
	registry *rules.Registry
	logger   *slog.Logger
}

type Option func(*Optimizer)

func WithRegistry(r *rules.Registry) Option {
	return func(o *Optimizer) { o.registry = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

func New(opts ...Option) *Optimizer {
	o := &Optimizer{registry: rules.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Optimizer) Ready() bool { return o != nil && o.registry != nil }

// Optimize runs, in order: the language rewrite table, whitespace hygiene,
// structural transforms and, for brace languages, re-indentation. It then
// estimates the performance difference against the input.
func (o *Optimizer) Optimize(in Input) *model.Optimization {
	out := &model.Optimization{Code: in.Code, Improvements: []string{}}
	if model.IsBlank(in.Code) {
		out.Metrics = metrics.Estimate(in.Code, in.Code)
		return out
	}

	table, _ := o.registry.Lookup(in.Language)
	lang := table.Language

	code, applied := table.ApplyRewrites(in.Code)
	out.Improvements = append(out.Improvements, applied...)

	code, applied = Hygiene(code)
	out.Improvements = append(out.Improvements, applied...)

	for _, t := range transformsFor(lang) {
		code, applied = t(code)
		out.Improvements = append(out.Improvements, applied...)
	}

	if lang.Braced() {
		code = Reindent(code, indentWidth(lang))
	}

	if in.Report != nil {
		if n := len(in.Report.Advisories); n > 0 {
			out.Improvements = append(out.Improvements, fmt.Sprintf("Fixed %d code warnings", n))
		}
		if n := len(in.Report.Defects); n > 0 {
			out.Improvements = append(out.Improvements, fmt.Sprintf("Resolved %d errors", n))
		}
	}
	if in.Verification != nil {
		o.logger.Debug("optimizing verified code",
			slog.Int("tests_passed", in.Verification.TestsPassed),
			slog.Int("total_tests", in.Verification.TotalTests))
	}

	out.Code = code
	out.Metrics = metrics.Estimate(in.Code, code)
	return out
}

func indentWidth(lang rules.Language) int {
	if lang == rules.Java {
		return 4
	}
	return 2
}

// A transform rewrites code and reports what it changed.
type transform func(code string) (string, []string)

// once adapts a rewrite with a fixed description.
func once(improvement string, fn func(code string) (string, bool)) transform {
	return func(code string) (string, []string) {
		if out, ok := fn(code); ok {
			return out, []string{improvement}
		}
		return code, nil
	}
}

func transformsFor(lang rules.Language) []transform {
	switch lang {
	case rules.JavaScript, rules.TypeScript:
		return scriptTransforms
	case rules.React:
		return append(append([]transform{}, scriptTransforms...), reactTransforms...)
	case rules.Python:
		return pythonTransforms
	}
	return nil
}
