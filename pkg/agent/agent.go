package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/helmcode/coderabbit-agent/pkg/analyzer"
	"github.com/helmcode/coderabbit-agent/pkg/cache"
	"github.com/helmcode/coderabbit-agent/pkg/config"
	"github.com/helmcode/coderabbit-agent/pkg/metrics"
	"github.com/helmcode/coderabbit-agent/pkg/model"
	"github.com/helmcode/coderabbit-agent/pkg/optimizer"
	"github.com/helmcode/coderabbit-agent/pkg/rules"
	"github.com/helmcode/coderabbit-agent/pkg/verifier"
)

// Stage names, as reported by Status and used for metrics and spans.
const (
	StageAnalyze  = "analyze"
	StageVerify   = "verify"
	StageOptimize = "optimize"
)

// Agent sequences the analyzer, verifier and optimizer, and caches full
// pipeline results by fingerprint.
//
// Thread Safety:
//
//	Agent is safe for concurrent use. Concurrent RunFullPipeline calls for
//	the same language and code share a single execution.
type Agent struct {
	registry  *rules.Registry
	analyzer  *analyzer.Analyzer
	verifier  *verifier.Verifier
	optimizer *optimizer.Optimizer
	cache     *cache.ResultCache
	flight    singleflight.Group
	logger    *slog.Logger
}

type Option func(*Agent)

func WithRegistry(r *rules.Registry) Option {
	return func(a *Agent) { a.registry = r }
}

func WithAnalyzer(an *analyzer.Analyzer) Option {
	return func(a *Agent) { a.analyzer = an }
}

func WithVerifier(v *verifier.Verifier) Option {
	return func(a *Agent) { a.verifier = v }
}

func WithOptimizer(o *optimizer.Optimizer) Option {
	return func(a *Agent) { a.optimizer = o }
}

func WithCache(c *cache.ResultCache) Option {
	return func(a *Agent) { a.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// New builds an Agent. Stages not supplied through options are created with
// the agent's registry and logger.
func New(opts ...Option) *Agent {
	a := &Agent{registry: rules.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	if a.analyzer == nil {
		a.analyzer = analyzer.New(analyzer.WithRegistry(a.registry), analyzer.WithLogger(a.logger))
	}
	if a.verifier == nil {
		a.verifier = verifier.New(verifier.WithLogger(a.logger))
	}
	if a.optimizer == nil {
		a.optimizer = optimizer.New(optimizer.WithRegistry(a.registry), optimizer.WithLogger(a.logger))
	}
	if a.cache == nil {
		a.cache = cache.New(cache.WithLogger(a.logger))
	}
	return a
}

// NewFromConfig builds an Agent from the cache and verifier settings in cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Agent {
	return New(
		WithLogger(logger),
		WithCache(cache.New(cache.WithCapacity(cfg.Cache.Capacity), cache.WithLogger(logger))),
		WithVerifier(verifier.New(
			verifier.WithSeed(cfg.Verifier.Seed),
			verifier.WithTimeout(cfg.Verifier.Timeout),
			verifier.WithLogger(logger),
		)),
	)
}

// RunFullPipeline analyzes, verifies and optimizes req.Code. A cached result
// for the same language and code is returned as is, without re-running any
// stage. The only error is the context's.
func (a *Agent) RunFullPipeline(ctx context.Context, req model.Request) (*model.Result, error) {
	metrics.ObservePipelineRun("full")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res, ok := a.cache.Get(req.Language, req.Code); ok {
		a.logger.Debug("serving cached result", slog.String("id", res.ID))
		return res, nil
	}

	key := cache.NewFingerprint(req.Language, req.Code)
	v, err, shared := a.flight.Do(key.String(), func() (any, error) {
		// A previous flight may have finished between our lookup and now.
		if res, ok := a.cache.Get(req.Language, req.Code); ok {
			return res, nil
		}
		return a.run(ctx, req)
	})
	if err != nil {
		// The leader's context may have ended while ours is still live.
		if shared && ctx.Err() == nil {
			return a.run(ctx, req)
		}
		return nil, err
	}
	res := v.(*model.Result)
	if shared && !sameInput(res, req) {
		a.logger.Warn("in-flight fingerprint collision, running separately", slog.String("fingerprint", key.String()))
		return a.run(ctx, req)
	}
	return res, nil
}

func (a *Agent) run(ctx context.Context, req model.Request) (*model.Result, error) {
	ctx, span := startPipelineSpan(ctx, req)
	defer span.End()

	a.checkLanguage(req.Language)

	var report *model.Report
	a.stage(ctx, StageAnalyze, func(context.Context) {
		report = a.analyzer.Analyze(req)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	code := req.Code
	if report.HasFixedCode() {
		code = report.FixedCode
	}

	var verification *model.Verification
	a.stage(ctx, StageVerify, func(ctx context.Context) {
		verification = a.verifier.Verify(ctx, model.Request{
			Code:        code,
			Language:    req.Language,
			Context:     req.Context,
			ProjectPath: req.ProjectPath,
		})
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opt *model.Optimization
	a.stage(ctx, StageOptimize, func(context.Context) {
		opt = a.optimizer.Optimize(optimizer.Input{
			Code:         code,
			Language:     req.Language,
			Report:       report,
			Verification: verification,
		})
	})

	res := &model.Result{
		ID:               uuid.NewString(),
		Language:         normalizeTag(req.Language),
		OriginalCode:     req.Code,
		Report:           *report,
		Verification:     *verification,
		OptimizedCode:    opt.Code,
		Improvements:     opt.Improvements,
		PerformanceGains: opt.Metrics,
	}
	a.cache.Put(req.Language, req.Code, res)
	setPipelineSpanResult(span, res)
	return res, nil
}

// Analyze runs the analyzer alone. Results are not cached.
func (a *Agent) Analyze(ctx context.Context, req model.Request) *model.Report {
	metrics.ObservePipelineRun(StageAnalyze)
	a.checkLanguage(req.Language)

	var report *model.Report
	a.stage(ctx, StageAnalyze, func(context.Context) {
		report = a.analyzer.Analyze(req)
	})
	return report
}

// OptimizeOnly runs the optimizer as if the analyzer and verifier had found
// nothing.
func (a *Agent) OptimizeOnly(ctx context.Context, code, language string) string {
	return a.Optimize(ctx, code, language).Code
}

// Optimize is OptimizeOnly keeping the improvement list and estimate.
func (a *Agent) Optimize(ctx context.Context, code, language string) *model.Optimization {
	metrics.ObservePipelineRun(StageOptimize)
	a.checkLanguage(language)

	var opt *model.Optimization
	a.stage(ctx, StageOptimize, func(context.Context) {
		opt = a.optimizer.Optimize(optimizer.Input{
			Code:         code,
			Language:     language,
			Report:       &model.Report{},
			Verification: &model.Verification{Passed: true, Coverage: 100},
		})
	})
	return opt
}

// GetCachedResult looks up a previous full run without executing anything.
func (a *Agent) GetCachedResult(req model.Request) (*model.Result, bool) {
	return a.cache.Get(req.Language, req.Code)
}

func (a *Agent) ClearCache() {
	a.cache.Clear()
	a.logger.Info("result cache cleared")
}

// Status reports stage readiness and cache occupancy.
type Status struct {
	Ready     bool            `json:"ready" yaml:"ready"`
	Stages    map[string]bool `json:"stages" yaml:"stages"`
	Languages []string        `json:"languages" yaml:"languages"`
	CacheSize int             `json:"cache_size" yaml:"cache_size"`
	Cache     cache.Stats     `json:"cache" yaml:"cache"`
}

func (a *Agent) Status() Status {
	stages := map[string]bool{
		StageAnalyze:  a.analyzer.Ready(),
		StageVerify:   a.verifier.Ready(),
		StageOptimize: a.optimizer.Ready(),
	}
	ready := true
	for _, ok := range stages {
		ready = ready && ok
	}
	langs := a.registry.Languages()
	names := make([]string, 0, len(langs))
	for _, l := range langs {
		names = append(names, string(l))
	}
	stats := a.cache.Stats()
	return Status{
		Ready:     ready,
		Stages:    stages,
		Languages: names,
		CacheSize: stats.Entries,
		Cache:     stats,
	}
}

func (a *Agent) stage(ctx context.Context, name string, fn func(context.Context)) {
	ctx, span := startStageSpan(ctx, name)
	defer span.End()

	start := time.Now()
	a.logger.Debug("stage started", slog.String("stage", name))
	fn(ctx)
	metrics.ObserveStage(name, start)
	a.logger.Debug("stage finished", slog.String("stage", name), slog.Duration("took", time.Since(start)))
}

// checkLanguage logs tags that fall back to the generic rules.
func (a *Agent) checkLanguage(tag string) {
	if _, known := rules.Normalize(tag); known {
		return
	}
	attrs := []any{slog.String("language", tag)}
	if s := rules.Suggest(tag); s != "" {
		attrs = append(attrs, slog.String("did_you_mean", s))
	}
	a.logger.Warn("unrecognized language, using generic rules", attrs...)
}

func sameInput(res *model.Result, req model.Request) bool {
	return res.OriginalCode == req.Code && res.Language == normalizeTag(req.Language)
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
