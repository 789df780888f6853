package agent

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

var tracer = otel.Tracer("coderabbit.agent")

func startPipelineSpan(ctx context.Context, req model.Request) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Agent.RunFullPipeline",
		trace.WithAttributes(
			attribute.String("pipeline.language", req.Language),
			attribute.Int("pipeline.code_bytes", len(req.Code)),
		),
	)
}

func startStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Agent."+stage, trace.WithAttributes(attribute.String("pipeline.stage", stage)))
}

func setPipelineSpanResult(span trace.Span, res *model.Result) {
	span.SetAttributes(
		attribute.String("pipeline.result_id", res.ID),
		attribute.Int("pipeline.defects", len(res.Report.Defects)),
		attribute.Int("pipeline.advisories", len(res.Report.Advisories)),
		attribute.Int("pipeline.tests_passed", res.Verification.TestsPassed),
		attribute.Int("pipeline.total_tests", res.Verification.TotalTests),
		attribute.Int("pipeline.improvements", len(res.Improvements)),
	)
}
