package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helmcode/coderabbit-agent/pkg/agent"
	"github.com/helmcode/coderabbit-agent/pkg/formatter"
	"github.com/helmcode/coderabbit-agent/pkg/metrics"
	"github.com/helmcode/coderabbit-agent/pkg/model"
	"github.com/helmcode/coderabbit-agent/pkg/parser"
)

// NewServer builds an MCP server exposing the agent's entry points as tools.
func NewServer(a *agent.Agent, version string, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"coderabbit-agent",
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithInstructions("Static analysis, simulated verification and optimization of code snippets."),
	)
	Register(s, a, logger)
	return s
}

// Register adds the agent tools to s.
func Register(s *server.MCPServer, a *agent.Agent, logger *slog.Logger) {
	h := &handlers{agent: a, logger: logger}

	s.AddTool(mcp.NewTool("analyze_code",
		mcp.WithDescription("Runs the full pipeline on a snippet: defect detection with auto-fix, simulated test verification, and optimization with a performance estimate. Identical requests are served from cache."),
		codeParam(),
		languageParam(),
		formatParam(),
	), h.analyzeCode)

	s.AddTool(mcp.NewTool("debug_code",
		mcp.WithDescription("Reports defects, advisories and suggestions for a snippet, with the auto-fixed code when a fix applies."),
		codeParam(),
		languageParam(),
		formatParam(),
	), h.debugCode)

	s.AddTool(mcp.NewTool("optimize_code",
		mcp.WithDescription("Rewrites a snippet with hygiene passes and language-specific transforms, listing every improvement applied."),
		codeParam(),
		languageParam(),
		formatParam(),
	), h.optimizeCode)

	s.AddTool(mcp.NewTool("complexity",
		mcp.WithDescription("Estimates cyclomatic and cognitive complexity, loop nesting and Big-O labels for a snippet."),
		codeParam(),
		formatParam(),
	), h.complexity)

	s.AddTool(mcp.NewTool("cache_status",
		mcp.WithDescription("Reports stage readiness and result cache counters."),
		formatParam(),
	), h.cacheStatus)

	s.AddTool(mcp.NewTool("clear_cache",
		mcp.WithDescription("Drops every cached pipeline result."),
	), h.clearCache)

	logger.Info("registered MCP tools", slog.Int("count", 6))
}

func codeParam() mcp.ToolOption {
	return mcp.WithString("code",
		mcp.Description("Source code to process. A markdown code fence is stripped and its tag used as the language when none is given."),
		mcp.Required(),
	)
}

func languageParam() mcp.ToolOption {
	return mcp.WithString("language",
		mcp.Description("Language tag: javascript, typescript, react, python, java, or an alias such as js, ts, tsx, py. Unknown tags use generic rules."),
	)
}

func formatParam() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Output format: json (default), yaml or human"),
	)
}

type handlers struct {
	agent  *agent.Agent
	logger *slog.Logger
}

func (h *handlers) analyzeCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, format, err := snippetArgs(request)
	if err != nil {
		return nil, err
	}
	res, err := h.agent.RunFullPipeline(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}
	return render(func(b *bytes.Buffer) error { return formatter.DisplayResult(b, res, format) })
}

func (h *handlers) debugCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, format, err := snippetArgs(request)
	if err != nil {
		return nil, err
	}
	report := h.agent.Analyze(ctx, req)
	return render(func(b *bytes.Buffer) error { return formatter.DisplayReport(b, report, format) })
}

func (h *handlers) optimizeCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, format, err := snippetArgs(request)
	if err != nil {
		return nil, err
	}
	opt := h.agent.Optimize(ctx, req.Code, req.Language)
	return render(func(b *bytes.Buffer) error { return formatter.DisplayOptimization(b, opt, format) })
}

func (h *handlers) complexity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, format, err := snippetArgs(request)
	if err != nil {
		return nil, err
	}
	p := metrics.Analyze(req.Code)
	return render(func(b *bytes.Buffer) error { return formatter.DisplayProfile(b, p, format) })
}

func (h *handlers) cacheStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := formatArg(request.Params.Arguments)
	if err != nil {
		return nil, err
	}
	st := h.agent.Status()
	return render(func(b *bytes.Buffer) error { return formatter.DisplayStatus(b, st, format) })
}

func (h *handlers) clearCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.agent.ClearCache()
	return textResult("Cache cleared"), nil
}

func snippetArgs(request mcp.CallToolRequest) (model.Request, string, error) {
	arguments := request.Params.Arguments

	code, ok := arguments["code"].(string)
	if !ok {
		return model.Request{}, "", fmt.Errorf("code must be a string")
	}
	language := ""
	if v, ok := arguments["language"]; ok {
		if language, ok = v.(string); !ok {
			return model.Request{}, "", fmt.Errorf("language must be a string")
		}
	}
	format, err := formatArg(arguments)
	if err != nil {
		return model.Request{}, "", err
	}

	s := parser.ParseSnippet(code)
	if language == "" {
		language = s.Language
	}
	return model.Request{Code: s.Code, Language: language}, format, nil
}

func formatArg(arguments map[string]interface{}) (string, error) {
	v, ok := arguments["format"]
	if !ok {
		return formatter.FormatJSON, nil
	}
	format, ok := v.(string)
	if !ok || !formatter.ValidFormat(format) {
		return "", fmt.Errorf("format must be one of json, yaml, human")
	}
	return format, nil
}

func render(write func(*bytes.Buffer) error) (*mcp.CallToolResult, error) {
	var b bytes.Buffer
	if err := write(&b); err != nil {
		return nil, fmt.Errorf("error rendering result: %w", err)
	}
	return textResult(b.String()), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}
