package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/coderabbit-agent/pkg/agent"
	"github.com/helmcode/coderabbit-agent/pkg/verifier"
)

func newHandlers() *handlers {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := agent.New(agent.WithLogger(logger), agent.WithVerifier(verifier.New(verifier.WithSeed(5))))
	return &handlers{agent: a, logger: logger}
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestAnalyzeCodeTool(t *testing.T) {
	h := newHandlers()
	res, err := h.analyzeCode(context.Background(), call(map[string]interface{}{
		"code": "```python\nprint \"hi\"\n```",
	}))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "python", out["language"])
	assert.Equal(t, "print \"hi\"\n", out["original_code"])

	st := h.agent.Status()
	assert.Equal(t, 1, st.CacheSize)
}

func TestDebugCodeTool(t *testing.T) {
	h := newHandlers()
	res, err := h.debugCode(context.Background(), call(map[string]interface{}{
		"code":     "if (a = = b) {}",
		"language": "js",
		"format":   "yaml",
	}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "if (a == b)")
	assert.Contains(t, text(t, res), "Invalid comparison operator spacing")
}

func TestOptimizeCodeTool(t *testing.T) {
	h := newHandlers()
	res, err := h.optimizeCode(context.Background(), call(map[string]interface{}{
		"code":     "var a = 1;",
		"language": "javascript",
	}))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "const a = 1;\n", out["code"])
	assert.Contains(t, out["improvements"], "Replaced var with const")
}

func TestComplexityTool(t *testing.T) {
	h := newHandlers()
	res, err := h.complexity(context.Background(), call(map[string]interface{}{
		"code": "function fib(n) {\n  return fib(n - 1) + fib(n - 2);\n}",
	}))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, true, out["recursive"])
	assert.Equal(t, "O(2^n) - Recursive", out["time_complexity"])
}

func TestCacheTools(t *testing.T) {
	h := newHandlers()
	_, err := h.analyzeCode(context.Background(), call(map[string]interface{}{"code": "x = 1", "language": "python"}))
	require.NoError(t, err)

	res, err := h.cacheStatus(context.Background(), call(nil))
	require.NoError(t, err)
	var st agent.Status
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &st))
	assert.True(t, st.Ready)
	assert.Equal(t, 1, st.CacheSize)

	res, err = h.clearCache(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Equal(t, "Cache cleared", text(t, res))
	assert.Zero(t, h.agent.Status().CacheSize)
}

func TestToolArgumentErrors(t *testing.T) {
	h := newHandlers()

	_, err := h.analyzeCode(context.Background(), call(map[string]interface{}{}))
	assert.EqualError(t, err, "code must be a string")

	_, err = h.debugCode(context.Background(), call(map[string]interface{}{"code": "x", "language": 3}))
	assert.EqualError(t, err, "language must be a string")

	_, err = h.cacheStatus(context.Background(), call(map[string]interface{}{"format": "xml"}))
	assert.EqualError(t, err, "format must be one of json, yaml, human")
}

func TestNewServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.NotNil(t, NewServer(agent.New(agent.WithLogger(logger)), "test", logger))
}
