package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "coderabbit", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(NewAnalyzeCmd(), NewDebugCmd(), NewOptimizeCmd(), NewMetricsCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeDetectsLanguageFromExtension(t *testing.T) {
	path := writeFile(t, "app.py", "print \"hi\"\n")

	out, err := execute(t, "", "analyze", "-o", "json", "--seed", "3", path)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "python", res["language"])
	assert.Equal(t, "print \"hi\"\n", res["original_code"])
	assert.NotEmpty(t, res["id"])
}

func TestDebugFixedOnlyFromStdin(t *testing.T) {
	out, err := execute(t, "if (a = = b) {}", "debug", "-l", "js", "--fixed-only")
	require.NoError(t, err)
	assert.Contains(t, out, "if (a == b)")
}

func TestDebugWrite(t *testing.T) {
	path := writeFile(t, "cmp.js", "if (a = = b) {}\n")

	_, err := execute(t, "", "debug", "--write", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "if (a == b)")
}

func TestDebugWriteKeepsFencedDocstring(t *testing.T) {
	original := "\"\"\"Tool helpers.\n\n```python\nprint \"hi\"\n```\n\"\"\"\n\n\ndef main():\n    return 42\n"
	path := writeFile(t, "tool.py", original)

	_, err := execute(t, "", "debug", "--write", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(data)
	assert.Equal(t, strings.Count(original, "\n"), strings.Count(got, "\n"))
	assert.Contains(t, got, "\"\"\"Tool helpers.\n\n```python\n")
	assert.Contains(t, got, "print(\"hi\")")
	assert.Contains(t, got, "def main():\n    return 42\n")
}

func TestDebugWriteNeedsFile(t *testing.T) {
	_, err := execute(t, "if (a = = b) {}", "debug", "-l", "js", "--write")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--write needs a FILE")
}

func TestOptimizeCodeOnly(t *testing.T) {
	out, err := execute(t, "var a = 1;", "optimize", "-l", "javascript", "--code-only")
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;\n", out)
}

func TestMetricsJSON(t *testing.T) {
	path := writeFile(t, "solver.py", "for i in range(n):\n    for j in range(n):\n        print(i, j)\n")

	out, err := execute(t, "", "metrics", "-o", "json", path)
	require.NoError(t, err)

	var profile map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.NotEmpty(t, profile["time_complexity"])
	assert.Equal(t, false, profile["recursive"])
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := execute(t, "x = 1", "metrics", "-o", "xml")
	require.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := execute(t, "", "metrics", filepath.Join(t.TempDir(), "nope.py"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read source")
}
