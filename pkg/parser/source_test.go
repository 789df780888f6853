package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnippet(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Snippet
	}{
		{"plain", "x = 1\n", Snippet{Code: "x = 1\n"}},
		{"fenced with tag", "\n```Python\nprint('hi')\n```\n", Snippet{Code: "print('hi')\n", Language: "python", Fenced: true}},
		{"fenced without tag", "```\nlet a;\n```", Snippet{Code: "let a;\n", Fenced: true}},
		{"crlf fence", "```js\r\nlet a;\r\n```\r\n", Snippet{Code: "let a;\r\n", Language: "js", Fenced: true}},
		{"prose around fence", "Here:\n```py\nx = 1\n```\nthanks", Snippet{Code: "Here:\n```py\nx = 1\n```\nthanks"}},
		{"two fences", "```py\nx = 1\n```\n```py\ny = 2\n```", Snippet{Code: "```py\nx = 1\n```\n```py\ny = 2\n```"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSnippet(tt.raw))
		})
	}
}

func TestLanguageFromPath(t *testing.T) {
	assert.Equal(t, "javascript", LanguageFromPath("src/app.js"))
	assert.Equal(t, "react", LanguageFromPath("App.TSX"))
	assert.Equal(t, "python", LanguageFromPath("/tmp/x.py"))
	assert.Equal(t, "java", LanguageFromPath("Main.java"))
	assert.Empty(t, LanguageFromPath("Makefile"))
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "util.ts")
	require.NoError(t, os.WriteFile(path, []byte("export const a = 1;\n"), 0o600))

	s, err := ReadSource(path, "", nil)
	require.NoError(t, err)
	assert.Equal(t, Snippet{Code: "export const a = 1;\n", Language: "typescript"}, s)

	s, err = ReadSource(path, "javascript", nil)
	require.NoError(t, err)
	assert.Equal(t, "javascript", s.Language, "explicit tag wins")

	s, err = ReadSource("-", "", strings.NewReader("```py\nx = 1\n```"))
	require.NoError(t, err)
	assert.Equal(t, Snippet{Code: "x = 1\n", Language: "py", Fenced: true}, s)

	_, err = ReadSource(filepath.Join(dir, "missing.js"), "", nil)
	assert.ErrorContains(t, err, "failed to read source")
}

func TestReadSourceKeepsFencesInFiles(t *testing.T) {
	code := "```python\nprint \"hi\"\n```\n"
	path := filepath.Join(t.TempDir(), "example.py")
	require.NoError(t, os.WriteFile(path, []byte(code), 0o600))

	s, err := ReadSource(path, "", nil)
	require.NoError(t, err)
	assert.Equal(t, Snippet{Code: code, Language: "python"}, s)
}
