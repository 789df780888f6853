package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Snippet is source code pulled out of a file, stdin or a chat message.
type Snippet struct {
	Code     string
	Language string
	// Fenced is set when Code is the body of a markdown fence rather than
	// the raw input.
	Fenced bool
}

var fence = regexp.MustCompile("(?s)\\A\\s*```([A-Za-z0-9_+-]*)[ \t]*\r?\n(.*?)```\\s*\\z")

// ParseSnippet strips a markdown code fence when the whole input is exactly
// one fence. Anything else, including code that merely contains a fenced
// example, is returned unchanged. The fence's info string, if any, becomes
// the language.
func ParseSnippet(raw string) Snippet {
	m := fence.FindStringSubmatch(raw)
	if m == nil || strings.Contains(m[2], "```") {
		return Snippet{Code: raw}
	}
	return Snippet{Code: m[2], Language: strings.ToLower(m[1]), Fenced: true}
}

var extensions = map[string]string{
	".js":   "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".mts":  "typescript",
	".jsx":  "react",
	".tsx":  "react",
	".py":   "python",
	".java": "java",
}

// LanguageFromPath maps a file extension to a language tag, or "" when the
// extension is unknown.
func LanguageFromPath(path string) string {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// ReadSource loads code from path, or from stdin when path is "-". Only
// stdin may be a fenced snippet; files are read verbatim. The language is
// taken from the first of: the explicit tag, a code fence, the file
// extension.
func ReadSource(path, language string, stdin io.Reader) (Snippet, error) {
	var s Snippet
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return Snippet{}, fmt.Errorf("failed to read source: %w", err)
		}
		s = ParseSnippet(string(data))
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return Snippet{}, fmt.Errorf("failed to read source: %w", err)
		}
		s = Snippet{Code: string(data), Language: LanguageFromPath(path)}
	}
	if language != "" {
		s.Language = language
	}
	return s, nil
}
