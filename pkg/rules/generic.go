package rules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

// MaxLineLength is the longest line the generic table accepts silently.
const MaxLineLength = 120

func genericTable() *Table {
	return &Table{
		Language: Generic,
		Passes: []Pass{
			LinePass{
				{
					ID:       "generic/todo",
					Severity: model.SeverityInfo,
					Match: func(l Line) bool {
						return strings.Contains(l.Text(), "TODO") || strings.Contains(l.Text(), "FIXME")
					},
					Message: static("TODO/FIXME comment found"),
				},
				{
					ID:       "generic/hardcoded-password",
					Severity: model.SeverityCritical,
					Match: func(l Line) bool {
						t := l.Text()
						return strings.Contains(strings.ToLower(t), "password") &&
							strings.Contains(t, "=") && strings.Contains(t, `"`)
					},
					Message: static("Potential hardcoded password: use environment variables or secure config"),
				},
				{
					ID:       "generic/line-length",
					Severity: model.SeverityInfo,
					Match:    func(l Line) bool { return utf8.RuneCountInString(l.Text()) > MaxLineLength },
					Message: func(l Line) string {
						return fmt.Sprintf("Line too long (%d chars)", utf8.RuneCountInString(l.Text()))
					},
				},
				{
					ID:       "generic/trailing-whitespace",
					Severity: model.SeverityInfo,
					Match: func(l Line) bool {
						t := strings.TrimSuffix(l.Text(), "\r")
						return strings.HasSuffix(t, " ") || strings.HasSuffix(t, "\t")
					},
					Message: static("Trailing whitespace"),
					Fix:     func(l Line) string { return strings.TrimRight(l.Text(), " \t\r") },
				},
			},
		},
		Hints: []Hint{
			{Text: "Consider adding comments for complex logic"},
			{Text: "Ensure consistent code formatting"},
		},
	}
}
