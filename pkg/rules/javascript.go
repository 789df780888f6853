package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

var (
	jsDeclaration = regexp.MustCompile(`\b(?:const|let|var)\s+(\w+)`)
	jsVarKeyword  = regexp.MustCompile(`(?m)^([ \t]*)var\s+`)
	jsLooseEq     = regexp.MustCompile(`([^=!<>])={2}([^=])`)
	jsAnonFunc    = regexp.MustCompile(`function\s*\(([^)]*)\)\s*\{`)
)

func javascriptTable() *Table {
	return &Table{
		Language: JavaScript,
		Passes: []Pass{
			LinePass{
				{
					ID:       "js/spaced-comparison",
					Severity: model.SeverityError,
					Match: func(l Line) bool {
						return strings.Contains(l.Text(), "= =") || strings.Contains(l.Text(), "! =")
					},
					Message: static("Invalid comparison operator spacing"),
					Fix: func(l Line) string {
						fixed := strings.Replace(l.Text(), "= =", "==", 1)
						return strings.Replace(fixed, "! =", "!=", 1)
					},
				},
				{
					ID:       "js/console-log",
					Severity: model.SeverityWarning,
					Match:    contains("console.log"),
					Message:  static("console.log found - remove for production"),
					Fix:      static("Use a proper logging library or remove"),
					Column:   columnOf("console.log"),
				},
				{
					ID:       "js/var-declaration",
					Severity: model.SeverityWarning,
					Match:    func(l Line) bool { return strings.HasPrefix(l.Trimmed(), "var ") },
					Message:  static("Use const/let instead of var"),
					Fix: func(l Line) string {
						return jsVarKeyword.ReplaceAllString(l.Text(), "${1}const ")
					},
					Column: columnOf("var "),
				},
				{
					ID:       "js/missing-semicolon",
					Severity: model.SeverityInfo,
					Match:    jsMissingSemicolon,
					Message:  static("Missing semicolon"),
					Fix:      func(l Line) string { return strings.TrimRight(l.Text(), " \t\r") + ";" },
				},
				{
					ID:       "js/unused-variable",
					Severity: model.SeverityWarning,
					Match: func(l Line) bool {
						m := jsDeclaration.FindStringSubmatch(l.Text())
						return m != nil && !strings.Contains(l.Rest(), m[1])
					},
					Message: func(l Line) string {
						m := jsDeclaration.FindStringSubmatch(l.Text())
						return fmt.Sprintf("Variable '%s' appears to be unused", m[1])
					},
				},
				{
					ID:       "js/async-without-await",
					Severity: model.SeverityWarning,
					Match: func(l Line) bool {
						return strings.Contains(l.Text(), "async") && !strings.Contains(l.Window(10, "\n"), "await")
					},
					Message: static("Async function without await"),
					Column:  columnOf("async"),
				},
			},
		},
		Hints: []Hint{
			{
				Text: "Consider adding 'use strict' directive",
				Match: func(src *Source) bool {
					return !strings.Contains(src.Code, "use strict") && !strings.Contains(src.Code, "export")
				},
			},
			{
				Text:  "Use querySelector instead of getElementById for consistency",
				Match: func(src *Source) bool { return strings.Contains(src.Code, "document.getElementById") },
			},
		},
		Rewrites: []Rewrite{
			{Description: "Replaced var with const", Pattern: jsVarKeyword, Template: "${1}const "},
			{Description: "Used strict equality", Pattern: jsLooseEq, Template: "${1}===${2}"},
			{Description: "Converted to arrow function", Pattern: jsAnonFunc, Template: "(${1}) => {"},
		},
	}
}

func jsMissingSemicolon(l Line) bool {
	t := l.Trimmed()
	if t == "" || strings.HasSuffix(t, ";") || strings.HasSuffix(t, "{") || strings.HasSuffix(t, "}") {
		return false
	}
	for _, skip := range []string{"//", "if", "for", "while"} {
		if strings.Contains(t, skip) {
			return false
		}
	}
	return true
}
