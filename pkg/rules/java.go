package rules

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

var (
	javaLowerClass  = regexp.MustCompile(`class\s+([a-z]\w*)`)
	javaEmptyEquals = regexp.MustCompile(`(\w+)\.equals\(""\)`)
	javaBoxedCtor   = regexp.MustCompile(`new\s+(Integer|Long|Double|Boolean)\(([^()]+)\)`)
)

var javaStatementKeywords = []string{"//", "class", "interface", "if", "for", "while", "switch"}

func javaTable() *Table {
	return &Table{
		Language: Java,
		Passes: []Pass{
			LinePass{
				{
					ID:       "java/missing-semicolon",
					Severity: model.SeverityError,
					Match:    javaMissingSemicolon,
					Message:  static("Missing semicolon"),
					Fix:      func(l Line) string { return strings.TrimRight(l.Text(), " \t\r") + ";" },
				},
				{
					ID:       "java/class-name",
					Severity: model.SeverityWarning,
					Match:    func(l Line) bool { return javaLowerClass.MatchString(l.Text()) },
					Message:  static("Class name should start with uppercase letter"),
					Fix: func(l Line) string {
						return javaLowerClass.ReplaceAllStringFunc(l.Text(), func(m string) string {
							name := javaLowerClass.FindStringSubmatch(m)[1]
							r := []rune(name)
							r[0] = unicode.ToUpper(r[0])
							return strings.Replace(m, name, string(r), 1)
						})
					},
					Column: columnOf("class"),
				},
				{
					ID:       "java/system-out",
					Severity: model.SeverityInfo,
					Match:    contains("System.out.println"),
					Message:  static("Consider using a logging framework instead of System.out"),
					Column:   columnOf("System.out.println"),
				},
				{
					ID:       "java/empty-catch",
					Severity: model.SeverityError,
					Match:    javaEmptyCatch,
					Message:  static("Empty catch block: add error handling or logging"),
					Column:   columnOf("catch"),
				},
			},
		},
		Rewrites: []Rewrite{
			{Description: "Used isEmpty() for empty string checks", Pattern: javaEmptyEquals, Template: "${1}.isEmpty()"},
			{Description: "Replaced boxed constructor with valueOf", Pattern: javaBoxedCtor, Template: "${1}.valueOf(${2})"},
		},
	}
}

func javaMissingSemicolon(l Line) bool {
	t := l.Trimmed()
	if t == "" || strings.HasSuffix(t, ";") || strings.HasSuffix(t, "{") || strings.HasSuffix(t, "}") {
		return false
	}
	// annotations and block comment bodies are not statements
	if strings.HasPrefix(t, "@") || strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*") {
		return false
	}
	for _, kw := range javaStatementKeywords {
		if strings.Contains(t, kw) {
			return false
		}
	}
	return true
}

func javaEmptyCatch(l Line) bool {
	if !strings.Contains(l.Text(), "catch") {
		return false
	}
	next := strings.TrimSpace(l.At(1))
	if strings.HasSuffix(l.Trimmed(), "{") {
		return next == "}"
	}
	return next == "{" && strings.TrimSpace(l.At(2)) == "}"
}
