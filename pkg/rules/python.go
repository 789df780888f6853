package rules

import (
	"regexp"
	"strings"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

var (
	pyPrintStatement = regexp.MustCompile(`\bprint\s+(.+)`)
	pyNoneEq         = regexp.MustCompile(`==\s*None`)
	pyNoneNe         = regexp.MustCompile(`!=\s*None`)
	pyMutableDefault = regexp.MustCompile(`=\s*(?:\[\]|\{\})`)
	pyDef            = regexp.MustCompile(`^\s*def\s+\w+\s*\(`)
)

func pythonTable() *Table {
	return &Table{
		Language: Python,
		Passes: []Pass{
			LinePass{
				{
					ID:       "python/indentation",
					Severity: model.SeverityCritical,
					Match: func(l Line) bool {
						n := leadingSpaces(l.Text())
						return n > 0 && n%4 != 0 && l.Trimmed() != ""
					},
					Message: static("Incorrect indentation - use multiples of 4 spaces"),
					Fix: func(l Line) string {
						n := leadingSpaces(l.Text())
						width := (n + 3) / 4 * 4
						return strings.Repeat(" ", width) + l.Text()[n:]
					},
				},
				{
					ID:       "python/print-statement",
					Severity: model.SeverityError,
					Match: func(l Line) bool {
						return pyPrintStatement.MatchString(l.Text()) && !strings.Contains(l.Text(), "print(")
					},
					Message: static("Python 2 print statement - use print()"),
					Fix: func(l Line) string {
						return pyPrintStatement.ReplaceAllString(strings.TrimRight(l.Text(), " \t\r"), "print($1)")
					},
					Column: columnOf("print"),
				},
				{
					ID:       "python/none-comparison",
					Severity: model.SeverityWarning,
					Match: func(l Line) bool {
						return strings.Contains(l.Text(), "== None") || strings.Contains(l.Text(), "!= None")
					},
					Message: static("Use 'is None' or 'is not None' instead of == None"),
					Fix: func(l Line) string {
						s := pyNoneEq.ReplaceAllLiteralString(l.Text(), "is None")
						return pyNoneNe.ReplaceAllLiteralString(s, "is not None")
					},
				},
				{
					ID:       "python/bare-except",
					Severity: model.SeverityWarning,
					Match:    func(l Line) bool { return l.Trimmed() == "except:" },
					Message:  static("Bare except clause - specify exception type"),
					Fix:      static("except Exception:"),
				},
				{
					ID:       "python/mutable-default",
					Severity: model.SeverityError,
					Match: func(l Line) bool {
						return pyDef.MatchString(l.Text()) && pyMutableDefault.MatchString(l.Text())
					},
					Message: static("Mutable default argument: use None as default and initialize in function"),
					Fix: func(l Line) string {
						return pyMutableDefault.ReplaceAllLiteralString(l.Text(), "=None")
					},
				},
			},
		},
		Hints: []Hint{
			{
				Text: "Add shebang line: #!/usr/bin/env python3",
				Match: func(src *Source) bool {
					return !strings.Contains(src.Lines[0], "#!/usr/bin/env python")
				},
			},
			{
				Text:  "Consider adding if __name__ == '__main__': block",
				Match: func(src *Source) bool { return !strings.Contains(src.Code, "if __name__") },
			},
		},
		Rewrites: []Rewrite{
			{Description: "Used 'is None' instead of '== None'", Pattern: pyNoneEq, Template: "is None"},
			{Description: "Used 'is not None' instead of '!= None'", Pattern: pyNoneNe, Template: "is not None"},
		},
	}
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}
