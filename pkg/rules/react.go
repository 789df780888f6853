package rules

import (
	"regexp"
	"strings"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

var (
	reactEffectStart = regexp.MustCompile(`useEffect\s*\(\s*\(\)\s*=>`)
	reactEffectDeps  = regexp.MustCompile(`[}\]]\s*,\s*\[`)
	reactHookCall    = regexp.MustCompile(`\buse[A-Z]\w*\s*\(`)
)

func reactTable(js *Table) *Table {
	passes := []Pass{
		FileRule{
			ID:       "react/missing-key",
			Severity: model.SeverityWarning,
			Match: func(src *Source) bool {
				return strings.Contains(src.Code, ".map(") && !strings.Contains(src.Code, "key=")
			},
			Message: "Missing key prop in list rendering",
			Fix:     "Add unique key prop to list items",
		},
		FileRule{
			ID:       "react/state-mutation",
			Severity: model.SeverityError,
			Match: func(src *Source) bool {
				return strings.Contains(src.Code, "this.state.") && strings.Contains(src.Code, "=")
			},
			Message: "Direct state mutation detected: use setState() instead",
		},
		LinePass{
			{
				ID:       "react/hook-in-loop",
				Severity: model.SeverityCritical,
				Match: func(l Line) bool {
					if !reactHookCall.MatchString(l.Text()) {
						return false
					}
					prev := l.At(-1)
					return strings.Contains(prev, "for") || strings.Contains(prev, "while")
				},
				Message: static("React Hook called in a loop: move the Hook outside of the loop"),
				Column: func(l Line) int {
					if loc := reactHookCall.FindStringIndex(l.Text()); loc != nil {
						return loc[0] + 1
					}
					return 0
				},
			},
			{
				ID:       "react/effect-deps",
				Severity: model.SeverityWarning,
				Match: func(l Line) bool {
					if !reactEffectStart.MatchString(l.Text()) {
						return false
					}
					return !reactEffectDeps.MatchString(l.Window(10, " "))
				},
				Message: static("useEffect missing dependency array"),
				Fix:     static("Add dependency array to useEffect"),
				Column:  columnOf("useEffect"),
			},
		},
	}
	hints := []Hint{
		{
			Text: "Consider using React.memo for performance optimization",
			Match: func(src *Source) bool {
				return !strings.Contains(src.Code, "React.memo") && strings.Contains(src.Code, "export default function")
			},
		},
		{
			Text:  "Use useCallback for event handlers to prevent unnecessary re-renders",
			Match: func(src *Source) bool { return strings.Contains(src.Code, "onClick={() =>") },
		},
	}
	return extend(js, React, passes, hints, nil)
}
