package rules

import (
	"regexp"
	"strings"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

// Finding is a single rule hit. Line is 1-based; 0 means the whole file.
type Finding struct {
	Rule     string
	Line     int
	Column   int
	Severity model.Severity
	Message  string
	// Fix is a literal replacement for the line (defects) or a suggestion
	// text (advisories).
	Fix string
}

// Source is code split into lines for scanning.
type Source struct {
	Code  string
	Lines []string
}

func NewSource(code string) *Source {
	return &Source{Code: code, Lines: strings.Split(code, "\n")}
}

// Line is a cursor over a Source.
type Line struct {
	src   *Source
	Index int
}

func (l Line) Text() string    { return l.src.Lines[l.Index] }
func (l Line) Trimmed() string { return strings.TrimSpace(l.Text()) }
func (l Line) Number() int     { return l.Index + 1 }

// At returns the line at Index+offset, or "" outside the source.
func (l Line) At(offset int) string {
	i := l.Index + offset
	if i < 0 || i >= len(l.src.Lines) {
		return ""
	}
	return l.src.Lines[i]
}

// Window joins up to n lines starting at the cursor.
func (l Line) Window(n int, sep string) string {
	end := min(l.Index+n, len(l.src.Lines))
	return strings.Join(l.src.Lines[l.Index:end], sep)
}

// Rest joins every line after the cursor.
func (l Line) Rest() string {
	return strings.Join(l.src.Lines[l.Index+1:], "\n")
}

// Column returns the 1-based column of the first occurrence of substr, or 0.
func (l Line) Column(substr string) int {
	if i := strings.Index(l.Text(), substr); i >= 0 {
		return i + 1
	}
	return 0
}

// LineRule is checked against every line of a source.
type LineRule struct {
	ID       string
	Severity model.Severity
	Match    func(l Line) bool
	Message  func(l Line) string
	Fix      func(l Line) string
	Column   func(l Line) int
}

func (r LineRule) finding(l Line) Finding {
	f := Finding{Rule: r.ID, Line: l.Number(), Severity: r.Severity, Message: r.Message(l)}
	if r.Fix != nil {
		f.Fix = r.Fix(l)
	}
	if r.Column != nil {
		f.Column = r.Column(l)
	}
	return f
}

// Pass is one ordered step of a table scan.
type Pass interface {
	Run(src *Source, emit func(Finding))
}

// LinePass walks the lines once and applies every rule to each line in order.
type LinePass []LineRule

func (p LinePass) Run(src *Source, emit func(Finding)) {
	for i := range src.Lines {
		l := Line{src: src, Index: i}
		for _, r := range p {
			if r.Match(l) {
				emit(r.finding(l))
			}
		}
	}
}

// FileRule inspects the whole source and reports at line 0.
type FileRule struct {
	ID       string
	Severity model.Severity
	Match    func(src *Source) bool
	Message  string
	Fix      string
}

func (r FileRule) Run(src *Source, emit func(Finding)) {
	if r.Match(src) {
		emit(Finding{Rule: r.ID, Severity: r.Severity, Message: r.Message, Fix: r.Fix})
	}
}

// Hint is a file-level suggestion. A nil Match always fires.
type Hint struct {
	Text  string
	Match func(src *Source) bool
}

// Rewrite is a regular-expression substitution applied by the Optimizer.
// Replace, when set, receives the submatches and returns the replacement,
// or ok=false to leave the match untouched.
type Rewrite struct {
	Description string
	Pattern     *regexp.Regexp
	Template    string
	Replace     func(groups []string) (string, bool)
}

// Apply runs the rewrite over code and reports whether anything changed.
func (rw Rewrite) Apply(code string) (string, bool) {
	var out string
	if rw.Replace == nil {
		out = rw.Pattern.ReplaceAllString(code, rw.Template)
	} else {
		out = rw.Pattern.ReplaceAllStringFunc(code, func(match string) string {
			repl, ok := rw.Replace(rw.Pattern.FindStringSubmatch(match))
			if !ok {
				return match
			}
			return repl
		})
	}
	return out, out != code
}

// Table is the declarative rule set for one language.
type Table struct {
	Language Language
	Passes   []Pass
	Hints    []Hint
	Rewrites []Rewrite
}

// Scan runs every pass in order and collects the findings.
func (t *Table) Scan(src *Source) []Finding {
	var findings []Finding
	emit := func(f Finding) { findings = append(findings, f) }
	for _, p := range t.Passes {
		p.Run(src, emit)
	}
	return findings
}

// Suggestions returns the text of every hint that fires.
func (t *Table) Suggestions(src *Source) []string {
	var out []string
	for _, h := range t.Hints {
		if h.Match == nil || h.Match(src) {
			out = append(out, h.Text)
		}
	}
	return out
}

// ApplyRewrites runs the rewrite rules in order, returning the new code and
// the description of each rule that changed it.
func (t *Table) ApplyRewrites(code string) (string, []string) {
	var applied []string
	for _, rw := range t.Rewrites {
		var changed bool
		if code, changed = rw.Apply(code); changed {
			applied = append(applied, rw.Description)
		}
	}
	return code, applied
}

// extend returns a table that runs base's passes, hints and rewrites before
// the given ones.
func extend(base *Table, lang Language, passes []Pass, hints []Hint, rewrites []Rewrite) *Table {
	return &Table{
		Language: lang,
		Passes:   append(append([]Pass{}, base.Passes...), passes...),
		Hints:    append(append([]Hint{}, base.Hints...), hints...),
		Rewrites: append(append([]Rewrite{}, base.Rewrites...), rewrites...),
	}
}

func static(msg string) func(Line) string {
	return func(Line) string { return msg }
}

func contains(substr string) func(Line) bool {
	return func(l Line) bool { return strings.Contains(l.Text(), substr) }
}

func columnOf(substr string) func(Line) int {
	return func(l Line) int { return l.Column(substr) }
}
