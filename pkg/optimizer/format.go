package optimizer

import (
	"regexp"
	"strings"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Hygiene normalizes whitespace: LF line endings, no trailing whitespace,
// at most one consecutive empty line and exactly one trailing newline.
// Applying it twice gives the same result as applying it once.
func Hygiene(code string) (string, []string) {
	var applied []string

	if strings.Contains(code, "\r") {
		code = strings.ReplaceAll(code, "\r\n", "\n")
		code = strings.ReplaceAll(code, "\r", "\n")
		applied = append(applied, "Normalized line endings")
	}

	lines := strings.Split(code, "\n")
	trimmed := false
	for i, line := range lines {
		if t := strings.TrimRight(line, " \t"); t != line {
			lines[i] = t
			trimmed = true
		}
	}
	if trimmed {
		code = strings.Join(lines, "\n")
		applied = append(applied, "Removed trailing whitespace")
	}

	if collapsed := blankRuns.ReplaceAllString(code, "\n\n"); collapsed != code {
		code = collapsed
		applied = append(applied, "Normalized empty lines")
	}

	if ended := strings.TrimRight(code, "\n") + "\n"; ended != code {
		if strings.HasSuffix(code, "\n") {
			applied = append(applied, "Removed extra newlines at end of file")
		} else {
			applied = append(applied, "Added newline at end of file")
		}
		code = ended
	}
	return code, applied
}

// Reindent re-indents brace-delimited code by counting bracket characters:
// a line starting with a closer is dedented, a line ending with an opener
// indents the lines that follow. Blank lines are left empty.
func Reindent(code string, width int) string {
	pad := strings.Repeat(" ", width)
	lines := strings.Split(code, "\n")
	level := 0
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			lines[i] = ""
			continue
		}
		if strings.ContainsAny(t[:1], "}])") {
			level = max(0, level-1)
		}
		lines[i] = strings.Repeat(pad, level) + t
		if strings.ContainsAny(t[len(t)-1:], "{[(") {
			level++
		}
	}
	return strings.Join(lines, "\n")
}

// replaceEach rewrites every match of re for which fn returns true. fn gets
// the submatch indexes of the match.
func replaceEach(code string, re *regexp.Regexp, fn func(m []int) (string, bool)) (string, bool) {
	var b strings.Builder
	last, changed := 0, false
	for _, m := range re.FindAllStringSubmatchIndex(code, -1) {
		repl, ok := fn(m)
		if !ok {
			continue
		}
		b.WriteString(code[last:m[0]])
		b.WriteString(repl)
		last = m[1]
		changed = true
	}
	if !changed {
		return code, false
	}
	b.WriteString(code[last:])
	return b.String(), true
}

// sub returns submatch g of m in s, or "" when the group did not take part.
func sub(s string, m []int, g int) string {
	if m[2*g] < 0 {
		return ""
	}
	return s[m[2*g]:m[2*g+1]]
}

// singular derives an element name from a collection name.
func singular(collection string) string {
	if len(collection) > 1 && strings.HasSuffix(collection, "s") && !strings.HasSuffix(collection, "ss") {
		return strings.TrimSuffix(collection, "s")
	}
	return "item"
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
