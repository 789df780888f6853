package optimizer

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	appendLoop  = regexp.MustCompile(`(?m)^([ \t]*)(\w+)\s*=\s*\[\][ \t]*\n([ \t]*)for\s+(\w+)\s+in\s+([\w.]+)\s*:[ \t]*\n[ \t]+(\w+)\.append\((.+)\)[ \t]*$`)
	formatCall  = regexp.MustCompile(`(^|[^\w])(['"])([^'"\n]*)(['"])\.format\(([^()\n]*)\)`)
	placeholder = regexp.MustCompile(`\{(\w*)(![rsa])?(:[^{}]*)?\}`)
	keyword     = regexp.MustCompile(`^\s*[A-Za-z_]\w*\s*$`)
	rangeLen    = regexp.MustCompile(`^([ \t]*)for\s+(\w+)\s+in\s+range\(len\((\w+)\)\)\s*:\s*$`)
	openAssign  = regexp.MustCompile(`^([ \t]*)(\w+)\s*=\s*open\((.*)\)\s*$`)
	listReturn  = regexp.MustCompile(`return\s*\[([^\[\]\n]+?)\s+for\s+(\w+)\s+in\s+([^\[\]\n]+)\]`)
)

// generatorThreshold is the module size above which list-returning
// comprehensions become generators.
const generatorThreshold = 1000

var pythonTransforms = []transform{
	once("Converted loop to list comprehension", listComprehensions),
	once("Converted .format() to f-strings", fStrings),
	once("Used enumerate instead of range(len())", enumerateLoops),
	once("Used context manager for file operations", contextManagers),
	once("Converted large list to generator for memory efficiency", generators),
}

func listComprehensions(code string) (string, bool) {
	return replaceEach(code, appendLoop, func(m []int) (string, bool) {
		acc, loopIndent := sub(code, m, 2), sub(code, m, 3)
		if sub(code, m, 6) != acc || !bodyEnds(code[m[1]:], len(loopIndent)) {
			return "", false
		}
		return sub(code, m, 1) + acc + " = [" + strings.TrimSpace(sub(code, m, 7)) + " for " + sub(code, m, 4) + " in " + sub(code, m, 5) + "]", true
	})
}

// bodyEnds reports whether the first non-blank line of rest is indented no
// deeper than indent, meaning the block above it has closed.
func bodyEnds(rest string, indent int) bool {
	for _, line := range strings.Split(rest, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return len(indentOf(line)) <= indent
	}
	return true
}

func fStrings(code string) (string, bool) {
	return replaceEach(code, formatCall, func(m []int) (string, bool) {
		quote := sub(code, m, 2)
		if sub(code, m, 4) != quote {
			return "", false
		}
		body, ok := interpolate(sub(code, m, 3), sub(code, m, 5), quote)
		if !ok {
			return "", false
		}
		return sub(code, m, 1) + "f" + quote + body + quote, true
	})
}

// interpolate inlines .format() arguments into the template. It gives up on
// anything it cannot place exactly.
func interpolate(template, args, quote string) (string, bool) {
	if strings.Contains(template, "{{") || strings.Contains(template, "}}") {
		return "", false
	}
	var positional []string
	named := map[string]string{}
	for _, a := range strings.Split(args, ",") {
		a = strings.TrimSpace(a)
		if a == "" || strings.Contains(a, quote) {
			return "", false
		}
		if k, v, ok := strings.Cut(a, "="); ok && keyword.MatchString(k) && !strings.HasPrefix(v, "=") {
			named[strings.TrimSpace(k)] = strings.TrimSpace(v)
			continue
		}
		positional = append(positional, a)
	}

	next, failed := 0, false
	out := placeholder.ReplaceAllStringFunc(template, func(ph string) string {
		g := placeholder.FindStringSubmatch(ph)
		var expr string
		switch key := g[1]; {
		case key == "":
			if next >= len(positional) {
				failed = true
				return ph
			}
			expr = positional[next]
			next++
		case key[0] >= '0' && key[0] <= '9':
			i, err := strconv.Atoi(key)
			if err != nil || i >= len(positional) {
				failed = true
				return ph
			}
			expr = positional[i]
		default:
			v, ok := named[key]
			if !ok {
				failed = true
				return ph
			}
			expr = v
		}
		return "{" + expr + g[2] + g[3] + "}"
	})
	return out, !failed
}

func enumerateLoops(code string) (string, bool) {
	lines := strings.Split(code, "\n")
	changed := false
	for i := 0; i < len(lines); i++ {
		m := rangeLen.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		indent, idx, arr := m[1], m[2], m[3]
		end := blockEnd(lines, i, len(indent))
		body := strings.Join(lines[i+1:end], "\n")
		access := arr + "[" + idx + "]"
		item := singular(arr)
		if regexp.MustCompile(regexp.QuoteMeta(access)+`\s*=[^=]`).MatchString(body) || wordIn(item, body) {
			continue
		}
		for j := i + 1; j < end; j++ {
			lines[j] = strings.ReplaceAll(lines[j], access, item)
		}
		lines[i] = indent + "for " + idx + ", " + item + " in enumerate(" + arr + "):"
		changed = true
	}
	return strings.Join(lines, "\n"), changed
}

func contextManagers(code string) (string, bool) {
	lines := strings.Split(code, "\n")
	changed := false
	for i := 0; i < len(lines); i++ {
		m := openAssign.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		indent, handle, args := m[1], m[2], m[3]
		closing := -1
		for j := i + 1; j < len(lines); j++ {
			t := strings.TrimSpace(lines[j])
			if t == "" {
				continue
			}
			if len(indentOf(lines[j])) < len(indent) {
				break
			}
			if t == handle+".close()" && indentOf(lines[j]) == indent {
				closing = j
				break
			}
		}
		if closing < 0 {
			continue
		}

		block := []string{indent + "with open(" + args + ") as " + handle + ":"}
		for _, line := range lines[i+1 : closing] {
			if strings.TrimSpace(line) == "" {
				block = append(block, "")
				continue
			}
			block = append(block, "    "+line)
		}
		lines = append(lines[:i], append(block, lines[closing+1:]...)...)
		i += len(block) - 1
		changed = true
	}
	return strings.Join(lines, "\n"), changed
}

func generators(code string) (string, bool) {
	if len(code) <= generatorThreshold || !strings.Contains(code, "def") {
		return code, false
	}
	return replaceEach(code, listReturn, func(m []int) (string, bool) {
		return "return (" + sub(code, m, 1) + " for " + sub(code, m, 2) + " in " + strings.TrimSpace(sub(code, m, 3)) + ")", true
	})
}

// blockEnd returns the index of the first line after lines[start] that is
// not blank and indented no deeper than indent.
func blockEnd(lines []string, start, indent int) int {
	for j := start + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" && len(indentOf(lines[j])) <= indent {
			return j
		}
	}
	return len(lines)
}
