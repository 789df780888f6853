package metrics

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

var (
	branchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`if\s*\(`),
		regexp.MustCompile(`else\s+if\s*\(`),
		regexp.MustCompile(`for\s*\(`),
		regexp.MustCompile(`while\s*\(`),
		regexp.MustCompile(`case\s+`),
		regexp.MustCompile(`catch\s*\(`),
		regexp.MustCompile(`\?\s*.*\s*:`),
	}
	functionMarker = regexp.MustCompile(`function|=>`)

	braceLoopHeader  = regexp.MustCompile(`\b(?:for|while)\s*\(`)
	indentLoopHeader = regexp.MustCompile(`^\s*(?:for|while)\b.*:\s*(?:#.*)?$`)

	// Declarations whose body is checked for a call to their own name.
	// Groups: 1 function, 2 def, 3 arrow const, 4 method.
	declaration = regexp.MustCompile(`\bfunction\s+(\w+)\s*\(|\bdef\s+(\w+)\s*\(|\bconst\s+(\w+)\s*=\s*(?:async\s+)?\([^)]*\)\s*=>|(?:public|private|protected|static)[\w\s<>\[\],]*?\s(\w+)\s*\(`)

	allocation = regexp.MustCompile(`\[\]|\{\}|\bnew\s+(?:Map|Set|ArrayList|HashMap|HashSet|LinkedList)\b|\b(?:dict|set|list)\(\)`)
)

// Cyclomatic returns 1 plus the number of branch points.
func Cyclomatic(code string) int {
	n := 1
	for _, p := range branchPatterns {
		n += len(p.FindAllStringIndex(code, -1))
	}
	return n
}

// Cognitive counts logical operators and function markers, plus half the
// brace nesting level of every line.
func Cognitive(code string) float64 {
	score := float64(strings.Count(code, "&&") + strings.Count(code, "||"))
	score += float64(len(functionMarker.FindAllStringIndex(code, -1)))

	level := 0
	for _, line := range strings.Split(code, "\n") {
		if strings.Contains(line, "{") {
			level++
		}
		if strings.Contains(line, "}") {
			level--
		}
		score += float64(level) * 0.5
	}
	return score
}

// LoopDepth returns the deepest loop nesting and the number of loop headers.
// Both brace-delimited and indentation-delimited nesting are measured and the
// larger result wins.
func LoopDepth(code string) (depth, loops int) {
	bd, bl := braceLoopDepth(code)
	id, il := indentLoopDepth(code)
	return max(bd, id), max(bl, il)
}

func braceLoopDepth(code string) (depth, loops int) {
	headers := braceLoopHeader.FindAllStringIndex(code, -1)
	var stack []int
	active, pending, parens, next := 0, 0, 0, 0

	for i := 0; i < len(code); i++ {
		if next < len(headers) && i == headers[next][0] {
			next++
			loops++
			pending++
			depth = max(depth, active+pending)
		}
		switch code[i] {
		case '(':
			parens++
		case ')':
			parens = max(0, parens-1)
		case '{':
			stack = append(stack, pending)
			active += pending
			pending = 0
		case '}':
			if n := len(stack); n > 0 {
				active -= stack[n-1]
				stack = stack[:n-1]
			}
		case ';':
			// a braceless loop body ends at the first top-level semicolon
			if parens == 0 {
				pending = 0
			}
		}
	}
	return depth, loops
}

func indentLoopDepth(code string) (depth, loops int) {
	var stack []int
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := indentWidth(line)
		for len(stack) > 0 && stack[len(stack)-1] >= indent {
			stack = stack[:len(stack)-1]
		}
		if indentLoopHeader.MatchString(line) {
			loops++
			stack = append(stack, indent)
			depth = max(depth, len(stack))
		}
	}
	return depth, loops
}

func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

// IsRecursive reports whether any declared function calls its own name
// inside its body.
func IsRecursive(code string) bool {
	for _, m := range declaration.FindAllStringSubmatchIndex(code, -1) {
		var name string
		for g := 1; g <= 4; g++ {
			if m[2*g] >= 0 {
				name = code[m[2*g]:m[2*g+1]]
				break
			}
		}
		if name == "" || isKeyword(name) {
			continue
		}
		body := functionBody(code, m)
		call := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
		if call.MatchString(body) {
			return true
		}
	}
	return false
}

func isKeyword(name string) bool {
	switch name {
	case "if", "for", "while", "switch", "catch", "return", "new", "else", "throw":
		return true
	}
	return false
}

// functionBody extracts the body following a declaration match. Python bodies
// run until the indentation drops back to the header's level, braceless arrow
// bodies run to the end of the line and everything else runs to the brace
// matching the first opening brace.
func functionBody(code string, m []int) string {
	rest := code[m[1]:]
	switch {
	case m[4] >= 0:
		lineStart := strings.LastIndex(code[:m[0]], "\n") + 1
		base := indentWidth(code[lineStart:])
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			return ""
		}
		var body []string
		for _, line := range strings.Split(rest[nl+1:], "\n") {
			if strings.TrimSpace(line) != "" && indentWidth(line) <= base {
				break
			}
			body = append(body, line)
		}
		return strings.Join(body, "\n")
	case m[6] >= 0 && !strings.HasPrefix(strings.TrimSpace(rest), "{"):
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			return rest[:nl]
		}
		return rest
	}

	open := strings.IndexByte(rest, '{')
	if open < 0 {
		return ""
	}
	depth := 0
	for i := open; i < len(rest); i++ {
		switch rest[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[open+1 : i]
			}
		}
	}
	return rest[open+1:]
}

// Allocations counts literal and constructor allocations of collections.
func Allocations(code string) int {
	return len(allocation.FindAllStringIndex(code, -1))
}

// Analyze derives the full profile of code.
func Analyze(code string) Profile {
	p := Profile{
		Cyclomatic:  Cyclomatic(code),
		Cognitive:   Cognitive(code),
		Recursive:   IsRecursive(code),
		Sorts:       strings.Contains(code, "sort"),
		Allocations: Allocations(code),
	}
	p.LoopDepth, p.Loops = LoopDepth(code)

	switch {
	case p.Recursive:
		p.Time = Exponential
	case p.LoopDepth >= 3:
		p.Time = Cubic
	case p.LoopDepth == 2:
		p.Time = Quadratic
	case p.Sorts:
		p.Time = Linearithmic
	case p.Loops > 0:
		p.Time = Linear
	default:
		p.Time = Constant
	}
	p.TimeLabel = p.Time.TimeLabel()

	switch {
	case p.Recursive:
		p.SpaceLabel = SpaceRecursive
	case p.Allocations > 3:
		p.SpaceLabel = SpaceMultiple
	case p.Allocations > 0:
		p.SpaceLabel = SpaceDynamic
	default:
		p.SpaceLabel = SpaceConstant
	}
	return p
}

// SizeReduction returns the percentage by which optimized is shorter than
// original. Empty originals yield 0.
func SizeReduction(original, optimized string) float64 {
	n := utf8.RuneCountInString(original)
	if n == 0 {
		return 0
	}
	return float64(n-utf8.RuneCountInString(optimized)) / float64(n) * 100
}

// Estimate compares the two versions of the code. Labels describe the
// optimized code; both percentages are clamped at zero.
func Estimate(original, optimized string) *model.PerformanceEstimate {
	delta := SizeReduction(original, optimized)
	speedUp := float64(10*(Cyclomatic(original)-Cyclomatic(optimized))) + delta
	p := Analyze(optimized)
	return &model.PerformanceEstimate{
		TimeComplexity:     p.TimeLabel,
		SpaceComplexity:    p.SpaceLabel,
		EstimatedSpeedUp:   max(0, speedUp),
		MemoryOptimization: max(0, delta),
	}
}
