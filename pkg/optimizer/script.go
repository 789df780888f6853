package optimizer

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	indexedFor = regexp.MustCompile(`for\s*\(\s*(?:let|var)\s+(\w+)\s*=\s*0\s*;\s*(\w+)\s*<\s*(\w+)\.length\s*;\s*(\w+)\+\+\s*\)\s*\{([^{}]*)\}`)
	guardedGet = regexp.MustCompile(`\b(\w+)\s*&&\s*(\w+)\.(\w+)`)
	orDefault  = regexp.MustCompile(`(?m)(=|\breturn)(\s*)(\w+)\s*\|\|\s*([^|&\s;,(){}]+)[ \t]*([;,)]|$)`)
	concat     = regexp.MustCompile(`(['"])([^'"\n]+)(['"])\s*\+\s*(\w+)\s*\+\s*(['"])([^'"\n]+)(['"])`)
	pushLoop   = regexp.MustCompile(`(const|let)\s+(\w+)\s*=\s*\[\]\s*;\s*for\s*\(\s*(?:const|let|var)\s+(\w+)\s+of\s+(\w+)\s*\)\s*\{\s*(\w+)\.push\(([^()]*(?:\([^()]*\)[^()]*)*)\)\s*;?\s*\}`)
	expensive  = regexp.MustCompile(`(?m)^([ \t]*)const\s+(\w+)\s*=\s*([^;\n]*\.(?:map|filter|reduce|sort)\([^;\n]*);`)

	identifier  = regexp.MustCompile(`[A-Za-z_$][\w$]*`)
	stringLit   = regexp.MustCompile("'[^'\\n]*'|\"[^\"\\n]*\"|`[^`]*`")
	arrowParams = regexp.MustCompile(`(?:\(([^()]*)\)|\b(\w+))\s*=>`)
	localDecl   = regexp.MustCompile(`\b(?:const|let|var)\s+(\w+)`)
	setter      = regexp.MustCompile(`^set[A-Z]`)
)

var scriptTransforms = []transform{
	once("Converted for loop to for...of for better readability", forOf),
	once("Applied optional chaining for null-safe property access", optionalChaining),
	once("Used nullish coalescing operator", nullishCoalescing),
	once("Converted string concatenation to template literals", templateLiterals),
	once("Converted imperative loop to functional array method", mapLoops),
	once("Added memoization for expensive operations", memoize),
}

func forOf(code string) (string, bool) {
	return replaceEach(code, indexedFor, func(m []int) (string, bool) {
		idx, arr, body := sub(code, m, 1), sub(code, m, 3), sub(code, m, 5)
		if sub(code, m, 2) != idx || sub(code, m, 4) != idx {
			return "", false
		}
		access := arr + "[" + idx + "]"
		if !strings.Contains(body, access) {
			return "", false
		}
		item := singular(arr)
		body = strings.ReplaceAll(body, access, item)
		if wordIn(idx, body) {
			return "", false
		}
		return fmt.Sprintf("for (const %s of %s) {%s}", item, arr, body), true
	})
}

func optionalChaining(code string) (string, bool) {
	return replaceEach(code, guardedGet, func(m []int) (string, bool) {
		if sub(code, m, 1) != sub(code, m, 2) {
			return "", false
		}
		return sub(code, m, 1) + "?." + sub(code, m, 3), true
	})
}

// nullishCoalescing only rewrites `x || default` on the right of an
// assignment or a return, where the default is a single token.
func nullishCoalescing(code string) (string, bool) {
	return replaceEach(code, orDefault, func(m []int) (string, bool) {
		if sub(code, m, 1) == "=" && m[0] > 0 && strings.ContainsRune("=!<>", rune(code[m[0]-1])) {
			return "", false
		}
		return sub(code, m, 1) + sub(code, m, 2) + sub(code, m, 3) + " ?? " + sub(code, m, 4) + sub(code, m, 5), true
	})
}

func templateLiterals(code string) (string, bool) {
	return replaceEach(code, concat, func(m []int) (string, bool) {
		if sub(code, m, 1) != sub(code, m, 3) || sub(code, m, 5) != sub(code, m, 7) {
			return "", false
		}
		head, tail := sub(code, m, 2), sub(code, m, 6)
		if strings.ContainsAny(head+tail, "`") || strings.Contains(head+tail, "${") {
			return "", false
		}
		return "`" + head + "${" + sub(code, m, 4) + "}" + tail + "`", true
	})
}

func mapLoops(code string) (string, bool) {
	return replaceEach(code, pushLoop, func(m []int) (string, bool) {
		acc, item, src, expr := sub(code, m, 2), sub(code, m, 3), sub(code, m, 4), strings.TrimSpace(sub(code, m, 6))
		if sub(code, m, 5) != acc || wordIn(acc, expr) || expr == "" {
			return "", false
		}
		return fmt.Sprintf("%s %s = %s.map((%s) => %s);", sub(code, m, 1), acc, src, item, expr), true
	})
}

func memoize(code string) (string, bool) {
	if !strings.Contains(code, "React") || strings.Contains(code, "useMemo") {
		return code, false
	}
	return replaceEach(code, expensive, func(m []int) (string, bool) {
		expr := strings.TrimSpace(sub(code, m, 3))
		deps := dependencies(expr)
		return fmt.Sprintf("%sconst %s = useMemo(() => %s, [%s]);", sub(code, m, 1), sub(code, m, 2), expr, strings.Join(deps, ", ")), true
	})
}

var notDependencies = map[string]bool{
	"const": true, "let": true, "var": true, "function": true, "return": true,
	"if": true, "else": true, "for": true, "of": true, "in": true, "new": true,
	"true": true, "false": true, "null": true, "undefined": true, "this": true,
	"typeof": true, "await": true, "async": true,
	"console": true, "window": true, "document": true, "Math": true, "JSON": true,
}

// dependencies lists the free identifiers of a JS expression or block in
// order of first use: property names, arrow parameters, local declarations,
// state setters and well-known globals are left out.
func dependencies(body string) []string {
	body = stringLit.ReplaceAllString(body, `""`)

	skip := map[string]bool{}
	for _, m := range arrowParams.FindAllStringSubmatch(body, -1) {
		params := m[2]
		if params == "" {
			params = m[1]
		}
		for _, p := range strings.Split(params, ",") {
			p, _, _ = strings.Cut(p, "=")
			skip[strings.TrimSpace(p)] = true
		}
	}
	for _, m := range localDecl.FindAllStringSubmatch(body, -1) {
		skip[m[1]] = true
	}

	var deps []string
	seen := map[string]bool{}
	for _, loc := range identifier.FindAllStringIndex(body, -1) {
		name := body[loc[0]:loc[1]]
		if loc[0] > 0 && strings.ContainsRune(".0123456789", rune(body[loc[0]-1])) {
			continue
		}
		if seen[name] || skip[name] || notDependencies[name] || setter.MatchString(name) {
			continue
		}
		seen[name] = true
		deps = append(deps, name)
	}
	return deps
}

func wordIn(word, s string) bool {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`).MatchString(s)
}
