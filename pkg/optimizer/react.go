package optimizer

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	defaultComponent = regexp.MustCompile(`(?m)^export\s+default\s+function\s+([A-Z]\w*)\s*\(`)
	inlineHandler    = regexp.MustCompile(`(?m)^([ \t]*)const\s+((?:handle|on)[A-Z]\w*)\s*=\s*(\([^()]*\)|\w+)\s*=>\s*([^\s{][^\n]*?);?[ \t]*$`)
	componentImport  = regexp.MustCompile(`(?m)^import\s+(\w+)\s+from\s+['"]([^'"\n]+Component)['"];?`)
	bareEffect       = regexp.MustCompile(`useEffect\(\(\)\s*=>\s*\{([^{}]*)\}\s*\)`)
)

var reactTransforms = []transform{
	memoComponent,
	callbackHandlers,
	lazyImports,
	once("Added proper dependency array to useEffect", effectDependencies),
}

// memoComponent wraps the default-exported component in React.memo.
func memoComponent(code string) (string, []string) {
	if strings.Contains(code, "React.memo") {
		return code, nil
	}
	m := defaultComponent.FindStringSubmatchIndex(code)
	if m == nil {
		return code, nil
	}
	name := sub(code, m, 1)
	out := code[:m[0]] + "function " + name + "(" + code[m[1]:]
	out = strings.TrimRight(out, "\n") + fmt.Sprintf("\n\nexport default React.memo(%s);\n", name)
	return out, []string{fmt.Sprintf("Added React.memo to %s component", name)}
}

func callbackHandlers(code string) (string, []string) {
	if strings.Contains(code, "useCallback") {
		return code, nil
	}
	var applied []string
	out, _ := replaceEach(code, inlineHandler, func(m []int) (string, bool) {
		name, params, body := sub(code, m, 2), sub(code, m, 3), strings.TrimSpace(sub(code, m, 4))
		deps := dependencies(params + " => " + body)
		applied = append(applied, fmt.Sprintf("Wrapped %s with useCallback", name))
		return fmt.Sprintf("%sconst %s = useCallback(%s => %s, [%s]);", sub(code, m, 1), name, params, body, strings.Join(deps, ", ")), true
	})
	return out, applied
}

func lazyImports(code string) (string, []string) {
	if strings.Contains(code, "React.lazy") {
		return code, nil
	}
	var applied []string
	out, _ := replaceEach(code, componentImport, func(m []int) (string, bool) {
		name := sub(code, m, 1)
		applied = append(applied, fmt.Sprintf("Added lazy loading for %s component", name))
		return fmt.Sprintf("const %s = React.lazy(() => import('%s'));", name, sub(code, m, 2)), true
	})
	return out, applied
}

func effectDependencies(code string) (string, bool) {
	return replaceEach(code, bareEffect, func(m []int) (string, bool) {
		body := sub(code, m, 1)
		deps := dependencies(body)
		if len(deps) == 0 {
			return "", false
		}
		return fmt.Sprintf("useEffect(() => {%s}, [%s])", body, strings.Join(deps, ", ")), true
	})
}
