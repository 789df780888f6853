package optimizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

func TestHygiene(t *testing.T) {
	out, applied := Hygiene("a  \r\nb\n\n\n\nc")
	assert.Equal(t, "a\nb\n\nc\n", out)
	assert.Equal(t, []string{
		"Normalized line endings",
		"Removed trailing whitespace",
		"Normalized empty lines",
		"Added newline at end of file",
	}, applied)

	again, applied := Hygiene(out)
	assert.Equal(t, out, again)
	assert.Empty(t, applied)

	out, applied = Hygiene("x\n\n")
	assert.Equal(t, "x\n", out)
	assert.Equal(t, []string{"Removed extra newlines at end of file"}, applied)
}

func TestHygieneIsStable(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"def f():  \n\n\n\n    return 1\t\n\n",
		"function a() {\r\n  return 1;   \r\n}\r\n\r\n\r\n",
	}
	for _, in := range inputs {
		once, _ := Hygiene(in)
		twice, applied := Hygiene(once)
		assert.Equal(t, once, twice, "input %q", in)
		assert.Empty(t, applied, "input %q", in)
	}
}

func TestReindent(t *testing.T) {
	in := "function f() {\nif (x) {\nreturn 1;\n}\n   \n}"
	assert.Equal(t, "function f() {\n  if (x) {\n    return 1;\n  }\n\n}", Reindent(in, 2))
	assert.Equal(t, "class A {\n    int x;\n}", Reindent("class A {\nint x;\n}", 4))
	assert.Equal(t, "}\nx", Reindent("}\nx", 2), "never below zero")
}

func TestScriptTransforms(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) (string, bool)
		in   string
		want string
	}{
		{
			name: "for...of",
			fn:   forOf,
			in:   "for (let i = 0; i < items.length; i++) {\n  total += items[i];\n}",
			want: "for (const item of items) {\n  total += item;\n}",
		},
		{
			name: "optional chaining",
			fn:   optionalChaining,
			in:   "const n = user && user.name;",
			want: "const n = user?.name;",
		},
		{
			name: "nullish coalescing",
			fn:   nullishCoalescing,
			in:   "const name = input || 'guest';",
			want: "const name = input ?? 'guest';",
		},
		{
			name: "template literal",
			fn:   templateLiterals,
			in:   `const msg = "Hello " + name + "!";`,
			want: "const msg = `Hello ${name}!`;",
		},
		{
			name: "push loop to map",
			fn:   mapLoops,
			in:   "const doubled = [];\nfor (const n of nums) {\n  doubled.push(n * 2);\n}",
			want: "const doubled = nums.map((n) => n * 2);",
		},
		{
			name: "memoization",
			fn:   memoize,
			in:   "import React from 'react';\nconst visible = items.filter((i) => i.active);",
			want: "import React from 'react';\nconst visible = useMemo(() => items.filter((i) => i.active), [items]);",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScriptTransformsLeaveUnsafeCodeAlone(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) (string, bool)
		in   string
	}{
		{"index still used", forOf, "for (let i = 0; i < items.length; i++) {\n  log(i, items[i]);\n}"},
		{"different guard", optionalChaining, "ok && user.name"},
		{"comparison not assignment", nullishCoalescing, "if (a === b || c) {"},
		{"call default", nullishCoalescing, "return a || fallback(x);"},
		{"mismatched quotes", templateLiterals, `x = "a' + b + 'c"`},
		{"self reference", mapLoops, "const out = [];\nfor (const n of nums) {\n  out.push(out.length + n);\n}"},
		{"no React", memoize, "const visible = items.filter((i) => i.active);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(tt.in)
			assert.False(t, ok)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestReactTransforms(t *testing.T) {
	out, applied := memoComponent("export default function Card(props) {\n  return <div>{props.title}</div>;\n}\n")
	assert.Equal(t, "function Card(props) {\n  return <div>{props.title}</div>;\n}\n\nexport default React.memo(Card);\n", out)
	assert.Equal(t, []string{"Added React.memo to Card component"}, applied)

	out, applied = callbackHandlers("  const handleClick = () => setCount(count + 1);")
	assert.Equal(t, "  const handleClick = useCallback(() => setCount(count + 1), [count]);", out)
	assert.Equal(t, []string{"Wrapped handleClick with useCallback"}, applied)

	out, applied = lazyImports("import UserComponent from './UserComponent';")
	assert.Equal(t, "const UserComponent = React.lazy(() => import('./UserComponent'));", out)
	assert.Equal(t, []string{"Added lazy loading for UserComponent component"}, applied)

	out, ok := effectDependencies("useEffect(() => {\n  document.title = title;\n})")
	assert.True(t, ok)
	assert.Equal(t, "useEffect(() => {\n  document.title = title;\n}, [title])", out)

	_, ok = effectDependencies("useEffect(() => {\n  console.log('mounted');\n})")
	assert.False(t, ok, "nothing to depend on")

	_, applied = memoComponent("export default React.memo(function Card() {})")
	assert.Empty(t, applied)
}

func TestDependencies(t *testing.T) {
	assert.Equal(t, []string{"items", "limit"}, dependencies("items.slice(0, limit).map((x) => x * 2)"))
	assert.Equal(t, []string{"fetchUser", "id"}, dependencies("const res = fetchUser(id); setUser(res);"))
	assert.Empty(t, dependencies("console.log('user id')"))
}

func TestPythonTransforms(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) (string, bool)
		in   string
		want string
	}{
		{
			name: "list comprehension",
			fn:   listComprehensions,
			in:   "squares = []\nfor n in nums:\n    squares.append(n * n)\nprint(squares)\n",
			want: "squares = [n * n for n in nums]\nprint(squares)\n",
		},
		{
			name: "f-string",
			fn:   fStrings,
			in:   `msg = "Hello {}, you are {age}".format(name, age=age)`,
			want: `msg = f"Hello {name}, you are {age}"`,
		},
		{
			name: "f-string with format spec",
			fn:   fStrings,
			in:   `print('{0:.2f}'.format(total))`,
			want: `print(f'{total:.2f}')`,
		},
		{
			name: "enumerate",
			fn:   enumerateLoops,
			in:   "for i in range(len(items)):\n    print(i, items[i])\n",
			want: "for i, item in enumerate(items):\n    print(i, item)\n",
		},
		{
			name: "context manager",
			fn:   contextManagers,
			in:   "f = open('data.txt')\ndata = f.read()\nf.close()\nprint(data)",
			want: "with open('data.txt') as f:\n    data = f.read()\nprint(data)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPythonTransformsLeaveUnsafeCodeAlone(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) (string, bool)
		in   string
	}{
		{"loop body longer than append", listComprehensions, "out = []\nfor n in nums:\n    out.append(n)\n    log(n)\n"},
		{"escaped braces", fStrings, `"{{literal}} {}".format(x)`},
		{"unknown field", fStrings, `"{missing}".format(x)`},
		{"element assigned", enumerateLoops, "for i in range(len(items)):\n    items[i] = 0\n"},
		{"never closed", contextManagers, "f = open('x')\ndata = f.read()\n"},
		{"short module", generators, "def f(xs):\n    return [x for x in xs]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(tt.in)
			assert.False(t, ok)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestGeneratorsOnLargeModules(t *testing.T) {
	code := "def evens(xs):\n    return [x for x in xs if x % 2 == 0]\n" + strings.Repeat("# padding\n", 120)
	out, ok := generators(code)
	require.True(t, ok)
	assert.Contains(t, out, "return (x for x in xs if x % 2 == 0)")
}

func TestOptimizeJavaScript(t *testing.T) {
	in := Input{
		Code:     "var greeting = 'hi';\nlet total = 0;\nfor (var i = 0; i < items.length; i++) {\ntotal += items[i];\n}   \n",
		Language: "javascript",
		Report: &model.Report{
			Defects:    []model.Defect{{Line: 1, Severity: model.SeverityError}},
			Advisories: []model.Advisory{{Line: 1, Severity: model.SeverityWarning}},
		},
		Verification: &model.Verification{Passed: true, TestsPassed: 2, TotalTests: 2},
	}
	res := New().Optimize(in)

	assert.Equal(t, "const greeting = 'hi';\nlet total = 0;\nfor (const item of items) {\n  total += item;\n}\n", res.Code)
	assert.Equal(t, []string{
		"Replaced var with const",
		"Removed trailing whitespace",
		"Converted for loop to for...of for better readability",
		"Fixed 1 code warnings",
		"Resolved 1 errors",
	}, res.Improvements)
	require.NotNil(t, res.Metrics)
	assert.GreaterOrEqual(t, res.Metrics.EstimatedSpeedUp, 0.0)
	assert.GreaterOrEqual(t, res.Metrics.MemoryOptimization, 0.0)
}

func TestOptimizePython(t *testing.T) {
	res := New().Optimize(Input{
		Code:     "def f(xs):\n    out = []\n    for x in xs:\n        out.append(x + 1)\n    return out",
		Language: "py",
	})
	assert.Equal(t, "def f(xs):\n    out = [x + 1 for x in xs]\n    return out\n", res.Code)
	assert.Equal(t, []string{"Added newline at end of file", "Converted loop to list comprehension"}, res.Improvements)
}

func TestOptimizeEmptyAndUnknown(t *testing.T) {
	res := New().Optimize(Input{Code: "", Language: "javascript"})
	assert.Empty(t, res.Code)
	assert.Empty(t, res.Improvements)
	assert.NotNil(t, res.Metrics)

	res = New().Optimize(Input{Code: "x = 1   ", Language: "cobol"})
	assert.Equal(t, "x = 1\n", res.Code)
	assert.Equal(t, []string{"Removed trailing whitespace", "Added newline at end of file"}, res.Improvements)
}

func TestOptimizeIsRepeatable(t *testing.T) {
	in := Input{Code: "var a = 1\nif (a == 2) { b(); }", Language: "js"}
	first := New().Optimize(in)
	second := New().Optimize(in)
	assert.Equal(t, first, second)
}
