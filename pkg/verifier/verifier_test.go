package verifier

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/coderabbit-agent/pkg/model"
	"github.com/helmcode/coderabbit-agent/pkg/rules"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

const wellFormed = `/** Loads a resource. */
async function load(url) {
  try {
    const res = await fetch(url);
    return res;
  } catch (err) {
    throw err;
  }
}`

func TestVerifyPerfectScoreAlwaysPasses(t *testing.T) {
	require.InDelta(t, 1.0, QualityScore(wellFormed), 1e-9)

	v := New(WithSeed(42))
	res := v.Verify(context.Background(), model.Request{Code: wellFormed, Language: "javascript"})

	assert.True(t, res.Passed)
	assert.Equal(t, 4, res.TotalTests)
	assert.Equal(t, 4, res.TestsPassed)
	assert.Empty(t, res.FailedTests)
	assert.Equal(t, 100, res.Coverage)
}

func TestVerifyFailuresAreNamedBySuite(t *testing.T) {
	code := "var x = 1; // TODO any\nfunction f(a) { console.log(a); }"
	require.InDelta(t, 0.5, QualityScore(code), 1e-9)

	v := New(WithRand(fixedRand(0.99)))
	res := v.Verify(context.Background(), model.Request{Code: code, Language: "js"})

	assert.False(t, res.Passed)
	assert.Zero(t, res.TestsPassed)
	assert.Equal(t, res.TotalTests, res.TestsPassed+len(res.FailedTests))
	assert.Contains(t, res.FailedTests, "f Tests: f should exist")
	assert.Contains(t, res.FailedTests, "f Tests: f should handle edge cases")
}

func TestVerifySameSeedSameOutcome(t *testing.T) {
	code := "function a(x) { return 1; }\nfunction b(list) { return [list]; }"
	req := model.Request{Code: code, Language: "javascript"}

	first := New(WithSeed(7)).Verify(context.Background(), req)
	second := New(WithSeed(7)).Verify(context.Background(), req)
	assert.Equal(t, first, second)
	assert.Equal(t, first.TotalTests, first.TestsPassed+len(first.FailedTests))
	assert.Equal(t, first.Passed, len(first.FailedTests) == 0)
}

func TestVerifyEmptyCode(t *testing.T) {
	res := New().Verify(context.Background(), model.Request{Code: "", Language: "python"})
	assert.True(t, res.Passed)
	assert.Zero(t, res.TotalTests)
	assert.Equal(t, 100, res.Coverage)
}

func TestVerifyCancelledContextMarksTestsNotRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(WithSeed(1)).Verify(ctx, model.Request{Code: wellFormed, Language: "javascript"})
	assert.False(t, res.Passed)
	assert.Equal(t, 4, res.TotalTests)
	require.Len(t, res.FailedTests, 4)
	for _, name := range res.FailedTests {
		assert.True(t, strings.HasSuffix(name, "(not run: context canceled)"), name)
	}
}

func TestDetectTestsJavaScript(t *testing.T) {
	code := "describe('math', () => {\n  it('adds', () => {\n    expect(add(1, 2)).toBe(3);\n  });\n});"
	suites := DetectTests(code, rules.JavaScript)
	require.Len(t, suites, 3)
	assert.Equal(t, "adds", suites[0].Name)
	assert.Equal(t, "math", suites[1].Name)
	assert.Equal(t, "Unknown test", suites[2].Name)
	assert.Equal(t, "Detected test", suites[0].Tests[0].Name)

	res := New(WithSeed(3)).Verify(context.Background(), model.Request{Code: code, Language: "javascript"})
	assert.Equal(t, 3, res.TotalTests)
	assert.Equal(t, 100, res.Coverage)
}

func TestCoverageCountsNamedFunctions(t *testing.T) {
	code := "function add(a, b) { return a + b; }\nfunction sub(a, b) { return a - b; }\nexpect(add(1, 2)).toBe(3);"
	suites := DetectTests(code, rules.JavaScript)
	require.Len(t, suites, 1)
	assert.Equal(t, 50, Coverage(code, rules.JavaScript, suites))

	res := New(WithSeed(9)).Verify(context.Background(), model.Request{Code: code, Language: "javascript"})
	assert.Equal(t, 1, res.TotalTests)
	assert.Equal(t, 50, res.Coverage)
}

func TestDetectTestsPython(t *testing.T) {
	code := "def test_add():\n    assert add(1, 2) == 3"
	suites := DetectTests(code, rules.Python)
	require.Len(t, suites, 2)
	assert.Equal(t, "test_add", suites[0].Name)
	assert.Equal(t, 100, Coverage(code, rules.Python, suites))
}

func TestDetectTestsJava(t *testing.T) {
	code := "@Test\nvoid adds() {\n  assertEquals(3, add(1, 2));\n}"
	suites := DetectTests(code, rules.Java)
	require.Len(t, suites, 2)
	assert.Equal(t, "Unknown test", suites[0].Name)
}

func TestExtractFunctions(t *testing.T) {
	js := ExtractFunctions("function add(a, b = 1) {\n  return a + b;\n}\nconst isEven = (n) => {\n  return n % 2 === 0;\n};\nconst greet = name => 'hi ' + name;", rules.JavaScript)
	require.Len(t, js, 3)
	assert.Equal(t, Function{Name: "add", Parameters: []string{"a", "b"}}, js[0])
	assert.Equal(t, []string{"n"}, js[1].Parameters)
	assert.Equal(t, "greet", js[2].Name)
	assert.Equal(t, []string{"name"}, js[2].Parameters)

	py := ExtractFunctions("def area(self, width: int, height=2) -> int:\n    return width * height\n\ndef ok():\n    return True", rules.Python)
	require.Len(t, py, 2)
	assert.Equal(t, Function{Name: "area", Parameters: []string{"width", "height"}, ReturnType: "int"}, py[0])
	assert.Equal(t, "bool", py[1].ReturnType)
	assert.Empty(t, py[1].Parameters)

	java := ExtractFunctions("public static int sum(int a, int b) {\n  return a + b;\n}\nprivate void reset() {\n  if (x) {\n  }\n}", rules.Java)
	require.Len(t, java, 2)
	assert.Equal(t, Function{Name: "sum", Parameters: []string{"a", "b"}, ReturnType: "int"}, java[0])
	assert.Equal(t, "reset", java[1].Name)
	assert.Empty(t, java[1].ReturnType)

	assert.Empty(t, ExtractFunctions("anything", rules.Generic))
}

func TestSynthesizeTests(t *testing.T) {
	code := "function isValid(name) {\n  return true;\n}\nfunction reset() {}"
	suites := SynthesizeTests(code, rules.JavaScript)
	require.Len(t, suites, 3)

	var names []string
	for _, tc := range suites[0].Tests {
		names = append(names, tc.Name)
	}
	assert.Equal(t, []string{
		"isValid should exist",
		"isValid should handle valid inputs",
		"isValid should handle invalid inputs",
		"isValid should return boolean",
		"isValid should handle edge cases",
	}, names)
	assert.Equal(t, []any{"test_string"}, suites[0].Tests[1].Input)
	assert.Len(t, suites[0].Tests[4].Input, 1)
	assert.Len(t, suites[0].Tests[4].Input[0], 9)

	assert.Len(t, suites[1].Tests, 2, "no parameters and no inferred return type")
	assert.Equal(t, "Integration Tests", suites[2].Name)
}

func TestFramework(t *testing.T) {
	assert.Equal(t, "jest", Framework("typescript"))
	assert.Equal(t, "jest + react-testing-library", Framework("tsx"))
	assert.Equal(t, "pytest", Framework("python"))
	assert.Equal(t, "junit", Framework("java"))
	assert.Empty(t, Framework("cobol"))
}

func TestQualityScoreBounds(t *testing.T) {
	assert.InDelta(t, 0.8, QualityScore(""), 1e-9)
	assert.InDelta(t, 0.75, PassProbability(0.5), 1e-9)
	low := "var a; var b; TODO any console.log"
	assert.GreaterOrEqual(t, QualityScore(low), 0.0)
}
