package model

import "strings"

// Severity ranks a finding. Critical and error findings are defects,
// warning and info findings are advisories.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Blocking reports whether findings of this severity land in the defect list.
func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityError
}

// Request is the input to every pipeline entry point.
type Request struct {
	Code        string `json:"code" yaml:"code"`
	Language    string `json:"language" yaml:"language"`
	Context     string `json:"context,omitempty" yaml:"context,omitempty"`
	ProjectPath string `json:"project_path,omitempty" yaml:"project_path,omitempty"`
}

// Defect is a blocking finding. Fix, when set, is the full replacement text
// for the 1-based Line.
type Defect struct {
	Line     int      `json:"line" yaml:"line"`
	Column   int      `json:"column,omitempty" yaml:"column,omitempty"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	Fix      string   `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// Advisory is a non-blocking finding.
type Advisory struct {
	Line       int      `json:"line" yaml:"line"`
	Column     int      `json:"column,omitempty" yaml:"column,omitempty"`
	Severity   Severity `json:"severity" yaml:"severity"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Report is the Analyzer's output. FixedCode is empty when no fix was applied.
type Report struct {
	Defects     []Defect   `json:"defects" yaml:"defects"`
	Advisories  []Advisory `json:"advisories" yaml:"advisories"`
	Suggestions []string   `json:"suggestions" yaml:"suggestions"`
	FixedCode   string     `json:"fixed_code,omitempty" yaml:"fixed_code,omitempty"`
}

// HasFixedCode reports whether the auto-fix pass rewrote at least one line.
func (r *Report) HasFixedCode() bool {
	return r != nil && r.FixedCode != ""
}

// Verification summarizes a simulated test run.
type Verification struct {
	Passed      bool     `json:"passed" yaml:"passed"`
	TestsPassed int      `json:"tests_passed" yaml:"tests_passed"`
	TotalTests  int      `json:"total_tests" yaml:"total_tests"`
	Coverage    int      `json:"coverage" yaml:"coverage"`
	FailedTests []string `json:"failed_tests,omitempty" yaml:"failed_tests,omitempty"`
}

// PerformanceEstimate is a heuristic, text-based estimate. The labels come
// from a fixed Big-O ladder and the percentages are never negative.
type PerformanceEstimate struct {
	TimeComplexity     string  `json:"time_complexity" yaml:"time_complexity"`
	SpaceComplexity    string  `json:"space_complexity" yaml:"space_complexity"`
	EstimatedSpeedUp   float64 `json:"estimated_speed_up" yaml:"estimated_speed_up"`
	MemoryOptimization float64 `json:"memory_optimization" yaml:"memory_optimization"`
}

// Optimization is the Optimizer's output.
type Optimization struct {
	Code         string               `json:"code" yaml:"code"`
	Improvements []string             `json:"improvements" yaml:"improvements"`
	Metrics      *PerformanceEstimate `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Result is the combined output of a full pipeline run.
type Result struct {
	ID               string               `json:"id" yaml:"id"`
	Language         string               `json:"language" yaml:"language"`
	OriginalCode     string               `json:"original_code" yaml:"original_code"`
	Report           Report               `json:"debug_report" yaml:"debug_report"`
	Verification     Verification         `json:"test_results" yaml:"test_results"`
	OptimizedCode    string               `json:"optimized_code" yaml:"optimized_code"`
	Improvements     []string             `json:"improvements" yaml:"improvements"`
	PerformanceGains *PerformanceEstimate `json:"performance_gains,omitempty" yaml:"performance_gains,omitempty"`
}

// IsBlank reports whether code has nothing to scan.
func IsBlank(code string) bool {
	return strings.TrimSpace(code) == ""
}
