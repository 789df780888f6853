package metrics

// Complexity is one rung of the Big-O ladder used for labels.
type Complexity int

const (
	Constant Complexity = iota
	Linear
	Linearithmic
	Quadratic
	Cubic
	Exponential
)

var timeLabels = map[Complexity]string{
	Constant:     "O(1) - Constant",
	Linear:       "O(n) - Linear",
	Linearithmic: "O(n log n) - Sorting",
	Quadratic:    "O(n²) - Nested loops",
	Cubic:        "O(n³) - Triple nested loops or deeper",
	Exponential:  "O(2^n) - Recursive",
}

// Space labels. Every allocating shape is linear.
const (
	SpaceConstant  = "O(1) - Constant"
	SpaceRecursive = "O(n) - Recursive call stack"
	SpaceMultiple  = "O(n) - Multiple data structures"
	SpaceDynamic   = "O(n) - Dynamic allocation"
)

// TimeLabel returns the display label of the rung.
func (c Complexity) TimeLabel() string {
	return timeLabels[c]
}

// Profile holds the static counts an estimate is derived from.
type Profile struct {
	Cyclomatic  int        `json:"cyclomatic" yaml:"cyclomatic"`
	Cognitive   float64    `json:"cognitive" yaml:"cognitive"`
	LoopDepth   int        `json:"loop_depth" yaml:"loop_depth"`
	Loops       int        `json:"loops" yaml:"loops"`
	Recursive   bool       `json:"recursive" yaml:"recursive"`
	Sorts       bool       `json:"sorts" yaml:"sorts"`
	Allocations int        `json:"allocations" yaml:"allocations"`
	Time        Complexity `json:"-" yaml:"-"`
	TimeLabel   string     `json:"time_complexity" yaml:"time_complexity"`
	SpaceLabel  string     `json:"space_complexity" yaml:"space_complexity"`
}
