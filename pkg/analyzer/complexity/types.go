package complexity

// Metrics holds the three heuristic measurements for one function span.
type Metrics struct {
	Lines      int `json:"lines" toon:"lines"`
	MaxNesting int `json:"max_nesting" toon:"max_nesting"`
	Cyclomatic int `json:"cyclomatic" toon:"cyclomatic"`
}

// FunctionIssue is a flagged function: its span, metrics, and the
// human-readable threshold violations, in check order.
type FunctionIssue struct {
	Name      string   `json:"function" toon:"function"`
	StartLine int      `json:"start_line" toon:"start_line"`
	EndLine   int      `json:"end_line" toon:"end_line"`
	Metrics   Metrics  `json:"metrics" toon:"metrics"`
	Problems  []string `json:"issues" toon:"issues"`
}

// FileResult lists the flagged functions of one file, in source order.
// Files without flagged functions never appear in an Analysis.
type FileResult struct {
	Path      string          `json:"path" toon:"path"`
	Functions []FunctionIssue `json:"functions" toon:"functions"`
}

// Summary aggregates a whole run.
type Summary struct {
	FlaggedFunctions int     `json:"flagged_functions" toon:"flagged_functions"`
	FlaggedFiles     int     `json:"flagged_files" toon:"flagged_files"`
	ScannedFiles     int     `json:"scanned_files" toon:"scanned_files"`
	ScannedFunctions int     `json:"scanned_functions" toon:"scanned_functions"`
	MaxCyclomatic    int     `json:"max_cyclomatic" toon:"max_cyclomatic"`
	MaxNesting       int     `json:"max_nesting" toon:"max_nesting"`
	P50Cyclomatic    float64 `json:"p50_cyclomatic" toon:"p50_cyclomatic"`
	P90Cyclomatic    float64 `json:"p90_cyclomatic" toon:"p90_cyclomatic"`
	MeanLines        float64 `json:"mean_lines" toon:"mean_lines"`
}

// Analysis is the full run result. Files preserves discovery order and
// contains only files with at least one flagged function.
type Analysis struct {
	Files   []FileResult `json:"files" toon:"files"`
	Summary Summary      `json:"summary" toon:"summary"`
}

// Thresholds defines the limits above which a function is flagged.
type Thresholds struct {
	MaxLines      int `json:"max_lines" koanf:"max_lines"`
	MaxNesting    int `json:"max_nesting" koanf:"max_nesting"`
	MaxCyclomatic int `json:"max_cyclomatic" koanf:"max_cyclomatic"`
}

// DefaultThresholds returns the fixed reference limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxLines:      50,
		MaxNesting:    4,
		MaxCyclomatic: 10,
	}
}
