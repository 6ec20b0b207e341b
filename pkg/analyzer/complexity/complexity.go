// Package complexity scores located function spans with three line-oriented
// metrics (length, maximum nesting depth, approximate cyclomatic complexity)
// and flags functions that exceed fixed thresholds.
//
// The metrics are deliberate heuristics over raw text. Keywords and
// operators inside string literals count; an inline trailing comment does
// not stop the code before it from counting; a control keyword on a
// brace-less line and the brace it opens on a later line can both bump the
// nesting counter. Changing any of that changes reported numbers, so the
// rules are kept bit-for-bit stable and pinned by tests.
package complexity

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rkoval/rustcx/internal/fileproc"
	"github.com/rkoval/rustcx/pkg/analyzer"
	"github.com/rkoval/rustcx/pkg/analyzer/locator"
	"github.com/rkoval/rustcx/pkg/source"
	"github.com/rkoval/rustcx/pkg/stats"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// nestingKeywordRe matches control-flow introducer keywords used as a
// textual proxy for block nesting.
var nestingKeywordRe = regexp.MustCompile(`\b(if|for|while|loop|match)\b`)

// decisionTokens are counted per occurrence on each non-comment line.
// The overlap between entries ("if " inside "else if", "map_or" matching
// ".unwrap_or_else" via ".unwrap_or") is intentional.
var decisionTokens = []string{
	"if ",
	" if ",
	"else if",
	"while ",
	"for ",
	"loop ",
	"match ",
	"&&",
	"||",
	"?",
	".unwrap_or",
	".map_or",
}

// Score computes metrics for a span within the file's lines. It is a pure
// function: same lines and span, same metrics.
func Score(lines []string, span locator.Span) Metrics {
	body := spanLines(lines, span)
	lineCount, maxNesting := countLinesAndNesting(body)
	return Metrics{
		Lines:      lineCount,
		MaxNesting: maxNesting,
		Cyclomatic: estimateCyclomatic(body),
	}
}

// spanLines slices the 1-based inclusive span out of lines.
func spanLines(lines []string, span locator.Span) []string {
	start := span.StartLine - 1
	end := span.EndLine
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}
	return lines[start:end]
}

// countLinesAndNesting returns the line count and the maximum nesting depth
// seen while scanning the body. Depth rises by one for a control keyword on
// a line without an opening brace, plus the line's net brace count.
func countLinesAndNesting(body []string) (int, int) {
	maxDepth := 0
	depth := 0

	for _, line := range body {
		opening := strings.Count(line, "{")
		closing := strings.Count(line, "}")

		if nestingKeywordRe.MatchString(line) && !strings.HasPrefix(strings.TrimSpace(line), "//") {
			if !strings.Contains(line, "{") {
				depth++
			}
		}

		depth += opening
		depth -= closing
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	return len(body), maxDepth
}

// estimateCyclomatic counts decision points, starting from 1 for the
// baseline path. Tokens are occurrence-counted per trimmed line; lines
// whose trimmed content starts with // are skipped entirely. A line
// containing a match-arm marker (=>) adds exactly one, no matter how many
// arms share the line.
func estimateCyclomatic(body []string) int {
	complexity := 1

	for _, raw := range body {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "//") {
			continue
		}

		for _, token := range decisionTokens {
			complexity += strings.Count(line, token)
		}

		if strings.Contains(line, "=>") {
			complexity++
		}
	}

	return complexity
}

// Violations returns the threshold messages for m, in check order. An empty
// result means the function is not flagged.
func (t Thresholds) Violations(m Metrics) []string {
	var problems []string
	if m.Lines > t.MaxLines {
		problems = append(problems, fmt.Sprintf("Long function: %d lines", m.Lines))
	}
	if m.MaxNesting > t.MaxNesting {
		problems = append(problems, fmt.Sprintf("Deep nesting: %d levels", m.MaxNesting))
	}
	if m.Cyclomatic > t.MaxCyclomatic {
		problems = append(problems, fmt.Sprintf("High cyclomatic complexity: %d", m.Cyclomatic))
	}
	return problems
}

// Analyzer runs the locator and scorer over many files.
type Analyzer struct {
	thresholds Thresholds
	src        source.ContentSource
	maxWorkers int
	onError    fileproc.ErrorFunc
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThresholds overrides the default flagging thresholds.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithSource sets where file content is read from.
func WithSource(src source.ContentSource) Option {
	return func(a *Analyzer) {
		a.src = src
	}
}

// WithWorkers sets the parallel worker count (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.maxWorkers = n
	}
}

// WithErrorFunc sets a callback invoked for each file that cannot be read.
// Such files are skipped; the run continues.
func WithErrorFunc(fn fileproc.ErrorFunc) Option {
	return func(a *Analyzer) {
		a.onError = fn
	}
}

// New creates a complexity analyzer with default options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: DefaultThresholds(),
		src:        source.NewFilesystem(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Thresholds returns the analyzer's active thresholds.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// fileOutcome carries a file's flagged functions plus the metrics of every
// scanned function, flagged or not, for summary statistics.
type fileOutcome struct {
	result  FileResult
	scanned []Metrics
}

func (a *Analyzer) analyzeFile(path string) (fileOutcome, error) {
	content, err := a.src.Read(path)
	if err != nil {
		return fileOutcome{}, err
	}

	lines := locator.SplitLines(string(content))
	out := fileOutcome{result: FileResult{Path: path}}

	for _, span := range locator.Locate(lines) {
		m := Score(lines, span)
		out.scanned = append(out.scanned, m)

		problems := a.thresholds.Violations(m)
		if len(problems) == 0 {
			continue
		}
		out.result.Functions = append(out.result.Functions, FunctionIssue{
			Name:      span.Name,
			StartLine: span.StartLine,
			EndLine:   span.EndLine,
			Metrics:   m,
			Problems:  problems,
		})
	}

	return out, nil
}

// AnalyzeFile analyzes a single file and returns its flagged functions.
func (a *Analyzer) AnalyzeFile(path string) (*FileResult, error) {
	out, err := a.analyzeFile(path)
	if err != nil {
		return nil, err
	}
	return &out.result, nil
}

// Analyze runs the locator and scorer over files in parallel. The report
// order always matches the input order. Unreadable files are reported via
// the error callback and skipped; they never abort the run. Progress is
// tracked via context using analyzer.WithTracker.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	outcomes, _ := fileproc.MapFilesIndexed(ctx, files, a.maxWorkers, a.analyzeFile, a.onError)
	return buildAnalysis(outcomes), nil
}

// buildAnalysis folds per-file outcomes into the run result.
func buildAnalysis(outcomes []fileOutcome) *Analysis {
	analysis := &Analysis{Files: make([]FileResult, 0, len(outcomes))}

	var cyclomatics, lineCounts []float64

	for _, out := range outcomes {
		analysis.Summary.ScannedFiles++
		analysis.Summary.ScannedFunctions += len(out.scanned)

		for _, m := range out.scanned {
			cyclomatics = append(cyclomatics, float64(m.Cyclomatic))
			lineCounts = append(lineCounts, float64(m.Lines))
			if m.Cyclomatic > analysis.Summary.MaxCyclomatic {
				analysis.Summary.MaxCyclomatic = m.Cyclomatic
			}
			if m.MaxNesting > analysis.Summary.MaxNesting {
				analysis.Summary.MaxNesting = m.MaxNesting
			}
		}

		if len(out.result.Functions) == 0 {
			continue
		}
		analysis.Files = append(analysis.Files, out.result)
		analysis.Summary.FlaggedFunctions += len(out.result.Functions)
	}

	analysis.Summary.FlaggedFiles = len(analysis.Files)
	analysis.Summary.P50Cyclomatic = stats.Quantile(cyclomatics, 0.5)
	analysis.Summary.P90Cyclomatic = stats.Quantile(cyclomatics, 0.9)
	analysis.Summary.MeanLines = stats.Mean(lineCounts)

	return analysis
}
