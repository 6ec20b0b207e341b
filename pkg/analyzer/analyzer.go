// Package analyzer defines the contract shared by file-based analyzers and
// the progress plumbing used to report on long scans.
package analyzer

import "context"

// FileAnalyzer is implemented by analyzers that process a collection of
// files and produce a single result value.
type FileAnalyzer[T any] interface {
	// Analyze processes files and returns the analysis result. The context
	// carries cancellation and, optionally, a progress Tracker.
	Analyze(ctx context.Context, files []string) (T, error)
}
