// Package locator finds Rust function definitions and the textual span of
// their bodies. Detection is line-oriented: a signature regex identifies
// candidate definitions and a brace-balancing scan determines where each
// body ends. Braces inside string literals and comments are counted like any
// other brace; the resulting spans are approximate by construction.
package locator

import (
	"regexp"
	"strings"
)

// Span is the inclusive line range attributed to one detected function body.
// Lines are 1-based.
type Span struct {
	Name      string `json:"name" toon:"name"`
	StartLine int    `json:"start_line" toon:"start_line"`
	EndLine   int    `json:"end_line" toon:"end_line"`
}

// signatureRe matches a Rust function definition line: optional leading
// whitespace, optional `pub`, optional `async`, then `fn name`. Qualified
// visibility forms such as pub(crate) are not recognized.
var signatureRe = regexp.MustCompile(`^(\s*)(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`)

// SplitLines splits file content into lines on bare newlines. A trailing
// newline yields a final empty line, which keeps line numbering consistent
// with the span scan.
func SplitLines(content string) []string {
	return strings.Split(content, "\n")
}

// Locate scans lines for function definitions and returns their spans in
// source order. Spans never overlap: after each detected body (or bodiless
// declaration) the scan resumes past the determined end line.
//
// For each signature line the scan looks forward for the first line
// containing an opening brace and seeds the brace counter with that line's
// net brace count. A semicolon before any opening brace means a declaration
// without a body, which contributes no span. From the line after the opening
// line the counter accumulates per-line net braces until it returns to zero;
// that line closes the span. If the file ends first, the span is truncated
// at the last line.
func Locate(lines []string) []Span {
	var spans []Span

	i := 0
	for i < len(lines) {
		m := signatureRe.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}

		name := m[2]
		start := i
		end := start

		braces := 0
		foundOpening := false
		for j := i; j < len(lines); j++ {
			if strings.Contains(lines[j], "{") {
				foundOpening = true
				braces += strings.Count(lines[j], "{")
				braces -= strings.Count(lines[j], "}")
				end = j
				break
			} else if strings.Contains(lines[j], ";") {
				break
			}
		}

		if foundOpening {
			// The balance check starts on the line after the opening
			// line, even when the opening line already closed its own
			// braces. Single-line bodies therefore extend one line past
			// the closing brace unless the file ends first.
			for j := end + 1; j < len(lines); j++ {
				braces += strings.Count(lines[j], "{")
				braces -= strings.Count(lines[j], "}")
				end = j
				if braces == 0 {
					break
				}
			}

			spans = append(spans, Span{
				Name:      name,
				StartLine: start + 1,
				EndLine:   end + 1,
			})
		}

		i = end + 1
	}

	return spans
}
