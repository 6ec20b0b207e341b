// Package report renders a complexity analysis in the supported output
// formats. The text format is the tool's primary product and its layout is
// a compatibility contract: byte-identical output for identical input.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rkoval/rustcx/pkg/analyzer/complexity"
	toon "github.com/toon-format/toon-go"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatTOON     Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	case "table":
		return FormatTable
	case "toon":
		return FormatTOON
	default:
		return FormatText
	}
}

// Formatter writes a rendered analysis to stdout or a file.
type Formatter struct {
	format Format
	writer io.Writer
	file   *os.File
}

// NewFormatter creates a formatter. If output is non-empty the report is
// written to that file instead of stdout.
func NewFormatter(format Format, output string) (*Formatter, error) {
	var writer io.Writer = os.Stdout
	var file *os.File

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		writer = f
		file = f
	}

	return &Formatter{
		format: format,
		writer: writer,
		file:   file,
	}, nil
}

// Close closes the formatter's writer if it's a file.
func (f *Formatter) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// Writer returns the underlying writer.
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// Format returns the configured format.
func (f *Formatter) Format() Format {
	return f.format
}

// Output renders the analysis in the configured format.
func (f *Formatter) Output(a *complexity.Analysis) error {
	return Render(f.writer, f.format, a)
}

// Render writes the analysis to w in the requested format.
func Render(w io.Writer, format Format, a *complexity.Analysis) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, a)
	case FormatMarkdown:
		return renderMarkdown(w, a)
	case FormatTable:
		return renderTable(w, a)
	case FormatTOON:
		return renderTOON(w, a)
	default:
		return RenderText(w, a)
	}
}

// noIssuesLine is printed when nothing is flagged anywhere.
const noIssuesLine = "No complexity issues found in any Rust files."

// headerLine opens the flagged-function report.
const headerLine = "RUST CODE COMPLEXITY ANALYSIS REPORT"

// RenderText writes the plain-text report.
func RenderText(w io.Writer, a *complexity.Analysis) error {
	if a.Summary.FlaggedFunctions == 0 {
		_, err := fmt.Fprintln(w, noIssuesLine)
		return err
	}

	fmt.Fprintln(w, headerLine)
	fmt.Fprintln(w, strings.Repeat("=", 50))

	for _, file := range a.Files {
		header := "File: " + file.Path
		fmt.Fprintf(w, "\n%s\n", header)
		fmt.Fprintln(w, strings.Repeat("-", utf8.RuneCountInString(header)))

		for _, fn := range file.Functions {
			fmt.Fprintf(w, "  Function: %s (lines %d-%d)\n", fn.Name, fn.StartLine, fn.EndLine)
			fmt.Fprintf(w, "    Lines: %d, Max Nesting: %d, Complexity: %d\n",
				fn.Metrics.Lines, fn.Metrics.MaxNesting, fn.Metrics.Cyclomatic)
			for _, problem := range fn.Problems {
				fmt.Fprintf(w, "    ⚠️  %s\n", problem)
			}
			fmt.Fprintln(w)
		}
	}

	_, err := fmt.Fprintf(w, "Summary: Found %d functions with complexity issues across %d files.\n",
		a.Summary.FlaggedFunctions, a.Summary.FlaggedFiles)
	return err
}

func renderJSON(w io.Writer, a *complexity.Analysis) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(a)
}

func renderTOON(w io.Writer, a *complexity.Analysis) error {
	out, err := toon.Marshal(a, toon.WithIndent(2))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// issueRows flattens flagged functions into table rows.
func issueRows(a *complexity.Analysis) [][]string {
	var rows [][]string
	for _, file := range a.Files {
		for _, fn := range file.Functions {
			rows = append(rows, []string{
				file.Path,
				fn.Name,
				fmt.Sprintf("%d-%d", fn.StartLine, fn.EndLine),
				fmt.Sprintf("%d", fn.Metrics.Lines),
				fmt.Sprintf("%d", fn.Metrics.MaxNesting),
				fmt.Sprintf("%d", fn.Metrics.Cyclomatic),
				strings.Join(fn.Problems, "; "),
			})
		}
	}
	return rows
}

var issueHeaders = []string{"File", "Function", "Span", "Lines", "Nesting", "Complexity", "Issues"}

func renderMarkdown(w io.Writer, a *complexity.Analysis) error {
	fmt.Fprintf(w, "## Rust Complexity Report\n\n")

	if a.Summary.FlaggedFunctions == 0 {
		fmt.Fprintln(w, noIssuesLine)
		return nil
	}

	fmt.Fprintf(w, "| %s |\n", strings.Join(issueHeaders, " | "))

	seps := make([]string, len(issueHeaders))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range issueRows(a) {
		fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}

	fmt.Fprintln(w)
	_, err := fmt.Fprintf(w, "Found %d functions with complexity issues across %d files.\n",
		a.Summary.FlaggedFunctions, a.Summary.FlaggedFiles)
	return err
}

func renderTable(w io.Writer, a *complexity.Analysis) error {
	if a.Summary.FlaggedFunctions == 0 {
		_, err := fmt.Fprintln(w, noIssuesLine)
		return err
	}

	fmt.Fprintln(w, headerLine)
	fmt.Fprintln(w, strings.Repeat("=", len(headerLine)))
	fmt.Fprintln(w)

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Footer: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header(issueHeaders)
	for _, row := range issueRows(a) {
		table.Append(row)
	}
	table.Render()

	fmt.Fprintln(w)
	_, err := fmt.Fprintf(w, "Summary: Found %d functions with complexity issues across %d files.\n",
		a.Summary.FlaggedFunctions, a.Summary.FlaggedFiles)
	return err
}
