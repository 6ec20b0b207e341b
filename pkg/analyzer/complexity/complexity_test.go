package complexity

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rkoval/rustcx/pkg/analyzer/locator"
	"github.com/rkoval/rustcx/pkg/source"
)

func scoreSource(t *testing.T, src string) Metrics {
	t.Helper()
	lines := locator.SplitLines(src)
	spans := locator.Locate(lines)
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want 1", len(spans))
	}
	return Score(lines, spans[0])
}

// ruler builds a function whose span is exactly n lines: signature line,
// n-2 plain statements, closing brace.
func ruler(n int) string {
	var b strings.Builder
	b.WriteString("fn generated() {\n")
	for i := 0; i < n-2; i++ {
		fmt.Fprintf(&b, "    let v%d = %d;\n", i, i)
	}
	b.WriteString("}\n")
	return b.String()
}

func TestScore_BaselineCyclomatic(t *testing.T) {
	m := scoreSource(t, `fn plain() {
    let x = 1;
    let y = 2;
}
`)
	if m.Cyclomatic != 1 {
		t.Errorf("Cyclomatic = %d, want 1", m.Cyclomatic)
	}
	if m.Lines != 4 {
		t.Errorf("Lines = %d, want 4", m.Lines)
	}
	if m.MaxNesting != 1 {
		t.Errorf("MaxNesting = %d, want 1", m.MaxNesting)
	}
}

func TestScore_DecisionPointOccurrences(t *testing.T) {
	// "if " once, "&&" once, "||" once: 1 + 3 = 4.
	m := scoreSource(t, `fn branchy() {
    if a && b || c {
        x();
    }
}
`)
	if m.Cyclomatic != 4 {
		t.Errorf("Cyclomatic = %d, want 4", m.Cyclomatic)
	}
}

func TestScore_ElseIfCountsTwice(t *testing.T) {
	// "} else if c {" counts "else if", "if ", and " if "; the leading
	// "if a {" adds one more: 1 + 4 = 5.
	m := scoreSource(t, `fn chained() {
    if a {
        x();
    } else if c {
        y();
    }
}
`)
	if m.Cyclomatic != 5 {
		t.Errorf("Cyclomatic = %d, want 5", m.Cyclomatic)
	}
}

func TestScore_QuestionMarkAndCombinators(t *testing.T) {
	// "?" once, ".unwrap_or" once, ".map_or" once: 1 + 3 = 4.
	m := scoreSource(t, `fn fallbacks() {
    let a = read()?;
    let b = lookup().unwrap_or(0);
    let c = find().map_or(0, id);
}
`)
	if m.Cyclomatic != 4 {
		t.Errorf("Cyclomatic = %d, want 4", m.Cyclomatic)
	}
}

func TestScore_MatchArmsCountPerLineNotPerArm(t *testing.T) {
	// "match x {" adds one ("match "); each arm line adds exactly one even
	// when it holds several "=>" tokens.
	m := scoreSource(t, `fn arms() {
    match x {
        A => 1, B => 2,
        C => 3,
        _ => 4,
    }
}
`)
	// 1 base + 1 match + 3 arm lines = 5.
	if m.Cyclomatic != 5 {
		t.Errorf("Cyclomatic = %d, want 5", m.Cyclomatic)
	}
}

func TestScore_CommentOnlyLinesSkipped(t *testing.T) {
	m := scoreSource(t, `fn commented() {
    // if a && b || c { match d }
    let x = 1;
}
`)
	if m.Cyclomatic != 1 {
		t.Errorf("Cyclomatic = %d, want 1", m.Cyclomatic)
	}
}

func TestScore_InlineTrailingCommentStillCounts(t *testing.T) {
	// Comment detection is line-leading only: code before a trailing
	// comment is scanned, and so is the comment text itself.
	m := scoreSource(t, `fn inline() {
    let x = 1; // if disabled && legacy
}
`)
	// The trailing comment contributes "if ", " if ", and "&&": 1 + 3 = 4.
	if m.Cyclomatic != 4 {
		t.Errorf("Cyclomatic = %d, want 4", m.Cyclomatic)
	}
}

func TestScore_NestingFromBracesAndKeywords(t *testing.T) {
	m := scoreSource(t, `fn nested() {
    if a {
        if b {
            x();
        }
    }
}
`)
	// fn brace -> 1, each if-with-brace -> +1: max 3.
	if m.MaxNesting != 3 {
		t.Errorf("MaxNesting = %d, want 3", m.MaxNesting)
	}
}

func TestScore_KeywordWithoutBraceBumpsDepth(t *testing.T) {
	// A keyword on a brace-less line bumps depth once, and the brace it
	// opens on the next line bumps it again. Both increments are kept.
	m := scoreSource(t, `fn allman() {
    if a
    {
        x();
    }
}
`)
	if m.MaxNesting != 3 {
		t.Errorf("MaxNesting = %d, want 3", m.MaxNesting)
	}
}

func TestViolations_LineBoundary(t *testing.T) {
	th := DefaultThresholds()

	at := scoreSource(t, ruler(50))
	if at.Lines != 50 {
		t.Fatalf("Lines = %d, want 50", at.Lines)
	}
	if problems := th.Violations(at); len(problems) != 0 {
		t.Errorf("50-line function flagged: %v", problems)
	}

	over := scoreSource(t, ruler(51))
	problems := th.Violations(over)
	if len(problems) != 1 || problems[0] != "Long function: 51 lines" {
		t.Errorf("51-line function problems = %v", problems)
	}
}

func TestViolations_NestingBoundary(t *testing.T) {
	th := DefaultThresholds()

	depth4 := scoreSource(t, `fn depth4() {
    if a {
        if b {
            if c {
                x();
            }
        }
    }
}
`)
	if depth4.MaxNesting != 4 {
		t.Fatalf("MaxNesting = %d, want 4", depth4.MaxNesting)
	}
	if problems := th.Violations(depth4); len(problems) != 0 {
		t.Errorf("depth-4 function flagged: %v", problems)
	}

	depth5 := scoreSource(t, `fn depth5() {
    if a {
        if b {
            if c {
                if d {
                    x();
                }
            }
        }
    }
}
`)
	if depth5.MaxNesting != 5 {
		t.Fatalf("MaxNesting = %d, want 5", depth5.MaxNesting)
	}
	problems := th.Violations(depth5)
	if len(problems) != 1 || problems[0] != "Deep nesting: 5 levels" {
		t.Errorf("depth-5 function problems = %v", problems)
	}
}

func TestViolations_CyclomaticBoundary(t *testing.T) {
	th := DefaultThresholds()

	build := func(branches int) string {
		var b strings.Builder
		b.WriteString("fn branches() {\n")
		for i := 0; i < branches; i++ {
			b.WriteString("    if a { x(); }\n")
		}
		b.WriteString("}\n")
		return b.String()
	}

	at := scoreSource(t, build(9))
	if at.Cyclomatic != 10 {
		t.Fatalf("Cyclomatic = %d, want 10", at.Cyclomatic)
	}
	if problems := th.Violations(at); len(problems) != 0 {
		t.Errorf("complexity-10 function flagged: %v", problems)
	}

	over := scoreSource(t, build(10))
	if over.Cyclomatic != 11 {
		t.Fatalf("Cyclomatic = %d, want 11", over.Cyclomatic)
	}
	problems := th.Violations(over)
	if len(problems) != 1 || problems[0] != "High cyclomatic complexity: 11" {
		t.Errorf("complexity-11 function problems = %v", problems)
	}
}

func TestViolations_AllMessagesIncluded(t *testing.T) {
	m := Metrics{Lines: 80, MaxNesting: 6, Cyclomatic: 15}
	problems := DefaultThresholds().Violations(m)
	want := []string{
		"Long function: 80 lines",
		"Deep nesting: 6 levels",
		"High cyclomatic complexity: 15",
	}
	if len(problems) != len(want) {
		t.Fatalf("len(problems) = %d, want %d: %v", len(problems), len(want), problems)
	}
	for i := range want {
		if problems[i] != want[i] {
			t.Errorf("problems[%d] = %q, want %q", i, problems[i], want[i])
		}
	}
}

func TestAnalyze_OrderAndFiltering(t *testing.T) {
	long := ruler(60)
	short := "fn ok() {\n    let x = 1;\n}\n"

	src := source.NewMap(map[string][]byte{
		"crates/a.rs": []byte(short),
		"crates/b.rs": []byte(long),
		"crates/c.rs": []byte(long),
	})

	a := New(WithSource(src))
	result, err := a.Analyze(context.Background(), []string{"crates/c.rs", "crates/a.rs", "crates/b.rs"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// a.rs has no flagged functions and is dropped; c.rs stays first
	// because input order wins over completion order.
	if len(result.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(result.Files))
	}
	if result.Files[0].Path != "crates/c.rs" || result.Files[1].Path != "crates/b.rs" {
		t.Errorf("order = %s, %s; want c.rs then b.rs", result.Files[0].Path, result.Files[1].Path)
	}

	if result.Summary.FlaggedFunctions != 2 {
		t.Errorf("FlaggedFunctions = %d, want 2", result.Summary.FlaggedFunctions)
	}
	if result.Summary.ScannedFiles != 3 || result.Summary.ScannedFunctions != 3 {
		t.Errorf("Scanned = %d files / %d functions, want 3/3",
			result.Summary.ScannedFiles, result.Summary.ScannedFunctions)
	}
}

func TestAnalyze_UnreadableFileSkipped(t *testing.T) {
	src := source.NewMap(map[string][]byte{
		"good.rs": []byte(ruler(60)),
	})

	var failed []string
	a := New(
		WithSource(src),
		WithErrorFunc(func(path string, err error) {
			failed = append(failed, path)
		}),
	)

	result, err := a.Analyze(context.Background(), []string{"missing.rs", "good.rs"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(failed) != 1 || failed[0] != "missing.rs" {
		t.Errorf("failed = %v, want [missing.rs]", failed)
	}
	if len(result.Files) != 1 || result.Files[0].Path != "good.rs" {
		t.Fatalf("Files = %+v, want good.rs only", result.Files)
	}
	if result.Summary.ScannedFiles != 1 {
		t.Errorf("ScannedFiles = %d, want 1", result.Summary.ScannedFiles)
	}
}

func TestAnalyze_SixtyLineScenario(t *testing.T) {
	src := source.NewMap(map[string][]byte{
		"lib.rs": []byte(ruler(60)),
	})

	a := New(WithSource(src))
	result, err := a.Analyze(context.Background(), []string{"lib.rs"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Files) != 1 || len(result.Files[0].Functions) != 1 {
		t.Fatalf("want exactly one flagged function, got %+v", result.Files)
	}
	fn := result.Files[0].Functions[0]
	if len(fn.Problems) != 1 || fn.Problems[0] != "Long function: 60 lines" {
		t.Errorf("Problems = %v, want only the long-function message", fn.Problems)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	a := New(WithSource(source.NewMap(nil)))
	result, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Files) != 0 || result.Summary.FlaggedFunctions != 0 {
		t.Errorf("expected empty analysis, got %+v", result)
	}
}

func TestScore_Deterministic(t *testing.T) {
	src := `fn f() {
    if a && b {
        match x {
            A => 1,
            _ => 2,
        }
    }
}
`
	first := scoreSource(t, src)
	second := scoreSource(t, src)
	if first != second {
		t.Errorf("Score not deterministic: %+v vs %+v", first, second)
	}
}
