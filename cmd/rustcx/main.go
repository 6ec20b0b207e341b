package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rkoval/rustcx/pkg/analyzer"
	"github.com/rkoval/rustcx/pkg/analyzer/complexity"
	"github.com/rkoval/rustcx/pkg/config"
	"github.com/rkoval/rustcx/pkg/progress"
	"github.com/rkoval/rustcx/pkg/report"
	"github.com/rkoval/rustcx/pkg/scanner"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:    "rustcx",
		Usage:   "Rust source complexity analyzer",
		Version: version,
		Description: `Rustcx scans Rust source trees and flags functions that exceed
line count, nesting depth, or cyclomatic complexity thresholds.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"RUSTCX_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, table, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.IntFlag{
				Name:  "jobs",
				Usage: "Number of parallel workers (0 uses 2x CPU count)",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Print scan statistics to stderr",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			initCmd(),
		},
		// Bare invocation behaves like "rustcx analyze".
		Action: runAnalyzeCmd,
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"an"},
		Usage:     "Analyze Rust files for complexity issues",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-lines",
				Value: 50,
				Usage: "Function line count warning threshold",
			},
			&cli.IntFlag{
				Name:  "max-nesting",
				Value: 4,
				Usage: "Nesting depth warning threshold",
			},
			&cli.IntFlag{
				Name:  "max-cyclomatic",
				Value: 10,
				Usage: "Cyclomatic complexity warning threshold",
			},
		},
		Action: runAnalyzeCmd,
	}
}

// loadConfig loads the file named by --config, or searches the standard
// locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}

// getRoots returns scan roots from positional args, falling back to the
// configured roots.
func getRoots(c *cli.Context, cfg *config.Config) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	if len(cfg.Scan.Roots) > 0 {
		return cfg.Scan.Roots
	}
	return []string{"."}
}

// mergeThresholds layers explicit command-line flags over configured
// thresholds.
func mergeThresholds(c *cli.Context, cfg *config.Config) complexity.Thresholds {
	t := complexity.Thresholds{
		MaxLines:      cfg.Thresholds.MaxLines,
		MaxNesting:    cfg.Thresholds.MaxNesting,
		MaxCyclomatic: cfg.Thresholds.MaxCyclomatic,
	}
	if c.IsSet("max-lines") {
		t.MaxLines = c.Int("max-lines")
	}
	if c.IsSet("max-nesting") {
		t.MaxNesting = c.Int("max-nesting")
	}
	if c.IsSet("max-cyclomatic") {
		t.MaxCyclomatic = c.Int("max-cyclomatic")
	}
	return t
}

func runAnalyzeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("jobs") {
		cfg.Scan.Jobs = c.Int("jobs")
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}

	scan := scanner.New(cfg)
	var files []string
	for _, root := range getRoots(c, cfg) {
		found, err := scan.ScanDir(root)
		if err != nil {
			return fmt.Errorf("failed to scan directory %s: %w", root, err)
		}
		files = append(files, found...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var bar *progress.Tracker
	if !c.Bool("no-progress") && len(files) > 0 {
		bar = progress.NewTracker("Analyzing complexity...", len(files))
		tracker := analyzer.NewTracker(func(current, total int, path string) {
			bar.Tick()
		})
		ctx = analyzer.WithTracker(ctx, tracker)
	}

	cx := complexity.New(
		complexity.WithThresholds(mergeThresholds(c, cfg)),
		complexity.WithWorkers(cfg.Scan.Jobs),
		complexity.WithErrorFunc(func(path string, err error) {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		}),
	)

	analysis, err := cx.Analyze(ctx, files)
	if bar != nil {
		if err != nil {
			bar.FinishError(err)
		} else {
			bar.FinishSuccess()
		}
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	formatter, err := report.NewFormatter(report.ParseFormat(cfg.Output.Format), c.String("output"))
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(analysis); err != nil {
		return err
	}

	if cfg.Output.Verbose {
		printStats(analysis)
	}
	return nil
}

// printStats writes scan statistics to stderr so they never corrupt a
// report piped from stdout.
func printStats(a *complexity.Analysis) {
	stderr := color.New(color.FgCyan)
	stderr.Fprintf(os.Stderr, "Scanned %d files, %d functions\n",
		a.Summary.ScannedFiles, a.Summary.ScannedFunctions)
	stderr.Fprintf(os.Stderr, "Flagged %d functions in %d files\n",
		a.Summary.FlaggedFunctions, a.Summary.FlaggedFiles)
	stderr.Fprintf(os.Stderr, "Cyclomatic: max %d, p50 %.1f, p90 %.1f\n",
		a.Summary.MaxCyclomatic, a.Summary.P50Cyclomatic, a.Summary.P90Cyclomatic)
	stderr.Fprintf(os.Stderr, "Nesting: max %d; mean function length %.1f lines\n",
		a.Summary.MaxNesting, a.Summary.MeanLines)
}
