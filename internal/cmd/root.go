// Package cmd wires the CLI: flag parsing, configuration resolution, and
// the batch scan-and-delete flow. The interactive flow is handed off to the
// tui package.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/reclaim-cli/reclaim/internal/config"
	"github.com/reclaim-cli/reclaim/internal/pattern"
	"github.com/reclaim-cli/reclaim/internal/protect"
	"github.com/reclaim-cli/reclaim/internal/scan"
	"github.com/reclaim-cli/reclaim/internal/sweep"
	"github.com/reclaim-cli/reclaim/internal/tui"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

// ErrPartial signals that the run finished but recorded scan warnings or
// deletion failures. The driver maps it to a distinct exit code.
var ErrPartial = errors.New("completed with errors")

type options struct {
	configPath   string
	dryRun       bool
	verbose      bool
	threads      int
	days         int
	depth        int
	interactive  bool
	listPatterns bool
}

// NewRootCommand creates the root cobra command for reclaim.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "reclaim [path]",
		Short: "Remove development build artifacts",
		Long: `Reclaim scans a directory tree for development build artifacts
(node_modules, target, __pycache__, ...) and removes them, either in one
batch pass or through an interactive browser.

Pattern precedence: RECLAIM_DIRS/RECLAIM_FILES environment variables beat
the TOML config file, which beats the built-in defaults.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			return run(cmd.Context(), root, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	flags.BoolVarP(&opts.dryRun, "dry-run", "d", false, "report what would be deleted without deleting")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print every matched path")
	flags.IntVarP(&opts.threads, "threads", "j", 0, "worker pool size (default: CPU count)")
	flags.IntVar(&opts.days, "days", 0, "only delete items modified more than N days ago")
	flags.IntVar(&opts.depth, "depth", 0, "maximum scan depth (0 = unlimited)")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "browse and delete interactively")
	flags.BoolVar(&opts.listPatterns, "list-patterns", false, "print the resolved patterns and exit")

	return cmd
}

func run(ctx context.Context, root string, opts *options) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DiscoverPath(absRoot)
	}
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if opts.days > 0 {
		cfg.Days = opts.days
	}
	if opts.threads > 0 {
		cfg.Concurrency = opts.threads
	}

	patterns := pattern.New(cfg.Directories, cfg.Files)
	if opts.listPatterns {
		fmt.Println("directories:", strings.Join(patterns.DirectoryPatterns(), ", "))
		fmt.Println("files:", strings.Join(patterns.FilePatterns(), ", "))
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	oracle := protect.New()
	executor := sweep.NewExecutor(cfg.Concurrency)

	if opts.interactive {
		if opts.dryRun {
			return errors.New("--dry-run has no effect in interactive mode; drop one of the flags")
		}
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			return errors.New("interactive mode needs a terminal")
		}
		return runInteractive(ctx, absRoot, cfg, patterns, oracle, executor)
	}

	return runBatch(ctx, absRoot, configPath, cfg, patterns, oracle, executor, opts)
}

func runInteractive(ctx context.Context, root string, cfg *config.Resolved, patterns *pattern.Set, oracle *protect.Oracle, executor *sweep.Executor) error {
	progress := &scan.Progress{}
	scanner := scan.New(scan.Options{
		Root:        root,
		Patterns:    patterns,
		Oracle:      oracle,
		Concurrency: cfg.Concurrency,
		Progress:    progress,
	})

	m := tui.New(ctx, root, scanner, progress, executor)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	if fm, ok := final.(tui.Model); ok && fm.FatalErr() != nil {
		return fm.FatalErr()
	}
	return nil
}

func runBatch(ctx context.Context, root, configPath string, cfg *config.Resolved, patterns *pattern.Set, oracle *protect.Oracle, executor *sweep.Executor, opts *options) error {
	printHeader(root, configPath, cfg, patterns, opts.dryRun)

	start := time.Now()
	progress := &scan.Progress{}
	scanner := scan.New(scan.Options{
		Root:        root,
		Patterns:    patterns,
		Oracle:      oracle,
		Concurrency: cfg.Concurrency,
		MaxDepth:    opts.depth,
		Progress:    progress,
	})

	result, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}
	scan.FilterAge(result.Root, cfg.Days, time.Now())

	matches := result.Root.Matches()
	if opts.verbose {
		for _, e := range matches {
			kind := "FILE"
			if e.Dir {
				kind = "DIR "
			}
			fmt.Printf("[%s] %s (%s)\n", kind, e.Path, humanize.IBytes(uint64(e.Size)))
		}
	}

	report := executor.Delete(ctx, matches, opts.dryRun)
	printReport(report, result, progress, time.Since(start))

	if len(report.Failures()) > 0 || len(result.Warnings) > 0 {
		return ErrPartial
	}
	return nil
}

func printHeader(root, configPath string, cfg *config.Resolved, patterns *pattern.Set, dryRun bool) {
	bold := color.New(color.Bold)

	fmt.Println()
	if dryRun {
		fmt.Printf("  %s %s\n", bold.Sprint("Mode:"), color.YellowString("dry run (nothing will be deleted)"))
	} else {
		fmt.Printf("  %s %s\n", bold.Sprint("Mode:"), color.RedString("live (files will be permanently deleted)"))
	}
	fmt.Printf("  %s %s\n", bold.Sprint("Target:"), root)
	if configPath != "" {
		fmt.Printf("  %s %s\n", bold.Sprint("Config:"), configPath)
	}
	if cfg.Days > 0 {
		fmt.Printf("  %s older than %d days\n", bold.Sprint("Filter:"), cfg.Days)
	}
	fmt.Printf("  %s %s\n", bold.Sprint("Directories:"), color.New(color.Faint).Sprint(strings.Join(patterns.DirectoryPatterns(), ", ")))
	fmt.Printf("  %s %s\n", bold.Sprint("Files:"), color.New(color.Faint).Sprint(strings.Join(patterns.FilePatterns(), ", ")))
	fmt.Println()
}

func printReport(report *sweep.Report, result *scan.Result, progress *scan.Progress, elapsed time.Duration) {
	verb := color.GreenString("Deleted:")
	freed := color.GreenString("Freed:")
	if report.DryRun {
		verb = color.YellowString("Would delete:")
		freed = color.YellowString("Would free:")
	}

	fmt.Println()
	fmt.Printf("  %s %d directories, %d files\n", verb, report.Directories(), report.Files())
	fmt.Printf("  %s %s\n", freed, humanize.IBytes(uint64(report.BytesFreed())))

	for _, w := range result.Warnings {
		fmt.Printf("  %s %s: %v\n", color.YellowString("Warning:"), w.Path, w.Err)
	}
	for _, f := range report.Failures() {
		fmt.Printf("  %s %v\n", color.RedString("Error:"), f)
	}

	visited := progress.Dirs.Load() + progress.Files.Load()
	fmt.Printf("  %s %d entries in %s\n", color.New(color.Faint).Sprint("Scanned:"), visited, elapsed.Truncate(time.Millisecond))
	fmt.Println()
}
