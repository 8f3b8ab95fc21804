package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/codeline/internal/output"
	"github.com/panbanda/codeline/internal/service/check"
	"github.com/panbanda/codeline/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [source-dir]",
	Short: "Re-check files as they change",
	Long: `Runs a full check, then watches the source directory and re-checks
every file whose content changes. Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before a changed file is checked")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := loaded.Config
	root := sourceDir(args, cfg)
	colored := colorEnabled(cfg)

	svc, err := check.New(cfg, check.WithLogger(logger))
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()
	result, err := svc.Run(ctx, root, check.RunOptions{})
	if err != nil {
		return err
	}
	formatter := output.NewWriterFormatter(output.FormatText, cmd.OutOrStdout(), colored)
	printWatchResult(formatter, result)

	debounce, _ := cmd.Flags().GetDuration("debounce")
	w, err := watch.NewWatcher(root, debounce,
		watch.WithLogger(logger),
		watch.WithFilter(func(path string) bool {
			ok, err := svc.Accepts(root, path)
			return err == nil && ok
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	w.SetCallback(func(paths []string) {
		for _, p := range paths {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				rel = p
			}
			color.Yellow("\nFile changed: %s", rel)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("-", 40))

		start := time.Now()
		result, err := svc.Analyze(ctx, paths)
		if err != nil {
			formatter.Error("check failed: %v", err)
			return
		}
		printWatchResult(formatter, result)
		logger.Debug("re-checked files", "files", len(paths), "duration", time.Since(start))
	})

	color.Cyan("Watching for changes in %s...", root)
	color.Cyan("Press Ctrl+C to stop")
	fmt.Fprintln(cmd.OutOrStdout())

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printWatchResult(formatter *output.Formatter, result *check.Result) {
	if result.Passed() {
		formatter.Success("No code enforcer violations found in %d files", result.Summary.FilesChecked)
		return
	}
	if err := formatter.Output(output.NewViolationReport(result.Violations, result.Summary)); err != nil {
		formatter.Error("failed to write report: %v", err)
	}
}
