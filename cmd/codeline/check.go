package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panbanda/codeline/internal/output"
	"github.com/panbanda/codeline/internal/progress"
	"github.com/panbanda/codeline/internal/service/check"
	"github.com/panbanda/codeline/pkg/config"
)

var checkCmd = &cobra.Command{
	Use:   "check [source-dir]",
	Short: "Check a source tree against the configured rules",
	Long: `Walks the source directory (default: source_dir from the config,
src/main/java otherwise) and reports every violation. Exits with status 1
when any violation is found.

Examples:
  codeline check                                   # Uses codeline.toml
  codeline check app/src --patterns 'System\.out'  # Ad hoc pattern
  codeline check --check-privates -f json -o report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addCheckFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("patterns", nil, "Forbidden line patterns (regular expressions)")
	cmd.Flags().StringArray("classes", nil, "Forbidden imported classes (regular expressions)")
	cmd.Flags().Bool("check-privates", false, "Report unused private members")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json, markdown, toon")
	cmd.Flags().StringP("output", "o", "", "Write output to file")
	cmd.Flags().Int("workers", 0, "Number of parallel workers (0 = 2x CPU count)")
	cmd.Flags().String("timeout", "", "Deadline for the whole check, e.g. 2m")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")
}

// applyCheckFlags overrides configuration values with explicitly set flags.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("patterns") {
		cfg.Patterns, _ = flags.GetStringArray("patterns")
	}
	if flags.Changed("classes") {
		cfg.Classes, _ = flags.GetStringArray("classes")
	}
	if flags.Changed("check-privates") {
		cfg.CheckPrivates, _ = flags.GetBool("check-privates")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetString("timeout")
	}
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := loaded.Config
	applyCheckFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, err := check.New(cfg, check.WithLogger(logger))
	if err != nil {
		return err
	}
	defer svc.Close()

	var opts check.RunOptions
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	var tracker *progress.Tracker
	if !noProgress {
		opts.OnStart = func(total int) {
			tracker = progress.NewTracker("Checking files...", total)
		}
		opts.OnProgress = func() { tracker.Tick() }
	}

	result, err := svc.Run(cmd.Context(), sourceDir(args, cfg), opts)
	if tracker != nil {
		if err != nil {
			tracker.FinishError(err)
		} else {
			tracker.FinishSuccess()
		}
	}
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(getFormat(cmd, cfg), getOutputFile(cmd), colorEnabled(cfg))
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := writeResult(formatter, result); err != nil {
		return err
	}
	return result.Err()
}

// writeResult prints the report of a failed run. A passing run is silent in
// text format unless --verbose is set; structured formats always get a report.
func writeResult(formatter *output.Formatter, result *check.Result) error {
	if result.Passed() && formatter.Format() == output.FormatText {
		if verbose {
			formatter.Success("No code enforcer violations found in %d files", result.Summary.FilesChecked)
		}
		return nil
	}
	if err := formatter.Output(output.NewViolationReport(result.Violations, result.Summary)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
