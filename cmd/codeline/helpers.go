package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/codeline/internal/output"
	"github.com/panbanda/codeline/pkg/config"
)

// loadConfig loads --config, or the first config file in the standard
// locations, or the defaults.
func loadConfig() (*config.LoadResult, error) {
	var opts []config.LoadOption
	if cfgFile != "" {
		opts = append(opts, config.WithPath(cfgFile))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	if result.Source != "" {
		logger.Debug("loaded configuration", "file", result.Source)
	}
	return result, nil
}

// sourceDir returns the positional source directory, falling back to the
// configured one.
func sourceDir(args []string, cfg *config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.SourceDir
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: use debug, info, warn or error", s)
	}
	return level, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// getFormat returns the --format flag, falling back to output.format.
func getFormat(cmd *cobra.Command, cfg *config.Config) output.Format {
	if cmd.Flags().Changed("format") {
		format, _ := cmd.Flags().GetString("format")
		return output.ParseFormat(format)
	}
	return output.ParseFormat(cfg.Output.Format)
}

// getOutputFile returns the output file path from the command.
func getOutputFile(cmd *cobra.Command) string {
	outputFile, _ := cmd.Flags().GetString("output")
	return outputFile
}

func colorEnabled(cfg *config.Config) bool {
	return cfg.Output.Color && !color.NoColor
}
