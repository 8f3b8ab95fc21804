package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/codeline/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new codeline configuration file",
	Long: `Creates a new codeline.toml configuration file in the current directory
with sensible defaults. Use --output to specify a different location.

Examples:
  codeline init                            # Creates codeline.toml in current directory
  codeline init -o .codeline/codeline.toml # Creates config in .codeline directory
  codeline init --force                    # Overwrite existing config file`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("output", "o", "codeline.toml", "Output file path")
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "Add patterns and classes to start enforcing rules.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := marshalConfig(config.DefaultConfig(), "toml")
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	buf.WriteString("# Codeline configuration\n")
	buf.WriteString("# patterns: regular expressions forbidden on any line\n")
	buf.WriteString("# classes:  regular expressions matched against imported names\n\n")
	buf.Write(content)
	return buf.String(), nil
}
