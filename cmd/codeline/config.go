package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/codeline/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validates a codeline configuration file against the schema and
compiles every pattern it contains.

Examples:
  codeline config validate                      # Validates default config locations
  codeline config validate -c codeline.toml     # Validates specific file
  codeline config validate -c .codeline/codeline.yaml`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Shows the merged configuration from defaults and config file.

Examples:
  codeline config show                # Show effective config as TOML
  codeline config show --format yaml  # Show effective config as YAML`,
	RunE: runConfigShow,
}

func init() {
	configShowCmd.Flags().StringP("format", "f", "toml", "Output format: toml, yaml")

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	result, err := loadConfig()
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.Green("Configuration valid: %s", result.Source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	result, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Source != "" {
		fmt.Fprintf(out, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(out, "# Default configuration (no config file found)")
	}

	format, _ := cmd.Flags().GetString("format")
	content, err := marshalConfig(result.Config, format)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(content))
	return nil
}

func marshalConfig(cfg *config.Config, format string) ([]byte, error) {
	switch format {
	case "toml", "":
		content, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		return content, nil
	case "yaml", "yml":
		content, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		return content, nil
	default:
		return nil, fmt.Errorf("unknown format %q: use toml or yaml", format)
	}
}
