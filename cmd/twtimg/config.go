package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"twtimg/pkg/auth"
	"twtimg/pkg/config"
	"twtimg/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage twtimg configuration files.

Configuration is merged from, highest priority first:
  - Command line flags
  - Environment variables (TWTIMG_*) and .env files
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is written to .twtimg.yaml in the current directory unless a
different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging every source.
The API key and secret are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# twtimg configuration file
#
# Every option can also be set with an environment variable prefixed with
# TWTIMG_, for example TWTIMG_API_KEY or TWTIMG_SIZE.

twitter:
  # App credentials from the developer portal. Prefer 'twtimg auth login'
  # or a -c credentials file over storing them here.
  api_key: ""
  api_secret: ""
  api_base_url: "https://api.twitter.com"
  user_agent: "twtimg/1.0"

download:
  # large, medium, small, thumb or orig
  size: "large"
  # Maximum number of tweets to inspect per user
  limit: 3200
  # Tweets per timeline request, at most 200
  page_size: 200
  include_retweets: false
  timeout: 30s
  # Attempts per image on network errors; 1 disables retrying
  retry_attempts: 1

output:
  # Parent of the per-user directories; empty means the current directory
  base_directory: ""
  # Zone used to name files, e.g. UTC or Europe/Berlin; empty means local time
  timezone: ""

rate_limit:
  # Timeline requests allowed per window; 0 disables pacing
  requests_per_window: 900
  window: 15m

logging:
  # debug, info, warn, error
  level: "info"
  # Console-only override; unless -v or --log-level is given the CLI sets it to error
  console_level: ""
  # Optional log file, rotated by size
  file: ""
  max_size: 100
  max_backups: 3
  max_age: 7
  compress: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".twtimg.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store your API key and secret with 'twtimg auth login'")
	fmt.Println("2. Run 'twtimg config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'twtimg <user_id>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	display := *cfg
	masked := auth.SanitizeAccount(&auth.Account{APIKey: cfg.Twitter.APIKey, APISecret: cfg.Twitter.APISecret})
	if display.Twitter.APIKey != "" {
		display.Twitter.APIKey = masked.APIKey
	}
	if display.Twitter.APISecret != "" {
		display.Twitter.APISecret = masked.APISecret
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	var warnings []string
	if cfg.Twitter.APIKey == "" || cfg.Twitter.APISecret == "" {
		warnings = append(warnings, "API key and secret not configured; -c or a stored account will be needed")
	}
	if cfg.Output.BaseDirectory != "" {
		if info, err := os.Stat(cfg.Output.BaseDirectory); err != nil || !info.IsDir() {
			warnings = append(warnings, fmt.Sprintf("output directory %s does not exist yet", cfg.Output.BaseDirectory))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
	}

	for _, w := range warnings {
		ui.PrintWarning("Warning", w)
	}
	ui.PrintSuccess("Configuration is valid")
	return nil
}
