package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MaxPageSize is the largest page the user_timeline endpoint serves
const MaxPageSize = 200

// ValidSizes lists the image size variants the media host understands
var ValidSizes = []string{"large", "medium", "small", "thumb", "orig"}

// Config holds all configuration options for the image downloader
type Config struct {
	// Twitter API credentials and endpoints
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds Twitter-specific configuration
type TwitterConfig struct {
	APIKey     string `yaml:"api_key" json:"api_key"`
	APISecret  string `yaml:"api_secret" json:"api_secret"`
	APIBaseURL string `yaml:"api_base_url" json:"api_base_url"`
	UserAgent  string `yaml:"user_agent" json:"user_agent"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Size            string        `yaml:"size" json:"size"`
	Limit           int           `yaml:"limit" json:"limit"`
	PageSize        int           `yaml:"page_size" json:"page_size"`
	IncludeRetweets bool          `yaml:"include_retweets" json:"include_retweets"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
	RetryAttempts   int           `yaml:"retry_attempts" json:"retry_attempts"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	// BaseDirectory is the parent of the per-user folder when no destination is given
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	// Timezone names the zone file names are rendered in; empty means local time
	Timezone string `yaml:"timezone" json:"timezone"`
}

// RateLimitConfig holds timeline pacing configuration
type RateLimitConfig struct {
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level" json:"level"`
	// ConsoleLevel overrides Level for the stderr console only; empty follows Level
	ConsoleLevel string `yaml:"console_level,omitempty" json:"console_level,omitempty"`
	File         string `yaml:"file" json:"file"`
	MaxSize      int    `yaml:"max_size" json:"max_size"`
	MaxBackups   int    `yaml:"max_backups" json:"max_backups"`
	MaxAge       int    `yaml:"max_age" json:"max_age"`
	Compress     bool   `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			APIBaseURL: "https://api.twitter.com",
			UserAgent:  "twtimg/1.0",
		},
		Download: DownloadConfig{
			Size:            "large",
			Limit:           3200,
			PageSize:        MaxPageSize,
			IncludeRetweets: false,
			Timeout:         30 * time.Second,
			RetryAttempts:   1,
		},
		Output: OutputConfig{
			BaseDirectory: "",
			Timezone:      "",
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 900,
			Window:            15 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if apiKey := os.Getenv("TWTIMG_API_KEY"); apiKey != "" {
		c.Twitter.APIKey = apiKey
	}
	if apiSecret := os.Getenv("TWTIMG_API_SECRET"); apiSecret != "" {
		c.Twitter.APISecret = apiSecret
	}
	if baseURL := os.Getenv("TWTIMG_API_BASE_URL"); baseURL != "" {
		c.Twitter.APIBaseURL = baseURL
	}
	if userAgent := os.Getenv("TWTIMG_USER_AGENT"); userAgent != "" {
		c.Twitter.UserAgent = userAgent
	}

	if size := os.Getenv("TWTIMG_SIZE"); size != "" {
		c.Download.Size = size
	}
	if limit := os.Getenv("TWTIMG_LIMIT"); limit != "" {
		val, err := strconv.Atoi(limit)
		if err != nil {
			errs = append(errs, fmt.Errorf("TWTIMG_LIMIT: %w", err))
		} else {
			c.Download.Limit = val
		}
	}
	if rts := os.Getenv("TWTIMG_INCLUDE_RETWEETS"); rts != "" {
		c.Download.IncludeRetweets = strings.ToLower(rts) == "true"
	}
	if timeout := os.Getenv("TWTIMG_TIMEOUT"); timeout != "" {
		val, err := time.ParseDuration(timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("TWTIMG_TIMEOUT: %w", err))
		} else {
			c.Download.Timeout = val
		}
	}

	if outputDir := os.Getenv("TWTIMG_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if tz := os.Getenv("TWTIMG_TIMEZONE"); tz != "" {
		c.Output.Timezone = tz
	}

	if logLevel := os.Getenv("TWTIMG_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("TWTIMG_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".twtimg.yaml",
		".twtimg.yml",
		filepath.Join(home, ".config", "twtimg", "config.yaml"),
		filepath.Join(home, ".config", "twtimg", "config.yml"),
		filepath.Join(home, ".twtimg.yaml"),
		filepath.Join(home, ".twtimg.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
// Credentials are not checked here; they may come from a confidentials file or a stored account.
func (c *Config) Validate() error {
	var errs []error

	if !IsValidSize(c.Download.Size) {
		errs = append(errs, fmt.Errorf("size must be one of %s", strings.Join(ValidSizes, ", ")))
	}
	if c.Download.Limit <= 0 {
		errs = append(errs, errors.New("limit must be positive"))
	}
	if c.Download.PageSize <= 0 || c.Download.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("page size must be between 1 and %d", MaxPageSize))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.Download.RetryAttempts < 1 {
		errs = append(errs, errors.New("retry attempts must be at least 1"))
	}

	if c.Twitter.APIBaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	if c.RateLimit.RequestsPerWindow < 0 {
		errs = append(errs, errors.New("requests per window cannot be negative"))
	}
	if c.RateLimit.RequestsPerWindow > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	if c.Logging.ConsoleLevel != "" && !validLogLevels[strings.ToLower(c.Logging.ConsoleLevel)] {
		errs = append(errs, errors.New("invalid console log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Output.Timezone == "" || strings.EqualFold(c.Output.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Output.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Output.Timezone, err)
	}
	return loc, nil
}

// DestinationFor returns the default download directory for a user
func (c *Config) DestinationFor(user string) string {
	if c.Output.BaseDirectory == "" {
		return user
	}
	return filepath.Join(c.Output.BaseDirectory, user)
}

// IsValidSize reports whether size is a known image size variant
func IsValidSize(size string) bool {
	for _, s := range ValidSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user actually set should be present in the map.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if size, ok := flags["size"].(string); ok && size != "" {
		c.Download.Size = size
	}
	if limit, ok := flags["limit"].(int); ok {
		c.Download.Limit = limit
	}
	if rts, ok := flags["rts"].(bool); ok {
		c.Download.IncludeRetweets = rts
	}
	if retries, ok := flags["retry"].(int); ok {
		c.Download.RetryAttempts = retries
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Download.Timeout = timeout
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if tz, ok := flags["timezone"].(string); ok && tz != "" {
		c.Output.Timezone = tz
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if consoleLevel, ok := flags["console-level"].(string); ok && consoleLevel != "" {
		c.Logging.ConsoleLevel = consoleLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".twtimg.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
