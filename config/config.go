package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/s0up4200/chainreact/chainreact"
)

const envPrefix = "CHAINREACT"

// Load loads the configuration from file and the environment
func Load(configPath string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), configPath)
}

// LoadFs loads the configuration, reading files from fs.
// A missing file is only an error when configPath was given explicitly.
func LoadFs(fs afero.Fs, configPath string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.api_key", envPrefix+"_API_KEY", envPrefix+"_API_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".chainreact"))
		}

		// Check /etc
		v.AddConfigPath("/etc/chainreact/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigFile returns the file Load would read, or "" when none is found.
func ConfigFile(fs afero.Fs, configPath string) string {
	if configPath != "" {
		return configPath
	}

	candidates := []string{"config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".chainreact", "config.yaml"))
	}
	candidates = append(candidates, "/etc/chainreact/config.yaml")

	for _, c := range candidates {
		if ok, _ := afero.Exists(fs, c); ok {
			return c
		}
	}
	return ""
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", chainreact.DefaultBaseURL)
	v.SetDefault("api.timeout", "0s")

	// Output defaults
	v.SetDefault("output.format", "table")
	v.SetDefault("output.page_size", chainreact.DefaultLimit)

	v.SetDefault("filter.default_expression", "")
	v.SetDefault("filter.workers", 0)

	// Safety defaults
	v.SetDefault("safety.dry_run", false)
	v.SetDefault("safety.confirm_delete", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.API.APIKey == "" || cfg.API.APIKey == "your-api-key-here" {
		return fmt.Errorf("api.api_key must be set to a valid API key")
	}

	if err := cfg.API.Client().Validate(); err != nil {
		return err
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("invalid api.timeout: %s", cfg.API.Timeout)
	}

	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
		"yaml":  true,
	}
	if !validOutputs[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s (must be table, json or yaml)", cfg.Output.Format)
	}

	if cfg.Output.PageSize <= 0 {
		return fmt.Errorf("invalid output.page_size: %d (must be positive)", cfg.Output.PageSize)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.Filter.Workers < 0 {
		return fmt.Errorf("invalid filter.workers: %d (must be 0 or positive)", cfg.Filter.Workers)
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset %q has an empty expression", name)
		}
	}

	return nil
}
