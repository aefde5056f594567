package config

import (
	"time"

	"github.com/s0up4200/chainreact/chainreact"
)

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Output  OutputConfig  `mapstructure:"output"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Safety  SafetyConfig  `mapstructure:"safety"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds ChainReact API connection details
type APIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Client returns the client configuration for the API section
func (c APIConfig) Client() chainreact.Config {
	return chainreact.Config{APIKey: c.APIKey, BaseURL: c.BaseURL}
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format   string `mapstructure:"format"`
	PageSize int    `mapstructure:"page_size"`
}

// FilterConfig contains filter definitions. Preset names are case-insensitive
// and stored lowercased.
type FilterConfig struct {
	Presets           map[string]string `mapstructure:"presets"`
	DefaultExpression string            `mapstructure:"default_expression"`
	// Workers bounds concurrent filter evaluation; 0 uses GOMAXPROCS.
	Workers int `mapstructure:"workers"`
}

// SafetyConfig contains safety-related settings
type SafetyConfig struct {
	DryRun        bool `mapstructure:"dry_run"`
	ConfirmDelete bool `mapstructure:"confirm_delete"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
