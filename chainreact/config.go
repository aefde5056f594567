package chainreact

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// DefaultBaseURL is the public ChainReact API endpoint.
const DefaultBaseURL = "https://api.chainreact.dev"

// Config holds the credentials and endpoint used to reach the API.
type Config struct {
	APIKey  string `json:"api_key" mapstructure:"api_key"`
	BaseURL string `json:"base_url" mapstructure:"base_url"`
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.APIKey, validation.Required.Error("API key is required")),
		validation.Field(&c.BaseURL, validation.Required.Error("base URL is required"), is.RequestURL),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// normalized fills in the default endpoint and strips trailing slashes so
// endpoint paths, which all start with "/", can be appended directly.
func (c Config) normalized() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}
