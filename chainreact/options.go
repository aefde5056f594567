package chainreact

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultUserAgent = "chainreact-go"

// Option configures a Client or an HTTPTransport.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
	userAgent  string
}

func defaultOptions() clientOptions {
	return clientOptions{
		logger:    zerolog.Nop(),
		userAgent: defaultUserAgent,
	}
}

// WithHTTPClient sets a custom HTTP client (proxies, TLS, instrumentation).
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTimeout bounds every request. The client sets no timeout unless asked to.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithLogger sets the logger used for request-level debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

func applyOptions(opts []Option) clientOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
