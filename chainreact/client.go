package chainreact

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Client is the ChainReact API client.
type Client struct {
	Workflows *WorkflowService
	Webhooks  *WebhookService
	Analytics *AnalyticsService

	config    Config
	transport Transport
	logger    zerolog.Logger
}

// NewClient validates cfg and creates a client talking HTTP to cfg.BaseURL.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	c := newClient(newHTTPTransport(cfg, o), o.logger)
	c.config = cfg
	return c, nil
}

// NewClientWithTransport creates a client on top of an existing Transport.
func NewClientWithTransport(transport Transport, opts ...Option) *Client {
	o := applyOptions(opts)
	return newClient(transport, o.logger)
}

func newClient(transport Transport, logger zerolog.Logger) *Client {
	return &Client{
		Workflows: &WorkflowService{transport: transport, logger: logger},
		Webhooks:  &WebhookService{transport: transport, logger: logger},
		Analytics: &AnalyticsService{transport: transport, logger: logger},
		transport: transport,
		logger:    logger,
	}
}

// Config returns a copy of the configuration the client was built with.
// It is empty for clients created with NewClientWithTransport.
func (c *Client) Config() Config {
	return c.config
}

// Ping verifies the API is reachable and the key is accepted by fetching a
// single-item page of workflows.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.Workflows.List(ctx, ListOptions{Page: 1, Limit: 1}); err != nil {
		return fmt.Errorf("failed to connect to ChainReact: %w", err)
	}

	c.logger.Debug().Msg("Successfully connected to ChainReact")
	return nil
}
