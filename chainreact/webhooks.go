package chainreact

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

const webhooksPath = "/api/v1/webhooks"

// WebhookService handles the webhook subscription endpoints
type WebhookService struct {
	transport Transport
	logger    zerolog.Logger
}

func webhookPath(id string) string {
	return webhooksPath + "/" + url.PathEscape(id)
}

// List retrieves every webhook subscription. The endpoint is not paginated.
func (s *WebhookService) List(ctx context.Context) ([]WebhookSubscription, error) {
	body, err := s.transport.Do(ctx, http.MethodGet, webhooksPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}

	var hooks []WebhookSubscription
	if err := body.Decode("data", &hooks); err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", unusable(err))
	}

	s.logger.Debug().Int("count", len(hooks)).Msg("Retrieved webhooks from ChainReact")
	return hooks, nil
}

// Create creates a new webhook subscription
func (s *WebhookService) Create(ctx context.Context, req CreateWebhookRequest) (*WebhookSubscription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := s.transport.Do(ctx, http.MethodPost, webhooksPath, nil, req.payload())
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook %q: %w", req.Name, err)
	}

	hook, err := decodeWebhook(body, "create", req.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("webhook_id", hook.ID).Strs("event_types", hook.EventTypes).Msg("Created webhook")
	return hook, nil
}

// Update sends the set fields of patch and returns the server's new copy
func (s *WebhookService) Update(ctx context.Context, id string, patch WebhookUpdate) (*WebhookSubscription, error) {
	if err := validateID("webhook", id); err != nil {
		return nil, err
	}

	body, err := s.transport.Do(ctx, http.MethodPut, webhookPath(id), nil, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update webhook %q: %w", id, err)
	}

	return decodeWebhook(body, "update", id)
}

// Delete deletes a webhook subscription
func (s *WebhookService) Delete(ctx context.Context, id string) error {
	if err := validateID("webhook", id); err != nil {
		return err
	}

	if _, err := s.transport.Do(ctx, http.MethodDelete, webhookPath(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete webhook %q: %w", id, err)
	}

	s.logger.Debug().Str("webhook_id", id).Msg("Deleted webhook")
	return nil
}

func decodeWebhook(body Body, op, ref string) (*WebhookSubscription, error) {
	var hook WebhookSubscription
	if err := body.Decode("data", &hook); err != nil {
		return nil, fmt.Errorf("failed to %s webhook %q: %w", op, ref, unusable(err))
	}
	return &hook, nil
}
