package chainreact

import (
	"context"
)

// WorkflowAPI defines the interface for workflow operations
type WorkflowAPI interface {
	List(ctx context.Context, opts ListOptions) (*PaginatedResponse[Workflow], error)
	ListAll(ctx context.Context, limit int) ([]Workflow, error)
	Get(ctx context.Context, id string) (*Workflow, error)
	Create(ctx context.Context, req CreateWorkflowRequest) (*Workflow, error)
	Update(ctx context.Context, id string, patch WorkflowUpdate) (*Workflow, error)
	Delete(ctx context.Context, id string) error
	// Execute triggers a run and returns the platform's execution id
	Execute(ctx context.Context, id string, input map[string]any) (string, error)
}

// WebhookAPI defines the interface for webhook subscription operations
type WebhookAPI interface {
	List(ctx context.Context) ([]WebhookSubscription, error)
	Create(ctx context.Context, req CreateWebhookRequest) (*WebhookSubscription, error)
	Update(ctx context.Context, id string, patch WebhookUpdate) (*WebhookSubscription, error)
	Delete(ctx context.Context, id string) error
}

// AnalyticsAPI defines the interface for usage analytics
type AnalyticsAPI interface {
	GetUsage(ctx context.Context, query AnalyticsQuery) ([]UsageRecord, error)
}

var (
	_ WorkflowAPI  = (*WorkflowService)(nil)
	_ WebhookAPI   = (*WebhookService)(nil)
	_ AnalyticsAPI = (*AnalyticsService)(nil)
)
