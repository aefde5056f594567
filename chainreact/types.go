package chainreact

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// Node is an opaque element of a workflow graph. The client passes it through unchanged.
type Node map[string]any

// Connection is an opaque edge of a workflow graph.
type Connection map[string]any

// Timestamp is a server-assigned timestamp as sent by the API.
type Timestamp string

// Time parses the timestamp, accepting any common date layout. Values
// without a zone are read as UTC.
func (ts Timestamp) Time() (time.Time, error) {
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	return dateparse.ParseIn(string(ts), time.UTC)
}

// Workflow represents a server-stored automation definition
type Workflow struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   *string        `json:"description,omitempty"`
	Nodes         []Node         `json:"nodes"`
	Connections   []Connection   `json:"connections"`
	Variables     map[string]any `json:"variables,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Status        string         `json:"status"`
	CreatedAt     Timestamp      `json:"created_at"`
	UpdatedAt     Timestamp      `json:"updated_at"`
}

// GetDescription returns the description, or "" when the workflow has none
func (w *Workflow) GetDescription() string {
	if w.Description == nil {
		return ""
	}
	return *w.Description
}

// NodeTypes returns the "type" member of every node that has one
func (w *Workflow) NodeTypes() []string {
	types := make([]string, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		if t, ok := n["type"].(string); ok {
			types = append(types, t)
		}
	}
	return types
}

// CreateWorkflowRequest describes a workflow to create.
//
// Description, Variables and Configuration are sent only when non-nil, so an
// explicit empty value is distinct from an absent one.
type CreateWorkflowRequest struct {
	Name          string         `json:"name" yaml:"name"`
	Nodes         []Node         `json:"nodes" yaml:"nodes"`
	Connections   []Connection   `json:"connections" yaml:"connections"`
	Description   *string        `json:"description,omitempty" yaml:"description,omitempty"`
	Variables     map[string]any `json:"variables,omitempty" yaml:"variables,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// payload builds the outgoing JSON object.
func (r CreateWorkflowRequest) payload() map[string]any {
	nodes := r.Nodes
	if nodes == nil {
		nodes = []Node{}
	}
	connections := r.Connections
	if connections == nil {
		connections = []Connection{}
	}

	data := map[string]any{
		"name":        r.Name,
		"nodes":       nodes,
		"connections": connections,
	}
	if r.Description != nil {
		data["description"] = *r.Description
	}
	if r.Variables != nil {
		data["variables"] = r.Variables
	}
	if r.Configuration != nil {
		data["configuration"] = r.Configuration
	}
	return data
}

// WebhookSubscription represents a registration forwarding events to a URL
type WebhookSubscription struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	EventTypes []string  `json:"event_types"`
	TargetURL  string    `json:"target_url"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  Timestamp `json:"created_at"`
}

// Subscribes checks if the subscription forwards the given event type
func (w *WebhookSubscription) Subscribes(eventType string) bool {
	for _, et := range w.EventTypes {
		if et == eventType {
			return true
		}
	}
	return false
}

// CreateWebhookRequest describes a webhook subscription to create.
type CreateWebhookRequest struct {
	Name       string            `json:"name" yaml:"name"`
	EventTypes []string          `json:"event_types" yaml:"event_types"`
	TargetURL  string            `json:"target_url" yaml:"target_url"`
	SecretKey  *string           `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

func (r CreateWebhookRequest) payload() map[string]any {
	eventTypes := r.EventTypes
	if eventTypes == nil {
		eventTypes = []string{}
	}

	data := map[string]any{
		"name":        r.Name,
		"event_types": eventTypes,
		"target_url":  r.TargetURL,
	}
	if r.SecretKey != nil {
		data["secret_key"] = *r.SecretKey
	}
	if r.Headers != nil {
		data["headers"] = r.Headers
	}
	return data
}

// Granularity is the time bucket used to aggregate analytics.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// DateLayout is the date format used for analytics ranges.
const DateLayout = "2006-01-02"

// AnalyticsQuery selects usage analytics. An empty Granularity means day.
type AnalyticsQuery struct {
	StartDate   string
	EndDate     string
	Granularity Granularity
}

// UsageRecord is one analytics bucket. Its shape depends on the granularity.
type UsageRecord = map[string]any

// Pagination contains pagination information
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages,omitempty"`
}

// TotalPages returns the number of pages, derived from Total when the server omits it
func (p Pagination) TotalPages() int {
	if p.Pages > 0 {
		return p.Pages
	}
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// HasMorePages checks if there are more pages to fetch
func (p Pagination) HasMorePages() bool {
	return p.Page < p.TotalPages()
}

// NextPage returns the next page number, or an error if there are no more pages
func (p Pagination) NextPage() (int, error) {
	if !p.HasMorePages() {
		return 0, fmt.Errorf("no more pages available")
	}
	return p.Page + 1, nil
}

// PaginatedResponse pairs one page of items with the server's page metadata
type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
