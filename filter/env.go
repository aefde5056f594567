package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/s0up4200/chainreact/chainreact"
)

// WorkflowEnv exposes a workflow to filter expressions.
//
// Variables: ID, Name, Description, Status, NodeCount, NodeTypes,
// ConnectionCount, Variables, Configuration, CreatedAt, UpdatedAt, Workflow.
// Functions: hasNode(type), hasVariable(name).
func WorkflowEnv(wf chainreact.Workflow) Env {
	nodeTypes := wf.NodeTypes()
	return Env{
		"Workflow":        wf,
		"ID":              wf.ID,
		"Name":            wf.Name,
		"Description":     wf.GetDescription(),
		"Status":          wf.Status,
		"NodeCount":       len(wf.Nodes),
		"NodeTypes":       nodeTypes,
		"ConnectionCount": len(wf.Connections),
		"Variables":       wf.Variables,
		"Configuration":   wf.Configuration,
		"CreatedAt":       timestamp(wf.CreatedAt),
		"UpdatedAt":       timestamp(wf.UpdatedAt),

		"hasNode":     createHasFunc(nodeTypes),
		"hasVariable": createHasKeyFunc(wf.Variables),
	}
}

// WebhookEnv exposes a webhook subscription to filter expressions.
//
// Variables: ID, Name, TargetURL, EventTypes, IsActive, CreatedAt, Webhook.
// Functions: hasEvent(type).
func WebhookEnv(hook chainreact.WebhookSubscription) Env {
	return Env{
		"Webhook":    hook,
		"ID":         hook.ID,
		"Name":       hook.Name,
		"TargetURL":  hook.TargetURL,
		"EventTypes": hook.EventTypes,
		"IsActive":   hook.IsActive,
		"CreatedAt":  timestamp(hook.CreatedAt),

		"hasEvent": createHasFunc(hook.EventTypes),
	}
}

// timestamp parses ts, yielding the zero time when the server sent none.
func timestamp(ts chainreact.Timestamp) time.Time {
	t, err := ts.Time()
	if err != nil {
		return time.Time{}
	}
	return t
}

func createHasFunc(values []string) func(string) bool {
	// Pre-convert to lowercase for case-insensitive comparison
	lower := make([]string, len(values))
	for i, v := range values {
		lower[i] = strings.ToLower(v)
	}
	return func(v string) bool {
		return slices.Contains(lower, strings.ToLower(v))
	}
}

func createHasKeyFunc(m map[string]any) func(string) bool {
	return func(key string) bool {
		_, ok := m[key]
		return ok
	}
}
