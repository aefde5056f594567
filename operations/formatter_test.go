package operations

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/s0up4200/chainreact/chainreact"
)

func strPtr(s string) *string { return &s }

func TestFormatWorkflowList(t *testing.T) {
	f := NewConsoleFormatter(false)

	assert.Equal(t, "No workflows found\n", f.FormatWorkflowList(nil, nil))

	workflows := []chainreact.Workflow{
		{
			ID:          "wf_1",
			Name:        "Sync leads",
			Description: strPtr("Copies new leads"),
			Status:      "active",
			Nodes:       []chainreact.Node{{"type": "trigger"}, {"type": "http"}},
			Connections: []chainreact.Connection{{"from": "a", "to": "b"}},
			CreatedAt:   "2024-01-02T10:00:00Z",
			UpdatedAt:   "2024-03-04T10:00:00Z",
		},
		{ID: "wf_2", Name: "Nightly report"},
	}

	out := f.FormatWorkflowList(workflows, &chainreact.Pagination{Page: 1, Limit: 2, Total: 5})

	assert.Contains(t, out, "Workflows (2) - page 1 of 3, 5 total:")
	assert.Contains(t, out, "├── Sync leads [active]")
	assert.Contains(t, out, "╰── Nightly report [unknown]")
	assert.Contains(t, out, "Copies new leads")
	assert.Contains(t, out, "Nodes: 2 | Connections: 1")
	assert.Contains(t, out, "Created: 2024-01-02 | Updated: 2024-03-04")
}

func TestFormatWorkflow(t *testing.T) {
	f := NewConsoleFormatter(false)

	out := f.FormatWorkflow(chainreact.Workflow{
		ID:        "wf_1",
		Name:      "Sync leads",
		Status:    "paused",
		Nodes:     []chainreact.Node{{"id": "n1", "type": "trigger"}, {"type": "http"}, {}},
		Variables: map[string]any{"region": "eu", "api": "x"},
	})

	assert.Contains(t, out, "Sync leads [paused]")
	assert.Contains(t, out, "ID:          wf_1")
	assert.Contains(t, out, "Nodes (3):")
	assert.Contains(t, out, "- n1 (trigger)")
	assert.Contains(t, out, "- http")
	assert.Contains(t, out, "- untyped node")
	assert.Contains(t, out, "Variables:   api, region")
	assert.NotContains(t, out, "Description:")
}

func TestFormatWebhooks(t *testing.T) {
	f := NewConsoleFormatter(false)

	assert.Equal(t, "No webhooks found\n", f.FormatWebhookList(nil))

	hook := chainreact.WebhookSubscription{
		ID:         "wh_1",
		Name:       "Ops alerts",
		EventTypes: []string{"workflow.failed", "workflow.completed"},
		TargetURL:  "https://example.com/hook",
		IsActive:   true,
	}

	list := f.FormatWebhookList([]chainreact.WebhookSubscription{hook})
	assert.Contains(t, list, "Webhook (1):")
	assert.Contains(t, list, "Ops alerts [active]")
	assert.Contains(t, list, "Events: workflow.failed, workflow.completed")

	hook.IsActive = false
	single := f.FormatWebhook(hook)
	assert.Contains(t, single, "Ops alerts [inactive]")
	assert.Contains(t, single, "  Target: https://example.com/hook")
}

func TestFormatUsage(t *testing.T) {
	f := NewConsoleFormatter(false)

	assert.Equal(t, "No usage data found\n", f.FormatUsage(nil))

	out := f.FormatUsage([]chainreact.UsageRecord{
		{"executions": 12, "date": "2024-01-01", "errors": 1},
		{"executions": 3, "date": "2024-01-02"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "DATE        ERRORS  EXECUTIONS", lines[0])
	assert.Equal(t, "2024-01-01  1       12", lines[1])
	assert.Equal(t, "2024-01-02          3", lines[2])
}

func TestFormatTargetsAndBatchResult(t *testing.T) {
	f := NewConsoleFormatter(false)

	assert.Empty(t, f.FormatTargets("delete workflow", nil))

	targets := f.FormatTargets("delete workflow", []Target{{ID: "wf_1", Name: "One"}, {ID: "wf_2"}})
	assert.Contains(t, targets, "Items to delete workflow (2):")
	assert.Contains(t, targets, "├── One (ID: wf_1)")
	assert.Contains(t, targets, "╰── wf_2")

	out := f.FormatBatchResult(BatchResult{
		Action:     "execute workflow",
		Requested:  2,
		Successful: []BatchItem{{Target: Target{ID: "wf_1"}, ExecutionID: "exec_1"}},
		Failed:     []BatchError{{Target: Target{ID: "wf_2"}, Err: errors.New("boom")}},
	})
	assert.Contains(t, out, "✓ wf_1 execution exec_1")
	assert.Contains(t, out, "✗ wf_2: boom")
	assert.Contains(t, out, "execute workflow: 1 succeeded, 1 failed")
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "", want: FormatTable},
		{input: "table", want: FormatTable},
		{input: "json", want: FormatJSON},
		{input: "yaml", want: FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinter(t *testing.T) {
	hook := chainreact.WebhookSubscription{ID: "wh_1", Name: "Ops", EventTypes: []string{"workflow.failed"}, TargetURL: "https://example.com"}
	table := func(f Formatter) string { return f.FormatWebhook(hook) }

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatJSON, NewConsoleFormatter(false))
		require.NoError(t, p.Print(hook, table))
		assert.JSONEq(t, `{"id":"wh_1","name":"Ops","event_types":["workflow.failed"],"target_url":"https://example.com","is_active":false,"created_at":""}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatYAML, NewConsoleFormatter(false))
		require.NoError(t, p.Print(hook, table))

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "wh_1", decoded["id"])
		assert.Equal(t, "https://example.com", decoded["target_url"])
		assert.Equal(t, []any{"workflow.failed"}, decoded["event_types"])
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatTable, NewConsoleFormatter(false))
		require.NoError(t, p.Print(hook, table))
		assert.Contains(t, buf.String(), "Ops [inactive]")
		assert.Equal(t, FormatTable, p.Format())
	})

	t.Run("batch result json", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatJSON, NewConsoleFormatter(false))
		result := BatchResult{
			Action:    "delete webhook",
			Requested: 1,
			Failed:    []BatchError{{Target: Target{ID: "wh_1"}, Reason: "boom", Err: errors.New("boom")}},
		}
		require.NoError(t, p.Print(result, func(f Formatter) string { return f.FormatBatchResult(result) }))
		assert.JSONEq(t, `{"action":"delete webhook","requested":1,"successful":null,"failed":[{"id":"wh_1","error":"boom"}]}`, buf.String())
	})
}
