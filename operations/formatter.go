package operations

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/s0up4200/chainreact/chainreact"
)

// Formatter renders results for console display
type Formatter interface {
	FormatWorkflowList(workflows []chainreact.Workflow, page *chainreact.Pagination) string
	FormatWorkflow(wf chainreact.Workflow) string
	FormatWebhookList(hooks []chainreact.WebhookSubscription) string
	FormatWebhook(hook chainreact.WebhookSubscription) string
	FormatUsage(records []chainreact.UsageRecord) string
	FormatTargets(action string, targets []Target) string
	FormatBatchResult(result BatchResult) string
}

// Console styles
var (
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

// ConsoleFormatter provides tree-style console output
type ConsoleFormatter struct {
	color bool
}

// NewConsoleFormatter creates a new console formatter. Styles are only
// applied when color is true.
func NewConsoleFormatter(color bool) *ConsoleFormatter {
	return &ConsoleFormatter{color: color}
}

func (f *ConsoleFormatter) render(style lipgloss.Style, s string) string {
	if !f.color {
		return s
	}
	return style.Render(s)
}

func (f *ConsoleFormatter) status(status string) string {
	switch strings.ToLower(status) {
	case "active", "enabled":
		return f.render(styleOK, status)
	case "paused", "draft", "inactive":
		return f.render(styleWarn, status)
	case "error", "failed", "disabled":
		return f.render(styleError, status)
	case "":
		return f.render(styleMuted, "unknown")
	default:
		return status
	}
}

func plural(n int, singular string) string {
	if n == 1 {
		return singular
	}
	return singular + "s"
}

func treePrefix(isLast bool) (branch, indent string) {
	if isLast {
		return "\u2570", "    "
	}
	return "\u251c", "\u2502   "
}

func formatDate(ts chainreact.Timestamp) string {
	t, err := ts.Time()
	if err != nil {
		return string(ts)
	}
	return t.Format(chainreact.DateLayout)
}

// FormatWorkflowList formats a list of workflows
func (f *ConsoleFormatter) FormatWorkflowList(workflows []chainreact.Workflow, page *chainreact.Pagination) string {
	if len(workflows) == 0 {
		return "No workflows found\n"
	}

	var sb strings.Builder

	header := fmt.Sprintf("%s (%d)", plural(len(workflows), "Workflow"), len(workflows))
	if page != nil {
		header += fmt.Sprintf(" - page %d of %d, %d total", page.Page, max(page.TotalPages(), 1), page.Total)
	}
	fmt.Fprintf(&sb, "\n%s:\n\n", f.render(styleHeader, header))

	for i, wf := range workflows {
		isLast := i == len(workflows)-1
		branch, indent := treePrefix(isLast)

		fmt.Fprintf(&sb, "%s\u2500\u2500 %s [%s]\n", branch, wf.Name, f.status(wf.Status))
		fmt.Fprintf(&sb, "%s%s\n", indent, f.render(styleMuted, "ID: "+wf.ID))

		if desc := wf.GetDescription(); desc != "" {
			fmt.Fprintf(&sb, "%s%s\n", indent, desc)
		}

		fmt.Fprintf(&sb, "%sNodes: %d | Connections: %d\n", indent, len(wf.Nodes), len(wf.Connections))

		var dateParts []string
		if wf.CreatedAt != "" {
			dateParts = append(dateParts, "Created: "+formatDate(wf.CreatedAt))
		}
		if wf.UpdatedAt != "" && wf.UpdatedAt != wf.CreatedAt {
			dateParts = append(dateParts, "Updated: "+formatDate(wf.UpdatedAt))
		}
		if len(dateParts) > 0 {
			fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(dateParts, " | "))
		}

		if !isLast {
			sb.WriteString("\u2502\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatWorkflow formats a single workflow with its graph summary
func (f *ConsoleFormatter) FormatWorkflow(wf chainreact.Workflow) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s [%s]\n", f.render(styleHeader, wf.Name), f.status(wf.Status))
	fmt.Fprintf(&sb, "  ID:          %s\n", wf.ID)
	if desc := wf.GetDescription(); desc != "" {
		fmt.Fprintf(&sb, "  Description: %s\n", desc)
	}
	if wf.CreatedAt != "" {
		fmt.Fprintf(&sb, "  Created:     %s\n", formatDate(wf.CreatedAt))
	}
	if wf.UpdatedAt != "" {
		fmt.Fprintf(&sb, "  Updated:     %s\n", formatDate(wf.UpdatedAt))
	}

	fmt.Fprintf(&sb, "  Nodes (%d):\n", len(wf.Nodes))
	for _, node := range wf.Nodes {
		id, _ := node["id"].(string)
		nodeType, _ := node["type"].(string)
		switch {
		case id != "" && nodeType != "":
			fmt.Fprintf(&sb, "    - %s (%s)\n", id, nodeType)
		case nodeType != "":
			fmt.Fprintf(&sb, "    - %s\n", nodeType)
		default:
			fmt.Fprintf(&sb, "    - %s\n", f.render(styleMuted, "untyped node"))
		}
	}
	fmt.Fprintf(&sb, "  Connections: %d\n", len(wf.Connections))

	if len(wf.Variables) > 0 {
		fmt.Fprintf(&sb, "  Variables:   %s\n", strings.Join(slices.Sorted(maps.Keys(wf.Variables)), ", "))
	}

	return sb.String()
}

// FormatWebhookList formats a list of webhook subscriptions
func (f *ConsoleFormatter) FormatWebhookList(hooks []chainreact.WebhookSubscription) string {
	if len(hooks) == 0 {
		return "No webhooks found\n"
	}

	var sb strings.Builder
	header := fmt.Sprintf("%s (%d)", plural(len(hooks), "Webhook"), len(hooks))
	fmt.Fprintf(&sb, "\n%s:\n\n", f.render(styleHeader, header))

	for i, hook := range hooks {
		isLast := i == len(hooks)-1
		branch, indent := treePrefix(isLast)

		fmt.Fprintf(&sb, "%s\u2500\u2500 %s [%s]\n", branch, hook.Name, f.status(activeLabel(hook.IsActive)))
		sb.WriteString(f.webhookDetails(hook, indent))

		if !isLast {
			sb.WriteString("\u2502\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatWebhook formats a single webhook subscription
func (f *ConsoleFormatter) FormatWebhook(hook chainreact.WebhookSubscription) string {
	return fmt.Sprintf("\n%s [%s]\n%s", f.render(styleHeader, hook.Name),
		f.status(activeLabel(hook.IsActive)), f.webhookDetails(hook, "  "))
}

func (f *ConsoleFormatter) webhookDetails(hook chainreact.WebhookSubscription, indent string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s\n", indent, f.render(styleMuted, "ID: "+hook.ID))
	fmt.Fprintf(&sb, "%sTarget: %s\n", indent, hook.TargetURL)
	fmt.Fprintf(&sb, "%sEvents: %s\n", indent, strings.Join(hook.EventTypes, ", "))
	if hook.CreatedAt != "" {
		fmt.Fprintf(&sb, "%sCreated: %s\n", indent, formatDate(hook.CreatedAt))
	}
	return sb.String()
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// FormatUsage formats analytics records. Columns are the union of the
// record keys, with date-like keys first.
func (f *ConsoleFormatter) FormatUsage(records []chainreact.UsageRecord) string {
	if len(records) == 0 {
		return "No usage data found\n"
	}

	keySet := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			keySet[k] = struct{}{}
		}
	}
	columns := slices.SortedFunc(maps.Keys(keySet), func(a, b string) int {
		ra, rb := columnRank(a), columnRank(b)
		if ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})

	rows := make([][]string, len(records))
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for r, record := range records {
		rows[r] = make([]string, len(columns))
		for i, c := range columns {
			cell := ""
			if v, ok := record[c]; ok && v != nil {
				cell = fmt.Sprint(v)
			}
			rows[r][i] = cell
			widths[i] = max(widths[i], len(cell))
		}
	}

	var sb strings.Builder
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = fmt.Sprintf("%-*s", widths[i], strings.ToUpper(c))
	}
	fmt.Fprintf(&sb, "%s\n", f.render(styleHeader, strings.TrimRight(strings.Join(header, "  "), " ")))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintf(&sb, "%s\n", strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	return sb.String()
}

func columnRank(key string) int {
	switch key {
	case "date", "period", "start_date":
		return 0
	case "end_date":
		return 1
	default:
		return 2
	}
}

// FormatTargets formats the items a bulk operation is about to touch
func (f *ConsoleFormatter) FormatTargets(action string, targets []Target) string {
	if len(targets) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n\n", f.render(styleHeader, fmt.Sprintf("%s to %s (%d):", plural(len(targets), "Item"), action, len(targets))))

	for i, target := range targets {
		branch, _ := treePrefix(i == len(targets)-1)
		fmt.Fprintf(&sb, "%s\u2500\u2500 %s\n", branch, target)
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatBatchResult formats the outcome of a bulk operation
func (f *ConsoleFormatter) FormatBatchResult(result BatchResult) string {
	var sb strings.Builder

	for _, item := range result.Successful {
		line := fmt.Sprintf("%s %s", f.render(styleOK, "\u2713"), item.Target)
		if item.ExecutionID != "" {
			line += " " + f.render(styleMuted, "execution "+item.ExecutionID)
		}
		sb.WriteString(line + "\n")
	}
	for _, failure := range result.Failed {
		fmt.Fprintf(&sb, "%s %s: %v\n", f.render(styleError, "\u2717"), failure.Target, failure.Err)
	}

	summary := fmt.Sprintf("%s: %d succeeded, %d failed", result.Action, len(result.Successful), len(result.Failed))
	if len(result.Failed) > 0 {
		summary = f.render(styleWarn, summary)
	} else {
		summary = f.render(styleOK, summary)
	}
	sb.WriteString(summary + "\n")

	return sb.String()
}
