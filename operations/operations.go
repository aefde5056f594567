package operations

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/chainreact/chainreact"
	"github.com/s0up4200/chainreact/filter"
)

// DeleteOptions contains options for bulk deletes
type DeleteOptions struct {
	DryRun        bool
	ConfirmDelete bool
}

// Operations runs the multi-step workflow and webhook tasks the CLI exposes
type Operations struct {
	workflows chainreact.WorkflowAPI
	webhooks  chainreact.WebhookAPI
	analytics chainreact.AnalyticsAPI
	evaluator *filter.Evaluator
	logger    zerolog.Logger
	formatter Formatter
	out       io.Writer
	in        io.Reader
	pageSize  int
}

// Option configures Operations
type Option func(*Operations)

// WithFormatter sets the console formatter used for prompts and summaries
func WithFormatter(formatter Formatter) Option {
	return func(o *Operations) {
		o.formatter = formatter
	}
}

// WithIO sets where prompts are written and answers read
func WithIO(out io.Writer, in io.Reader) Option {
	return func(o *Operations) {
		o.out = out
		o.in = in
	}
}

// WithPageSize sets the page size used when walking every workflow
func WithPageSize(size int) Option {
	return func(o *Operations) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithEvaluator sets the filter evaluator
func WithEvaluator(evaluator *filter.Evaluator) Option {
	return func(o *Operations) {
		o.evaluator = evaluator
	}
}

// NewOperations creates a new Operations instance on top of the given APIs
func NewOperations(workflows chainreact.WorkflowAPI, webhooks chainreact.WebhookAPI, analytics chainreact.AnalyticsAPI, logger zerolog.Logger, opts ...Option) *Operations {
	o := &Operations{
		workflows: workflows,
		webhooks:  webhooks,
		analytics: analytics,
		evaluator: filter.NewEvaluator(),
		logger:    logger,
		formatter: NewConsoleFormatter(false),
		out:       os.Stdout,
		in:        os.Stdin,
		pageSize:  chainreact.DefaultLimit,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// NewFromClient creates Operations backed by a client's services
func NewFromClient(client *chainreact.Client, logger zerolog.Logger, opts ...Option) *Operations {
	return NewOperations(client.Workflows, client.Webhooks, client.Analytics, logger, opts...)
}

// SearchWorkflows fetches every workflow and keeps those matching f, sorted by name.
// A nil filter keeps everything.
func (o *Operations) SearchWorkflows(ctx context.Context, f filter.CompiledFilter) ([]chainreact.Workflow, error) {
	workflows, err := o.workflows.ListAll(ctx, o.pageSize)
	if err != nil {
		return nil, err
	}

	results, err := filter.Select(ctx, o.evaluator, f, workflows, filter.WorkflowEnv)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return strings.ToLower(results[i].Name) < strings.ToLower(results[j].Name)
	})

	o.logger.Info().Msgf("Found %d of %d workflows matching filter", len(results), len(workflows))
	return results, nil
}

// SearchWebhooks fetches every webhook subscription and keeps those matching f
func (o *Operations) SearchWebhooks(ctx context.Context, f filter.CompiledFilter) ([]chainreact.WebhookSubscription, error) {
	hooks, err := o.webhooks.List(ctx)
	if err != nil {
		return nil, err
	}

	results, err := filter.Select(ctx, o.evaluator, f, hooks, filter.WebhookEnv)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return strings.ToLower(results[i].Name) < strings.ToLower(results[j].Name)
	})

	o.logger.Info().Msgf("Found %d of %d webhooks matching filter", len(results), len(hooks))
	return results, nil
}

// WorkflowTargets converts workflows into bulk-operation targets
func WorkflowTargets(workflows []chainreact.Workflow) []Target {
	targets := make([]Target, len(workflows))
	for i, wf := range workflows {
		targets[i] = Target{ID: wf.ID, Name: wf.Name}
	}
	return targets
}

// WebhookTargets converts webhook subscriptions into bulk-operation targets
func WebhookTargets(hooks []chainreact.WebhookSubscription) []Target {
	targets := make([]Target, len(hooks))
	for i, hook := range hooks {
		targets[i] = Target{ID: hook.ID, Name: hook.Name}
	}
	return targets
}

// DeleteWorkflows deletes the targets concurrently. It returns a nil result
// when nothing was attempted (dry run, cancelled or empty).
func (o *Operations) DeleteWorkflows(ctx context.Context, targets []Target, opts DeleteOptions) (*BatchResult, error) {
	return o.deleteTargets(ctx, "workflow", targets, opts, o.workflows.Delete)
}

// DeleteWebhooks deletes the targets concurrently.
func (o *Operations) DeleteWebhooks(ctx context.Context, targets []Target, opts DeleteOptions) (*BatchResult, error) {
	return o.deleteTargets(ctx, "webhook", targets, opts, o.webhooks.Delete)
}

func (o *Operations) deleteTargets(ctx context.Context, kind string, targets []Target, opts DeleteOptions, del func(context.Context, string) error) (*BatchResult, error) {
	if len(targets) == 0 {
		o.logger.Info().Msgf("No %ss to delete", kind)
		return nil, nil
	}

	action := "delete " + kind
	if opts.DryRun {
		o.logger.Info().Msgf("DRY RUN MODE - No %ss will be deleted", kind)
		fmt.Fprint(o.out, o.formatter.FormatTargets(action, targets))
		return nil, nil
	}

	if opts.ConfirmDelete {
		fmt.Fprint(o.out, o.formatter.FormatTargets(action, targets))
		if !o.confirm(fmt.Sprintf("Are you sure you want to delete %d %s(s)?", len(targets), kind)) {
			o.logger.Info().Msg("Deletion cancelled by user")
			return nil, nil
		}
	}

	result := runBatch(ctx, action, targets, DefaultDeleteConcurrency, func(ctx context.Context, t Target) (string, error) {
		return "", del(ctx, t.ID)
	})

	o.logger.Info().
		Int("deleted", len(result.Successful)).
		Int("failed", len(result.Failed)).
		Msg("Deletion complete")

	// Log individual failures
	for _, failure := range result.Failed {
		o.logger.Error().
			Err(failure.Err).
			Str("id", failure.ID).
			Str("name", failure.Name).
			Int("status", chainreact.StatusCode(failure.Err)).
			Msgf("Failed to delete %s", kind)
	}

	return &result, result.ErrorOrNil()
}

// ExecuteWorkflows triggers a run of every target with the same input
func (o *Operations) ExecuteWorkflows(ctx context.Context, targets []Target, input map[string]any) (*BatchResult, error) {
	if len(targets) == 0 {
		o.logger.Info().Msg("No workflows to execute")
		return nil, nil
	}

	result := runBatch(ctx, "execute workflow", targets, DefaultExecuteConcurrency, func(ctx context.Context, t Target) (string, error) {
		return o.workflows.Execute(ctx, t.ID, input)
	})

	for _, item := range result.Successful {
		o.logger.Debug().Str("id", item.ID).Str("execution_id", item.ExecutionID).Msg("Workflow execution started")
	}
	for _, failure := range result.Failed {
		o.logger.Error().Err(failure.Err).Str("id", failure.ID).Msg("Failed to execute workflow")
	}

	o.logger.Info().
		Int("started", len(result.Successful)).
		Int("failed", len(result.Failed)).
		Msg("Execution complete")

	return &result, result.ErrorOrNil()
}

// Usage retrieves usage analytics
func (o *Operations) Usage(ctx context.Context, query chainreact.AnalyticsQuery) ([]chainreact.UsageRecord, error) {
	records, err := o.analytics.GetUsage(ctx, query)
	if err != nil {
		return nil, err
	}

	o.logger.Info().Msgf("Retrieved %d usage records", len(records))
	return records, nil
}

// confirm prompts the user for confirmation
func (o *Operations) confirm(question string) bool {
	fmt.Fprintf(o.out, "\n%s [y/N]: ", question)

	response, _ := bufio.NewReader(o.in).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
