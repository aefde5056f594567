package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/chainreact/chainreact"
	"github.com/s0up4200/chainreact/operations"
)

var (
	webhookName    string
	webhookURL     string
	webhookEvents  []string
	webhookSecret  string
	webhookHeaders []string
	webhookActive  bool
)

// webhooksCmd groups the webhook subscription commands
var webhooksCmd = &cobra.Command{
	Use:     "webhooks",
	Aliases: []string{"webhook", "wh"},
	Short:   "Manage webhook subscriptions",
}

var webhooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List webhook subscriptions",
	Long: `List webhook subscriptions, optionally filtered by an expression.

Available variables: ID, Name, TargetURL, EventTypes, IsActive, CreatedAt.
Functions: hasEvent(type), daysSince(date), icontains(s, sub).`,
	Args: cobra.NoArgs,
	RunE: runWebhooksList,
}

var webhooksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Subscribe a URL to workflow events",
	Long: `Create a webhook subscription.

  chainreact webhooks create --name alerts --event workflow.failed --url https://example.com/hook`,
	Args: cobra.NoArgs,
	RunE: runWebhooksCreate,
}

var webhooksUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update selected fields of a webhook subscription",
	Args:  cobra.ExactArgs(1),
	RunE:  runWebhooksUpdate,
}

var webhooksDeleteCmd = &cobra.Command{
	Use:   "delete [ID...]",
	Short: "Delete webhook subscriptions by id or by filter",
	RunE:  runWebhooksDelete,
}

func init() {
	rootCmd.AddCommand(webhooksCmd)
	webhooksCmd.AddCommand(webhooksListCmd, webhooksCreateCmd, webhooksUpdateCmd, webhooksDeleteCmd)

	webhooksListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	webhooksListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")

	for _, c := range []*cobra.Command{webhooksCreateCmd, webhooksUpdateCmd} {
		c.Flags().StringVar(&webhookName, "name", "", "subscription name")
		c.Flags().StringVar(&webhookURL, "url", "", "target URL events are posted to")
		c.Flags().StringSliceVarP(&webhookEvents, "event", "e", nil, "event type (repeatable or comma-separated)")
		c.Flags().StringVar(&webhookSecret, "secret", "", "secret used to sign deliveries")
		c.Flags().StringArrayVar(&webhookHeaders, "header", nil, "extra delivery header, key=value (repeatable)")
	}
	_ = webhooksCreateCmd.MarkFlagRequired("name")
	_ = webhooksCreateCmd.MarkFlagRequired("url")
	_ = webhooksCreateCmd.MarkFlagRequired("event")

	webhooksUpdateCmd.Flags().BoolVar(&webhookActive, "active", true, "enable or disable the subscription")
	webhooksUpdateCmd.Flags().StringArrayVar(&setFields, "set", nil, "set a field, key=value (repeatable)")
	webhooksUpdateCmd.Flags().StringArrayVar(&nullFields, "null", nil, "set a field to null (repeatable)")

	webhooksDeleteCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "delete webhooks matching this expression")
	webhooksDeleteCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	webhooksDeleteCmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip confirmation prompt")
}

func runWebhooksList(cmd *cobra.Command, args []string) error {
	f, err := resolveFilter(preset, filterExpr, true)
	if err != nil {
		return err
	}

	hooks, err := ops.SearchWebhooks(cmd.Context(), f)
	if err != nil {
		return err
	}

	return printer.Print(hooks, func(fm operations.Formatter) string {
		return fm.FormatWebhookList(hooks)
	})
}

func runWebhooksCreate(cmd *cobra.Command, args []string) error {
	headers, err := parseHeaders(webhookHeaders)
	if err != nil {
		return err
	}

	req := chainreact.CreateWebhookRequest{
		Name:       webhookName,
		EventTypes: webhookEvents,
		TargetURL:  webhookURL,
		Headers:    headers,
	}
	if cmd.Flags().Changed("secret") {
		req.SecretKey = &webhookSecret
	}

	if cfg.Safety.DryRun {
		logger.Info().Str("name", req.Name).Strs("events", req.EventTypes).Msg("DRY RUN MODE - webhook not created")
		return req.Validate()
	}

	hook, err := client.Webhooks.Create(cmd.Context(), req)
	if err != nil {
		return err
	}

	logger.Info().Str("id", hook.ID).Str("name", hook.Name).Msg("Webhook created")
	return printer.Print(hook, func(fm operations.Formatter) string {
		return fm.FormatWebhook(*hook)
	})
}

func buildWebhookUpdate(cmd *cobra.Command) (chainreact.WebhookUpdate, error) {
	var update chainreact.WebhookUpdate

	extra, err := parseAssignments(setFields)
	if err != nil {
		return update, err
	}
	for _, key := range nullFields {
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key] = nil
	}

	// Extra wins over typed fields, so drop keys an explicit flag sets
	flags := cmd.Flags()
	if flags.Changed("name") {
		update.Name = chainreact.Set(webhookName)
		delete(extra, "name")
	}
	if flags.Changed("url") {
		update.TargetURL = chainreact.Set(webhookURL)
		delete(extra, "target_url")
	}
	if flags.Changed("event") {
		update.EventTypes = chainreact.Set(webhookEvents)
		delete(extra, "event_types")
	}
	if flags.Changed("active") {
		update.IsActive = chainreact.Set(webhookActive)
		delete(extra, "is_active")
	}
	if flags.Changed("secret") {
		update.SecretKey = chainreact.Set(webhookSecret)
		delete(extra, "secret_key")
	}
	if flags.Changed("header") {
		headers, err := parseHeaders(webhookHeaders)
		if err != nil {
			return update, err
		}
		update.Headers = chainreact.Set(headers)
		delete(extra, "headers")
	}
	if len(extra) > 0 {
		update.Extra = extra
	}

	if update.IsEmpty() {
		return update, fmt.Errorf("nothing to update: use --name, --url, --event, --active, --secret, --header, --set or --null")
	}
	return update, nil
}

func runWebhooksUpdate(cmd *cobra.Command, args []string) error {
	update, err := buildWebhookUpdate(cmd)
	if err != nil {
		return err
	}

	if cfg.Safety.DryRun {
		logger.Info().Str("id", args[0]).Interface("fields", update.Fields()).Msg("DRY RUN MODE - webhook not updated")
		return nil
	}

	hook, err := client.Webhooks.Update(cmd.Context(), args[0], update)
	if err != nil {
		return err
	}

	logger.Info().Str("id", hook.ID).Msg("Webhook updated")
	return printer.Print(hook, func(fm operations.Formatter) string {
		return fm.FormatWebhook(*hook)
	})
}

func runWebhooksDelete(cmd *cobra.Command, args []string) error {
	var targets []operations.Target

	if len(args) > 0 {
		if filterExpr != "" || preset != "" {
			return fmt.Errorf("pass either webhook ids or --filter/--preset, not both")
		}
		targets = operations.TargetsFromIDs(args)
	} else {
		f, err := filters.Resolve(preset, filterExpr)
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		if f == nil {
			return fmt.Errorf("no webhooks selected: pass ids or --filter/--preset")
		}

		hooks, err := ops.SearchWebhooks(cmd.Context(), f)
		if err != nil {
			return err
		}
		targets = operations.WebhookTargets(hooks)
	}

	result, err := ops.DeleteWebhooks(cmd.Context(), targets, operations.DeleteOptions{
		DryRun:        cfg.Safety.DryRun,
		ConfirmDelete: cfg.Safety.ConfirmDelete && !noConfirm,
	})
	return printBatchResult(result, err)
}
