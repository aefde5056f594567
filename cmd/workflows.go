package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/chainreact/chainreact"
	"github.com/s0up4200/chainreact/operations"
)

var (
	// Shared selection flags
	filterExpr string
	preset     string
	noConfirm  bool

	// workflows list
	listPage  int
	listLimit int
	listAll   bool

	// workflows create / update
	workflowFile        string
	workflowName        string
	workflowDescription string
	workflowStatus      string
	setFields           []string
	nullFields          []string

	// workflows execute
	executeInput     string
	executeInputFile string
)

// workflowsCmd groups the workflow commands
var workflowsCmd = &cobra.Command{
	Use:     "workflows",
	Aliases: []string{"workflow", "wf"},
	Short:   "Manage workflows",
}

var workflowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflows",
	Long: `List workflows one page at a time, or every workflow with --all.

With --filter or --preset every workflow is fetched and only those matching the
expression are shown. Available variables: ID, Name, Description, Status,
NodeCount, NodeTypes, ConnectionCount, Variables, Configuration, CreatedAt,
UpdatedAt. Functions: hasNode(type), hasVariable(name), daysSince(date),
icontains(s, sub).`,
	Args: cobra.NoArgs,
	RunE: runWorkflowsList,
}

var workflowsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a workflow",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowsGet,
}

var workflowsCreateCmd = &cobra.Command{
	Use:   "create -f FILE",
	Short: "Create a workflow from a JSON or YAML definition",
	Long: `Create a workflow from a JSON or YAML file ("-" reads stdin). The document
holds name, nodes, connections and optionally description, variables and
configuration. --name and --description override the document.`,
	Args: cobra.NoArgs,
	RunE: runWorkflowsCreate,
}

var workflowsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update selected fields of a workflow",
	Long: `Send a partial update. Only the fields you set are sent; everything else is
left unchanged on the server.

  chainreact workflows update wf_123 --status paused
  chainreact workflows update wf_123 --set variables='{region: eu}' --null description
  chainreact workflows update wf_123 -f patch.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflowsUpdate,
}

var workflowsDeleteCmd = &cobra.Command{
	Use:   "delete [ID...]",
	Short: "Delete workflows by id or by filter",
	RunE:  runWorkflowsDelete,
}

var workflowsExecuteCmd = &cobra.Command{
	Use:   "execute ID...",
	Short: "Trigger workflow executions",
	Long: `Trigger one execution per workflow id. The same input is passed to every run.

  chainreact workflows execute wf_1 wf_2 --input '{"source": "cli"}'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWorkflowsExecute,
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
	workflowsCmd.AddCommand(workflowsListCmd, workflowsGetCmd, workflowsCreateCmd,
		workflowsUpdateCmd, workflowsDeleteCmd, workflowsExecuteCmd)

	workflowsListCmd.Flags().IntVar(&listPage, "page", chainreact.DefaultPage, "page to fetch")
	workflowsListCmd.Flags().IntVar(&listLimit, "limit", 0, "items per page (default from config)")
	workflowsListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "fetch every page")
	workflowsListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	workflowsListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")

	workflowsCreateCmd.Flags().StringVarP(&workflowFile, "file", "f", "", "workflow definition (JSON or YAML, - for stdin)")
	workflowsCreateCmd.Flags().StringVar(&workflowName, "name", "", "workflow name")
	workflowsCreateCmd.Flags().StringVar(&workflowDescription, "description", "", "workflow description")
	_ = workflowsCreateCmd.MarkFlagRequired("file")

	workflowsUpdateCmd.Flags().StringVarP(&workflowFile, "file", "f", "", "patch document (JSON or YAML, - for stdin)")
	workflowsUpdateCmd.Flags().StringVar(&workflowName, "name", "", "new name")
	workflowsUpdateCmd.Flags().StringVar(&workflowDescription, "description", "", "new description")
	workflowsUpdateCmd.Flags().StringVar(&workflowStatus, "status", "", "new status")
	workflowsUpdateCmd.Flags().StringArrayVar(&setFields, "set", nil, "set a field, key=value (repeatable)")
	workflowsUpdateCmd.Flags().StringArrayVar(&nullFields, "null", nil, "set a field to null (repeatable)")

	workflowsDeleteCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "delete workflows matching this expression")
	workflowsDeleteCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	workflowsDeleteCmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip confirmation prompt")

	workflowsExecuteCmd.Flags().StringVarP(&executeInput, "input", "i", "", "execution input as a JSON or YAML object")
	workflowsExecuteCmd.Flags().StringVar(&executeInputFile, "input-file", "", "read execution input from a file (- for stdin)")
}

func runWorkflowsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// An explicit page request is not overridden by the default expression
	f, err := resolveFilter(preset, filterExpr, !pageRequested(cmd))
	if err != nil {
		return err
	}

	if listAll || f != nil {
		workflows, err := ops.SearchWorkflows(ctx, f)
		if err != nil {
			return err
		}
		return printer.Print(workflows, func(fm operations.Formatter) string {
			return fm.FormatWorkflowList(workflows, nil)
		})
	}

	limit := listLimit
	if limit <= 0 {
		limit = cfg.Output.PageSize
	}

	page, err := client.Workflows.List(ctx, chainreact.ListOptions{Page: listPage, Limit: limit})
	if err != nil {
		return err
	}

	return printer.Print(page, func(fm operations.Formatter) string {
		return fm.FormatWorkflowList(page.Data, &page.Pagination)
	})
}

// pageRequested reports whether --page or --limit was given
func pageRequested(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("page") || cmd.Flags().Changed("limit")
}

func runWorkflowsGet(cmd *cobra.Command, args []string) error {
	wf, err := client.Workflows.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return printer.Print(wf, func(fm operations.Formatter) string {
		return fm.FormatWorkflow(*wf)
	})
}

func runWorkflowsCreate(cmd *cobra.Command, args []string) error {
	var req chainreact.CreateWorkflowRequest
	if err := readDocument(workflowFile, &req); err != nil {
		return err
	}

	if cmd.Flags().Changed("name") {
		req.Name = workflowName
	}
	if cmd.Flags().Changed("description") {
		req.Description = &workflowDescription
	}

	if cfg.Safety.DryRun {
		logger.Info().Str("name", req.Name).Int("nodes", len(req.Nodes)).Msg("DRY RUN MODE - workflow not created")
		return req.Validate()
	}

	wf, err := client.Workflows.Create(cmd.Context(), req)
	if err != nil {
		return err
	}

	logger.Info().Str("id", wf.ID).Str("name", wf.Name).Msg("Workflow created")
	return printer.Print(wf, func(fm operations.Formatter) string {
		return fm.FormatWorkflow(*wf)
	})
}

// buildWorkflowUpdate collects the update from flags, a patch document and
// --set/--null. Explicit flags win over --set, which wins over the document.
func buildWorkflowUpdate(cmd *cobra.Command) (chainreact.WorkflowUpdate, error) {
	var update chainreact.WorkflowUpdate

	extra := make(map[string]any)
	if workflowFile != "" {
		var doc map[string]any
		if err := readDocument(workflowFile, &doc); err != nil {
			return update, err
		}
		for k, v := range doc {
			extra[k] = v
		}
	}

	assigned, err := parseAssignments(setFields)
	if err != nil {
		return update, err
	}
	for k, v := range assigned {
		extra[k] = v
	}
	for _, key := range nullFields {
		extra[key] = nil
	}

	// Extra wins over typed fields, so drop keys an explicit flag sets
	if cmd.Flags().Changed("name") {
		update.Name = chainreact.Set(workflowName)
		delete(extra, "name")
	}
	if cmd.Flags().Changed("description") {
		update.Description = chainreact.Set(workflowDescription)
		delete(extra, "description")
	}
	if cmd.Flags().Changed("status") {
		update.Status = chainreact.Set(workflowStatus)
		delete(extra, "status")
	}
	if len(extra) > 0 {
		update.Extra = extra
	}

	if update.IsEmpty() {
		return update, fmt.Errorf("nothing to update: use --name, --description, --status, --set, --null or --file")
	}
	return update, nil
}

func runWorkflowsUpdate(cmd *cobra.Command, args []string) error {
	update, err := buildWorkflowUpdate(cmd)
	if err != nil {
		return err
	}

	if cfg.Safety.DryRun {
		logger.Info().Str("id", args[0]).Interface("fields", update.Fields()).Msg("DRY RUN MODE - workflow not updated")
		return nil
	}

	wf, err := client.Workflows.Update(cmd.Context(), args[0], update)
	if err != nil {
		return err
	}

	logger.Info().Str("id", wf.ID).Msg("Workflow updated")
	return printer.Print(wf, func(fm operations.Formatter) string {
		return fm.FormatWorkflow(*wf)
	})
}

func runWorkflowsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	targets, err := workflowDeleteTargets(cmd, args)
	if err != nil {
		return err
	}

	result, err := ops.DeleteWorkflows(ctx, targets, operations.DeleteOptions{
		DryRun:        cfg.Safety.DryRun,
		ConfirmDelete: cfg.Safety.ConfirmDelete && !noConfirm,
	})
	return printBatchResult(result, err)
}

// workflowDeleteTargets selects workflows either by explicit id or by filter.
// The config default expression never selects workflows for deletion.
func workflowDeleteTargets(cmd *cobra.Command, args []string) ([]operations.Target, error) {
	if len(args) > 0 {
		if filterExpr != "" || preset != "" {
			return nil, fmt.Errorf("pass either workflow ids or --filter/--preset, not both")
		}
		return operations.TargetsFromIDs(args), nil
	}

	f, err := filters.Resolve(preset, filterExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if f == nil {
		return nil, fmt.Errorf("no workflows selected: pass ids or --filter/--preset")
	}

	logger.Info().Str("filter", f.Expression()).Msg("Searching workflows to delete")
	workflows, err := ops.SearchWorkflows(cmd.Context(), f)
	if err != nil {
		return nil, err
	}
	return operations.WorkflowTargets(workflows), nil
}

func runWorkflowsExecute(cmd *cobra.Command, args []string) error {
	input, err := parseInput(executeInput, executeInputFile)
	if err != nil {
		return err
	}

	targets := operations.TargetsFromIDs(args)
	if cfg.Safety.DryRun {
		logger.Info().Strs("ids", args).Msg("DRY RUN MODE - no workflows executed")
		fmt.Print(operations.NewConsoleFormatter(false).FormatTargets("execute workflow", targets))
		return nil
	}

	result, err := ops.ExecuteWorkflows(cmd.Context(), targets, input)
	return printBatchResult(result, err)
}

// printBatchResult prints a bulk result, if any, and passes err through
func printBatchResult(result *operations.BatchResult, err error) error {
	if result == nil {
		return err
	}

	if printErr := printer.Print(result, func(fm operations.Formatter) string {
		return fm.FormatBatchResult(*result)
	}); printErr != nil {
		return printErr
	}
	return err
}
