package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/s0up4200/chainreact/chainreact"
	"github.com/s0up4200/chainreact/config"
	"github.com/s0up4200/chainreact/filter"
	"github.com/s0up4200/chainreact/operations"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	client     *chainreact.Client
	ops        *operations.Operations
	printer    *operations.Printer
	filters    *filter.Manager
	outputFlag string
	dryRun     bool

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chainreact",
	Short: "Manage ChainReact workflows, webhooks and usage analytics",
	Long: `chainreact is a CLI for the ChainReact workflow-automation API. It lets you
list, create, update, delete and execute workflows, manage webhook
subscriptions and pull usage analytics.

Workflows and webhooks can be selected with filter expressions, for example:
  chainreact workflows list --filter 'Status == "active" and daysSince(UpdatedAt) > 30'`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// SetVersion sets the version information reported by the version and update commands
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: table, json or yaml (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "perform a dry run without making changes")

	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	// Override dry-run from command line if specified
	if cmd.Flags().Changed("dry-run") {
		cfg.Safety.DryRun = dryRun
	}

	format := cfg.Output.Format
	if outputFlag != "" {
		format = outputFlag
	}
	outputFormat, err := operations.ParseOutputFormat(format)
	if err != nil {
		return err
	}

	clientOpts := []chainreact.Option{
		chainreact.WithLogger(logger),
		chainreact.WithUserAgent("chainreact-cli/" + version),
	}
	if cfg.API.Timeout > 0 {
		clientOpts = append(clientOpts, chainreact.WithTimeout(cfg.API.Timeout))
	}

	client, err = chainreact.NewClient(cfg.API.Client(), clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ChainReact client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	formatter := operations.NewConsoleFormatter(isTerminal(os.Stdout))
	printer = operations.NewPrinter(os.Stdout, outputFormat, formatter)
	ops = operations.NewFromClient(client, logger,
		operations.WithFormatter(formatter),
		operations.WithPageSize(cfg.Output.PageSize),
		operations.WithEvaluator(filter.NewEvaluator(filter.WithWorkers(cfg.Filter.Workers))),
	)

	logger.Debug().
		Str("base_url", client.Config().BaseURL).
		Str("output", string(outputFormat)).
		Bool("dry_run", cfg.Safety.DryRun).
		Msg("Initialized")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// skipInit replaces the root PersistentPreRunE for commands that need no config
func skipInit(cmd *cobra.Command, args []string) error {
	return nil
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to ChainReact",
	Long:  `Test the connection to the ChainReact API and verify the API key is accepted.`,
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	if path := config.ConfigFile(afero.NewOsFs(), cfgFile); path != "" {
		fmt.Printf("Using config %s\n", path)
	} else {
		fmt.Println("No config file found, using defaults and environment")
	}
	fmt.Printf("Testing connection to ChainReact at %s...\n", client.Config().BaseURL)

	if err := client.Ping(cmd.Context()); err != nil {
		var apiErr *chainreact.Error
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			return fmt.Errorf("the API key was rejected: %w", err)
		}
		return err
	}

	fmt.Println("✓ Connection successful!")

	if names := filters.ListFilters(); len(names) > 0 {
		fmt.Printf("\nFilter presets:\n")
		for _, name := range names {
			f, _ := filters.GetFilter(name)
			fmt.Printf("  • %s: %s\n", name, f.Expression())
		}
	}

	return nil
}

// resolveFilter determines the filter to use.
// Priority: expression and/or preset > default expression from config, which
// only applies when useDefault is set. It returns nil when nothing selects a filter.
func resolveFilter(preset, expression string, useDefault bool) (filter.CompiledFilter, error) {
	if preset == "" && expression == "" && useDefault {
		expression = cfg.Filter.DefaultExpression
	}

	f, err := filters.Resolve(preset, expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if f != nil {
		logger.Info().Str("filter", f.Expression()).Msg("Using filter")
	}
	return f, nil
}
