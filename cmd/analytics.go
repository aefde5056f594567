package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/chainreact/chainreact"
	"github.com/s0up4200/chainreact/operations"
)

var (
	usageStart       string
	usageEnd         string
	usageGranularity string
)

// analyticsCmd groups the analytics commands
var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Usage analytics",
}

var analyticsUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show usage analytics",
	Long: `Show usage analytics aggregated by day, week or month.

Dates accept most common layouts (2024-01-31, 01/31/2024, "Jan 31 2024")
and are sent as YYYY-MM-DD.`,
	Args: cobra.NoArgs,
	RunE: runAnalyticsUsage,
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
	analyticsCmd.AddCommand(analyticsUsageCmd)

	analyticsUsageCmd.Flags().StringVar(&usageStart, "start", "", "first day of the range")
	analyticsUsageCmd.Flags().StringVar(&usageEnd, "end", "", "last day of the range")
	analyticsUsageCmd.Flags().StringVarP(&usageGranularity, "granularity", "g", string(chainreact.GranularityDay), "day, week or month")
}

// usageQuery builds the analytics query from raw flag values
func usageQuery(start, end, granularity string) (chainreact.AnalyticsQuery, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return chainreact.AnalyticsQuery{}, fmt.Errorf("--start: %w", err)
	}
	endDate, err := parseDate(end)
	if err != nil {
		return chainreact.AnalyticsQuery{}, fmt.Errorf("--end: %w", err)
	}
	if startDate != "" && endDate != "" && endDate < startDate {
		return chainreact.AnalyticsQuery{}, fmt.Errorf("--end %s is before --start %s", endDate, startDate)
	}

	query := chainreact.AnalyticsQuery{
		StartDate:   startDate,
		EndDate:     endDate,
		Granularity: chainreact.Granularity(granularity),
	}
	return query, query.Validate()
}

func runAnalyticsUsage(cmd *cobra.Command, args []string) error {
	query, err := usageQuery(usageStart, usageEnd, usageGranularity)
	if err != nil {
		return err
	}

	records, err := ops.Usage(cmd.Context(), query)
	if err != nil {
		return err
	}

	return printer.Print(records, func(fm operations.Formatter) string {
		return fm.FormatUsage(records)
	})
}
