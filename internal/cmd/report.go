package cmd

import (
	"fmt"
	"strings"

	"github.com/projectpleasure/pleasure/internal/output"
	"github.com/spf13/cobra"
)

var (
	reportDBPath string
	reportUser   string
	reportOut    string
	reportStdout bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a user's year report to markdown",
	Long: `Aggregate the last year of a user's activities, derive the badge, and
write the report to <out>/report-<user>-<date>.md.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportDBPath, "db", "", "DuckDB file path (overrides DB_PATH)")
	reportCmd.Flags().StringVarP(&reportUser, "user", "u", "", "User ID to report on")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "reports", "Output directory")
	reportCmd.Flags().BoolVar(&reportStdout, "stdout", false, "Print the report instead of writing a file")
	_ = reportCmd.MarkFlagRequired("user")
}

func runReport(cmd *cobra.Command, args []string) error {
	userID := strings.TrimSpace(reportUser)
	if userID == "" {
		return fmt.Errorf("--user must not be empty")
	}

	cfg, err := loadConfig(cmd, reportDBPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, _, closeDB, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	report, err := svc.Report(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	if reportStdout {
		fmt.Fprint(out, output.Render(report))
		return nil
	}

	path, err := output.NewGenerator(reportOut).Generate(userID, report)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Report for %s since %s\n", userID, report.Since)
	fmt.Fprintf(out, "  - %d sessions, avg %.1f, longest streak %d days\n",
		report.Summary.Total, report.Summary.AvgSatisfaction, report.Summary.MaxStreak)
	fmt.Fprintf(out, "  - badge %s (%s)\n", report.Badge.Level, report.Badge.Title)
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}
