package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pleasure",
	Short: "Private activity tracker and analytics service",
	Long: `pleasure records private activity sessions and turns them into trend
analytics: satisfaction series, emotion histograms, streaks and badges.
It serves a JSON API and can render a year report to markdown.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false
}
