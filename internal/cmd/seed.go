package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/projectpleasure/pleasure/internal/activity"
	"github.com/spf13/cobra"
)

var (
	seedDBPath string
	seedUser   string
	seedDays   int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo activities for a user",
	Long: `Insert a deterministic set of demo activities covering the last N days,
mixing solo and partner sessions, so the API and reports have data to show.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedDBPath, "db", "", "DuckDB file path (overrides DB_PATH)")
	seedCmd.Flags().StringVarP(&seedUser, "user", "u", "demo-user", "User ID to seed")
	seedCmd.Flags().IntVarP(&seedDays, "days", "d", 30, "Number of days to cover")
}

var (
	demoPartners = []string{"Moonfox", "Velvet"}
	demoEmotions = [][]string{
		{"joy", "calm"},
		{"passion"},
		{"calm", "tender"},
		{"joy", "playful", "passion"},
		nil,
	}
)

// demoActivities skips every third day so streaks vary.
func demoActivities(now time.Time, days int) []activity.NewActivity {
	var out []activity.NewActivity
	for i := days - 1; i >= 0; i-- {
		if i%3 == 2 {
			continue
		}
		n := len(out)
		in := activity.NewActivity{
			Date:         activity.FormatDate(activity.Day(now.AddDate(0, 0, -i))),
			Duration:     15 + (n%4)*10,
			Satisfaction: 5 + float64(n%10)/2,
			Emotions:     demoEmotions[n%len(demoEmotions)],
		}
		if n%2 == 0 {
			in.PartnerName = demoPartners[(n/2)%len(demoPartners)]
		}
		out = append(out, in)
	}
	return out
}

func runSeed(cmd *cobra.Command, args []string) error {
	userID := strings.TrimSpace(seedUser)
	if userID == "" {
		return fmt.Errorf("--user must not be empty")
	}
	if seedDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", seedDays)
	}

	cfg, err := loadConfig(cmd, seedDBPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, _, closeDB, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	inputs := demoActivities(time.Now(), seedDays)
	for _, in := range inputs {
		if _, err := svc.RecordActivity(ctx, userID, in); err != nil {
			return fmt.Errorf("failed to seed activity on %s: %w", in.Date, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d activities for %s over %d days\n", len(inputs), userID, seedDays)
	return nil
}
