package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/projectpleasure/pleasure/internal/aggregator"
	"github.com/projectpleasure/pleasure/internal/analytics"
)

type Generator struct {
	outputDir string
}

// recentEntries caps the series table at the tail of the year.
const recentEntries = 14

func NewGenerator(outputDir string) *Generator {
	return &Generator{
		outputDir: outputDir,
	}
}

// Generate writes the year report for userID and returns the file path.
func (g *Generator) Generate(userID string, report *analytics.Report) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(g.outputDir, fmt.Sprintf("report-%s-%s.md",
		sanitizeFilename(userID), report.GeneratedAt.Format("2006-01-02")))

	if err := os.WriteFile(filename, []byte(Render(report)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return filename, nil
}

func Render(report *analytics.Report) string {
	var sb strings.Builder

	sb.WriteString("# Year in Review\n\n")
	sb.WriteString(fmt.Sprintf("**Period:** %s to %s\n\n", report.Since, report.GeneratedAt.Format("2006-01-02")))

	badge := report.Badge
	sb.WriteString(fmt.Sprintf("## Badge: %s\n\n", badge.Level))
	sb.WriteString(fmt.Sprintf("**%s**\n\n", badge.Title))
	sb.WriteString(fmt.Sprintf("%s\n\n", badge.Description))

	summary := report.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total sessions:** %d\n", summary.Total))
	sb.WriteString(fmt.Sprintf("- **Average satisfaction:** %.1f\n", summary.AvgSatisfaction))
	sb.WriteString(fmt.Sprintf("- **Longest streak:** %d days\n", summary.MaxStreak))
	sb.WriteString(fmt.Sprintf("- **Badge score:** %.1f\n\n", aggregator.BadgeScore(summary.Total, summary.AvgSatisfaction)))

	sb.WriteString("## Modes\n\n")
	sb.WriteString(fmt.Sprintf("- **Partner:** %d\n", report.ModeSplit.Partner))
	sb.WriteString(fmt.Sprintf("- **Solo:** %d\n\n", report.ModeSplit.Solo))

	sb.WriteString("## Top Emotions\n\n")
	if len(report.TopEmotions) == 0 {
		sb.WriteString("No emotions recorded yet.\n\n")
	} else {
		for i, e := range report.TopEmotions {
			sb.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, e.Emotion, e.Count))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Recent Sessions\n\n")
	series := report.Series
	if len(series) == 0 {
		sb.WriteString("No sessions in this period.\n")
		return sb.String()
	}
	if len(series) > recentEntries {
		series = series[len(series)-recentEntries:]
	}

	sb.WriteString("| Date | Score | Duration | Mode | Partner |\n")
	sb.WriteString("|------|-------|----------|------|---------|\n")
	for _, p := range series {
		partner := "-"
		if p.Partner != nil {
			partner = escapeCell(*p.Partner)
		}
		sb.WriteString(fmt.Sprintf("| %s | %.1f | %d min | %s | %s |\n",
			p.Date, p.Score, p.DurationMinutes, p.Mode, partner))
	}

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sanitizeFilename(s string) string {
	result := unsafeFilenameChars.ReplaceAllString(s, "-")
	result = strings.Trim(result, "-")
	if len(result) > 50 {
		result = result[:50]
	}
	if result == "" {
		result = "unnamed"
	}
	return strings.ToLower(result)
}
