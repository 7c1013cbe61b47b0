package aggregator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/projectpleasure/pleasure/internal/activity"
	"github.com/projectpleasure/pleasure/internal/apperr"
)

type Config struct {
	Tiers []Tier
}

func DefaultConfig() Config {
	return Config{
		Tiers: DefaultTiers(),
	}
}

// Aggregator holds no state between calls; one instance may serve concurrent requests.
type Aggregator struct {
	config Config
}

func NewAggregator(cfg Config) *Aggregator {
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = DefaultTiers()
	}
	return &Aggregator{config: cfg}
}

type Point struct {
	Date            string        `json:"date"`
	Score           float64       `json:"score"`
	DurationMinutes int           `json:"duration"`
	Mode            activity.Mode `json:"mode"`
	Partner         *string       `json:"partner"`
}

type ModeSplit struct {
	Partner int `json:"partner"`
	Solo    int `json:"solo"`
}

type Summary struct {
	Total           int     `json:"total"`
	AvgSatisfaction float64 `json:"avg"`
	MaxStreak       int     `json:"maxStreak"`
}

type Result struct {
	Series           []Point        `json:"entries"`
	EmotionHistogram map[string]int `json:"emotions"`
	ModeSplit        ModeSplit      `json:"modeCount"`
	Summary          Summary        `json:"summary"`
	Badge            Badge          `json:"-"`
}

// Empty is the result for a user with no records.
func Empty() *Result {
	return &Result{
		Series:           []Point{},
		EmotionHistogram: map[string]int{},
		Badge:            DeriveBadge(Summary{}),
	}
}

// Aggregate validates records and computes every derived statistic.
// records are never modified.
func (a *Aggregator) Aggregate(records []activity.Record) (*Result, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}

	summary := ComputeSummary(records)
	return &Result{
		Series:           BuildSeries(records),
		EmotionHistogram: BuildEmotionHistogram(records),
		ModeSplit:        BuildModeSplit(records),
		Summary:          summary,
		Badge:            a.Badge(summary),
	}, nil
}

func Validate(records []activity.Record) error {
	for i, rec := range records {
		if !rec.Mode.IsValid() {
			return fmt.Errorf("record %d: unknown mode %q: %w", i, rec.Mode, apperr.ErrInvalidRecord)
		}
		if rec.SatisfactionScore < 0 || math.IsNaN(rec.SatisfactionScore) || math.IsInf(rec.SatisfactionScore, 0) {
			return fmt.Errorf("record %d: satisfaction score %v: %w", i, rec.SatisfactionScore, apperr.ErrInvalidRecord)
		}
	}
	return nil
}

// BuildSeries keeps the caller's order; same-day records stay separate points.
func BuildSeries(records []activity.Record) []Point {
	series := make([]Point, 0, len(records))
	for _, rec := range records {
		var partner *string
		if rec.Mode == activity.ModePartner && rec.PartnerLabel != nil {
			label := *rec.PartnerLabel
			partner = &label
		}
		series = append(series, Point{
			Date:            activity.FormatDate(rec.Date),
			Score:           rec.SatisfactionScore,
			DurationMinutes: rec.DurationMinutes,
			Mode:            rec.Mode,
			Partner:         partner,
		})
	}
	return series
}

func BuildEmotionHistogram(records []activity.Record) map[string]int {
	histogram := make(map[string]int)
	for _, rec := range records {
		for _, tag := range rec.EmotionTags {
			histogram[tag]++
		}
	}
	return histogram
}

type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// TopEmotions ranks tags by count, descending. Equal counts keep the order in
// which the tag was first seen. n <= 0 returns every tag.
func TopEmotions(records []activity.Record, n int) []EmotionCount {
	var ranked []EmotionCount
	index := make(map[string]int)
	for _, rec := range records {
		for _, tag := range rec.EmotionTags {
			if i, ok := index[tag]; ok {
				ranked[i].Count++
				continue
			}
			index[tag] = len(ranked)
			ranked = append(ranked, EmotionCount{Emotion: tag, Count: 1})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []EmotionCount{}
	}
	return ranked
}

func BuildModeSplit(records []activity.Record) ModeSplit {
	var split ModeSplit
	for _, rec := range records {
		switch rec.Mode {
		case activity.ModePartner:
			split.Partner++
		case activity.ModeSolo:
			split.Solo++
		}
	}
	return split
}

func ComputeSummary(records []activity.Record) Summary {
	return Summary{
		Total:           len(records),
		AvgSatisfaction: AverageSatisfaction(records),
		MaxStreak:       MaxStreak(records),
	}
}

// AverageSatisfaction is the mean score rounded to one decimal, 0 when empty.
func AverageSatisfaction(records []activity.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range records {
		sum += rec.SatisfactionScore
	}
	return roundTenth(sum / float64(len(records)))
}

func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}

type PartnerSummary struct {
	Count        int
	AvgScore     float64
	LastActivity *time.Time
}

func SummarizePartner(records []activity.Record) PartnerSummary {
	summary := PartnerSummary{
		Count:    len(records),
		AvgScore: AverageSatisfaction(records),
	}
	for _, rec := range records {
		if summary.LastActivity == nil || rec.Date.After(*summary.LastActivity) {
			last := rec.Date
			summary.LastActivity = &last
		}
	}
	return summary
}
