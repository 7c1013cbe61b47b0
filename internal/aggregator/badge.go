package aggregator

type Level string

const (
	LevelSSS Level = "SSS"
	LevelSS  Level = "SS"
	LevelS   Level = "S"
	LevelA   Level = "A"
	LevelB   Level = "B"
)

type Badge struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Tier is one badge level with its inclusive lower score bound.
type Tier struct {
	MinScore float64
	Badge    Badge
}

var fallbackBadge = Badge{Level: LevelB, Title: "Early Adventurer", Description: "The journey has just begun"}

// DefaultTiers lists tiers highest first.
func DefaultTiers() []Tier {
	return []Tier{
		{MinScore: 80, Badge: Badge{Level: LevelSSS, Title: "Legendary Explorer", Description: "The undisputed master of intimacy"}},
		{MinScore: 60, Badge: Badge{Level: LevelSS, Title: "Exceptional Adept", Description: "The depth of exploration is astonishing"}},
		{MinScore: 40, Badge: Badge{Level: LevelS, Title: "Active Pioneer", Description: "Keeping a steady, high-quality record"}},
		{MinScore: 20, Badge: Badge{Level: LevelA, Title: "Rising Star", Description: "Moving forward steadily on the path of exploration"}},
	}
}

// BadgeScore weighs activity count and average satisfaction.
func BadgeScore(total int, avgSatisfaction float64) float64 {
	return float64(total)*2 + avgSatisfaction*5
}

func (a *Aggregator) Badge(summary Summary) Badge {
	return badgeFor(a.config.Tiers, BadgeScore(summary.Total, summary.AvgSatisfaction))
}

// DeriveBadge uses the default tiers.
func DeriveBadge(summary Summary) Badge {
	return badgeFor(DefaultTiers(), BadgeScore(summary.Total, summary.AvgSatisfaction))
}

func badgeFor(tiers []Tier, score float64) Badge {
	for _, tier := range tiers {
		if score >= tier.MinScore {
			return tier.Badge
		}
	}
	return fallbackBadge
}

// Rank orders levels for comparison; higher is better.
func (l Level) Rank() int {
	switch l {
	case LevelSSS:
		return 5
	case LevelSS:
		return 4
	case LevelS:
		return 3
	case LevelA:
		return 2
	case LevelB:
		return 1
	default:
		return 0
	}
}
