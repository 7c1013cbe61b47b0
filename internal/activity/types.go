package activity

import (
	"time"
)

type Mode string

const (
	ModePartner Mode = "partner"
	ModeSolo    Mode = "solo"
)

var ValidModes = map[Mode]string{
	ModePartner: "Activity involving a partner",
	ModeSolo:    "Solo activity",
}

func (m Mode) IsValid() bool {
	_, ok := ValidModes[m]
	return ok
}

// Record is the read-only view of one activity that the aggregator consumes.
// Records reaching the aggregator are already scoped to one user and exclude
// soft-deleted rows.
type Record struct {
	Date              time.Time
	SatisfactionScore float64
	DurationMinutes   int
	Mode              Mode
	EmotionTags       []string
	PartnerLabel      *string
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Partner struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Nickname  string     `json:"nickname"`
	ColorTag  *string    `json:"colorTag"`
	Notes     *string    `json:"notes"`
	DeletedAt *time.Time `json:"deletedAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type PartnerStats struct {
	Partner
	ActivityCount int        `json:"activityCount"`
	AvgScore      float64    `json:"avgScore"`
	LastActivity  *time.Time `json:"lastActivity"`
}

type Activity struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	Mode              Mode       `json:"activityMode"`
	PartnerID         *string    `json:"partnerId"`
	Date              time.Time  `json:"activityDate"`
	DurationMinutes   int        `json:"durationMinutes"`
	SatisfactionScore float64    `json:"satisfactionScore"`
	EmotionTags       []string   `json:"emotionTags"`
	Note              *string    `json:"note"`
	DeletedAt         *time.Time `json:"deletedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	Partner *Partner `json:"partner"`
}

func (a *Activity) Record() Record {
	rec := Record{
		Date:              a.Date,
		SatisfactionScore: a.SatisfactionScore,
		DurationMinutes:   a.DurationMinutes,
		Mode:              a.Mode,
		EmotionTags:       a.EmotionTags,
	}
	if a.Mode == ModePartner && a.Partner != nil {
		label := a.Partner.Nickname
		rec.PartnerLabel = &label
	}
	return rec
}

func Records(activities []*Activity) []Record {
	records := make([]Record, 0, len(activities))
	for _, a := range activities {
		records = append(records, a.Record())
	}
	return records
}
