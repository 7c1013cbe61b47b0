package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/projectpleasure/pleasure/internal/apperr"
)

const (
	MinSatisfaction = 1.0
	MaxSatisfaction = 10.0
	dateLayout      = "2006-01-02"
)

// NewActivity is the request body for recording an activity.
// Mode is derived: a non-empty PartnerName makes it a partner activity.
type NewActivity struct {
	Date         string   `json:"date"`
	Duration     int      `json:"duration"`
	Satisfaction float64  `json:"satisfaction"`
	Emotions     []string `json:"emotions"`
	Note         string   `json:"note"`
	PartnerName  string   `json:"partnerName"`
}

func (n *NewActivity) Validate() error {
	if strings.TrimSpace(n.Date) == "" {
		return fmt.Errorf("%w: date is required", apperr.ErrInvalidInput)
	}
	if _, err := ParseDate(n.Date); err != nil {
		return err
	}
	if n.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", apperr.ErrInvalidInput)
	}
	if n.Satisfaction < MinSatisfaction || n.Satisfaction > MaxSatisfaction {
		return fmt.Errorf("%w: satisfaction must be between %.0f and %.0f", apperr.ErrInvalidInput, MinSatisfaction, MaxSatisfaction)
	}
	return nil
}

func (n *NewActivity) Mode() Mode {
	if strings.TrimSpace(n.PartnerName) != "" {
		return ModePartner
	}
	return ModeSolo
}

// Tags returns the emotion tags trimmed and deduplicated, dropping empties.
func (n *NewActivity) Tags() []string {
	seen := make(map[string]struct{}, len(n.Emotions))
	tags := make([]string, 0, len(n.Emotions))
	for _, tag := range n.Emotions {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// ParseDate accepts a plain calendar date or an RFC 3339 timestamp and
// returns the calendar day at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD or RFC 3339", apperr.ErrInvalidInput, s)
	}
	return Day(t), nil
}

// Day truncates t to its calendar date at UTC midnight, using t's own location
// to decide which date it falls on.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

type NewPartner struct {
	Nickname string `json:"nickname"`
	ColorTag string `json:"colorTag"`
	Notes    string `json:"notes"`
}

func (n *NewPartner) Validate() error {
	if strings.TrimSpace(n.Nickname) == "" {
		return fmt.Errorf("%w: nickname is required", apperr.ErrInvalidInput)
	}
	return nil
}

var commonRealNames = []string{"小明", "小華", "小美", "Amy", "John", "Mary", "David", "Sarah", "小王", "小李", "小張"}

const RealNameWarning = "This looks like a real name. Consider using a code name for privacy."

// LooksLikeRealName reports whether a nickname matches a common given name.
func LooksLikeRealName(nickname string) bool {
	nickname = strings.TrimSpace(nickname)
	for _, name := range commonRealNames {
		if strings.EqualFold(nickname, name) {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (n *NewPartner) ColorTagPtr() *string { return optional(n.ColorTag) }
func (n *NewPartner) NotesPtr() *string    { return optional(n.Notes) }
func (n *NewActivity) NotePtr() *string    { return optional(n.Note) }
