package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/projectpleasure/pleasure/internal/activity"
	"github.com/projectpleasure/pleasure/internal/aggregator"
	"github.com/projectpleasure/pleasure/internal/apperr"
	"github.com/projectpleasure/pleasure/internal/logger"
	"github.com/projectpleasure/pleasure/internal/metrics"
)

// Repository is the slice of the store the service needs.
type Repository interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	EnsureUser(ctx context.Context, userID string) (*activity.User, error)
	GetUser(ctx context.Context, userID string) (*activity.User, error)

	CreateActivity(ctx context.Context, userID string, in activity.NewActivity, partner *activity.Partner) (*activity.Activity, error)
	GetActivity(ctx context.Context, userID, activityID string) (*activity.Activity, error)
	ListActivities(ctx context.Context, userID string) ([]*activity.Activity, error)
	ListActivitiesSince(ctx context.Context, userID string, since time.Time) ([]*activity.Activity, error)
	ListPartnerActivities(ctx context.Context, userID, partnerID string) ([]*activity.Activity, error)
	SoftDeleteActivity(ctx context.Context, userID, activityID string) error

	CreatePartner(ctx context.Context, userID string, in activity.NewPartner) (*activity.Partner, error)
	FindPartnerByNickname(ctx context.Context, userID, nickname string) (*activity.Partner, error)
	ListPartners(ctx context.Context, userID string) ([]*activity.Partner, error)
	CountPartners(ctx context.Context, userID string) (int, error)
	SoftDeletePartner(ctx context.Context, userID, partnerID string) error
}

const reportTopEmotions = 5

type Service struct {
	repo Repository
	agg  *aggregator.Aggregator
	now  func() time.Time
}

func NewService(repo Repository, agg *aggregator.Aggregator) *Service {
	return &Service{
		repo: repo,
		agg:  agg,
		now:  time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Analytics aggregates the user's records within the window ending now.
// An unknown user gets the empty result.
func (s *Service) Analytics(ctx context.Context, userID string, window activity.RangeWindow) (*aggregator.Result, error) {
	start := time.Now()
	result, records, err := s.analytics(ctx, userID, window)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.AggregationsTotal.WithLabelValues(string(window), status).Inc()
	metrics.AggregationDuration.WithLabelValues(string(window)).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.AggregatedRecords.Observe(float64(records))
	}

	return result, err
}

func (s *Service) analytics(ctx context.Context, userID string, window activity.RangeWindow) (*aggregator.Result, int, error) {
	records, found, err := s.recordsSince(ctx, userID, window.Start(s.now()))
	if err != nil {
		return nil, 0, err
	}
	if !found {
		return aggregator.Empty(), 0, nil
	}

	result, err := s.agg.Aggregate(records)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate %s window: %w", window, err)
	}

	logger.WithContext(ctx).Debug("analytics aggregated",
		"range", string(window),
		"records", len(records),
		"max_streak", result.Summary.MaxStreak,
	)
	return result, len(records), nil
}

func (s *Service) recordsSince(ctx context.Context, userID string, since time.Time) ([]activity.Record, bool, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}

	activities, err := s.repo.ListActivitiesSince(ctx, userID, since)
	if err != nil {
		return nil, false, err
	}
	return activity.Records(activities), true, nil
}

type MonthlyStats struct {
	MonthlyCount    int     `json:"monthlyCount"`
	AvgSatisfaction float64 `json:"avgSatisfaction"`
}

func (s *Service) MonthlyStats(ctx context.Context, userID string) (*MonthlyStats, error) {
	records, _, err := s.recordsSince(ctx, userID, activity.StartOfMonth(s.now()))
	if err != nil {
		return nil, err
	}
	return &MonthlyStats{
		MonthlyCount:    len(records),
		AvgSatisfaction: aggregator.AverageSatisfaction(records),
	}, nil
}

// Profile is the all-time overview. PartnerCount is omitted for an unknown user.
type Profile struct {
	TotalRecords    int     `json:"totalRecords"`
	AvgSatisfaction float64 `json:"avgSatisfaction"`
	StreakDays      int     `json:"streakDays"`
	PartnerCount    *int    `json:"partnerCount,omitempty"`
	Email           string  `json:"email"`
}

func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return &Profile{}, nil
		}
		return nil, err
	}

	activities, err := s.repo.ListActivities(ctx, userID)
	if err != nil {
		return nil, err
	}
	partners, err := s.repo.CountPartners(ctx, userID)
	if err != nil {
		return nil, err
	}

	records := activity.Records(activities)
	return &Profile{
		TotalRecords:    len(records),
		AvgSatisfaction: aggregator.AverageSatisfaction(records),
		StreakDays:      aggregator.CurrentStreak(records, s.now()),
		PartnerCount:    &partners,
		Email:           user.Email,
	}, nil
}

type Report struct {
	*aggregator.Result
	Badge       aggregator.Badge          `json:"badge"`
	TopEmotions []aggregator.EmotionCount `json:"topEmotions"`
	GeneratedAt time.Time                 `json:"generatedAt"`
	Since       string                    `json:"since"`
}

// Report builds the shareable year report.
func (s *Service) Report(ctx context.Context, userID string) (*Report, error) {
	now := s.now()
	since := activity.RangeYear.Start(now)

	records, _, err := s.recordsSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	result, err := s.agg.Aggregate(records)
	if err != nil {
		return nil, fmt.Errorf("aggregate report: %w", err)
	}

	return &Report{
		Result:      result,
		Badge:       result.Badge,
		TopEmotions: aggregator.TopEmotions(records, reportTopEmotions),
		GeneratedAt: now,
		Since:       activity.FormatDate(since),
	}, nil
}

func (s *Service) ListActivities(ctx context.Context, userID string) ([]*activity.Activity, error) {
	return s.repo.ListActivities(ctx, userID)
}

func (s *Service) GetActivity(ctx context.Context, userID, activityID string) (*activity.Activity, error) {
	return s.repo.GetActivity(ctx, userID, activityID)
}

// RecordActivity creates the user and the named partner when they do not exist yet.
func (s *Service) RecordActivity(ctx context.Context, userID string, in activity.NewActivity) (*activity.Activity, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	var partner *activity.Partner
	if in.Mode() == activity.ModePartner {
		p, err := s.findOrCreatePartner(ctx, userID, strings.TrimSpace(in.PartnerName))
		if err != nil {
			return nil, err
		}
		partner = p
	}

	created, err := s.repo.CreateActivity(ctx, userID, in, partner)
	if err != nil {
		return nil, err
	}

	metrics.ActivitiesWritten.WithLabelValues("create", string(created.Mode)).Inc()
	logger.WithContext(ctx).Info("activity recorded", "activity_id", created.ID, "mode", string(created.Mode))
	return created, nil
}

func (s *Service) findOrCreatePartner(ctx context.Context, userID, nickname string) (*activity.Partner, error) {
	p, err := s.repo.FindPartnerByNickname(ctx, userID, nickname)
	if err == nil {
		return p, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	p, err = s.repo.CreatePartner(ctx, userID, activity.NewPartner{Nickname: nickname})
	if apperr.IsConflict(err) {
		// A concurrent write created it first.
		return s.repo.FindPartnerByNickname(ctx, userID, nickname)
	}
	return p, err
}

func (s *Service) DeleteActivity(ctx context.Context, userID, activityID string) error {
	if err := s.repo.SoftDeleteActivity(ctx, userID, activityID); err != nil {
		return err
	}
	metrics.ActivitiesWritten.WithLabelValues("delete", "").Inc()
	return nil
}

// PartnersWithStats lists live partners, each with its activity summary.
func (s *Service) PartnersWithStats(ctx context.Context, userID string) ([]activity.PartnerStats, error) {
	partners, err := s.repo.ListPartners(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]activity.PartnerStats, 0, len(partners))
	for _, p := range partners {
		activities, err := s.repo.ListPartnerActivities(ctx, userID, p.ID)
		if err != nil {
			return nil, err
		}
		summary := aggregator.SummarizePartner(activity.Records(activities))
		result = append(result, activity.PartnerStats{
			Partner:       *p,
			ActivityCount: summary.Count,
			AvgScore:      summary.AvgScore,
			LastActivity:  summary.LastActivity,
		})
	}
	return result, nil
}

type CreatedPartner struct {
	Partner *activity.Partner
	Warning string
}

func (s *Service) CreatePartner(ctx context.Context, userID string, in activity.NewPartner) (*CreatedPartner, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	p, err := s.repo.CreatePartner(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	created := &CreatedPartner{Partner: p}
	if activity.LooksLikeRealName(in.Nickname) {
		created.Warning = activity.RealNameWarning
	}
	return created, nil
}

func (s *Service) DeletePartner(ctx context.Context, userID, partnerID string) error {
	if strings.TrimSpace(partnerID) == "" {
		return fmt.Errorf("%w: partner ID required", apperr.ErrInvalidInput)
	}
	return s.repo.SoftDeletePartner(ctx, userID, partnerID)
}
