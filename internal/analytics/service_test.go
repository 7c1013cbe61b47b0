package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/projectpleasure/pleasure/internal/activity"
	"github.com/projectpleasure/pleasure/internal/aggregator"
	"github.com/projectpleasure/pleasure/internal/apperr"
	"github.com/projectpleasure/pleasure/internal/db"
	"github.com/projectpleasure/pleasure/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 20, 21, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	database, err := db.Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	st := store.New(database)
	svc := NewService(st, aggregator.NewAggregator(aggregator.DefaultConfig())).
		WithClock(func() time.Time { return fixedNow })
	return svc, st
}

func record(t *testing.T, svc *Service, userID string, in activity.NewActivity) *activity.Activity {
	t.Helper()
	a, err := svc.RecordActivity(context.Background(), userID, in)
	require.NoError(t, err)
	return a
}

func TestAnalytics_UnknownUserIsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Analytics(context.Background(), "nobody", activity.RangeMonth)
	require.NoError(t, err)
	assert.Empty(t, result.Series)
	assert.Empty(t, result.EmotionHistogram)
	assert.Equal(t, aggregator.Summary{}, result.Summary)
}

func TestAnalytics_WindowAndAggregation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-18", Duration: 30, Satisfaction: 8, Emotions: []string{"joy"}, PartnerName: "Moonfox"})
	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-19", Duration: 20, Satisfaction: 7, Emotions: []string{"calm", "joy"}})
	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-20", Duration: 25, Satisfaction: 9})
	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-02", Duration: 25, Satisfaction: 4})
	record(t, svc, "u1", activity.NewActivity{Date: "2025-06-01", Duration: 25, Satisfaction: 5})
	record(t, svc, "u2", activity.NewActivity{Date: "2026-01-19", Duration: 25, Satisfaction: 1})

	week, err := svc.Analytics(ctx, "u1", activity.RangeWeek)
	require.NoError(t, err)
	assert.Equal(t, aggregator.Summary{Total: 3, AvgSatisfaction: 8, MaxStreak: 3}, week.Summary)
	assert.Equal(t, aggregator.ModeSplit{Partner: 1, Solo: 2}, week.ModeSplit)
	assert.Equal(t, map[string]int{"joy": 2, "calm": 1}, week.EmotionHistogram)
	require.Len(t, week.Series, 3)
	assert.Equal(t, "2026-01-18", week.Series[0].Date)
	require.NotNil(t, week.Series[0].Partner)
	assert.Equal(t, "Moonfox", *week.Series[0].Partner)

	month, err := svc.Analytics(ctx, "u1", activity.RangeMonth)
	require.NoError(t, err)
	assert.Equal(t, 4, month.Summary.Total)
	assert.Equal(t, "2026-01-02", month.Series[0].Date)

	year, err := svc.Analytics(ctx, "u1", activity.RangeYear)
	require.NoError(t, err)
	assert.Equal(t, 5, year.Summary.Total)
}

func TestMonthlyStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-01", Duration: 30, Satisfaction: 7})
	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-10", Duration: 30, Satisfaction: 8.5})
	record(t, svc, "u1", activity.NewActivity{Date: "2025-12-31", Duration: 30, Satisfaction: 2})

	stats, err := svc.MonthlyStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, &MonthlyStats{MonthlyCount: 2, AvgSatisfaction: 7.8}, stats)

	empty, err := svc.MonthlyStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, &MonthlyStats{}, empty)
}

func TestReport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, d := range []string{"2026-01-10", "2026-01-11", "2026-01-12", "2026-01-13", "2026-01-14"} {
		record(t, svc, "u1", activity.NewActivity{Date: d, Duration: 30, Satisfaction: 8, Emotions: []string{"joy", "calm"}})
	}
	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-16", Duration: 30, Satisfaction: 8, Emotions: []string{"calm"}})

	report, err := svc.Report(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, aggregator.Summary{Total: 6, AvgSatisfaction: 8, MaxStreak: 5}, report.Summary)
	assert.Equal(t, aggregator.LevelS, report.Badge.Level)
	assert.Equal(t, []aggregator.EmotionCount{{Emotion: "calm", Count: 6}, {Emotion: "joy", Count: 5}}, report.TopEmotions)
	assert.Equal(t, "2025-01-20", report.Since)
}

func TestRecordActivity_ReusesPartnerByNickname(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	first := record(t, svc, "u1", activity.NewActivity{Date: "2026-01-10", Duration: 30, Satisfaction: 8, PartnerName: "Moonfox"})
	second := record(t, svc, "u1", activity.NewActivity{Date: "2026-01-11", Duration: 30, Satisfaction: 6, PartnerName: " Moonfox "})
	require.NotNil(t, first.PartnerID)
	require.NotNil(t, second.PartnerID)
	assert.Equal(t, *first.PartnerID, *second.PartnerID)

	partners, err := st.ListPartners(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, partners, 1)

	stats, err := svc.PartnersWithStats(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].ActivityCount)
	assert.Equal(t, 7.0, stats[0].AvgScore)
	require.NotNil(t, stats[0].LastActivity)
	assert.Equal(t, "2026-01-11", activity.FormatDate(*stats[0].LastActivity))
}

func TestRecordActivity_Invalid(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordActivity(context.Background(), "u1", activity.NewActivity{Date: "2026-01-10", Duration: 30, Satisfaction: 11})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestDeleteActivity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := record(t, svc, "u1", activity.NewActivity{Date: "2026-01-10", Duration: 30, Satisfaction: 8})
	require.NoError(t, svc.DeleteActivity(ctx, "u1", a.ID))

	_, err := svc.GetActivity(ctx, "u1", a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	result, err := svc.Analytics(ctx, "u1", activity.RangeMonth)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.Total)
}

func TestCreatePartner_Warning(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "John"})
	require.NoError(t, err)
	assert.Equal(t, activity.RealNameWarning, created.Warning)

	created, err = svc.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Moonfox"})
	require.NoError(t, err)
	assert.Empty(t, created.Warning)

	_, err = svc.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Moonfox"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: " "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	assert.ErrorIs(t, svc.DeletePartner(ctx, "u1", ""), apperr.ErrInvalidInput)
	assert.ErrorIs(t, svc.DeletePartner(ctx, "u1", "missing"), apperr.ErrNotFound)
}

type failingRepo struct {
	Repository
}

func (failingRepo) UserExists(ctx context.Context, userID string) (bool, error) {
	return false, errors.New("connection reset")
}

func TestAnalytics_PropagatesStoreFailure(t *testing.T) {
	svc := NewService(failingRepo{}, aggregator.NewAggregator(aggregator.DefaultConfig()))

	_, err := svc.Analytics(context.Background(), "u1", activity.RangeWeek)
	assert.EqualError(t, err, "connection reset")
}

func TestProfile_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	profile, err := svc.Profile(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, &Profile{}, profile)

	body, err := json.Marshal(profile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalRecords":0,"avgSatisfaction":0,"streakDays":0,"email":""}`, string(body))
}

func TestProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	record(t, svc, "u1", activity.NewActivity{Date: "2025-03-01", Duration: 30, Satisfaction: 4})
	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-17", Duration: 30, Satisfaction: 9, PartnerName: "Moonfox"})
	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-18", Duration: 30, Satisfaction: 8})
	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-19", Duration: 30, Satisfaction: 7.5, PartnerName: "Owl"})
	_, err := svc.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Velvet"})
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, profile.TotalRecords)
	assert.Equal(t, 7.1, profile.AvgSatisfaction)
	assert.Equal(t, 3, profile.StreakDays, "no record today, so the run ends yesterday")
	require.NotNil(t, profile.PartnerCount)
	assert.Equal(t, 3, *profile.PartnerCount)
	assert.Equal(t, "u1@users.local", profile.Email)

	record(t, svc, "u1", activity.NewActivity{Date: "2026-01-20", Duration: 30, Satisfaction: 8})
	profile, err = svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, profile.StreakDays)
}

func TestRecordActivity_ConcurrentNewPartner(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	created := make([]*activity.Activity, len(errs))
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created[i], errs[i] = svc.RecordActivity(ctx, "fresh", activity.NewActivity{
				Date: "2026-01-19", Duration: 30, Satisfaction: 8, PartnerName: "Moonfox",
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err)
		require.NotNil(t, created[i].PartnerID)
		assert.Equal(t, *created[0].PartnerID, *created[i].PartnerID)
	}

	partners, err := st.ListPartners(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, partners, 1)
}
