package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/projectpleasure/pleasure/internal/activity"
	"github.com/projectpleasure/pleasure/internal/apperr"
	"github.com/projectpleasure/pleasure/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	tick := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New(database).WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	seq := 0
	s.id = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	return s
}

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	exists, err := s.UserExists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	first, err := s.EnsureUser(ctx, "u1")
	require.NoError(t, err)
	second, err := s.EnsureUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Email, second.Email)

	exists, err = s.UserExists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPartners(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	fox, err := s.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "  Moonfox ", ColorTag: "#ff8882"})
	require.NoError(t, err)
	assert.Equal(t, "Moonfox", fox.Nickname)
	require.NotNil(t, fox.ColorTag)
	assert.Nil(t, fox.Notes)

	_, err = s.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Moonfox"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.CreatePartner(ctx, "u2", activity.NewPartner{Nickname: "Moonfox"})
	require.NoError(t, err, "nicknames are scoped per user")

	owl, err := s.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Owl"})
	require.NoError(t, err)

	partners, err := s.ListPartners(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, partners, 2)
	assert.Equal(t, owl.ID, partners[0].ID, "newest first")
	assert.Equal(t, fox.ID, partners[1].ID)

	require.NoError(t, s.SoftDeletePartner(ctx, "u1", owl.ID))
	assert.ErrorIs(t, s.SoftDeletePartner(ctx, "u1", owl.ID), apperr.ErrNotFound)

	partners, err = s.ListPartners(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, partners, 1)

	_, err = s.FindPartnerByNickname(ctx, "u1", "Owl")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Owl"})
	assert.NoError(t, err, "a deleted nickname can be reused")
}

func TestActivities_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	fox, err := s.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Moonfox"})
	require.NoError(t, err)

	created, err := s.CreateActivity(ctx, "u1", activity.NewActivity{
		Date:         "2026-01-05",
		Duration:     45,
		Satisfaction: 8.5,
		Emotions:     []string{"joy", "calm"},
		Note:         "candles",
		PartnerName:  "Moonfox",
	}, fox)
	require.NoError(t, err)
	assert.Equal(t, activity.ModePartner, created.Mode)

	got, err := s.GetActivity(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, 45, got.DurationMinutes)
	assert.Equal(t, 8.5, got.SatisfactionScore)
	assert.Equal(t, []string{"joy", "calm"}, got.EmotionTags)
	require.NotNil(t, got.Note)
	assert.Equal(t, "candles", *got.Note)
	require.NotNil(t, got.Partner)
	assert.Equal(t, "Moonfox", got.Partner.Nickname)
	require.NotNil(t, got.PartnerID)
	assert.Equal(t, fox.ID, *got.PartnerID)

	_, err = s.GetActivity(ctx, "u2", created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "activities are scoped per user")
}

func TestActivities_ListAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var ids []string
	for _, d := range []string{"2026-01-03", "2026-01-01", "2026-01-10", "2025-12-20"} {
		a, err := s.CreateActivity(ctx, "u1", activity.NewActivity{Date: d, Duration: 20, Satisfaction: 7}, nil)
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	_, err := s.CreateActivity(ctx, "u2", activity.NewActivity{Date: "2026-01-02", Duration: 20, Satisfaction: 7}, nil)
	require.NoError(t, err)

	all, err := s.ListActivities(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2026-01-10", activity.FormatDate(all[0].Date), "newest first")
	assert.Equal(t, activity.ModeSolo, all[0].Mode)
	assert.Empty(t, all[0].EmotionTags)
	assert.Nil(t, all[0].Partner)

	since, err := s.ListActivitiesSince(ctx, "u1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	var days []string
	for _, a := range since {
		days = append(days, activity.FormatDate(a.Date))
	}
	assert.Equal(t, []string{"2026-01-01", "2026-01-03", "2026-01-10"}, days)

	require.NoError(t, s.SoftDeleteActivity(ctx, "u1", ids[0]))
	assert.ErrorIs(t, s.SoftDeleteActivity(ctx, "u1", ids[0]), apperr.ErrNotFound)
	assert.ErrorIs(t, s.SoftDeleteActivity(ctx, "u2", ids[1]), apperr.ErrNotFound)

	_, err = s.GetActivity(ctx, "u1", ids[0])
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	since, err = s.ListActivitiesSince(ctx, "u1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestListPartnerActivities(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	fox, err := s.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Moonfox"})
	require.NoError(t, err)
	_, err = s.CreateActivity(ctx, "u1", activity.NewActivity{Date: "2026-01-05", Duration: 30, Satisfaction: 9, PartnerName: "Moonfox"}, fox)
	require.NoError(t, err)
	_, err = s.CreateActivity(ctx, "u1", activity.NewActivity{Date: "2026-01-06", Duration: 30, Satisfaction: 6}, nil)
	require.NoError(t, err)

	activities, err := s.ListPartnerActivities(ctx, "u1", fox.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, 9.0, activities[0].SatisfactionScore)
}

func TestDecodeTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, decodeTags(`["a","b"]`))
	assert.Equal(t, []string{}, decodeTags(""))
	assert.Equal(t, []string{}, decodeTags("null"))
	assert.Equal(t, []string{}, decodeTags("{broken"))
}

func newConcurrentStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return New(database)
}

func TestEnsureUser_ConcurrentFirstSight(t *testing.T) {
	ctx := context.Background()
	s := newConcurrentStore(t)

	for round := 0; round < 20; round++ {
		userID := fmt.Sprintf("fresh-%02d", round)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.EnsureUser(ctx, userID)
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err, userID)
		}
		user, err := s.GetUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID+"@users.local", user.Email)
	}
}

func TestCreatePartner_ConcurrentSameNickname(t *testing.T) {
	ctx := context.Background()
	s := newConcurrentStore(t)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Moonfox"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrConflict)
	}
	assert.Equal(t, 1, created)

	count, err := s.CountPartners(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCountPartners(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	count, err := s.CountPartners(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)

	fox, err := s.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Moonfox"})
	require.NoError(t, err)
	_, err = s.CreatePartner(ctx, "u1", activity.NewPartner{Nickname: "Owl"})
	require.NoError(t, err)
	require.NoError(t, s.SoftDeletePartner(ctx, "u1", fox.ID))

	count, err = s.CountPartners(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
