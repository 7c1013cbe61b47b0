package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/projectpleasure/pleasure/internal/activity"
)

const activitySelect = `
	SELECT
		a.id, a.user_id, a.activity_mode, a.partner_id, a.activity_date,
		a.duration_minutes, a.satisfaction_score, a.emotion_tags, a.note,
		a.deleted_at, a.created_at, a.updated_at,
		p.id, p.nickname
	FROM activities a
	LEFT JOIN partners p ON p.id = a.partner_id
`

func scanActivity(row rowScanner) (*activity.Activity, error) {
	var (
		a           activity.Activity
		mode        string
		partnerID   sql.NullString
		tagsJSON    string
		note        sql.NullString
		deletedAt   sql.NullTime
		joinedID    sql.NullString
		joinedNick  sql.NullString
		duration    int64
		activityDay time.Time
	)
	if err := row.Scan(
		&a.ID, &a.UserID, &mode, &partnerID, &activityDay,
		&duration, &a.SatisfactionScore, &tagsJSON, &note,
		&deletedAt, &a.CreatedAt, &a.UpdatedAt,
		&joinedID, &joinedNick,
	); err != nil {
		return nil, err
	}

	a.Mode = activity.Mode(mode)
	a.Date = activity.Day(activityDay)
	a.DurationMinutes = int(duration)
	a.PartnerID = stringPtr(partnerID)
	a.Note = stringPtr(note)
	a.DeletedAt = timePtr(deletedAt)
	a.EmotionTags = decodeTags(tagsJSON)

	if joinedID.Valid {
		a.Partner = &activity.Partner{ID: joinedID.String, UserID: a.UserID, Nickname: joinedNick.String}
	}

	return &a, nil
}

// decodeTags treats unreadable tag JSON as no tags.
func decodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode emotion tags: %w", err)
	}
	return string(b), nil
}

// CreateActivity inserts an activity. partnerID must already belong to userID.
func (s *Store) CreateActivity(ctx context.Context, userID string, in activity.NewActivity, partner *activity.Partner) (*activity.Activity, error) {
	day, err := activity.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	tags := in.Tags()
	tagsJSON, err := encodeTags(tags)
	if err != nil {
		return nil, err
	}

	now := s.now()
	a := &activity.Activity{
		ID:                s.id(),
		UserID:            userID,
		Mode:              in.Mode(),
		Date:              day,
		DurationMinutes:   in.Duration,
		SatisfactionScore: in.Satisfaction,
		EmotionTags:       tags,
		Note:              in.NotePtr(),
		CreatedAt:         now,
		UpdatedAt:         now,
		Partner:           partner,
	}
	if partner != nil {
		id := partner.ID
		a.PartnerID = &id
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activities (
			id, user_id, activity_mode, partner_id, activity_date,
			duration_minutes, satisfaction_score, emotion_tags, note,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, CAST($5 AS DATE), $6, $7, $8, $9, $10, $11)
	`,
		a.ID, a.UserID, string(a.Mode), nullString(a.PartnerID), activity.FormatDate(day),
		a.DurationMinutes, a.SatisfactionScore, tagsJSON, nullString(a.Note),
		now, now,
	)
	if err != nil {
		return nil, dbError("create activity", err)
	}

	return a, nil
}

// GetActivity returns a live activity owned by userID.
func (s *Store) GetActivity(ctx context.Context, userID, activityID string) (*activity.Activity, error) {
	row := s.db.QueryRowContext(ctx, activitySelect+`
		WHERE a.id = $1 AND a.user_id = $2 AND a.deleted_at IS NULL
	`, activityID, userID)

	a, err := scanActivity(row)
	if err != nil {
		return nil, dbError("get activity "+activityID, err)
	}
	return a, nil
}

// ListActivities returns every live activity, newest first.
func (s *Store) ListActivities(ctx context.Context, userID string) ([]*activity.Activity, error) {
	return s.queryActivities(ctx, activitySelect+`
		WHERE a.user_id = $1 AND a.deleted_at IS NULL
		ORDER BY a.activity_date DESC, a.created_at DESC
	`, userID)
}

// ListActivitiesSince returns live activities dated on or after since, oldest
// first. This ordering is what the aggregator's series relies on.
func (s *Store) ListActivitiesSince(ctx context.Context, userID string, since time.Time) ([]*activity.Activity, error) {
	return s.queryActivities(ctx, activitySelect+`
		WHERE a.user_id = $1
		  AND a.deleted_at IS NULL
		  AND a.activity_date >= CAST($2 AS DATE)
		ORDER BY a.activity_date ASC, a.created_at ASC
	`, userID, activity.FormatDate(since))
}

func (s *Store) ListPartnerActivities(ctx context.Context, userID, partnerID string) ([]*activity.Activity, error) {
	return s.queryActivities(ctx, activitySelect+`
		WHERE a.user_id = $1 AND a.partner_id = $2 AND a.deleted_at IS NULL
		ORDER BY a.activity_date ASC, a.created_at ASC
	`, userID, partnerID)
}

func (s *Store) queryActivities(ctx context.Context, query string, args ...any) ([]*activity.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("query activities", err)
	}
	defer rows.Close()

	activities := []*activity.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, dbError("scan activity", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("rows iteration", err)
	}

	return activities, nil
}

func (s *Store) SoftDeleteActivity(ctx context.Context, userID, activityID string) error {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE activities SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL
	`, now, activityID, userID)
	if err != nil {
		return dbError("delete activity", err)
	}
	return requireAffected(res, "activity "+activityID)
}
