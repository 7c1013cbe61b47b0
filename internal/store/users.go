package store

import (
	"context"
	"fmt"

	"github.com/projectpleasure/pleasure/internal/activity"
)

func (s *Store) UserExists(ctx context.Context, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = $1`, userID).Scan(&n)
	if err != nil {
		return false, dbError("count users", err)
	}
	return n > 0, nil
}

// EnsureUser returns the user, creating it on first sight. Concurrent first
// calls for one ID all succeed and see the same row.
func (s *Store) EnsureUser(ctx context.Context, userID string) (*activity.User, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		userID, fmt.Sprintf("%s@users.local", userID), s.now(),
	); err != nil {
		return nil, dbError("create user", err)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*activity.User, error) {
	var user activity.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE id = $1`, userID,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, dbError("get user", err)
	}
	return &user, nil
}
