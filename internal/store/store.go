package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/projectpleasure/pleasure/internal/apperr"
)

// Store persists users, partners and activities in DuckDB.
// Reads never return soft-deleted rows.
type Store struct {
	db  *sql.DB
	now func() time.Time
	id  func() string

	// partnerMu makes the nickname check and insert in CreatePartner atomic.
	partnerMu sync.Mutex
}

func New(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
		id:  func() string { return uuid.NewString() },
	}
}

// WithClock replaces the timestamp source, mainly for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrDatabaseUnavailable, err)
	}
	return nil
}

func dbError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, apperr.ErrDatabaseUnavailable, err)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
