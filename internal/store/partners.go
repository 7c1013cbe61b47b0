package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/projectpleasure/pleasure/internal/activity"
	"github.com/projectpleasure/pleasure/internal/apperr"
)

const partnerColumns = `id, user_id, nickname, color_tag, notes, deleted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(row rowScanner) (*activity.Partner, error) {
	var (
		p         activity.Partner
		colorTag  sql.NullString
		notes     sql.NullString
		deletedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Nickname, &colorTag, &notes, &deletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ColorTag = stringPtr(colorTag)
	p.Notes = stringPtr(notes)
	p.DeletedAt = timePtr(deletedAt)
	return &p, nil
}

// CreatePartner fails with apperr.ErrConflict when the user already has a
// live partner with the same nickname.
func (s *Store) CreatePartner(ctx context.Context, userID string, in activity.NewPartner) (*activity.Partner, error) {
	nickname := strings.TrimSpace(in.Nickname)

	s.partnerMu.Lock()
	defer s.partnerMu.Unlock()

	if _, err := s.FindPartnerByNickname(ctx, userID, nickname); err == nil {
		return nil, fmt.Errorf("partner %q: %w", nickname, apperr.ErrConflict)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	p := &activity.Partner{
		ID:        s.id(),
		UserID:    userID,
		Nickname:  nickname,
		ColorTag:  in.ColorTagPtr(),
		Notes:     in.NotesPtr(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO partners (id, user_id, nickname, color_tag, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.UserID, p.Nickname, nullString(p.ColorTag), nullString(p.Notes), now, now)
	if err != nil {
		return nil, dbError("create partner", err)
	}

	return p, nil
}

func (s *Store) FindPartnerByNickname(ctx context.Context, userID, nickname string) (*activity.Partner, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+partnerColumns+`
		FROM partners
		WHERE user_id = $1 AND nickname = $2 AND deleted_at IS NULL
		LIMIT 1
	`, userID, nickname)

	p, err := scanPartner(row)
	if err != nil {
		return nil, dbError("find partner", err)
	}
	return p, nil
}

func (s *Store) CountPartners(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM partners WHERE user_id = $1 AND deleted_at IS NULL`, userID,
	).Scan(&n)
	if err != nil {
		return 0, dbError("count partners", err)
	}
	return n, nil
}

func (s *Store) ListPartners(ctx context.Context, userID string) ([]*activity.Partner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+partnerColumns+`
		FROM partners
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, dbError("list partners", err)
	}
	defer rows.Close()

	partners := []*activity.Partner{}
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, dbError("scan partner", err)
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("rows iteration", err)
	}

	return partners, nil
}

// SoftDeletePartner marks the partner deleted. Activities keep their reference.
func (s *Store) SoftDeletePartner(ctx context.Context, userID, partnerID string) error {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE partners SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL
	`, now, partnerID, userID)
	if err != nil {
		return dbError("delete partner", err)
	}
	return requireAffected(res, "partner "+partnerID)
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dbError("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, apperr.ErrNotFound)
	}
	return nil
}
