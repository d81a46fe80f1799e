package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"carelink/internal/watchlist/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/platform/tx"
)

type PostgresStore struct {
	q tx.Querier
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{q: db}
}

func (s *PostgresStore) Create(ctx context.Context, e *models.Entry) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO watchlist_entries (id, owner_id, watched_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		uuid.UUID(e.ID), uuid.UUID(e.OwnerID), uuid.UUID(e.WatchedID), e.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert watchlist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, owner, watched id.ProfileID) (*models.Entry, error) {
	e, err := scanEntry(s.q.QueryRowContext(ctx, `
		SELECT id, owner_id, watched_id, created_at
		FROM watchlist_entries WHERE owner_id = $1 AND watched_id = $2`,
		uuid.UUID(owner), uuid.UUID(watched)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find watchlist entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) Delete(ctx context.Context, owner, watched id.ProfileID) error {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM watchlist_entries WHERE owner_id = $1 AND watched_id = $2`,
		uuid.UUID(owner), uuid.UUID(watched))
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.ProfileID) ([]*models.Entry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, owner_id, watched_id, created_at
		FROM watchlist_entries WHERE owner_id = $1
		ORDER BY created_at DESC, id`, uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var out []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.Entry, error) {
	var (
		e                       models.Entry
		entryID, owner, watched uuid.UUID
	)
	if err := row.Scan(&entryID, &owner, &watched, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.ID = id.WatchlistEntryID(entryID)
	e.OwnerID = id.ProfileID(owner)
	e.WatchedID = id.ProfileID(watched)
	return &e, nil
}
