package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"carelink/internal/contact/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/platform/tx"
)

// PostgresStore persists contact requests. Inside a transaction FindByID
// takes a row lock so competing responses serialize.
type PostgresStore struct {
	q tx.Querier
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{q: db}
}

func NewPostgresTx(t *sql.Tx) *PostgresStore {
	return &PostgresStore{q: t}
}

const requestColumns = `id, requester_id, target_id, message, status, created_at, responded_at`

func (s *PostgresStore) Create(ctx context.Context, r *models.ContactRequest) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO contact_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(r.ID), uuid.UUID(r.RequesterID), uuid.UUID(r.TargetID), r.Message,
		string(r.Status), r.CreatedAt, r.RespondedAt)
	if err != nil {
		// contact_requests_active_pair_uq covers the unordered pair while the
		// status is pending or accepted.
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert contact request: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.ContactRequestID) (*models.ContactRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM contact_requests WHERE id = $1`
	if _, inTx := s.q.(*sql.Tx); inTx {
		query += ` FOR UPDATE`
	}
	r, err := scanRequest(s.q.QueryRowContext(ctx, query, uuid.UUID(requestID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find contact request: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListByPair(ctx context.Context, pair models.PairKey) ([]*models.ContactRequest, error) {
	return s.list(ctx, `SELECT `+requestColumns+` FROM contact_requests
		WHERE LEAST(requester_id, target_id) = LEAST($1::uuid, $2::uuid)
		  AND GREATEST(requester_id, target_id) = GREATEST($1::uuid, $2::uuid)
		ORDER BY created_at DESC, id`,
		uuid.UUID(pair.Low), uuid.UUID(pair.High))
}

// Update only moves pending rows; a concurrent responder that lost the race
// gets sentinel.ErrInvalidState.
func (s *PostgresStore) Update(ctx context.Context, r *models.ContactRequest) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE contact_requests SET status = $2, responded_at = $3
		WHERE id = $1 AND status = 'pending'`,
		uuid.UUID(r.ID), string(r.Status), r.RespondedAt)
	if err != nil {
		return fmt.Errorf("update contact request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.FindByID(ctx, r.ID); err != nil {
			return err
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) ListByTarget(ctx context.Context, target id.ProfileID, status models.Status) ([]*models.ContactRequest, error) {
	return s.list(ctx, `SELECT `+requestColumns+` FROM contact_requests
		WHERE target_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id`, uuid.UUID(target), string(status))
}

func (s *PostgresStore) ListByRequester(ctx context.Context, requester id.ProfileID, status models.Status) ([]*models.ContactRequest, error) {
	return s.list(ctx, `SELECT `+requestColumns+` FROM contact_requests
		WHERE requester_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id`, uuid.UUID(requester), string(status))
}

func (s *PostgresStore) HasAccepted(ctx context.Context, pair models.PairKey) (bool, error) {
	var ok bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM contact_requests
			WHERE status = 'accepted'
			  AND LEAST(requester_id, target_id) = LEAST($1::uuid, $2::uuid)
			  AND GREATEST(requester_id, target_id) = GREATEST($1::uuid, $2::uuid))`,
		uuid.UUID(pair.Low), uuid.UUID(pair.High)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check accepted contact: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.ContactRequest, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contact requests: %w", err)
	}
	defer rows.Close()
	var out []*models.ContactRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*models.ContactRequest, error) {
	var (
		r                            models.ContactRequest
		requestID, requester, target uuid.UUID
		status                       string
		responded                    sql.NullTime
	)
	if err := row.Scan(&requestID, &requester, &target, &r.Message, &status, &r.CreatedAt, &responded); err != nil {
		return nil, err
	}
	r.ID = id.ContactRequestID(requestID)
	r.RequesterID = id.ProfileID(requester)
	r.TargetID = id.ProfileID(target)
	r.Status = models.Status(status)
	if responded.Valid {
		t := responded.Time
		r.RespondedAt = &t
	}
	return &r, nil
}
