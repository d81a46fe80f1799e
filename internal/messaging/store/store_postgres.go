package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"carelink/internal/messaging/models"
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

func (s *PostgresStore) Create(ctx context.Context, m *models.Message) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(m.ID), uuid.UUID(m.SenderID), uuid.UUID(m.RecipientID), m.Body, m.SentAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBetween(ctx context.Context, a, b id.ProfileID, limit int) ([]*models.Message, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, body, sent_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY sent_at DESC, seq DESC
		LIMIT $3`,
		uuid.UUID(a), uuid.UUID(b), limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		var (
			m                        models.Message
			msgID, sender, recipient uuid.UUID
		)
		if err := rows.Scan(&msgID, &sender, &recipient, &m.Body, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ID = id.MessageID(msgID)
		m.SenderID = id.ProfileID(sender)
		m.RecipientID = id.ProfileID(recipient)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}
