package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"carelink/internal/geo"
	"carelink/internal/quota/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/platform/tx"
)

// PostgresStore persists listings. Bound to a *sql.Tx it takes part in the
// caller's transaction, which is how the count-then-insert stays atomic.
type PostgresStore struct {
	q tx.Querier
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{q: db}
}

// NewPostgresTx binds the store to an open transaction.
func NewPostgresTx(t *sql.Tx) *PostgresStore {
	return &PostgresStore{q: t}
}

const listingColumns = `id, owner_id, title, description, city, lat, lng, active, featured, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, l *models.Listing) error {
	lat, lng := coords(l.Location)
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(l.ID), uuid.UUID(l.OwnerID), l.Title, l.Description, l.City, lat, lng,
		l.Active, l.Featured, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// FindByID locks the row when called inside a transaction.
func (s *PostgresStore) FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	if _, inTx := s.q.(*sql.Tx); inTx {
		query += ` FOR UPDATE`
	}
	l, err := scanListing(s.q.QueryRowContext(ctx, query, uuid.UUID(listingID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) Update(ctx context.Context, l *models.Listing) error {
	lat, lng := coords(l.Location)
	res, err := s.q.ExecContext(ctx, `
		UPDATE listings SET title = $2, description = $3, city = $4, lat = $5, lng = $6,
			active = $7, featured = $8, updated_at = $9
		WHERE id = $1`,
		uuid.UUID(l.ID), l.Title, l.Description, l.City, lat, lng, l.Active, l.Featured, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountActive(ctx context.Context, owner id.ProfileID) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM listings WHERE owner_id = $1 AND active`, owner)
}

func (s *PostgresStore) CountFeatured(ctx context.Context, owner id.ProfileID) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM listings WHERE owner_id = $1 AND active AND featured`, owner)
}

func (s *PostgresStore) count(ctx context.Context, query string, owner id.ProfileID) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, query, uuid.UUID(owner)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.ProfileID) ([]*models.Listing, error) {
	return s.list(ctx, `SELECT `+listingColumns+` FROM listings WHERE owner_id = $1 ORDER BY created_at DESC, id`, uuid.UUID(owner))
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*models.Listing, error) {
	return s.list(ctx, `SELECT `+listingColumns+` FROM listings WHERE active ORDER BY created_at DESC, id`)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Listing, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()
	var out []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*models.Listing, error) {
	var (
		l        models.Listing
		listing  uuid.UUID
		owner    uuid.UUID
		lat, lng sql.NullFloat64
	)
	if err := row.Scan(&listing, &owner, &l.Title, &l.Description, &l.City, &lat, &lng,
		&l.Active, &l.Featured, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.ID = id.ListingID(listing)
	l.OwnerID = id.ProfileID(owner)
	if lat.Valid && lng.Valid {
		l.Location = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &l, nil
}

func coords(p *geo.Point) (sql.NullFloat64, sql.NullFloat64) {
	if p == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: p.Lat, Valid: true}, sql.NullFloat64{Float64: p.Lng, Valid: true}
}
