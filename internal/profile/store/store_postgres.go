package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"carelink/internal/geo"
	"carelink/internal/profile/models"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/platform/tx"
)

// PostgresStore persists profiles across the profiles table and the three
// role-specific attribute tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const baseColumns = `p.id, p.role, p.display_name, p.city, p.email, p.phone, p.lat, p.lng,
	p.show_name, p.show_email, p.show_phone, p.created_at, p.updated_at`

const (
	selectOperator = `SELECT ` + baseColumns + ` FROM profiles p`

	selectProvider = `SELECT ` + baseColumns + `,
	a.experience_years, a.language_level, a.specializations, a.certifications, a.bio,
	a.hourly_rate, a.availability, a.icu_experience, a.pediatric_experience, a.verified, a.care_score
	FROM profiles p JOIN provider_attributes a ON a.profile_id = p.id`

	selectOrganization = `SELECT ` + baseColumns + `,
	a.org_type, a.employee_count, a.founded_year, a.description, a.verified, a.subscription_tier
	FROM profiles p JOIN organization_attributes a ON a.profile_id = p.id`

	selectRelative = `SELECT ` + baseColumns + `,
	a.care_needs, a.care_start
	FROM profiles p JOIN relative_attributes a ON a.profile_id = p.id`
)

func selectFor(role id.Role) string {
	switch role {
	case id.RoleProvider:
		return selectProvider
	case id.RoleSeekerOrganization:
		return selectOrganization
	case id.RoleSeekerRelative:
		return selectRelative
	default:
		return selectOperator
	}
}

func (s *PostgresStore) FindByID(ctx context.Context, profileID id.ProfileID) (*models.Profile, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM profiles WHERE id = $1`, uuid.UUID(profileID)).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile role: %w", err)
	}
	r := id.Role(role)
	rows, err := s.db.QueryContext(ctx, selectFor(r)+` WHERE p.id = $1`, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	defer rows.Close()
	profiles, err := scanProfiles(rows, r)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return profiles[0], nil
}

func (s *PostgresStore) ListByRole(ctx context.Context, role id.Role) ([]*models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, selectFor(role)+` WHERE p.role = $1 ORDER BY p.created_at, p.id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	return scanProfiles(rows, role)
}

func scanProfiles(rows *sql.Rows, role id.Role) ([]*models.Profile, error) {
	var out []*models.Profile
	for rows.Next() {
		var (
			p        models.Profile
			pid      uuid.UUID
			roleText string
			lat, lng sql.NullFloat64
		)
		dest := []any{&pid, &roleText, &p.DisplayName, &p.City, &p.Email, &p.Phone, &lat, &lng,
			&p.Visibility.ShowName, &p.Visibility.ShowEmail, &p.Visibility.ShowPhone, &p.CreatedAt, &p.UpdatedAt}

		var finish func()
		switch role {
		case id.RoleProvider:
			a := &models.ProviderAttributes{}
			var lang, availability string
			var rate sql.NullFloat64
			dest = append(dest, &a.ExperienceYears, &lang, pq.Array(&a.Specializations), pq.Array(&a.Certifications),
				&a.Bio, &rate, &availability, &a.ICUExperience, &a.PediatricExperience, &a.Verified, &a.CareScore)
			finish = func() {
				a.LanguageLevel = models.LanguageLevel(lang)
				a.Availability = models.AvailabilityMode(availability)
				if rate.Valid {
					v := rate.Float64
					a.HourlyRate = &v
				}
				p.Attributes = a
			}
		case id.RoleSeekerOrganization:
			a := &models.OrganizationAttributes{}
			var orgType, tier string
			var founded sql.NullInt64
			dest = append(dest, &orgType, &a.EmployeeCount, &founded, &a.Description, &a.Verified, &tier)
			finish = func() {
				a.Type = models.OrganizationType(orgType)
				a.SubscriptionTier = models.SubscriptionTier(tier)
				a.FoundedYear = int(founded.Int64)
				p.Attributes = a
			}
		case id.RoleSeekerRelative:
			a := &models.RelativeAttributes{}
			var start sql.NullTime
			dest = append(dest, &a.CareNeeds, &start)
			finish = func() {
				if start.Valid {
					t := start.Time
					a.CareStart = &t
				}
				p.Attributes = a
			}
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.ID = id.ProfileID(pid)
		p.Role = id.Role(roleText)
		if lat.Valid && lng.Valid {
			p.Location = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
		}
		if finish != nil {
			finish()
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}

// Save upserts the base row and the role-specific row in one transaction.
func (s *PostgresStore) Save(ctx context.Context, p *models.Profile) error {
	return tx.Run(ctx, s.db, 0, "", func(t *sql.Tx) error {
		var lat, lng sql.NullFloat64
		if p.Location != nil {
			lat = sql.NullFloat64{Float64: p.Location.Lat, Valid: true}
			lng = sql.NullFloat64{Float64: p.Location.Lng, Valid: true}
		}
		_, err := t.ExecContext(ctx, `
			INSERT INTO profiles (id, role, display_name, city, email, phone, lat, lng,
				show_name, show_email, show_phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO UPDATE SET
				display_name = EXCLUDED.display_name, city = EXCLUDED.city,
				email = EXCLUDED.email, phone = EXCLUDED.phone,
				lat = EXCLUDED.lat, lng = EXCLUDED.lng,
				show_name = EXCLUDED.show_name, show_email = EXCLUDED.show_email,
				show_phone = EXCLUDED.show_phone, updated_at = EXCLUDED.updated_at`,
			uuid.UUID(p.ID), string(p.Role), p.DisplayName, p.City, p.Email, p.Phone, lat, lng,
			p.Visibility.ShowName, p.Visibility.ShowEmail, p.Visibility.ShowPhone, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}

		switch a := p.Attributes.(type) {
		case *models.ProviderAttributes:
			return upsertProvider(ctx, t, p.ID, a)
		case *models.OrganizationAttributes:
			_, err = t.ExecContext(ctx, `
				INSERT INTO organization_attributes (profile_id, org_type, employee_count, founded_year,
					description, verified, subscription_tier)
				VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, $7)
				ON CONFLICT (profile_id) DO UPDATE SET
					org_type = EXCLUDED.org_type, employee_count = EXCLUDED.employee_count,
					founded_year = EXCLUDED.founded_year, description = EXCLUDED.description,
					verified = EXCLUDED.verified, subscription_tier = EXCLUDED.subscription_tier`,
				uuid.UUID(p.ID), string(a.Type), a.EmployeeCount, a.FoundedYear, a.Description, a.Verified, string(a.SubscriptionTier))
		case *models.RelativeAttributes:
			var start sql.NullTime
			if a.CareStart != nil {
				start = sql.NullTime{Time: *a.CareStart, Valid: true}
			}
			_, err = t.ExecContext(ctx, `
				INSERT INTO relative_attributes (profile_id, care_needs, care_start)
				VALUES ($1, $2, $3)
				ON CONFLICT (profile_id) DO UPDATE SET
					care_needs = EXCLUDED.care_needs, care_start = EXCLUDED.care_start`,
				uuid.UUID(p.ID), a.CareNeeds, start)
		}
		if err != nil {
			return fmt.Errorf("upsert profile attributes: %w", err)
		}
		return nil
	})
}

func upsertProvider(ctx context.Context, q tx.Querier, profileID id.ProfileID, a *models.ProviderAttributes) error {
	var rate sql.NullFloat64
	if a.HourlyRate != nil {
		rate = sql.NullFloat64{Float64: *a.HourlyRate, Valid: true}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO provider_attributes (profile_id, experience_years, language_level, specializations,
			certifications, bio, hourly_rate, availability, icu_experience, pediatric_experience,
			verified, care_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (profile_id) DO UPDATE SET
			experience_years = EXCLUDED.experience_years, language_level = EXCLUDED.language_level,
			specializations = EXCLUDED.specializations, certifications = EXCLUDED.certifications,
			bio = EXCLUDED.bio, hourly_rate = EXCLUDED.hourly_rate, availability = EXCLUDED.availability,
			icu_experience = EXCLUDED.icu_experience, pediatric_experience = EXCLUDED.pediatric_experience,
			verified = EXCLUDED.verified, care_score = EXCLUDED.care_score`,
		uuid.UUID(profileID), a.ExperienceYears, string(a.LanguageLevel), pq.Array(nonNil(a.Specializations)),
		pq.Array(nonNil(a.Certifications)), a.Bio, rate, string(a.Availability), a.ICUExperience,
		a.PediatricExperience, a.Verified, a.CareScore)
	if err != nil {
		return fmt.Errorf("upsert provider attributes: %w", err)
	}
	return nil
}

// UpdateProviderAttributes replaces the provider row, care_score included.
func (s *PostgresStore) UpdateProviderAttributes(ctx context.Context, profileID id.ProfileID, attrs *models.ProviderAttributes, updatedAt time.Time) error {
	return tx.Run(ctx, s.db, 0, "", func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `UPDATE profiles SET updated_at = $2 WHERE id = $1 AND role = 'provider'`,
			uuid.UUID(profileID), updatedAt)
		if err != nil {
			return fmt.Errorf("touch profile: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sentinel.ErrNotFound
		}
		return upsertProvider(ctx, t, profileID, attrs)
	})
}

func (s *PostgresStore) UpdateCareScore(ctx context.Context, profileID id.ProfileID, careScore int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE provider_attributes SET care_score = $2 WHERE profile_id = $1`,
		uuid.UUID(profileID), careScore)
	if err != nil {
		return fmt.Errorf("update care score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateSubscriptionTier(ctx context.Context, profileID id.ProfileID, tier models.SubscriptionTier, updatedAt time.Time) error {
	return tx.Run(ctx, s.db, 0, "", func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `UPDATE organization_attributes SET subscription_tier = $2 WHERE profile_id = $1`,
			uuid.UUID(profileID), string(tier))
		if err != nil {
			return fmt.Errorf("update subscription tier: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sentinel.ErrNotFound
		}
		_, err = t.ExecContext(ctx, `UPDATE profiles SET updated_at = $2 WHERE id = $1`, uuid.UUID(profileID), updatedAt)
		return err
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
