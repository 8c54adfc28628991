package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

const providerColumns = `id, user_id, business_name, bio, expertise, location, languages,
	years_experience, commission_rate, approval_state, created_at, updated_at`

// ProviderRepository handles provider profile database operations
type ProviderRepository struct {
	db DB
}

// NewProviderRepository creates a new ProviderRepository
func NewProviderRepository(db DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// GetByUserID retrieves the provider profile of a user
func (r *ProviderRepository) GetByUserID(userID uuid.UUID) (*models.ProviderProfile, error) {
	return r.getOne(`SELECT `+providerColumns+` FROM provider_profiles WHERE user_id = $1`, userID)
}

// GetByID retrieves a provider profile by ID
func (r *ProviderRepository) GetByID(id uuid.UUID) (*models.ProviderProfile, error) {
	return r.getOne(`SELECT `+providerColumns+` FROM provider_profiles WHERE id = $1`, id)
}

func (r *ProviderRepository) getOne(query string, arg interface{}) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	if err := r.db.Get(&profile, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch provider profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile persists the provider-editable fields
func (r *ProviderRepository) UpdateProfile(profile *models.ProviderProfile) error {
	query := `
		UPDATE provider_profiles
		SET business_name = $1, bio = $2, expertise = $3, location = $4,
			languages = $5, years_experience = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err := r.db.QueryRow(query,
		profile.BusinessName, profile.Bio, profile.Expertise, profile.Location,
		profile.Languages, profile.YearsExperience, profile.ID,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update provider profile: %w", err)
	}
	return nil
}

// ApproveByEmail marks the provider profile of the given account as approved
func (r *ProviderRepository) ApproveByEmail(email string) error {
	query := `
		UPDATE provider_profiles pp
		SET approval_state = 'approved', updated_at = NOW()
		FROM users u
		WHERE u.id = pp.user_id AND u.email = $1`

	result, err := r.db.Exec(query, email)
	if err != nil {
		return fmt.Errorf("failed to approve provider: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats aggregates trips, bookings, revenue and rating for a provider
func (r *ProviderRepository) GetStats(providerID uuid.UUID) (*models.ProviderStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM trips WHERE provider_id = $1) AS total_trips,
			(SELECT COUNT(*) FROM bookings b JOIN trips t ON t.id = b.trip_id
				WHERE t.provider_id = $1 AND b.booking_status IN ('pending', 'confirmed')) AS active_bookings,
			(SELECT COALESCE(SUM(b.total_price), 0) FROM bookings b JOIN trips t ON t.id = b.trip_id
				WHERE t.provider_id = $1 AND b.booking_status IN ('confirmed', 'completed')) AS total_revenue,
			(SELECT COALESCE(SUM(b.commission_amount), 0) FROM bookings b JOIN trips t ON t.id = b.trip_id
				WHERE t.provider_id = $1 AND b.booking_status IN ('confirmed', 'completed')) AS total_commission,
			(SELECT COALESCE(ROUND(AVG(r.rating)::numeric, 2), 0) FROM reviews r JOIN trips t ON t.id = r.trip_id
				WHERE t.provider_id = $1) AS average_rating`

	var stats models.ProviderStats
	if err := r.db.Get(&stats, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to fetch provider stats: %w", err)
	}
	return &stats, nil
}

const publicProviderColumns = `pp.id, u.first_name, u.last_name, pp.business_name, pp.bio, pp.expertise,
	pp.location, pp.languages, pp.years_experience, pp.created_at,
	(SELECT COUNT(*) FROM trips t WHERE t.provider_id = pp.id AND t.status = 'published') AS published_trips`

// GetPublicProfile retrieves an approved provider with their published trip count
func (r *ProviderRepository) GetPublicProfile(id uuid.UUID) (*models.PublicProvider, error) {
	query := `SELECT ` + publicProviderColumns + `
		FROM provider_profiles pp
		JOIN users u ON u.id = pp.user_id
		WHERE pp.id = $1 AND pp.approval_state = 'approved'`

	var provider models.PublicProvider
	if err := r.db.Get(&provider, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch provider: %w", err)
	}
	return &provider, nil
}

// ListApproved returns a page of approved providers, newest first, with the total match count
func (r *ProviderRepository) ListApproved(filter models.ProviderFilter) ([]models.PublicProvider, int, error) {
	conditions := []string{"pp.approval_state = 'approved'"}
	args := []interface{}{}
	if filter.Location != "" {
		args = append(args, "%"+escapeLike(filter.Location)+"%")
		conditions = append(conditions, fmt.Sprintf("pp.location ILIKE $%d", len(args)))
	}
	if filter.Expertise != "" {
		args = append(args, filter.Expertise)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(pp.expertise)", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM provider_profiles pp WHERE ` + where
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count providers: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s
		FROM provider_profiles pp
		JOIN users u ON u.id = pp.user_id
		WHERE %s
		ORDER BY pp.created_at DESC LIMIT $%d OFFSET $%d`,
		publicProviderColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	providers := []models.PublicProvider{}
	if err := r.db.Select(&providers, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, total, nil
}
