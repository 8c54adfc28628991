package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, role, verified, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser inserts a user and, when profile is non-nil, its provider profile in one transaction
func (r *UserRepository) CreateUser(user *models.User, profile *models.ProviderProfile) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err = tx.QueryRowx(query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role, user.Verified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if profile != nil {
		if profile.ID == uuid.Nil {
			profile.ID = uuid.New()
		}
		profile.UserID = user.ID
		if profile.ApprovalState == "" {
			profile.ApprovalState = models.ApprovalPending
		}

		profileQuery := `
			INSERT INTO provider_profiles (
				id, user_id, business_name, bio, expertise, location,
				languages, years_experience, commission_rate, approval_state
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at`

		err = tx.QueryRowx(profileQuery,
			profile.ID, profile.UserID, profile.BusinessName, profile.Bio, profile.Expertise, profile.Location,
			profile.Languages, profile.YearsExperience, profile.CommissionRate, profile.ApprovalState,
		).Scan(&profile.CreatedAt, &profile.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create provider profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user creation: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by normalised email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Get(&user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Get(&user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// GetUserByProviderID retrieves the account that owns a provider profile
func (r *UserRepository) GetUserByProviderID(providerID uuid.UUID) (*models.User, error) {
	var user models.User
	query := `
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.role, u.verified, u.created_at, u.updated_at
		FROM users u
		JOIN provider_profiles pp ON pp.user_id = u.id
		WHERE pp.id = $1`

	err := r.db.Get(&user, query, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch provider user: %w", err)
	}
	return &user, nil
}
