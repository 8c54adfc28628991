package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/apperror"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/pkg/jwt"
	"github.com/tripmarket/marketplace-backend/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

// LoginLimiter throttles failed logins
type LoginLimiter interface {
	CheckLoginRateLimit(email, ip string) error
	RecordFailedLogin(email, ip string) error
	ResetLoginAttempts(email string) error
}

// AuthService registers and authenticates users
type AuthService struct {
	users          UserStore
	providers      ProviderStore
	jwt            *jwt.Service
	limiter        LoginLimiter
	audit          Auditor
	notifier       *NotificationService
	emailValidator *validator.EmailValidator
	bcryptCost     int
	logger         *logrus.Logger

	// dummyHash is compared against when the email is unknown so both failure paths cost one bcrypt
	dummyHash []byte
}

// NewAuthService creates an AuthService
func NewAuthService(
	users UserStore,
	providers ProviderStore,
	jwtService *jwt.Service,
	limiter LoginLimiter,
	audit Auditor,
	notifier *NotificationService,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)

	return &AuthService{
		users:          users,
		providers:      providers,
		jwt:            jwtService,
		limiter:        limiter,
		audit:          audit,
		notifier:       notifier,
		emailValidator: validator.NewEmailValidator(),
		bcryptCost:     bcryptCost,
		logger:         logger,
		dummyHash:      dummy,
	}
}

// Register creates an account and returns a session token for it
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest, meta RequestMeta) (*models.AuthResponse, error) {
	email, err := s.emailValidator.Validate(req.Email)
	if err != nil {
		return nil, apperror.Validation("INVALID_EMAIL", err.Error())
	}
	if !req.Role.Valid() {
		return nil, apperror.InvalidRole()
	}
	if len(req.Password) < 8 {
		return nil, apperror.Validation("WEAK_PASSWORD", "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
	}

	var profile *models.ProviderProfile
	if req.Role == models.RoleProvider {
		profile = &models.ProviderProfile{ApprovalState: models.ApprovalPending}
	}

	if err := s.users.CreateUser(user, profile); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, apperror.DuplicateEmail()
		}
		return nil, apperror.Unexpected(err)
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	if err := s.audit.LogRegistration(user.ID, user.Email, user.Role, meta); err != nil {
		s.logger.WithError(err).Warn("Failed to write registration audit log")
	}
	s.notifier.Welcome(ctx, user)

	return &models.AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Login verifies credentials. Unknown email and wrong password fail identically.
// A throttled caller gets a *RateLimitError.
func (s *AuthService) Login(req *models.LoginRequest, meta RequestMeta) (*models.AuthResponse, error) {
	email := validator.Normalize(req.Email)

	if err := s.limiter.CheckLoginRateLimit(email, meta.IPAddress); err != nil {
		var rateErr *RateLimitError
		if errors.As(err, &rateErr) {
			if auditErr := s.audit.LogRateLimitViolation(email, rateErr.Type, rateErr.RetryAfter, meta); auditErr != nil {
				s.logger.WithError(auditErr).Warn("Failed to write rate limit audit log")
			}
			return nil, rateErr
		}
		return nil, apperror.Unexpected(err)
	}

	user, err := s.users.GetUserByEmail(email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Unexpected(err)
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		s.failedLogin(nil, email, "unknown_email", meta)
		return nil, apperror.InvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.failedLogin(&user.ID, email, "wrong_password", meta)
		return nil, apperror.InvalidCredentials()
	}

	if err := s.limiter.ResetLoginAttempts(email); err != nil {
		s.logger.WithError(err).Warn("Failed to reset login attempts")
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	if err := s.audit.LogLogin(&user.ID, email, true, "", meta); err != nil {
		s.logger.WithError(err).Warn("Failed to write login audit log")
	}

	return &models.AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) failedLogin(userID *uuid.UUID, email, reason string, meta RequestMeta) {
	if err := s.limiter.RecordFailedLogin(email, meta.IPAddress); err != nil {
		s.logger.WithError(err).Warn("Failed to record failed login")
	}
	if err := s.audit.LogLogin(userID, email, false, reason, meta); err != nil {
		s.logger.WithError(err).Warn("Failed to write login audit log")
	}
}

// CurrentUser returns the user and, for providers, their profile
func (s *AuthService) CurrentUser(userID uuid.UUID) (*models.CurrentUserResponse, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}

	resp := &models.CurrentUserResponse{User: user}
	if user.Role == models.RoleProvider {
		profile, err := s.providers.GetByUserID(user.ID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, apperror.Unexpected(err)
		}
		resp.ProviderProfile = profile
	}
	return resp, nil
}
