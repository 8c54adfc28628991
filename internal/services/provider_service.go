package services

import (
	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/apperror"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// ProviderService exposes a provider's own profile and activity, and the public provider directory
type ProviderService struct {
	providers ProviderStore
}

// NewProviderService creates a ProviderService
func NewProviderService(providers ProviderStore) *ProviderService {
	return &ProviderService{providers: providers}
}

// GetProfile returns the provider profile of a user
func (s *ProviderService) GetProfile(userID uuid.UUID) (*models.ProviderProfile, error) {
	profile, err := s.providers.GetByUserID(userID)
	if err != nil {
		return nil, notFoundOr(err, "provider profile")
	}
	return profile, nil
}

// UpdateProfile applies the provider-editable fields.
// Commission rate and approval state are managed by the platform.
func (s *ProviderService) UpdateProfile(userID uuid.UUID, req *models.UpdateProviderProfileRequest) (*models.ProviderProfile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.BusinessName != nil {
		profile.BusinessName = *req.BusinessName
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Expertise != nil {
		profile.Expertise = req.Expertise
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.Languages != nil {
		profile.Languages = req.Languages
	}
	if req.YearsExperience != nil {
		if *req.YearsExperience < 0 {
			return nil, apperror.Validation("INVALID_PROFILE", "years_experience cannot be negative")
		}
		profile.YearsExperience = *req.YearsExperience
	}

	if err := s.providers.UpdateProfile(profile); err != nil {
		return nil, notFoundOr(err, "provider profile")
	}
	return profile, nil
}

// GetStats summarises the provider's trips, bookings and earnings
func (s *ProviderService) GetStats(providerID uuid.UUID) (*models.ProviderStats, error) {
	stats, err := s.providers.GetStats(providerID)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return stats, nil
}

// GetPublicProfile returns an approved provider as travelers see them
func (s *ProviderService) GetPublicProfile(providerID uuid.UUID) (*models.PublicProvider, error) {
	provider, err := s.providers.GetPublicProfile(providerID)
	if err != nil {
		return nil, notFoundOr(err, "provider")
	}
	return provider, nil
}

// ListProviders pages through approved providers
func (s *ProviderService) ListProviders(filter models.ProviderFilter) (*models.ProviderList, error) {
	providers, total, err := s.providers.ListApproved(filter)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return &models.ProviderList{
		Providers:  providers,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: filter.TotalPages(total),
	}, nil
}
