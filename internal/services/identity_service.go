package services

import (
	"context"

	"github.com/mroshb/hanglight/internal/auth"
	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/internal/repositories"
	"github.com/mroshb/hanglight/internal/security"
	"github.com/mroshb/hanglight/pkg/errors"
	"github.com/mroshb/hanglight/pkg/logger"
	"github.com/mroshb/hanglight/pkg/utils"
)

const (
	placeholderAttempts = 5
	maxWalletLength     = 128
)

type IdentityService struct {
	profiles *repositories.ProfileRepository
	clock    TimeProvider
}

func NewIdentityService(profiles *repositories.ProfileRepository, clock TimeProvider) *IdentityService {
	return &IdentityService{profiles: profiles, clock: clock}
}

// EnsureProfile loads the profile of an authenticated identity, creating it
// on first sign-in. An existing profile is flagged active; its light is kept.
func (s *IdentityService) EnsureProfile(ctx context.Context, identity *auth.Identity) (*models.Profile, error) {
	if identity == nil || identity.ID == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "not signed in")
	}

	existing, err := s.profiles.GetProfileByID(ctx, identity.ID)
	if err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	if existing != nil {
		if err := s.profiles.MarkActive(ctx, existing.ID); err != nil {
			logger.Warn("Failed to mark profile active", "profile_id", existing.ID, "error", err)
			return existing, nil
		}
		updated, err := s.profiles.GetProfileByID(ctx, existing.ID)
		if err != nil {
			return existing, nil
		}
		return updated, nil
	}

	email := utils.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, errors.New(errors.ErrCodeValidation, "identity has no email address")
	}

	handle, err := s.initialHandle(ctx, identity)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:               identity.ID,
		Handle:           handle,
		Email:            email,
		StatusLight:      models.LightRed,
		HanglightActive:  true,
		LastStatusUpdate: s.clock.Now(),
	}

	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		logger.Error("Profile creation failed", "profile_id", identity.ID, "error", err)
		return nil, errors.Wrap(err, errors.CodeOf(err), "Profile creation failed")
	}

	logger.Info("Profile created", "profile_id", profile.ID, "handle", profile.Handle)
	return profile, nil
}

// initialHandle uses the signup handle when it is well formed and free,
// otherwise a TEMP placeholder that is not yet taken.
func (s *IdentityService) initialHandle(ctx context.Context, identity *auth.Identity) (string, error) {
	if requested := utils.NormalizeHandle(identity.Handle()); requested != "" {
		if !models.IsValidHandle(requested) {
			logger.Warn("Ignoring malformed signup handle", "profile_id", identity.ID, "handle", requested)
		} else {
			taken, err := s.profiles.HandleExists(ctx, requested)
			if err != nil {
				return "", err
			}
			if !taken {
				return requested, nil
			}
			logger.Warn("Signup handle already taken", "profile_id", identity.ID, "handle", requested)
		}
	}

	for i := 0; i < placeholderAttempts; i++ {
		candidate := utils.GeneratePlaceholderHandle()
		taken, err := s.profiles.HandleExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.New(errors.ErrCodeInternalError, "could not allocate a placeholder handle")
}

// GetProfile retrieves a profile by id
func (s *IdentityService) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	return s.profiles.GetProfileByID(ctx, profileID)
}

// ValidateHandle checks the AAA999 format after normalising case.
func ValidateHandle(handle string) (string, error) {
	normalized := utils.NormalizeHandle(handle)
	if !models.IsValidHandle(normalized) {
		return "", errors.New(errors.ErrCodeValidation, "Username must be 3 letters + 3 numbers (e.g., ABC123)")
	}
	return normalized, nil
}

// ClaimHandle replaces the profile's handle, typically a placeholder, with a
// well-formed one nobody else holds.
func (s *IdentityService) ClaimHandle(ctx context.Context, profileID, handle string) (*models.Profile, error) {
	normalized, err := ValidateHandle(handle)
	if err != nil {
		return nil, err
	}

	holder, err := s.profiles.GetProfileByHandle(ctx, normalized)
	if err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
		return nil, err
	}
	if holder != nil && holder.ID != profileID {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "That username is already taken")
	}

	if err := s.profiles.UpdateFields(ctx, profileID, map[string]interface{}{"handle": normalized}); err != nil {
		if errors.Is(err, errors.ErrCodeAlreadyExists) {
			return nil, errors.New(errors.ErrCodeAlreadyExists, "That username is already taken")
		}
		return nil, err
	}

	logger.Info("Handle claimed", "profile_id", profileID, "handle", normalized)
	return s.profiles.GetProfileByID(ctx, profileID)
}

// SetWalletAddress stores a free-text wallet address; a blank value clears it.
func (s *IdentityService) SetWalletAddress(ctx context.Context, profileID, address string) (*models.Profile, error) {
	cleaned := security.SanitizeText(address)
	if len(cleaned) > maxWalletLength {
		return nil, errors.New(errors.ErrCodeValidation, "wallet address is too long")
	}

	var value interface{}
	if cleaned != "" {
		value = cleaned
	}

	if err := s.profiles.UpdateFields(ctx, profileID, map[string]interface{}{"wallet_address": value}); err != nil {
		return nil, err
	}
	return s.profiles.GetProfileByID(ctx, profileID)
}

// FormatWalletAddress shortens an address to its first six and last four
// characters for display.
func FormatWalletAddress(address *string) string {
	if address == nil || *address == "" {
		return "No wallet connected"
	}
	a := *address
	if len(a) <= 10 {
		return a
	}
	return a[:6] + "..." + a[len(a)-4:]
}
