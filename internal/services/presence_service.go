package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/internal/repositories"
	"github.com/mroshb/hanglight/internal/security"
	"github.com/mroshb/hanglight/pkg/errors"
	"github.com/mroshb/hanglight/pkg/logger"
)

const maxStatusMessageLength = 140

// PresenceService owns a profile's light, message and the single timestamp
// both share. Touching either one restarts the message expiry clock.
type PresenceService struct {
	profiles *repositories.ProfileRepository
	ttl      time.Duration
	clock    TimeProvider
}

func NewPresenceService(profiles *repositories.ProfileRepository, ttl time.Duration, clock TimeProvider) *PresenceService {
	return &PresenceService{profiles: profiles, ttl: ttl, clock: clock}
}

// SetStatusLight writes the light and refreshes the status timestamp. The
// message is left as is.
func (s *PresenceService) SetStatusLight(ctx context.Context, profileID string, light models.StatusLight) error {
	if !light.Valid() {
		return errors.New(errors.ErrCodeValidation, fmt.Sprintf("invalid status light %q", light))
	}

	err := s.profiles.UpdateFields(ctx, profileID, map[string]interface{}{
		"status_light":       light,
		"last_status_update": s.clock.Now(),
	})
	if err != nil {
		return err
	}

	logger.Info("Status light updated", "profile_id", profileID, "light", light)
	return nil
}

// SetStatusMessage writes the message and refreshes the status timestamp.
// An empty message is stored as an empty string, not as null.
func (s *PresenceService) SetStatusMessage(ctx context.Context, profileID, text string) error {
	message := security.SanitizeText(text)
	if len([]rune(message)) > maxStatusMessageLength {
		return errors.New(errors.ErrCodeValidation, fmt.Sprintf("Status message must be at most %d characters", maxStatusMessageLength))
	}

	err := s.profiles.UpdateFields(ctx, profileID, map[string]interface{}{
		"status_message":     message,
		"last_status_update": s.clock.Now(),
	})
	if err != nil {
		return err
	}

	logger.Info("Status message updated", "profile_id", profileID, "length", len(message))
	return nil
}

// SweepExpiredMessages nulls every status message whose profile has not
// updated its status within the TTL. It is idempotent.
func (s *PresenceService) SweepExpiredMessages(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.ttl)

	cleared, err := s.profiles.ClearExpiredMessages(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		logger.Info("Expired status messages cleared", "count", cleared, "cutoff", cutoff)
	}
	return cleared, nil
}

// MessageExpired reports whether p's message is past the TTL even if the
// sweep has not caught it yet.
func (s *PresenceService) MessageExpired(p *models.Profile) bool {
	if p.StatusMessage == nil {
		return false
	}
	return s.clock.Now().Sub(p.LastStatusUpdate) > s.ttl
}
