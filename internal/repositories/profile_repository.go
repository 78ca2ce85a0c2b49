package repositories

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/pkg/errors"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateProfile inserts a new profile
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	result := r.db.WithContext(ctx).Create(profile)
	if stderrors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return errors.Wrap(result.Error, errors.ErrCodeAlreadyExists, "profile already exists")
	}
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to create profile")
	}
	return nil
}

// GetProfileByID retrieves a profile by its identity id
func (r *ProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&profile)
	return r.single(&profile, result.Error)
}

// GetProfileByEmail retrieves a profile by exact contact address
func (r *ProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&profile)
	return r.single(&profile, result.Error)
}

// GetProfileByHandle retrieves a profile by handle, ignoring case
func (r *ProfileRepository) GetProfileByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	var profile models.Profile
	result := r.db.WithContext(ctx).Where("LOWER(handle) = LOWER(?)", handle).First(&profile)
	return r.single(&profile, result.Error)
}

// HandleExists checks whether any profile holds handle, ignoring case
func (r *ProfileRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Profile{}).Where("LOWER(handle) = LOWER(?)", handle).Count(&count)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to check handle")
	}
	return count > 0, nil
}

// MarkActive flags the profile as active and backfills a missing light
// with the default. An existing light is preserved.
func (r *ProfileRepository) MarkActive(ctx context.Context, id string) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"hanglight_active": true,
		"status_light":     gorm.Expr("COALESCE(NULLIF(status_light, ''), ?)", string(models.LightRed)),
	})
}

// UpdateFields writes the given columns of one profile
func (r *ProfileRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if stderrors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return errors.Wrap(result.Error, errors.ErrCodeAlreadyExists, "value already taken")
	}
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update profile")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "profile not found")
	}
	return nil
}

// ClearExpiredMessages nulls every non-null status message last touched
// before cutoff. The light and timestamp are left alone.
func (r *ProfileRepository) ClearExpiredMessages(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("status_message IS NOT NULL AND last_status_update < ?", cutoff).
		UpdateColumn("status_message", gorm.Expr("NULL"))

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to clear expired status messages")
	}
	return result.RowsAffected, nil
}

func (r *ProfileRepository) single(profile *models.Profile, err error) (*models.Profile, error) {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get profile")
	}
	return profile, nil
}
