package repositories

import (
	"context"
	stderrors "errors"

	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/pkg/errors"
	"gorm.io/gorm"
)

type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// GetAsUser retrieves accepted rows where profileID is on the user side,
// with the friend side loaded
func (r *FriendshipRepository) GetAsUser(ctx context.Context, profileID string) ([]models.Friendship, error) {
	var rows []models.Friendship

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", profileID, models.FriendshipStatusAccepted).
		Preload("Friend").
		Find(&rows).Error

	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get friends")
	}
	return rows, nil
}

// GetAsFriend retrieves accepted rows where profileID is on the friend
// side, with the user side loaded
func (r *FriendshipRepository) GetAsFriend(ctx context.Context, profileID string) ([]models.Friendship, error) {
	var rows []models.Friendship

	err := r.db.WithContext(ctx).
		Where("friend_id = ? AND status = ?", profileID, models.FriendshipStatusAccepted).
		Preload("User").
		Find(&rows).Error

	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get friends")
	}
	return rows, nil
}

// GetFriendshipByID retrieves one friendship row
func (r *FriendshipRepository) GetFriendshipByID(ctx context.Context, id string) (*models.Friendship, error) {
	var friendship models.Friendship
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&friendship)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "friendship not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get friendship")
	}
	return &friendship, nil
}

// CountBetween counts accepted rows for the pair in either orientation
func (r *FriendshipRepository) CountBetween(ctx context.Context, a, b string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where(
			"((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)) AND status = ?",
			a, b, b, a, models.FriendshipStatusAccepted,
		).Count(&count)

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to check friendship")
	}
	return count, nil
}

// AreFriends checks if two profiles are friends
func (r *FriendshipRepository) AreFriends(ctx context.Context, a, b string) (bool, error) {
	count, err := r.CountBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateNickname writes the nickname of one friendship row. A nil
// nickname clears it.
func (r *FriendshipRepository) UpdateNickname(ctx context.Context, id string, nickname *string) error {
	var value interface{} = gorm.Expr("NULL")
	if nickname != nil {
		value = *nickname
	}

	result := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("id = ?", id).
		UpdateColumn("nickname", value)

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update nickname")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "friendship not found")
	}
	return nil
}

// RemoveFriendship deletes the row and moves the pair's request to
// declined so the pair may send a fresh one later.
func (r *FriendshipRepository) RemoveFriendship(ctx context.Context, friendship *models.Friendship) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", friendship.ID).Delete(&models.Friendship{})
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to remove friend")
		}
		if result.RowsAffected == 0 {
			return errors.New(errors.ErrCodeNotFound, "friendship not found")
		}

		err := tx.Model(&models.FriendRequest{}).
			Where("pair_key = ? AND status = ?", models.PairKey(friendship.UserID, friendship.FriendID), models.RequestStatusAccepted).
			Update("status", models.RequestStatusDeclined).Error
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to reset friend request")
		}
		return nil
	})
}
