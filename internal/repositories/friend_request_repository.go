package repositories

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/pkg/errors"
	"gorm.io/gorm"
)

type FriendRequestRepository struct {
	db *gorm.DB
}

func NewFriendRequestRepository(db *gorm.DB) *FriendRequestRepository {
	return &FriendRequestRepository{db: db}
}

// CreateRequest inserts a new pending request. The unique pair key turns a
// racing duplicate send into a conflict.
func (r *FriendRequestRepository) CreateRequest(ctx context.Context, request *models.FriendRequest) error {
	request.Status = models.RequestStatusPending

	result := r.db.WithContext(ctx).Create(request)
	if stderrors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return errors.Wrap(result.Error, errors.ErrCodeDuplicatePending, "Friend request already sent!")
	}
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to create friend request")
	}
	return nil
}

// GetRequestByID retrieves a friend request
func (r *FriendRequestRepository) GetRequestByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&request)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "friend request not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get friend request")
	}
	return &request, nil
}

// FindBetween returns the request row for the unordered pair in any
// status, or nil when the pair has never exchanged one.
func (r *FriendRequestRepository) FindBetween(ctx context.Context, a, b string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	result := r.db.WithContext(ctx).Where("pair_key = ?", models.PairKey(a, b)).First(&request)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to check existing request")
	}
	return &request, nil
}

// ReopenRequest turns a declined row back into a pending request from
// senderID. The row keeps its id; created_at restarts.
func (r *FriendRequestRepository) ReopenRequest(ctx context.Context, request *models.FriendRequest, senderID, receiverID, message string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", request.ID, models.RequestStatusDeclined).
		Updates(map[string]interface{}{
			"sender_id":    senderID,
			"receiver_id":  receiverID,
			"message":      message,
			"status":       models.RequestStatusPending,
			"created_at":   now,
			"resend_count": gorm.Expr("resend_count + 1"),
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to reopen friend request")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeDuplicatePending, "Friend request already sent!")
	}

	request.SenderID = senderID
	request.ReceiverID = receiverID
	request.Message = message
	request.Status = models.RequestStatusPending
	request.CreatedAt = now
	request.ResendCount++
	return nil
}

// GetPendingInbound retrieves pending requests addressed to receiverID
func (r *FriendRequestRepository) GetPendingInbound(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest

	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, models.RequestStatusPending).
		Preload("Sender").
		Order("created_at ASC").
		Find(&requests).Error

	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get pending requests")
	}
	return requests, nil
}

// GetPendingOutbound retrieves pending requests sent by senderID
func (r *FriendRequestRepository) GetPendingOutbound(ctx context.Context, senderID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest

	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND status = ?", senderID, models.RequestStatusPending).
		Preload("Receiver").
		Order("created_at ASC").
		Find(&requests).Error

	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get sent requests")
	}
	return requests, nil
}

// AcceptRequest records the friendship and then marks the request
// accepted, in one transaction. If either write fails nothing is kept.
func (r *FriendRequestRepository) AcceptRequest(ctx context.Context, request *models.FriendRequest) (*models.Friendship, error) {
	friendship := &models.Friendship{
		UserID:      request.SenderID,
		FriendID:    request.ReceiverID,
		InitiatorID: request.SenderID,
		RequestID:   request.ID,
		Status:      models.FriendshipStatusAccepted,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(friendship).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePartialAccept, "failed to create friendship")
		}

		result := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestStatusPending).
			Update("status", models.RequestStatusAccepted)
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodePartialAccept, "failed to mark request accepted")
		}
		if result.RowsAffected == 0 {
			return errors.New(errors.ErrCodePartialAccept, "friend request was resolved concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	request.Status = models.RequestStatusAccepted
	return friendship, nil
}

// DeclineRequest marks a pending request declined
func (r *FriendRequestRepository) DeclineRequest(ctx context.Context, requestID string) error {
	result := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
		Update("status", models.RequestStatusDeclined)

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to decline friend request")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "friend request not found or already processed")
	}
	return nil
}
