package services

import (
	"context"
	"sort"
	"strings"

	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/internal/repositories"
	"github.com/mroshb/hanglight/pkg/errors"
	"github.com/mroshb/hanglight/pkg/logger"
)

// FriendshipService reads the confirmed friendship graph. A pair is one row;
// which side a profile sits on depends on id ordering, so every read looks
// at both.
type FriendshipService struct {
	friendships *repositories.FriendshipRepository
	presence    *PresenceService
}

func NewFriendshipService(friendships *repositories.FriendshipRepository, presence *PresenceService) *FriendshipService {
	return &FriendshipService{friendships: friendships, presence: presence}
}

// ListFriends sweeps expired status messages, then returns every friend of
// profileID sorted by display name.
func (s *FriendshipService) ListFriends(ctx context.Context, profileID string) ([]models.FriendView, error) {
	if _, err := s.presence.SweepExpiredMessages(ctx); err != nil {
		// Expired messages are still masked below.
		logger.Warn("Status message sweep failed before listing friends", "profile_id", profileID, "error", err)
	}

	asUser, err := s.friendships.GetAsUser(ctx, profileID)
	if err != nil {
		return nil, err
	}
	asFriend, err := s.friendships.GetAsFriend(ctx, profileID)
	if err != nil {
		return nil, err
	}

	views := make([]models.FriendView, 0, len(asUser)+len(asFriend))
	seen := make(map[string]string, cap(views))

	add := func(f *models.Friendship, other *models.Profile) error {
		if prev, dup := seen[other.ID]; dup {
			logger.Error("Friendship invariant violated: pair stored twice",
				"profile_id", profileID, "other_id", other.ID, "rows", []string{prev, f.ID})
			return errors.New(errors.ErrCodeInternalError, "friendship data is inconsistent")
		}
		seen[other.ID] = f.ID

		view := models.NewFriendView(f, other)
		if s.presence.MessageExpired(other) {
			view.StatusMessage = nil
			view.HasMessage = false
		}
		views = append(views, view)
		return nil
	}

	for i := range asUser {
		if err := add(&asUser[i], &asUser[i].Friend); err != nil {
			return nil, err
		}
	}
	for i := range asFriend {
		if err := add(&asFriend[i], &asFriend[i].User); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		return strings.ToLower(views[i].DisplayName) < strings.ToLower(views[j].DisplayName)
	})
	return views, nil
}

// Refresh reloads the friend list. Callers pick the cadence.
func (s *FriendshipService) Refresh(ctx context.Context, profileID string) ([]models.FriendView, error) {
	return s.ListFriends(ctx, profileID)
}

// AreFriends checks if two profiles share a confirmed friendship
func (s *FriendshipService) AreFriends(ctx context.Context, a, b string) (bool, error) {
	return s.friendships.AreFriends(ctx, a, b)
}

// RemoveFriend deletes a friendship the caller is part of. The pair's
// request history is moved to declined so either side can ask again.
func (s *FriendshipService) RemoveFriend(ctx context.Context, profileID, friendshipID string) error {
	friendship, err := s.friendships.GetFriendshipByID(ctx, friendshipID)
	if err != nil {
		return err
	}
	if !friendship.Involves(profileID) {
		return errors.New(errors.ErrCodeForbidden, "not your friendship")
	}

	if err := s.friendships.RemoveFriendship(ctx, friendship); err != nil {
		return err
	}

	logger.Info("Friend removed", "friendship_id", friendshipID, "by", profileID, "other_id", friendship.Other(profileID))
	return nil
}
