package services

import (
	"context"
	"fmt"

	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/internal/repositories"
	"github.com/mroshb/hanglight/internal/security"
	"github.com/mroshb/hanglight/pkg/errors"
	"github.com/mroshb/hanglight/pkg/logger"
)

const maxNicknameLength = 40

// NicknameService manages the display-name override stored on a friendship
// row. The nickname belongs to the edge, so both parties see the same one.
type NicknameService struct {
	friendships *repositories.FriendshipRepository
}

func NewNicknameService(friendships *repositories.FriendshipRepository) *NicknameService {
	return &NicknameService{friendships: friendships}
}

// SetNickname trims text and writes it to the friendship row. Blank input
// clears the nickname. Only a party of the friendship may set it.
func (s *NicknameService) SetNickname(ctx context.Context, profileID, friendshipID, text string) (*string, error) {
	cleaned := security.SanitizeText(text)
	if len([]rune(cleaned)) > maxNicknameLength {
		return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("Nickname must be at most %d characters", maxNicknameLength))
	}

	friendship, err := s.friendships.GetFriendshipByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}
	if !friendship.Involves(profileID) {
		return nil, errors.New(errors.ErrCodeForbidden, "not your friendship")
	}

	var nickname *string
	if cleaned != "" {
		nickname = &cleaned
	}

	if err := s.friendships.UpdateNickname(ctx, friendshipID, nickname); err != nil {
		return nil, err
	}

	logger.Info("Nickname updated", "friendship_id", friendshipID, "by", profileID, "cleared", nickname == nil)
	return nickname, nil
}

// DisplayName resolves the name shown for a friend.
func (s *NicknameService) DisplayName(view *models.FriendView) string {
	return models.DisplayNameFor(view.Nickname, view.Handle)
}
