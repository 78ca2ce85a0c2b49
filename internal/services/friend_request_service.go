package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/internal/repositories"
	"github.com/mroshb/hanglight/internal/security"
	"github.com/mroshb/hanglight/pkg/errors"
	"github.com/mroshb/hanglight/pkg/logger"
)

const maxRequestMessageLength = 280

// FriendRequestService handles the request lifecycle:
// pending -> accepted (creates the friendship) or pending -> declined.
type FriendRequestService struct {
	requests       *repositories.FriendRequestRepository
	profiles       *repositories.ProfileRepository
	friendships    *repositories.FriendshipRepository
	defaultMessage string
	clock          TimeProvider
}

func NewFriendRequestService(
	requests *repositories.FriendRequestRepository,
	profiles *repositories.ProfileRepository,
	friendships *repositories.FriendshipRepository,
	defaultMessage string,
	clock TimeProvider,
) *FriendRequestService {
	return &FriendRequestService{
		requests:       requests,
		profiles:       profiles,
		friendships:    friendships,
		defaultMessage: defaultMessage,
		clock:          clock,
	}
}

// SendResult describes a successful send.
type SendResult struct {
	Request *models.FriendRequest
	Target  *models.Profile
	// Reopened is set when a previously declined request for the pair was
	// reused instead of inserting a new row.
	Reopened bool
}

// SendRequest resolves identifier to a profile (exact email first, then
// handle ignoring case) and proposes a friendship to it.
func (s *FriendRequestService) SendRequest(ctx context.Context, fromID, identifier, message string) (*SendResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.New(errors.ErrCodeValidation, "Please enter an email or username")
	}

	text, err := s.requestMessage(message)
	if err != nil {
		return nil, err
	}

	target, err := s.resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if target.ID == fromID {
		return nil, errors.New(errors.ErrCodeSelfRequest, "You can't add yourself!")
	}

	areFriends, err := s.friendships.AreFriends(ctx, fromID, target.ID)
	if err != nil {
		return nil, err
	}
	if areFriends {
		return nil, errors.New(errors.ErrCodeAlreadyFriends, "Already friends!")
	}

	existing, err := s.requests.FindBetween(ctx, fromID, target.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		switch existing.Status {
		case models.RequestStatusPending:
			if existing.SenderID == target.ID {
				return nil, errors.New(errors.ErrCodeDuplicatePending, fmt.Sprintf("%s already sent you a friend request!", target.Handle))
			}
			return nil, errors.New(errors.ErrCodeDuplicatePending, "Friend request already sent!")
		case models.RequestStatusAccepted:
			return nil, errors.New(errors.ErrCodeAlreadyFriends, "Already friends!")
		case models.RequestStatusDeclined:
			if err := s.requests.ReopenRequest(ctx, existing, fromID, target.ID, text, s.clock.Now()); err != nil {
				return nil, err
			}
			logger.Info("Friend request re-sent after decline",
				"request_id", existing.ID, "sender_id", fromID, "receiver_id", target.ID, "resend_count", existing.ResendCount)
			return &SendResult{Request: existing, Target: target, Reopened: true}, nil
		}
	}

	request := &models.FriendRequest{
		SenderID:   fromID,
		ReceiverID: target.ID,
		Message:    text,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	logger.Info("Friend request sent", "request_id", request.ID, "sender_id", fromID, "receiver_id", target.ID)
	return &SendResult{Request: request, Target: target}, nil
}

func (s *FriendRequestService) resolve(ctx context.Context, identifier string) (*models.Profile, error) {
	target, err := s.profiles.GetProfileByEmail(ctx, identifier)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	target, err = s.profiles.GetProfileByHandle(ctx, identifier)
	if err == nil {
		return target, nil
	}
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "User not found")
	}
	return nil, err
}

func (s *FriendRequestService) requestMessage(message string) (string, error) {
	text := security.SanitizeText(message)
	if text == "" {
		return s.defaultMessage, nil
	}
	if len([]rune(text)) > maxRequestMessageLength {
		return "", errors.New(errors.ErrCodeValidation, fmt.Sprintf("Message must be at most %d characters", maxRequestMessageLength))
	}
	return text, nil
}

// ListInbound returns pending requests addressed to profileID, oldest first,
// each annotated with the sender's handle and email.
func (s *FriendRequestService) ListInbound(ctx context.Context, profileID string) ([]models.RequestView, error) {
	requests, err := s.requests.GetPendingInbound(ctx, profileID)
	if err != nil {
		return nil, err
	}

	views := make([]models.RequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, requestView(&r, &r.Sender))
	}
	return views, nil
}

// ListOutbound returns the caller's own pending requests, annotated with
// the receiver's handle and email.
func (s *FriendRequestService) ListOutbound(ctx context.Context, profileID string) ([]models.RequestView, error) {
	requests, err := s.requests.GetPendingOutbound(ctx, profileID)
	if err != nil {
		return nil, err
	}

	views := make([]models.RequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, requestView(&r, &r.Receiver))
	}
	return views, nil
}

func requestView(r *models.FriendRequest, other *models.Profile) models.RequestView {
	return models.RequestView{
		ID:          r.ID,
		SenderID:    r.SenderID,
		ReceiverID:  r.ReceiverID,
		OtherHandle: other.Handle,
		OtherEmail:  other.Email,
		Message:     r.Message,
		CreatedAt:   r.CreatedAt,
	}
}

// Respond resolves a pending request addressed to responderID. Accepting
// creates exactly one friendship row and flips the request in a single
// transaction; a failure there is reported as PARTIAL_ACCEPT and leaves
// the request pending.
func (s *FriendRequestService) Respond(ctx context.Context, responderID, requestID string, decision models.RequestStatus) (*models.FriendRequest, error) {
	if _, ok := models.ParseDecision(string(decision)); !ok {
		return nil, errors.New(errors.ErrCodeValidation, "decision must be 'accepted' or 'declined'")
	}

	request, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.ReceiverID != responderID {
		return nil, errors.New(errors.ErrCodeForbidden, "only the receiver can respond to this request")
	}
	if request.Status != models.RequestStatusPending {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "Friend request already resolved")
	}

	switch decision {
	case models.RequestStatusAccepted:
		friendship, err := s.requests.AcceptRequest(ctx, request)
		if err != nil {
			logger.Error("Accept flow failed, nothing committed", "request_id", requestID, "error", err)
			return nil, err
		}
		logger.Info("Friend request accepted",
			"request_id", requestID, "friendship_id", friendship.ID,
			"sender_id", request.SenderID, "receiver_id", request.ReceiverID)

	case models.RequestStatusDeclined:
		if err := s.requests.DeclineRequest(ctx, requestID); err != nil {
			return nil, err
		}
		request.Status = models.RequestStatusDeclined
		logger.Info("Friend request declined", "request_id", requestID, "receiver_id", responderID)
	}

	return request, nil
}
