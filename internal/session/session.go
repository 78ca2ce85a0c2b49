// Package session holds the signed-in user's working state: their profile,
// friend list and request queues, plus the last outcome message. It follows
// the auth provider's sign-in and sign-out events and serializes operations
// so the view is never updated by two of them at once.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/mroshb/hanglight/internal/auth"
	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/internal/services"
	"github.com/mroshb/hanglight/pkg/errors"
	"github.com/mroshb/hanglight/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const signInRequired = "Please sign in first"

// View is a snapshot of what the signed-in user sees.
type View struct {
	Profile  *models.Profile      `json:"profile"`
	Friends  []models.FriendView  `json:"friends"`
	Requests []models.RequestView `json:"requests"`
	Outbound []models.RequestView `json:"outbound"`
	Message  string               `json:"message,omitempty"`
}

// Result is the outcome of one operation.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Err     error  `json:"-"`
}

type Session struct {
	svc *services.Services

	// op serializes operations; state guards the fields below it.
	op    sync.Mutex
	state sync.RWMutex

	identity *auth.Identity
	view     View

	unsubscribe func()
}

func New(svc *services.Services) *Session {
	return &Session{svc: svc, view: emptyView()}
}

func emptyView() View {
	return View{
		Friends:  []models.FriendView{},
		Requests: []models.RequestView{},
		Outbound: []models.RequestView{},
	}
}

// Attach subscribes to provider and signs in when it already holds a
// session. A previous attachment is dropped.
func (s *Session) Attach(ctx context.Context, provider auth.Provider) error {
	s.Detach()

	unsubscribe := provider.OnAuthStateChange(func(ev auth.Event) {
		switch ev.Type {
		case auth.SignedIn:
			if err := s.SignIn(context.Background(), ev.Identity); err != nil {
				logger.Warn("Sign-in provisioning failed", "error", err)
			}
		case auth.SignedOut:
			s.SignOut()
		}
	})

	s.state.Lock()
	s.unsubscribe = unsubscribe
	s.state.Unlock()

	identity, err := provider.GetSession(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeUnauthorized, "Connection failed")
	}
	if identity == nil {
		return nil
	}
	return s.SignIn(ctx, identity)
}

// Detach stops following the provider. State is kept.
func (s *Session) Detach() {
	s.state.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.state.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// SignIn provisions the identity's profile and loads everything it sees.
// When provisioning fails the session is left signed out.
func (s *Session) SignIn(ctx context.Context, identity *auth.Identity) error {
	s.op.Lock()
	defer s.op.Unlock()

	profile, err := s.svc.Identity.EnsureProfile(ctx, identity)
	if err != nil {
		s.state.Lock()
		s.identity = nil
		s.view = emptyView()
		s.state.Unlock()

		s.setMessage("Profile creation failed: " + errors.MessageOf(err))
		return err
	}

	s.state.Lock()
	s.identity = identity
	s.view = emptyView()
	s.view.Profile = profile
	s.view.Message = "Welcome to Hanglight!"
	s.state.Unlock()

	logger.Info("Session signed in", "profile_id", profile.ID)
	return s.refresh(ctx)
}

// SignOut forgets the identity and clears all loaded state.
func (s *Session) SignOut() {
	s.op.Lock()
	defer s.op.Unlock()

	s.state.Lock()
	wasSignedIn := s.identity != nil
	s.identity = nil
	s.view = emptyView()
	s.state.Unlock()

	if wasSignedIn {
		logger.Info("Session signed out")
	}
}

// SignedIn reports whether a profile is loaded.
func (s *Session) SignedIn() bool {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.view.Profile != nil
}

// View returns a copy of the current state.
func (s *Session) View() View {
	s.state.RLock()
	defer s.state.RUnlock()

	v := s.view
	if v.Profile != nil {
		p := *v.Profile
		v.Profile = &p
	}
	v.Friends = append([]models.FriendView{}, v.Friends...)
	v.Requests = append([]models.RequestView{}, v.Requests...)
	v.Outbound = append([]models.RequestView{}, v.Outbound...)
	return v
}

// Refresh reloads the profile, friend list and both request queues.
func (s *Session) Refresh(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	return s.refresh(ctx)
}

// refresh loads every list concurrently. A list that fails to load is
// reset to empty; the others are still applied.
func (s *Session) refresh(ctx context.Context) error {
	profileID := s.profileID()
	if profileID == "" {
		return errors.New(errors.ErrCodeUnauthorized, signInRequired)
	}

	var (
		profile  *models.Profile
		friends  []models.FriendView
		inbound  []models.RequestView
		outbound []models.RequestView
		g        errgroup.Group
	)

	g.Go(func() error {
		p, err := s.svc.Identity.GetProfile(ctx, profileID)
		if err != nil {
			logger.Warn("Failed to reload profile", "profile_id", profileID, "error", err)
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		list, err := s.svc.Friendships.ListFriends(ctx, profileID)
		if err != nil {
			logger.Warn("Failed to load friends", "profile_id", profileID, "error", err)
			friends = []models.FriendView{}
			return err
		}
		friends = list
		return nil
	})
	g.Go(func() error {
		list, err := s.svc.Requests.ListInbound(ctx, profileID)
		if err != nil {
			logger.Warn("Failed to load friend requests", "profile_id", profileID, "error", err)
			inbound = []models.RequestView{}
			return err
		}
		inbound = list
		return nil
	})
	g.Go(func() error {
		list, err := s.svc.Requests.ListOutbound(ctx, profileID)
		if err != nil {
			logger.Warn("Failed to load sent requests", "profile_id", profileID, "error", err)
			outbound = []models.RequestView{}
			return err
		}
		outbound = list
		return nil
	})

	err := g.Wait()

	s.state.Lock()
	defer s.state.Unlock()
	if s.view.Profile == nil || s.view.Profile.ID != profileID {
		// signed out or switched while loading
		return err
	}
	if profile != nil {
		s.view.Profile = profile
	}
	s.view.Friends = friends
	s.view.Requests = inbound
	s.view.Outbound = outbound
	return err
}

// SendRequest proposes a friendship to the profile matching identifier.
func (s *Session) SendRequest(ctx context.Context, identifier, message string) Result {
	return s.run(ctx, "Error sending friend request: ", func(profileID string) (string, error) {
		res, err := s.svc.Requests.SendRequest(ctx, profileID, identifier, message)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Friend request sent to %s!", res.Target.Handle), nil
	})
}

// Respond accepts or declines an inbound request.
func (s *Session) Respond(ctx context.Context, requestID string, decision models.RequestStatus) Result {
	return s.run(ctx, "Error responding to request: ", func(profileID string) (string, error) {
		if _, err := s.svc.Requests.Respond(ctx, profileID, requestID, decision); err != nil {
			return "", err
		}
		return fmt.Sprintf("Friend request %s!", decision), nil
	})
}

// SetStatusLight changes the signed-in user's light.
func (s *Session) SetStatusLight(ctx context.Context, light models.StatusLight) Result {
	return s.run(ctx, "Failed to update status: ", func(profileID string) (string, error) {
		if err := s.svc.Presence.SetStatusLight(ctx, profileID, light); err != nil {
			return "", err
		}
		return fmt.Sprintf("Status updated to %s! 🚦", light), nil
	})
}

// SetStatusMessage changes the signed-in user's message.
func (s *Session) SetStatusMessage(ctx context.Context, text string) Result {
	return s.run(ctx, "Failed to update status: ", func(profileID string) (string, error) {
		if err := s.svc.Presence.SetStatusMessage(ctx, profileID, text); err != nil {
			return "", err
		}
		return "Status message updated!", nil
	})
}

// SetNickname sets or clears the nickname on one of the user's friendships.
func (s *Session) SetNickname(ctx context.Context, friendshipID, text string) Result {
	return s.run(ctx, "Failed to save nickname: ", func(profileID string) (string, error) {
		nickname, err := s.svc.Nicknames.SetNickname(ctx, profileID, friendshipID, text)
		if err != nil {
			return "", err
		}
		if nickname == nil {
			return "Nickname cleared", nil
		}
		return "Nickname saved!", nil
	})
}

// SetWallet stores or removes the user's wallet address.
func (s *Session) SetWallet(ctx context.Context, address string) Result {
	return s.run(ctx, "Failed to save wallet address: ", func(profileID string) (string, error) {
		profile, err := s.svc.Identity.SetWalletAddress(ctx, profileID, address)
		if err != nil {
			return "", err
		}
		if profile.WalletAddress == nil {
			return "Wallet address removed", nil
		}
		return "Wallet address saved! 🎉", nil
	})
}

// ClaimHandle replaces the user's handle.
func (s *Session) ClaimHandle(ctx context.Context, handle string) Result {
	return s.run(ctx, "Failed to update username: ", func(profileID string) (string, error) {
		profile, err := s.svc.Identity.ClaimHandle(ctx, profileID, handle)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Username set to %s!", profile.Handle), nil
	})
}

// RemoveFriend ends one of the user's friendships.
func (s *Session) RemoveFriend(ctx context.Context, friendshipID string) Result {
	return s.run(ctx, "Failed to remove friend: ", func(profileID string) (string, error) {
		if err := s.svc.Friendships.RemoveFriend(ctx, profileID, friendshipID); err != nil {
			return "", err
		}
		return "Friend removed", nil
	})
}

// run executes op for the signed-in profile, records its outcome message
// and refreshes the view after a success.
func (s *Session) run(ctx context.Context, failurePrefix string, op func(profileID string) (string, error)) Result {
	s.op.Lock()
	defer s.op.Unlock()

	profileID := s.profileID()
	if profileID == "" {
		s.setMessage(signInRequired)
		return Result{Message: signInRequired, Code: errors.ErrCodeUnauthorized}
	}

	message, err := op(profileID)
	if err != nil {
		res := failure(failurePrefix, err)
		s.setMessage(res.Message)
		return res
	}

	s.setMessage(message)
	if err := s.refresh(ctx); err != nil {
		logger.Warn("Refresh after operation failed", "profile_id", profileID, "error", err)
	}
	return Result{OK: true, Message: message}
}

// failure shows domain errors as they are and prefixes everything else.
func failure(prefix string, err error) Result {
	code := errors.CodeOf(err)
	message := errors.MessageOf(err)
	switch code {
	case errors.ErrCodeInternalError, errors.ErrCodePartialAccept:
		message = prefix + message
	}
	return Result{Message: message, Code: code, Err: err}
}

func (s *Session) profileID() string {
	s.state.RLock()
	defer s.state.RUnlock()
	if s.view.Profile == nil {
		return ""
	}
	return s.view.Profile.ID
}

func (s *Session) setMessage(message string) {
	s.state.Lock()
	s.view.Message = message
	s.state.Unlock()
}
