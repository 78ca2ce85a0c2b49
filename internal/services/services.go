package services

import (
	"time"

	"github.com/mroshb/hanglight/internal/repositories"
	"gorm.io/gorm"
)

// DefaultStatusMessageTTL is how long a status message survives without
// any status update.
const DefaultStatusMessageTTL = 12 * time.Hour

const defaultRequestMessage = "Hi! Let's be friends on Hanglight!"

// TimeProvider abstracts the clock so expiry can be tested deterministically.
type TimeProvider interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type Options struct {
	StatusMessageTTL      time.Duration
	DefaultRequestMessage string
	Clock                 TimeProvider
}

// Services bundles every operation group exposed to callers. All of them
// share one store handle.
type Services struct {
	Identity    *IdentityService
	Requests    *FriendRequestService
	Friendships *FriendshipService
	Presence    *PresenceService
	Nicknames   *NicknameService
}

func New(db *gorm.DB, opts Options) *Services {
	if opts.StatusMessageTTL <= 0 {
		opts.StatusMessageTTL = DefaultStatusMessageTTL
	}
	if opts.DefaultRequestMessage == "" {
		opts.DefaultRequestMessage = defaultRequestMessage
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	profileRepo := repositories.NewProfileRepository(db)
	requestRepo := repositories.NewFriendRequestRepository(db)
	friendshipRepo := repositories.NewFriendshipRepository(db)

	presence := NewPresenceService(profileRepo, opts.StatusMessageTTL, opts.Clock)
	friendships := NewFriendshipService(friendshipRepo, presence)

	return &Services{
		Identity:    NewIdentityService(profileRepo, opts.Clock),
		Requests:    NewFriendRequestService(requestRepo, profileRepo, friendshipRepo, opts.DefaultRequestMessage, opts.Clock),
		Friendships: friendships,
		Presence:    presence,
		Nicknames:   NewNicknameService(friendshipRepo),
	}
}
