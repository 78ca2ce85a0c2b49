package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus is the lifecycle state of a FriendRequest.
type RequestStatus string

// Friend request status constants
const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusDeclined RequestStatus = "declined"
)

// ParseDecision accepts only the two terminal states a receiver may choose.
func ParseDecision(s string) (RequestStatus, bool) {
	switch RequestStatus(s) {
	case RequestStatusAccepted, RequestStatusDeclined:
		return RequestStatus(s), true
	}
	return "", false
}

// FriendRequest is a directional proposal awaiting resolution. There is at
// most one row per unordered pair; PairKey enforces that at the store.
type FriendRequest struct {
	ID          string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	SenderID    string        `gorm:"type:varchar(36);not null;index" json:"sender_id"`
	Sender      Profile       `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	ReceiverID  string        `gorm:"type:varchar(36);not null;index:idx_request_inbox" json:"receiver_id"`
	Receiver    Profile       `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
	PairKey     string        `gorm:"type:varchar(80);uniqueIndex;not null" json:"-"`
	Message     string        `gorm:"type:text" json:"message"`
	Status      RequestStatus `gorm:"type:varchar(20);default:'pending';not null;index:idx_request_inbox" json:"status"`
	ResendCount int           `gorm:"default:0;not null" json:"resend_count"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.PairKey = PairKey(r.SenderID, r.ReceiverID)
	return nil
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

// FriendshipStatusAccepted is the only status a friendship row carries.
const FriendshipStatusAccepted = "accepted"

// Friendship is a confirmed, undirected relationship stored as one row with
// the lower profile id in UserID.
type Friendship struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_friendship_pair" json:"user_id"`
	User        Profile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	FriendID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_friendship_pair;index" json:"friend_id"`
	Friend      Profile   `gorm:"foreignKey:FriendID;constraint:OnDelete:CASCADE" json:"-"`
	InitiatorID string    `gorm:"type:varchar(36);not null" json:"initiator_id"`
	RequestID   string    `gorm:"type:varchar(36)" json:"request_id"`
	Status      string    `gorm:"type:varchar(20);default:'accepted';not null" json:"status"`
	Nickname    *string   `gorm:"type:varchar(64)" json:"nickname"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate orders the pair so the lower id is always UserID.
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.UserID, f.FriendID = OrderedPair(f.UserID, f.FriendID)
	if f.Status == "" {
		f.Status = FriendshipStatusAccepted
	}
	return nil
}

// Involves reports whether profileID is one side of the friendship.
func (f *Friendship) Involves(profileID string) bool {
	return f.UserID == profileID || f.FriendID == profileID
}

// Other returns the id on the opposite side from profileID.
func (f *Friendship) Other(profileID string) string {
	if f.UserID == profileID {
		return f.FriendID
	}
	return f.UserID
}

func (Friendship) TableName() string {
	return "friendships"
}

// OrderedPair returns a and b with the lexically lower id first.
func OrderedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// PairKey identifies the unordered pair {a, b}.
func PairKey(a, b string) string {
	lo, hi := OrderedPair(a, b)
	return lo + ":" + hi
}
