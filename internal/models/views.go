package models

import "time"

// FriendView is one entry of a profile's friend list, seen from that
// profile's side of the relationship.
type FriendView struct {
	FriendshipID     string      `json:"friendship_id"`
	ProfileID        string      `json:"profile_id"`
	Handle           string      `json:"handle"`
	Email            string      `json:"email"`
	StatusLight      StatusLight `json:"status_light"`
	StatusLabel      string      `json:"status_label"`
	StatusMessage    *string     `json:"status_message"`
	HasMessage       bool        `json:"has_message"`
	LastStatusUpdate time.Time   `json:"last_status_update"`
	FriendsSince     time.Time   `json:"friends_since"`
	Nickname         *string     `json:"nickname"`
	DisplayName      string      `json:"display_name"`
}

// DisplayNameFor resolves the name to show for a friend: the nickname when
// present and non-blank, otherwise the friend's handle.
func DisplayNameFor(nickname *string, handle string) string {
	if nickname != nil && *nickname != "" {
		return *nickname
	}
	return handle
}

// NewFriendView builds the view of other from the perspective of the
// friendship's opposite party. An empty stored message is shown as no message.
func NewFriendView(f *Friendship, other *Profile) FriendView {
	message := other.StatusMessage
	if message != nil && *message == "" {
		message = nil
	}
	return FriendView{
		FriendshipID:     f.ID,
		ProfileID:        other.ID,
		Handle:           other.Handle,
		Email:            other.Email,
		StatusLight:      other.StatusLight,
		StatusLabel:      other.StatusLight.Label(),
		StatusMessage:    message,
		HasMessage:       message != nil,
		LastStatusUpdate: other.LastStatusUpdate,
		FriendsSince:     f.CreatedAt,
		Nickname:         f.Nickname,
		DisplayName:      DisplayNameFor(f.Nickname, other.Handle),
	}
}

// RequestView is a pending request annotated with the other party's
// display fields.
type RequestView struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	ReceiverID  string    `json:"receiver_id"`
	OtherHandle string    `json:"other_handle"`
	OtherEmail  string    `json:"other_email"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
