// Package auth describes the external identity provider the core consumes.
// Account creation, login and session issuance live outside this module;
// only the session lookup and the sign-in/sign-out notifications cross the
// boundary.
package auth

import "context"

// MetadataHandle is the signup metadata key carrying the requested handle.
const MetadataHandle = "username"

// Identity is an authenticated account as reported by the provider.
type Identity struct {
	ID       string
	Email    string
	Metadata map[string]string
}

// Handle returns the handle requested at signup, if any.
func (i *Identity) Handle() string {
	if i == nil || i.Metadata == nil {
		return ""
	}
	return i.Metadata[MetadataHandle]
}

type EventType int

const (
	SignedIn EventType = iota + 1
	SignedOut
)

func (t EventType) String() string {
	switch t {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	}
	return "unknown"
}

// Event is delivered to OnAuthStateChange handlers. Identity is nil for
// SignedOut.
type Event struct {
	Type     EventType
	Identity *Identity
}

// Provider is the authentication collaborator.
type Provider interface {
	// GetSession returns the current identity, or nil when signed out.
	GetSession(ctx context.Context) (*Identity, error)
	// OnAuthStateChange registers handler and returns a function that
	// removes it.
	OnAuthStateChange(handler func(Event)) (unsubscribe func())
}
