package services

import "github.com/google/uuid"

// Identity is the pre-validated credential for a request: an authenticated
// user ID, or a guest session ID, resolved by the HTTP layer. Services reject
// identities carrying both or neither.
type Identity struct {
	UserID    *uuid.UUID
	SessionID string
}

// UserIdentity builds an authenticated identity.
func UserIdentity(userID uuid.UUID) Identity {
	return Identity{UserID: &userID}
}

// GuestIdentity builds a guest session identity.
func GuestIdentity(sessionID string) Identity {
	return Identity{SessionID: sessionID}
}

// Exclusive reports whether exactly one of user/session is present.
func (id Identity) Exclusive() bool {
	return (id.UserID != nil) != (id.SessionID != "")
}

// IsGuest reports whether this is a session-scoped identity.
func (id Identity) IsGuest() bool {
	return id.UserID == nil
}
