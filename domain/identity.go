package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Identity is the authenticated (or anonymous) viewer behind a session.
// Ban and role flags are resolved once at authentication time from the
// account record.
type Identity struct {
	UserID   string
	Username string
	Banned   bool
	Admin    bool
	Guest    bool
}

// NewGuest mints an anonymous identity with a readable display name.
// Guests can watch and react but own nothing that outlives the session.
func NewGuest() Identity {
	id := uuid.NewString()
	return Identity{
		UserID:   id,
		Username: fmt.Sprintf("guest-%s", id[:6]),
		Guest:    true,
	}
}

// CanManage reports whether this identity may end a stream hosted by hostID.
func (i Identity) CanManage(hostID string) bool {
	return i.Admin || (!i.Guest && i.UserID == hostID)
}
