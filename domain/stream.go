package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream is the persisted live-broadcast entity. It maps one-to-one to a
// channel for its lifetime and is never physically deleted by this service;
// ending a stream only flips Live to false.
type Stream struct {
	ID          string
	ChannelID   string
	HostID      string
	HostName    string
	Title       string
	Description string
	Live        bool
	ViewerCount int
	CreatedAt   time.Time
}

// NewStream creates a live stream for a host with a fresh channel identifier.
func NewStream(host Identity, title, description string) Stream {
	return Stream{
		ID:          uuid.NewString(),
		ChannelID:   uuid.NewString(),
		HostID:      host.UserID,
		HostName:    host.Username,
		Title:       title,
		Description: description,
		Live:        true,
		ViewerCount: 0,
		CreatedAt:   time.Now().UTC(),
	}
}

// User is the account record this service reads for ban and role checks.
// Account lifecycle (registration, profile, bans) belongs to the account
// service; livehub only consumes these fields.
type User struct {
	ID        string
	Username  string
	Banned    bool
	Admin     bool
	CreatedAt time.Time
}
