package event

import (
	"time"

	"livehub/domain"

	"github.com/google/uuid"
)

// Event is anything the broadcaster can fan out to a channel's sessions.
type Event interface {
	Channel() string
}

type ViewerJoined struct {
	ChannelID   string
	Username    string
	ViewerCount int
}

func (e ViewerJoined) Channel() string { return e.ChannelID }

type ViewerLeft struct {
	ChannelID   string
	Username    string
	ViewerCount int
}

func (e ViewerLeft) Channel() string { return e.ChannelID }

// ChatPosted carries a chat message that has already been assigned its
// server-side id and timestamp.
type ChatPosted struct {
	ChannelID string
	ID        uuid.UUID
	UserID    string
	Username  string
	Content   string
	CreatedAt time.Time
}

func (e ChatPosted) Channel() string { return e.ChannelID }

// FromChatMessage lifts a persisted message into its broadcast form.
func FromChatMessage(m domain.ChatMessage) ChatPosted {
	return ChatPosted{
		ChannelID: m.ChannelID,
		ID:        m.ID,
		UserID:    m.SenderID,
		Username:  m.SenderName,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// ReactionSent is ephemeral: fanned out, never persisted.
type ReactionSent struct {
	ChannelID string
	Username  string
	Emoji     string
}

func (e ReactionSent) Channel() string { return e.ChannelID }

type StreamEnded struct {
	ChannelID string
	Message   string
}

func (e StreamEnded) Channel() string { return e.ChannelID }
