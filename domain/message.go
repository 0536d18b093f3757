// Package domain contains core concepts of the live streaming system.
// This file defines ChatMessage entries and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents an immutable chat entry within a channel.
// The id and timestamp are assigned by the server at creation time.
type ChatMessage struct {
	ID         uuid.UUID
	ChannelID  string
	SenderID   string
	SenderName string
	Content    string
	CreatedAt  time.Time
}

// NewChatMessage builds a persist-ready chat message for a channel.
func NewChatMessage(channelID string, sender Identity, content string) ChatMessage {
	return ChatMessage{
		ID:         uuid.New(),
		ChannelID:  channelID,
		SenderID:   sender.UserID,
		SenderName: sender.Username,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
}
