package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire frame discriminators, shared by server and clients.
const (
	TypeViewerJoined = "viewer_joined"
	TypeViewerLeft   = "viewer_left"
	TypeChat         = "chat"
	TypeReaction     = "reaction"
	TypeStreamEnded  = "stream_ended"
)

type viewerFrame struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	ViewerCount int    `json:"viewer_count"`
}

type chatFrame struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type reactionFrame struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Emoji    string `json:"emoji"`
}

type endedFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Encode renders an event as its wire frame. Events are encoded once per
// broadcast, not once per session.
func Encode(e Event) ([]byte, error) {
	switch ev := e.(type) {
	case ViewerJoined:
		return json.Marshal(viewerFrame{
			Type:        TypeViewerJoined,
			Username:    ev.Username,
			ViewerCount: ev.ViewerCount,
		})
	case ViewerLeft:
		return json.Marshal(viewerFrame{
			Type:        TypeViewerLeft,
			Username:    ev.Username,
			ViewerCount: ev.ViewerCount,
		})
	case ChatPosted:
		return json.Marshal(chatFrame{
			Type:      TypeChat,
			ID:        ev.ID.String(),
			UserID:    ev.UserID,
			Username:  ev.Username,
			Content:   ev.Content,
			CreatedAt: ev.CreatedAt.Format(time.RFC3339),
		})
	case ReactionSent:
		return json.Marshal(reactionFrame{
			Type:     TypeReaction,
			Username: ev.Username,
			Emoji:    ev.Emoji,
		})
	case StreamEnded:
		return json.Marshal(endedFrame{
			Type:    TypeStreamEnded,
			Message: ev.Message,
		})
	default:
		return nil, fmt.Errorf("unknown event type %T", e)
	}
}

// Inbound is a client frame read off a live session. Only chat and
// reaction are accepted from clients.
type Inbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Emoji   string `json:"emoji"`
}

// DecodeInbound parses a client frame without tolerating unknown types.
func DecodeInbound(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, fmt.Errorf("malformed frame: %w", err)
	}
	switch in.Type {
	case TypeChat, TypeReaction:
		return in, nil
	default:
		return Inbound{}, fmt.Errorf("unsupported frame type %q", in.Type)
	}
}
