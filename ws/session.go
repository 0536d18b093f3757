package ws

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"livehub/domain"
	"livehub/domain/event"
	apperrors "livehub/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// defaultPingPeriod keeps half-open connections detectable even when the
// idle timeout is disabled.
const defaultPingPeriod = 30 * time.Second

// Session is one viewer's live connection to a channel: the read loop,
// the buffered write pump, and the exactly-once disconnect sequence.
type Session struct {
	id       string
	channel  string
	identity domain.Identity

	conn *websocket.Conn
	send chan []byte
	hub  *Server

	mu     sync.Mutex
	closed bool

	exitOnce sync.Once
}

func newSession(hub *Server, conn *websocket.Conn, channelID string, identity domain.Identity) *Session {
	return &Session{
		id:       uuid.NewString(),
		channel:  channelID,
		identity: identity,
		conn:     conn,
		send:     make(chan []byte, hub.cfg.SessionBufferSize),
		hub:      hub,
	}
}

func (s *Session) ID() string                { return s.id }
func (s *Session) Identity() domain.Identity { return s.identity }

// Deliver enqueues a frame for the write pump without ever blocking the
// caller: a viewer that stopped draining its buffer fails fast here and
// gets evicted by the broadcaster instead of stalling the fan-out.
func (s *Session) Deliver(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	select {
	case s.send <- frame:
		return nil
	default:
		return apperrors.ErrSessionStalled
	}
}

// Close stops accepting frames and lets the write pump drain what is
// already queued before tearing the connection down. Safe to call from
// any goroutine, any number of times.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.send)
	return nil
}

// writePump owns every write on the connection. It flushes queued frames,
// pings on a ticker, and closes the connection on the way out, which in
// turn unblocks the read loop.
func (s *Session) writePump() {
	pingPeriod := defaultPingPeriod
	if s.hub.cfg.IdleTimeout > 0 {
		pingPeriod = s.hub.cfg.IdleTimeout * 9 / 10
	}
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			if !ok {
				_ = s.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(s.hub.cfg.WriteTimeout))
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.hub.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.hub.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// run reads inbound frames until the connection dies, then runs the exit
// sequence. Malformed frames are skipped; transport errors end the loop.
func (s *Session) run(ctx context.Context) {
	defer s.exit(ctx)

	s.conn.SetReadLimit(int64(s.hub.cfg.MaxContentLength*4 + 1024))
	if idle := s.hub.cfg.IdleTimeout; idle > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(idle))
		s.conn.SetPongHandler(func(string) error {
			return s.conn.SetReadDeadline(time.Now().Add(idle))
		})
	}

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if idle := s.hub.cfg.IdleTimeout; idle > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(idle))
		}
		s.dispatch(ctx, raw)
	}
}

func (s *Session) dispatch(ctx context.Context, raw []byte) {
	in, err := event.DecodeInbound(raw)
	if err != nil {
		// Unknown or malformed frames are skipped, never fatal
		s.hub.log.Debug("Ignoring inbound frame", "session", s.id, "error", err)
		return
	}
	switch in.Type {
	case event.TypeChat:
		s.postChat(ctx, in.Content)
	case event.TypeReaction:
		s.postReaction(ctx, in.Emoji)
	}
}

// postChat persists the message, then fans it out with the server-side
// id and timestamp. A failed append is logged and the message is still
// delivered: chat delivery is deliberately prioritized over durability
// of the history.
func (s *Session) postChat(ctx context.Context, content string) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > s.hub.cfg.MaxContentLength {
		s.hub.log.Debug("Dropping chat content", "session", s.id, "length", len(content))
		return
	}

	message := domain.NewChatMessage(s.channel, s.identity, content)
	if err := s.hub.messages.AppendChatMessage(message); err != nil {
		s.hub.log.Error("Failed to persist chat message", "channel", s.channel, "error", err)
	}
	s.hub.broadcaster.Broadcast(ctx, event.FromChatMessage(message))
}

func (s *Session) postReaction(ctx context.Context, emoji string) {
	if emoji == "" {
		return
	}
	s.hub.broadcaster.Broadcast(ctx, event.ReactionSent{
		ChannelID: s.channel,
		Username:  s.identity.Username,
		Emoji:     emoji,
	})
}

// exit runs the disconnect sequence exactly once no matter how many
// paths race into it: leave the channel, tell the survivors, mirror the
// count, release the transport.
func (s *Session) exit(ctx context.Context) {
	s.exitOnce.Do(func() {
		count := s.hub.registry.Leave(s.channel, s.id)
		s.hub.broadcaster.Broadcast(ctx, event.ViewerLeft{
			ChannelID:   s.channel,
			Username:    s.identity.Username,
			ViewerCount: count,
		})
		if err := s.hub.lifecycle.SyncViewerCount(s.channel); err != nil {
			s.hub.log.Debug("Viewer count sync failed", "channel", s.channel, "error", err)
		}
		_ = s.Close()
		s.hub.log.Info("Viewer left", "channel", s.channel, "username", s.identity.Username, "viewers", count)
	})
}
