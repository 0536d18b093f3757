package runtime

import (
	"context"
	"log/slog"

	"livehub/contract"
	"livehub/domain/event"
)

type Broadcaster struct {
	registry contract.IRegistry
	log      *slog.Logger
}

func NewBroadcaster(registry contract.IRegistry, log *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// Broadcast fans an event out to every session of its channel.
// The event is encoded once and the same frame is handed to each session
// independently: one dead session never aborts the pass and never
// surfaces an error to the caller. Failed sessions are collected during
// the pass and evicted after it, so the remaining sessions still receive
// the event before any registry mutation happens.
// The evicted session's own exit sequence announces its departure; this
// loop only unhooks it and closes its transport.
func (b *Broadcaster) Broadcast(_ context.Context, e event.Event) {
	channelID := e.Channel()
	sessions := b.registry.Sessions(channelID)
	if len(sessions) == 0 {
		return
	}

	frame, err := event.Encode(e)
	if err != nil {
		b.log.Error("Failed to encode event", "channel", channelID, "error", err)
		return
	}

	var failed []contract.Session
	for _, s := range sessions {
		if err := s.Deliver(frame); err != nil {
			b.log.Debug("Delivery failed, session will be evicted",
				"channel", channelID, "session", s.ID(), "error", err)
			failed = append(failed, s)
		}
	}

	for _, s := range failed {
		b.registry.Leave(channelID, s.ID())
		_ = s.Close()
	}
}
