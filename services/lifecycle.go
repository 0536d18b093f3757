package services

import (
	"context"
	"fmt"
	"log/slog"

	"livehub/contract"
	"livehub/domain"
	"livehub/domain/event"
	"livehub/errors"
	"livehub/repositories"
)

// StreamEndedMessage is the farewell pushed to every viewer still
// connected when a stream goes offline.
const StreamEndedMessage = "The stream has ended"

type ILifecycleService interface {
	CreateStream(host domain.Identity, title, description string) (domain.Stream, error)
	EndStream(ctx context.Context, streamID string, requester domain.Identity) error
	SyncViewerCount(channelID string) error
	StreamByID(id string) (domain.Stream, error)
	StreamByChannel(channelID string) (domain.Stream, error)
	ListLive() ([]domain.Stream, error)
}

type LifecycleService struct {
	streams     repositories.IStreamRepository
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	log         *slog.Logger
}

func NewLifecycleService(
	streams repositories.IStreamRepository,
	registry contract.IRegistry,
	broadcaster contract.IBroadcaster,
	log *slog.Logger,
) ILifecycleService {
	return &LifecycleService{
		streams:     streams,
		registry:    registry,
		broadcaster: broadcaster,
		log:         log,
	}
}

// CreateStream brings a host live on a fresh channel.
// A banned host is refused, and a host already live is refused with
// ErrAlreadyStreaming; in that case no record is created.
func (s *LifecycleService) CreateStream(host domain.Identity, title, description string) (domain.Stream, error) {
	// 1. Check business rules before touching storage
	if host.Banned {
		return domain.Stream{}, fmt.Errorf("%w: host %s is banned", errors.ErrBanned, host.UserID)
	}
	if host.Guest {
		return domain.Stream{}, fmt.Errorf("%w: guests cannot stream", errors.ErrForbidden)
	}

	// 2. Persist the new stream; the repository enforces one live stream per host
	stream := domain.NewStream(host, title, description)
	if err := s.streams.SaveStream(stream); err != nil {
		return domain.Stream{}, err
	}

	s.log.Info("Stream created", "stream_id", stream.ID, "channel", stream.ChannelID, "host", host.Username)
	return stream, nil
}

// EndStream flips the persisted live flag, then tells the viewers.
// The persisted state MUST change before the announcement goes out: a
// viewer who queries stream status right after receiving stream_ended is
// guaranteed to see it ended. Ending an already ended stream is a no-op.
func (s *LifecycleService) EndStream(ctx context.Context, streamID string, requester domain.Identity) error {
	stream, err := s.streams.StreamByID(streamID)
	if err != nil {
		return err
	}
	if !requester.CanManage(stream.HostID) {
		return fmt.Errorf("%w: only the host or an admin can end a stream", errors.ErrForbidden)
	}
	if !stream.Live {
		return nil
	}

	if err := s.streams.UpdateStreamLiveFlag(streamID, false); err != nil {
		return err
	}

	s.broadcaster.Broadcast(ctx, event.StreamEnded{
		ChannelID: stream.ChannelID,
		Message:   StreamEndedMessage,
	})
	s.log.Info("Stream ended", "stream_id", streamID, "channel", stream.ChannelID, "by", requester.Username)
	return nil
}

// SyncViewerCount mirrors the registry's live count into the persisted
// stream record. Called after joins and leaves, and periodically by the
// reconciler worker to heal any drift.
func (s *LifecycleService) SyncViewerCount(channelID string) error {
	count := s.registry.ViewerCount(channelID)
	return s.streams.UpdateStreamViewerCount(channelID, count)
}

func (s *LifecycleService) StreamByID(id string) (domain.Stream, error) {
	return s.streams.StreamByID(id)
}

func (s *LifecycleService) StreamByChannel(channelID string) (domain.Stream, error) {
	return s.streams.StreamByChannel(channelID)
}

func (s *LifecycleService) ListLive() ([]domain.Stream, error) {
	return s.streams.ListLive()
}
