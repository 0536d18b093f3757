package services

import (
	"context"
	"log/slog"
	"testing"

	"livehub/domain"
	"livehub/domain/event"
	"livehub/errors"
	"livehub/repositories"
	"livehub/runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	events      []event.Event
	onBroadcast func(e event.Event)
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, e event.Event) {
	if b.onBroadcast != nil {
		b.onBroadcast(e)
	}
	b.events = append(b.events, e)
}

type stubSession struct {
	id string
}

func (s stubSession) ID() string                { return s.id }
func (s stubSession) Identity() domain.Identity { return domain.Identity{UserID: s.id, Username: "viewer"} }
func (s stubSession) Deliver([]byte) error      { return nil }
func (s stubSession) Close() error              { return nil }

func TestLifecycle_Create_Stream(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	svc := NewLifecycleService(streams, runtime.NewRegistry(), &recordingBroadcaster{}, slog.Default())
	host := domain.Identity{UserID: uuid.NewString(), Username: "alice"}

	stream, err := svc.CreateStream(host, "morning ride", "through the hills")
	req.NoError(err)
	req.True(stream.Live)
	req.Zero(stream.ViewerCount)
	req.NotEmpty(stream.ID)
	req.NotEmpty(stream.ChannelID)
	req.Equal(host.UserID, stream.HostID)

	persisted, err := svc.StreamByID(stream.ID)
	req.NoError(err)
	req.Equal(stream, persisted)
}

func TestLifecycle_Create_Stream_Refuses_Banned_Host(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	svc := NewLifecycleService(streams, runtime.NewRegistry(), &recordingBroadcaster{}, slog.Default())
	banned := domain.Identity{UserID: uuid.NewString(), Username: "bob", Banned: true}

	_, err = svc.CreateStream(banned, "title", "")
	req.ErrorIs(err, errors.ErrBanned)

	live, err := svc.ListLive()
	req.NoError(err)
	req.Empty(live)
}

func TestLifecycle_Create_Stream_Refuses_Guests(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	svc := NewLifecycleService(streams, runtime.NewRegistry(), &recordingBroadcaster{}, slog.Default())

	_, err = svc.CreateStream(domain.NewGuest(), "title", "")
	req.ErrorIs(err, errors.ErrForbidden)
}

func TestLifecycle_Create_Stream_While_Already_Live(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	svc := NewLifecycleService(streams, runtime.NewRegistry(), &recordingBroadcaster{}, slog.Default())
	host := domain.Identity{UserID: uuid.NewString(), Username: "alice"}

	_, err = svc.CreateStream(host, "first", "")
	req.NoError(err)

	// When the host tries to go live a second time
	_, err = svc.CreateStream(host, "second", "")

	// Then the attempt fails and no extra record exists
	req.ErrorIs(err, errors.ErrAlreadyStreaming)
	live, err := svc.ListLive()
	req.NoError(err)
	req.Len(live, 1)
}

func TestLifecycle_End_Stream_Persists_Before_Notifying(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	broadcaster := &recordingBroadcaster{}
	svc := NewLifecycleService(streams, runtime.NewRegistry(), broadcaster, slog.Default())
	host := domain.Identity{UserID: uuid.NewString(), Username: "alice"}

	stream, err := svc.CreateStream(host, "title", "")
	req.NoError(err)

	// Observe the persisted flag at the exact moment the broadcast happens
	var liveAtBroadcast *bool
	broadcaster.onBroadcast = func(event.Event) {
		persisted, err := streams.StreamByID(stream.ID)
		req.NoError(err)
		liveAtBroadcast = &persisted.Live
	}

	req.NoError(svc.EndStream(context.Background(), stream.ID, host))

	req.NotNil(liveAtBroadcast)
	req.False(*liveAtBroadcast)
	req.Len(broadcaster.events, 1)
	ended, ok := broadcaster.events[0].(event.StreamEnded)
	req.True(ok)
	req.Equal(stream.ChannelID, ended.ChannelID)
	req.Equal(StreamEndedMessage, ended.Message)
}

func TestLifecycle_End_Stream_Permissions(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	broadcaster := &recordingBroadcaster{}
	svc := NewLifecycleService(streams, runtime.NewRegistry(), broadcaster, slog.Default())
	host := domain.Identity{UserID: uuid.NewString(), Username: "alice"}

	stream, err := svc.CreateStream(host, "title", "")
	req.NoError(err)

	// A stranger cannot end it
	stranger := domain.Identity{UserID: uuid.NewString(), Username: "mallory"}
	err = svc.EndStream(context.Background(), stream.ID, stranger)
	req.ErrorIs(err, errors.ErrForbidden)

	// A guest cannot either, even with a colliding user id
	guest := domain.Identity{UserID: stream.HostID, Username: "guest", Guest: true}
	err = svc.EndStream(context.Background(), stream.ID, guest)
	req.ErrorIs(err, errors.ErrForbidden)

	// An admin can
	admin := domain.Identity{UserID: uuid.NewString(), Username: "root", Admin: true}
	req.NoError(svc.EndStream(context.Background(), stream.ID, admin))

	persisted, err := svc.StreamByID(stream.ID)
	req.NoError(err)
	req.False(persisted.Live)
}

func TestLifecycle_End_Stream_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	broadcaster := &recordingBroadcaster{}
	svc := NewLifecycleService(streams, runtime.NewRegistry(), broadcaster, slog.Default())
	host := domain.Identity{UserID: uuid.NewString(), Username: "alice"}

	stream, err := svc.CreateStream(host, "title", "")
	req.NoError(err)

	req.NoError(svc.EndStream(context.Background(), stream.ID, host))
	req.NoError(svc.EndStream(context.Background(), stream.ID, host))

	// The farewell went out exactly once
	req.Len(broadcaster.events, 1)
}

func TestLifecycle_End_Unknown_Stream(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	svc := NewLifecycleService(streams, runtime.NewRegistry(), &recordingBroadcaster{}, slog.Default())

	err = svc.EndStream(context.Background(), uuid.NewString(), domain.Identity{UserID: uuid.NewString()})
	req.ErrorIs(err, errors.ErrStreamNotFound)
}

func TestLifecycle_Sync_Viewer_Count(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	registry := runtime.NewRegistry()
	svc := NewLifecycleService(streams, registry, &recordingBroadcaster{}, slog.Default())
	host := domain.Identity{UserID: uuid.NewString(), Username: "alice"}

	stream, err := svc.CreateStream(host, "title", "")
	req.NoError(err)

	// Given three connected viewers
	for i := 0; i < 3; i++ {
		registry.Join(stream.ChannelID, stubSession{id: uuid.NewString()})
	}

	// When the count is mirrored into storage
	req.NoError(svc.SyncViewerCount(stream.ChannelID))

	persisted, err := svc.StreamByID(stream.ID)
	req.NoError(err)
	req.Equal(3, persisted.ViewerCount)
}

func TestLifecycle_Sync_Unknown_Channel(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	streams := repositories.NewStreamRepository(db, slog.Default())
	svc := NewLifecycleService(streams, runtime.NewRegistry(), &recordingBroadcaster{}, slog.Default())

	err = svc.SyncViewerCount(uuid.NewString())
	req.ErrorIs(err, errors.ErrStreamNotFound)
}
