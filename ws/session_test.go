package ws

import (
	"context"
	"fmt"
	"livehub/domain"
	"livehub/domain/event"
	apperrors "livehub/errors"
	"livehub/mocks"
	"livehub/repositories"
	"livehub/services"
	"log/slog"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// bareHub builds a Server with just enough wiring for direct Session tests.
func bareHub(registry *mocks.MockIRegistry, broadcaster *mocks.MockIBroadcaster,
	messages repositories.IMessageRepository, lifecycle services.ILifecycleService) *Server {
	return &Server{
		cfg: Config{
			SessionBufferSize: 2,
			WriteTimeout:      time.Second,
			MaxContentLength:  20,
		},
		registry:    registry,
		broadcaster: broadcaster,
		messages:    messages,
		lifecycle:   lifecycle,
		log:         slog.Default(),
	}
}

func Test_Deliver_After_Close_Fails(t *testing.T) {
	req := require.New(t)

	hub := bareHub(nil, nil, nil, nil)
	session := newSession(hub, nil, "chan-1", domain.NewGuest())

	req.NoError(session.Deliver([]byte("one")))
	req.NoError(session.Close())
	req.ErrorIs(session.Deliver([]byte("two")), apperrors.ErrSessionClosed)

	// Closing twice is harmless
	req.NoError(session.Close())
}

func Test_Deliver_On_Full_Buffer_Reports_A_Stall(t *testing.T) {
	req := require.New(t)

	// Buffer of two frames and no writePump draining it
	hub := bareHub(nil, nil, nil, nil)
	session := newSession(hub, nil, "chan-1", domain.NewGuest())

	req.NoError(session.Deliver([]byte("one")))
	req.NoError(session.Deliver([]byte("two")))
	req.ErrorIs(session.Deliver([]byte("three")), apperrors.ErrSessionStalled)
}

func Test_Exit_Runs_The_Sequence_Exactly_Once(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	registry := mocks.NewMockIRegistry(ctrl)
	broadcaster := mocks.NewMockIBroadcaster(ctrl)
	lifecycle := services.NewLifecycleService(repositories.NewStreamRepository(db, log), registry, broadcaster, log)

	hub := bareHub(registry, broadcaster, nil, lifecycle)
	session := newSession(hub, nil, "chan-1", domain.Identity{UserID: "user-mila", Username: "mila"})

	// The whole sequence must happen once, even when exit is raced
	registry.EXPECT().Leave("chan-1", session.ID()).Return(4).Times(1)
	broadcaster.EXPECT().Broadcast(gomock.Any(), event.ViewerLeft{
		ChannelID:   "chan-1",
		Username:    "mila",
		ViewerCount: 4,
	}).Times(1)
	// SyncViewerCount reads the registry; the unknown stream only gets logged
	registry.EXPECT().ViewerCount("chan-1").Return(4).Times(1)

	session.exit(context.Background())
	session.exit(context.Background())
}

func Test_Chat_Is_Still_Broadcast_When_Persistence_Fails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	messages := mocks.NewMockIMessageRepository(ctrl)
	messages.EXPECT().
		AppendChatMessage(gomock.Any()).
		Return(fmt.Errorf("disk full")).
		Times(1)

	broadcaster := mocks.NewMockIBroadcaster(ctrl)
	broadcaster.EXPECT().
		Broadcast(gomock.Any(), gomock.AssignableToTypeOf(event.ChatPosted{})).
		Times(1)

	hub := bareHub(nil, broadcaster, messages, nil)
	session := newSession(hub, nil, "chan-1", domain.Identity{UserID: "user-mila", Username: "mila"})

	session.postChat(context.Background(), "still delivered")
}

func Test_Empty_And_Oversized_Chat_Content_Is_Dropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations: any append or broadcast call fails the test
	messages := mocks.NewMockIMessageRepository(ctrl)
	broadcaster := mocks.NewMockIBroadcaster(ctrl)

	hub := bareHub(nil, broadcaster, messages, nil)
	session := newSession(hub, nil, "chan-1", domain.NewGuest())

	session.postChat(context.Background(), "   ")
	session.postChat(context.Background(), "this content is far longer than twenty runes")
	session.postReaction(context.Background(), "")
}
