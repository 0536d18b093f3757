package repositories

import (
	"log/slog"
	"testing"

	"livehub/domain"
	"livehub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testStream(hostName string) domain.Stream {
	host := domain.Identity{UserID: uuid.NewString(), Username: hostName}
	return domain.NewStream(host, "morning ride", "cycling through the hills")
}

func Test_Save_And_Load_Stream(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewStreamRepository(db, slog.Default())
	stream := testStream("Alice")
	req.NoError(repository.SaveStream(stream))

	byID, err := repository.StreamByID(stream.ID)
	req.NoError(err)
	req.Equal(stream, byID)

	byChannel, err := repository.StreamByChannel(stream.ChannelID)
	req.NoError(err)
	req.Equal(stream, byChannel)

	byHost, err := repository.ActiveStreamByHost(stream.HostID)
	req.NoError(err)
	req.Equal(stream, byHost)
}

func Test_Load_Unknown_Stream(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewStreamRepository(db, slog.Default())

	_, err = repository.StreamByID(uuid.NewString())
	req.ErrorIs(err, errors.ErrStreamNotFound)

	_, err = repository.StreamByChannel(uuid.NewString())
	req.ErrorIs(err, errors.ErrStreamNotFound)

	_, err = repository.ActiveStreamByHost(uuid.NewString())
	req.ErrorIs(err, errors.ErrStreamNotFound)
}

func Test_End_Stream_Frees_The_Host(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewStreamRepository(db, slog.Default())
	stream := testStream("Alice")
	req.NoError(repository.SaveStream(stream))

	// When the stream goes offline
	req.NoError(repository.UpdateStreamLiveFlag(stream.ID, false))

	// Then the record survives but the host index is gone
	ended, err := repository.StreamByID(stream.ID)
	req.NoError(err)
	req.False(ended.Live)

	byChannel, err := repository.StreamByChannel(stream.ChannelID)
	req.NoError(err)
	req.False(byChannel.Live)

	_, err = repository.ActiveStreamByHost(stream.HostID)
	req.ErrorIs(err, errors.ErrStreamNotFound)
}

func Test_List_Live_Skips_Ended_Streams(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewStreamRepository(db, slog.Default())
	first := testStream("Alice")
	second := testStream("Bob")
	ended := testStream("Clara")
	for _, stream := range []domain.Stream{first, second, ended} {
		req.NoError(repository.SaveStream(stream))
	}
	req.NoError(repository.UpdateStreamLiveFlag(ended.ID, false))

	live, err := repository.ListLive()
	req.NoError(err)
	req.Len(live, 2)
	req.ElementsMatch([]domain.Stream{first, second}, live)
}

func Test_Save_Second_Live_Stream_For_Same_Host(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewStreamRepository(db, slog.Default())
	first := testStream("Alice")
	req.NoError(repository.SaveStream(first))

	// Given the host is already live
	second := domain.NewStream(domain.Identity{UserID: first.HostID, Username: first.HostName}, "second", "")

	// When a second live stream is saved for the same host
	err = repository.SaveStream(second)

	// Then it is rejected and no record was created
	req.ErrorIs(err, errors.ErrAlreadyStreaming)
	_, err = repository.StreamByID(second.ID)
	req.ErrorIs(err, errors.ErrStreamNotFound)

	// And the host can go live again once the first stream ended
	req.NoError(repository.UpdateStreamLiveFlag(first.ID, false))
	req.NoError(repository.SaveStream(second))
}

func Test_Update_Viewer_Count_By_Channel(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewStreamRepository(db, slog.Default())
	stream := testStream("Alice")
	req.NoError(repository.SaveStream(stream))

	req.NoError(repository.UpdateStreamViewerCount(stream.ChannelID, 7))

	updated, err := repository.StreamByID(stream.ID)
	req.NoError(err)
	req.Equal(7, updated.ViewerCount)
}
