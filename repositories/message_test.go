package repositories

import (
	"log/slog"
	"testing"
	"time"

	"livehub/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testMessage(channelID, sender, content string, at time.Time) domain.ChatMessage {
	return domain.ChatMessage{
		ID:         uuid.New(),
		ChannelID:  channelID,
		SenderID:   uuid.NewString(),
		SenderName: sender,
		Content:    content,
		CreatedAt:  at,
	}
}

func Test_Append_Multiple_Messages(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	channel := uuid.NewString()
	at := time.Now().UTC()
	messages := []domain.ChatMessage{
		testMessage(channel, "Alice", "hello from the couch", at),
		testMessage(channel, "Bob", "stream looks great", at.Add(1*time.Minute)),
		testMessage(channel, "Clara", "turn up the volume", at.Add(2*time.Minute)),
	}
	for _, m := range messages {
		err = repository.AppendChatMessage(m)
		req.NoError(err)
	}

	fetched, _, err := repository.RecentMessages(channel, 0, nil)
	req.NoError(err)
	req.Len(fetched, len(messages))
	// Oldest first, newest last
	req.Equal(messages, fetched)
}

func Test_Recent_Messages_Honors_Limit(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	channel := uuid.NewString()
	at := time.Now().UTC()
	messages := []domain.ChatMessage{
		testMessage(channel, "Alice", "first", at),
		testMessage(channel, "Bob", "second", at.Add(1*time.Minute)),
		testMessage(channel, "Clara", "third", at.Add(2*time.Minute)),
	}
	for _, m := range messages {
		req.NoError(repository.AppendChatMessage(m))
	}

	fetched, _, err := repository.RecentMessages(channel, 2, nil)
	req.NoError(err)
	req.Len(fetched, 2)
	// The two newest, still in chronological order
	req.Equal(messages[1:], fetched)
}

func Test_Recent_Messages_Cursor_Pages_Backwards(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	channel := uuid.NewString()
	at := time.Now().UTC()
	messages := []domain.ChatMessage{
		testMessage(channel, "Alice", "first", at),
		testMessage(channel, "Bob", "second", at.Add(1*time.Minute)),
		testMessage(channel, "Clara", "third", at.Add(2*time.Minute)),
	}
	for _, m := range messages {
		req.NoError(repository.AppendChatMessage(m))
	}

	// Given the newest page
	page, cursor, err := repository.RecentMessages(channel, 2, nil)
	req.NoError(err)
	req.Equal(messages[1:], page)
	req.NotNil(cursor)

	// When resuming behind it
	page, _, err = repository.RecentMessages(channel, 2, cursor)

	// Then the older remainder comes back
	req.NoError(err)
	req.Equal(messages[:1], page)
}

func Test_Recent_Messages_Configured_Cap(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	limit := 1
	repository := NewMessageRepository(db, slog.Default(), &limit)
	channel := uuid.NewString()
	at := time.Now().UTC()
	for i, sender := range []string{"Alice", "Bob", "Clara"} {
		req.NoError(repository.AppendChatMessage(
			testMessage(channel, sender, "ping", at.Add(time.Duration(i)*time.Minute)),
		))
	}

	fetched, _, err := repository.RecentMessages(channel, 10, nil)
	req.NoError(err)
	req.Len(fetched, limit)
}

func Test_Recent_Messages_Isolated_Per_Channel(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	at := time.Now().UTC()
	first := uuid.NewString()
	second := uuid.NewString()
	kept := testMessage(first, "Alice", "only here", at)
	req.NoError(repository.AppendChatMessage(kept))
	req.NoError(repository.AppendChatMessage(testMessage(second, "Bob", "elsewhere", at)))

	fetched, _, err := repository.RecentMessages(first, 0, nil)
	req.NoError(err)
	req.Equal([]domain.ChatMessage{kept}, fetched)
}
