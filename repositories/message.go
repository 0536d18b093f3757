//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"livehub/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// DefaultHistoryLimit bounds a history page when neither the caller nor
// the configuration asks for a specific size.
const DefaultHistoryLimit = 50

type IMessageRepository interface {
	AppendChatMessage(message domain.ChatMessage) error
	RecentMessages(channelID string, limit int, cursor *string) ([]domain.ChatMessage, *string, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// diskMessage is the stored shape of a chat message.
type diskMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	SenderID  string `json:"sender_id"`
	Sender    string `json:"sender_name"`
	Content   string `json:"content"`
	At        int64  `json:"created_at"`
}

// AppendChatMessage persists a message in BadgerDB.
// The key is formatted as "msg:{channel_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) AppendChatMessage(message domain.ChatMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.ChannelID,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	data, err := json.Marshal(toDiskMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// RecentMessages retrieves the most recent messages of a channel using a
// reverse prefix scan. Thanks to the padded timestamp in the key the scan
// visits them newest first; the page is flipped before returning so
// callers always read oldest to newest. The returned cursor addresses the
// oldest message of the page and resumes the scan right behind it.
func (m MessageRepository) RecentMessages(channelID string, limit int, cursor *string) ([]domain.ChatMessage, *string, error) {
	var byteMessages [][]byte
	var messages []domain.ChatMessage
	var lastKey string

	max := m.effectiveLimit(limit)
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", channelID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Start past the newest possible position, then walk backwards.
			seekKey = []byte(prefixStr + "9999999999999999999")
		default:
			seekKey = []byte(prefixStr + *cursor)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(byteMessages) == max {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", max))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			byteMessages = append(byteMessages, value)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, b := range byteMessages {
		var disk diskMessage
		if err = json.Unmarshal(b, &disk); err != nil {
			return nil, nil, err
		}
		message, err := fromDiskMessage(disk)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return lo.Reverse(messages), &lastKey, nil
}

func (m MessageRepository) effectiveLimit(limit int) int {
	max := limit
	if max <= 0 {
		max = DefaultHistoryLimit
	}
	if m.limitMessages != nil && max > *m.limitMessages {
		max = *m.limitMessages
	}
	return max
}

func toDiskMessage(message domain.ChatMessage) diskMessage {
	return diskMessage{
		ID:        message.ID.String(),
		ChannelID: message.ChannelID,
		SenderID:  message.SenderID,
		Sender:    message.SenderName,
		Content:   message.Content,
		At:        message.CreatedAt.UnixNano(),
	}
}

func fromDiskMessage(disk diskMessage) (domain.ChatMessage, error) {
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return domain.ChatMessage{
		ID:         parsedID,
		ChannelID:  disk.ChannelID,
		SenderID:   disk.SenderID,
		SenderName: disk.Sender,
		Content:    disk.Content,
		CreatedAt:  time.Unix(0, disk.At).UTC(),
	}, nil
}
