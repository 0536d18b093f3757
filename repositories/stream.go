//go:generate go run go.uber.org/mock/mockgen -source=stream.go -destination=../mocks/mock_stream_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"livehub/domain"
	apperrors "livehub/errors"

	"github.com/dgraph-io/badger/v4"
)

type IStreamRepository interface {
	SaveStream(stream domain.Stream) error
	StreamByID(id string) (domain.Stream, error)
	StreamByChannel(channelID string) (domain.Stream, error)
	ActiveStreamByHost(hostID string) (domain.Stream, error)
	ListLive() ([]domain.Stream, error)
	UpdateStreamLiveFlag(id string, live bool) error
	UpdateStreamViewerCount(channelID string, count int) error
}

type StreamRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStreamRepository(db *badger.DB, log *slog.Logger) StreamRepository {
	return StreamRepository{db: db, log: log}
}

// diskStream is the stored shape of a stream record.
type diskStream struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channel_id"`
	HostID      string `json:"host_id"`
	HostName    string `json:"host_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Live        bool   `json:"is_live"`
	ViewerCount int    `json:"viewer_count"`
	CreatedAt   int64  `json:"created_at"`
}

func streamKey(id string) []byte        { return []byte("stream:" + id) }
func hostIndexKey(hostID string) []byte { return []byte("stream_host:" + hostID) }
func channelIndexKey(ch string) []byte  { return []byte("stream_channel:" + ch) }

// SaveStream persists the stream record together with its lookup indexes.
// The host index only exists while the stream is live, so a host can go
// live again after ending a previous stream.
// At most one live stream may exist per host: saving a live stream while
// the host index points at a different one fails with ErrAlreadyStreaming.
// The check, the record and the indexes share one transaction, so two
// concurrent creations for the same host cannot both win.
func (s StreamRepository) SaveStream(stream domain.Stream) error {
	data, err := json.Marshal(toDiskStream(stream))
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if stream.Live {
			if err := ensureHostIsFree(txn, stream); err != nil {
				return err
			}
		}
		if err := txn.Set(streamKey(stream.ID), data); err != nil {
			return err
		}
		if err := txn.Set(channelIndexKey(stream.ChannelID), []byte(stream.ID)); err != nil {
			return err
		}
		if stream.Live {
			return txn.Set(hostIndexKey(stream.HostID), []byte(stream.ID))
		}
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		// A concurrent transaction touched this host's index first
		return apperrors.ErrAlreadyStreaming
	}
	return err
}

func ensureHostIsFree(txn *badger.Txn, stream domain.Stream) error {
	item, err := txn.Get(hostIndexKey(stream.HostID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(value []byte) error {
		// Re-saving the same stream stays legal
		if string(value) != stream.ID {
			return apperrors.ErrAlreadyStreaming
		}
		return nil
	})
}

func (s StreamRepository) StreamByID(id string) (domain.Stream, error) {
	var stream domain.Stream
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := getStream(txn, id)
		if err != nil {
			return err
		}
		stream = found
		return nil
	})
	return stream, err
}

// StreamByChannel resolves the channel index first, then loads the record.
// The index outlives the stream's live phase so an ended stream is still
// distinguishable from a channel that never existed.
func (s StreamRepository) StreamByChannel(channelID string) (domain.Stream, error) {
	var stream domain.Stream
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := resolveIndex(txn, channelIndexKey(channelID))
		if err != nil {
			return err
		}
		found, err := getStream(txn, id)
		if err != nil {
			return err
		}
		stream = found
		return nil
	})
	return stream, err
}

func (s StreamRepository) ActiveStreamByHost(hostID string) (domain.Stream, error) {
	var stream domain.Stream
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := resolveIndex(txn, hostIndexKey(hostID))
		if err != nil {
			return err
		}
		found, err := getStream(txn, id)
		if err != nil {
			return err
		}
		stream = found
		return nil
	})
	return stream, err
}

// ListLive scans the stream records and keeps the live ones. The record
// space is small enough that a filter scan beats maintaining yet another
// index that could drift.
func (s StreamRepository) ListLive() ([]domain.Stream, error) {
	var streams []domain.Stream
	prefix := []byte("stream:")
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var disk diskStream
				if err := json.Unmarshal(value, &disk); err != nil {
					return fmt.Errorf("corrupted stream record %s: %w", it.Item().Key(), err)
				}
				if disk.Live {
					streams = append(streams, fromDiskStream(disk))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return streams, nil
}

// UpdateStreamLiveFlag flips the live flag and drops the host index in the
// same transaction, so the host is immediately free to start a new stream.
func (s StreamRepository) UpdateStreamLiveFlag(id string, live bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		stream, err := getStream(txn, id)
		if err != nil {
			return err
		}
		stream.Live = live
		data, err := json.Marshal(toDiskStream(stream))
		if err != nil {
			return err
		}
		if err := txn.Set(streamKey(id), data); err != nil {
			return err
		}
		if !live {
			return txn.Delete(hostIndexKey(stream.HostID))
		}
		return txn.Set(hostIndexKey(stream.HostID), []byte(id))
	})
}

// UpdateStreamViewerCount writes the registry's count through to the
// record addressed by its channel.
func (s StreamRepository) UpdateStreamViewerCount(channelID string, count int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		id, err := resolveIndex(txn, channelIndexKey(channelID))
		if err != nil {
			return err
		}
		stream, err := getStream(txn, id)
		if err != nil {
			return err
		}
		stream.ViewerCount = count
		data, err := json.Marshal(toDiskStream(stream))
		if err != nil {
			return err
		}
		return txn.Set(streamKey(id), data)
	})
}

func getStream(txn *badger.Txn, id string) (domain.Stream, error) {
	item, err := txn.Get(streamKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Stream{}, apperrors.ErrStreamNotFound
	}
	if err != nil {
		return domain.Stream{}, err
	}
	var disk diskStream
	if err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &disk)
	}); err != nil {
		return domain.Stream{}, err
	}
	return fromDiskStream(disk), nil
}

func resolveIndex(txn *badger.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", apperrors.ErrStreamNotFound
	}
	if err != nil {
		return "", err
	}
	var id string
	err = item.Value(func(value []byte) error {
		id = string(value)
		return nil
	})
	return id, err
}

func toDiskStream(stream domain.Stream) diskStream {
	return diskStream{
		ID:          stream.ID,
		ChannelID:   stream.ChannelID,
		HostID:      stream.HostID,
		HostName:    stream.HostName,
		Title:       stream.Title,
		Description: stream.Description,
		Live:        stream.Live,
		ViewerCount: stream.ViewerCount,
		CreatedAt:   stream.CreatedAt.UnixNano(),
	}
}

func fromDiskStream(disk diskStream) domain.Stream {
	return domain.Stream{
		ID:          disk.ID,
		ChannelID:   disk.ChannelID,
		HostID:      disk.HostID,
		HostName:    disk.HostName,
		Title:       disk.Title,
		Description: disk.Description,
		Live:        disk.Live,
		ViewerCount: disk.ViewerCount,
		CreatedAt:   time.Unix(0, disk.CreatedAt).UTC(),
	}
}
