package runtime

import (
	"sync"

	"livehub/contract"

	"github.com/samber/lo"
)

// channelEntry groups the live sessions of one channel with a cached
// viewer count. The count mirrors len(sessions) and is only touched
// inside the registry's critical sections, so a reader can never observe
// a half-applied mutation.
type channelEntry struct {
	sessions map[string]contract.Session
	count    int
}

type Registry struct {
	mu       sync.RWMutex
	channels map[string]*channelEntry
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]*channelEntry)}
}

// Join registers a session under a channel, creating the channel entry on
// the first join. Joining always succeeds.
// It returns the viewer count taken right after the mutation, which is the
// number the join announcement must carry: handing it out from the same
// critical section keeps two concurrent joins from announcing the same count.
func (r *Registry) Join(channelID string, s contract.Session) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.channels[channelID]
	if !ok {
		entry = &channelEntry{sessions: make(map[string]contract.Session)}
		r.channels[channelID] = entry
	}
	entry.sessions[s.ID()] = s
	entry.count = len(entry.sessions)
	return entry.count
}

// Leave removes a session from its channel and returns the remaining
// viewer count. Leaving a session that is already gone is a no-op, not an
// error: the failure paths (read loop death, broadcast eviction) may both
// try to clean up the same session.
// If no one is left in the channel, the entry is removed entirely to
// prevent memory leaks over time.
func (r *Registry) Leave(channelID string, sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.channels[channelID]
	if !ok {
		return 0
	}
	delete(entry.sessions, sessionID)
	entry.count = len(entry.sessions)
	if entry.count == 0 {
		delete(r.channels, channelID)
		return 0
	}
	return entry.count
}

// ViewerCount returns the cached count of a channel, 0 for an unknown one.
func (r *Registry) ViewerCount(channelID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.channels[channelID]
	if !ok {
		return 0
	}
	return entry.count
}

// Sessions returns a point-in-time snapshot of a channel's sessions.
// Iterating the snapshot is safe while other goroutines join and leave;
// it may simply grow stale. Returns nil for an unknown channel.
func (r *Registry) Sessions(channelID string) []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.channels[channelID]
	if !ok {
		return nil
	}
	return lo.Values(entry.sessions)
}

// Channels lists the channels currently holding at least one session.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Keys(r.channels)
}

// TotalSessions counts the live sessions across all channels.
func (r *Registry) TotalSessions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, entry := range r.channels {
		total += entry.count
	}
	return total
}
