//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"livehub/domain"
	"livehub/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Session is one live attachment to a channel. The transport owns the
// connection; the registry and broadcaster only see this surface.
type Session interface {
	ID() string
	Identity() domain.Identity
	Deliver(frame []byte) error
	Close() error
}

// IRegistry mutations return the viewer count taken inside the same
// critical section, so announcements never race each other.
type IRegistry interface {
	Join(channelID string, s Session) int
	Leave(channelID string, sessionID string) int
	ViewerCount(channelID string) int
	Sessions(channelID string) []Session
	Channels() []string
	TotalSessions() int
}

type IBroadcaster interface {
	Broadcast(ctx context.Context, e event.Event)
}

// Directory resolves a raw bearer token into an identity, consulting the
// account records for ban and role flags.
type Directory interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}
