//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-core/domain"
	"chat-core/protocol"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself; the supervisor recovers panics and
// restarts crashed workers.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the
// Worker interface.
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

// Channel is the outbound side of one live connection. Send enqueues
// without blocking on the peer's network write; it fails when the
// bounded queue is full or the channel is closed.
type Channel interface {
	Send(resp protocol.Response) error
	Close()
}

// Session is the per-connection state a command handler can observe and
// transition. Bind flips the connection to authenticated exactly once;
// later Binds (a second LOGIN on the same socket) replace the identity.
type Session interface {
	// User returns the authenticated identity, false before login.
	User() (domain.User, bool)
	// Bind marks the session authenticated as user and registers its
	// channel, evicting any previous channel of the same user.
	Bind(user domain.User)
	// Channel is the outbound side of this connection.
	Channel() Channel
}

// Dispatcher routes one decoded command to its handler and returns the
// reply to send. It never writes to the connection itself.
type Dispatcher interface {
	Dispatch(ctx context.Context, sess Session, cmd protocol.Command) protocol.Response
}

// Presence is notified when a user's connectivity changes. Implementations
// persist the flag and push online/offline events to the user's contacts.
type Presence interface {
	WentOnline(userID domain.UserID)
	WentOffline(userID domain.UserID)
}

// Registry is the single source of truth for who is online.
type Registry interface {
	// Register installs or replaces the channel for a user. A prior
	// channel for the same user is closed by the registry.
	Register(userID domain.UserID, ch Channel)
	// Unregister removes the mapping only if it still points at ch.
	Unregister(userID domain.UserID, ch Channel)
	Lookup(userID domain.UserID) (Channel, bool)
	// BroadcastExcept sends resp to every listed user except excluded.
	// Best-effort: individual failures are logged, not propagated.
	BroadcastExcept(userIDs []domain.UserID, excluded domain.UserID, resp protocol.Response)
	OnlineCount() int
}
