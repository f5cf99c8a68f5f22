// Package runtime owns the live side of the server: the session
// registry, per-connection channels, the session read loop and the TCP
// listener worker.
package runtime

import (
	"log/slog"
	"sync"

	"chat-core/contract"
	"chat-core/domain"
	"chat-core/protocol"
)

// Registry maps each online user to exactly one channel. A second login
// evicts the previous connection; the old channel is closed so its
// session tears down on its own.
type Registry struct {
	mu       sync.RWMutex
	channels map[domain.UserID]contract.Channel
	log      *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		channels: make(map[domain.UserID]contract.Channel),
		log:      log,
	}
}

func (r *Registry) Register(userID domain.UserID, ch contract.Channel) {
	r.mu.Lock()
	previous := r.channels[userID]
	r.channels[userID] = ch
	r.mu.Unlock()

	if previous != nil && previous != ch {
		r.log.Info("evicting previous connection", "userId", userID)
		previous.Close()
	}
}

// Unregister removes the mapping only when it still points at ch. An
// evicted session unregistering late must not knock out the channel of
// the login that replaced it.
func (r *Registry) Unregister(userID domain.UserID, ch contract.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.channels[userID]; ok && current == ch {
		delete(r.channels, userID)
	}
}

func (r *Registry) Lookup(userID domain.UserID) (contract.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[userID]
	return ch, ok
}

// BroadcastExcept pushes resp to every listed user currently online,
// skipping excluded. Send failures are logged and do not stop the loop.
func (r *Registry) BroadcastExcept(userIDs []domain.UserID, excluded domain.UserID, resp protocol.Response) {
	r.mu.RLock()
	targets := make([]contract.Channel, 0, len(userIDs))
	ids := make([]domain.UserID, 0, len(userIDs))
	for _, id := range userIDs {
		if id == excluded {
			continue
		}
		if ch, ok := r.channels[id]; ok {
			targets = append(targets, ch)
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	for i, ch := range targets {
		if err := ch.Send(resp); err != nil {
			r.log.Warn("push not delivered", "userId", ids[i], "error", err)
		}
	}
}

func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
