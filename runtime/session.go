package runtime

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"chat-core/contract"
	"chat-core/domain"
	"chat-core/protocol"

	"github.com/google/uuid"
)

// decodeRetryBudget bounds how many malformed frames a connection may
// send before it is dropped. Past that point the stream position is
// suspect and resynchronizing is not worth the risk.
const decodeRetryBudget = 3

// session drives one client connection: it reads frames, hands decoded
// commands to the dispatcher and sends the reply through the channel.
// Teardown runs exactly once no matter which path triggers it.
type session struct {
	conn       net.Conn
	codec      *protocol.Codec
	registry   contract.Registry
	dispatcher contract.Dispatcher
	presence   contract.Presence
	ch         *channel
	log        *slog.Logger

	mu   sync.RWMutex
	user *domain.User

	teardownOnce sync.Once
}

func newSession(
	conn net.Conn,
	codec *protocol.Codec,
	registry contract.Registry,
	dispatcher contract.Dispatcher,
	presence contract.Presence,
	queueSize int,
	log *slog.Logger,
) *session {
	// Each connection gets its own id so intertwined session logs can be
	// told apart before the user authenticates.
	log = log.With("conn", uuid.NewString())
	return &session{
		conn:       conn,
		codec:      codec,
		registry:   registry,
		dispatcher: dispatcher,
		presence:   presence,
		ch:         newChannel(conn, codec, queueSize, log),
		log:        log,
	}
}

func (s *session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *session) Bind(user domain.User) {
	s.mu.Lock()
	previous := s.user
	s.user = &user
	s.mu.Unlock()

	// A re-login as a different user must not leave the old identity
	// mapped to this channel: teardown only unregisters the current one.
	if previous != nil && previous.ID != user.ID {
		s.registry.Unregister(previous.ID, s.ch)
	}
	s.registry.Register(user.ID, s.ch)
}

func (s *session) Channel() contract.Channel {
	return s.ch
}

// run is the read loop. It returns when the peer disconnects, the
// context is canceled, the channel is closed by an eviction, or the
// decode retry budget is spent.
func (s *session) run(ctx context.Context) {
	defer s.teardown()

	// A close from the outside (shutdown or eviction) must unblock the
	// pending read; closing the socket does that.
	go func() {
		select {
		case <-ctx.Done():
		case <-s.ch.done:
		}
		s.teardown()
	}()

	decodeFailures := 0
	for {
		body, err := protocol.ReadFrame(s.conn)
		if err != nil {
			s.log.Debug("connection read ended", "remote", s.conn.RemoteAddr(), "error", err)
			return
		}

		cmd, err := s.codec.Decode(body)
		if err != nil {
			decodeFailures++
			_ = s.ch.Send(protocol.FailResponse(err.Error()))
			if decodeFailures >= decodeRetryBudget {
				s.log.Warn("dropping connection after repeated malformed frames", "remote", s.conn.RemoteAddr())
				return
			}
			continue
		}

		resp := s.dispatcher.Dispatch(ctx, s, cmd)
		if err := s.ch.Send(resp); err != nil {
			return
		}
		if cmd.Kind == protocol.KindLogout && resp.OK {
			return
		}
	}
}

// teardown unwinds the session exactly once: the registry mapping goes
// first so no new push targets this connection, then presence, then the
// channel and the socket.
func (s *session) teardown() {
	s.teardownOnce.Do(func() {
		if user, ok := s.User(); ok {
			s.registry.Unregister(user.ID, s.ch)
			if s.presence != nil {
				s.presence.WentOffline(user.ID)
			}
		}
		s.ch.Close()
		_ = s.conn.Close()
	})
}
