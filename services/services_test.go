package services

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"chat-core/auth"
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/moderation"
	"chat-core/protocol"
	"chat-core/runtime"
	"chat-core/storage"
)

const testPassword = "ComplexPass123!"

type testEnv struct {
	dispatcher *Dispatcher
	store      *storage.Store
	registry   *runtime.Registry
	presence   *PresenceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	require.NoError(t, err)

	log := slog.Default()
	store, err := storage.NewStore(db, writer, log)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
		_ = writer.Close()
		_ = db.Close()
	})

	registry := runtime.NewRegistry(log)
	presence := NewPresenceService(store, registry, log)

	moderator, err := moderation.NewModerator([]string{"badword"}, '*')
	require.NoError(t, err)

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	authService := NewAuthService(store, issuer, nil, log)
	delivery := NewDeliveryService(store, registry, &moderator, log)

	return &testEnv{
		dispatcher: NewDispatcher(authService, delivery, presence, store, registry, log),
		store:      store,
		registry:   registry,
		presence:   presence,
	}
}

// stubChannel collects pushed responses for assertions.
type stubChannel struct {
	mu   sync.Mutex
	sent []protocol.Response
}

func (c *stubChannel) Send(resp protocol.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, resp)
	return nil
}

func (c *stubChannel) Close() {}

func (c *stubChannel) responses() []protocol.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Response(nil), c.sent...)
}

// fakeSession implements contract.Session outside of a real socket.
type fakeSession struct {
	user     *domain.User
	registry contract.Registry
	ch       *stubChannel
}

func newFakeSession(registry contract.Registry) *fakeSession {
	return &fakeSession{registry: registry, ch: &stubChannel{}}
}

func (s *fakeSession) User() (domain.User, bool) {
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *fakeSession) Bind(user domain.User) {
	s.user = &user
	s.registry.Register(user.ID, s.ch)
}

func (s *fakeSession) Channel() contract.Channel { return s.ch }

func command(kind protocol.Kind, payload any) protocol.Command {
	return protocol.Command{Kind: kind, Payload: payload}
}

func unmarshalData(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}

// registerUser drives a full REGISTER through the dispatcher and
// returns the bound session.
func registerUser(t *testing.T, env *testEnv, username, phone string) *fakeSession {
	t.Helper()
	sess := newFakeSession(env.registry)
	resp := env.dispatcher.Dispatch(t.Context(), sess, command(protocol.KindRegister, &protocol.RegisterPayload{
		Username:    username,
		PhoneNumber: phone,
		Password:    testPassword,
	}))
	require.True(t, resp.OK, resp.Message)
	return sess
}
