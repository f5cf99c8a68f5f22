package runtime

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-core/domain"
	"chat-core/protocol"
)

// stubChannel records sends and closes for registry assertions.
type stubChannel struct {
	mu     sync.Mutex
	sent   []protocol.Response
	closed bool
}

func (c *stubChannel) Send(resp protocol.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, resp)
	return nil
}

func (c *stubChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *stubChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *stubChannel) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func TestRegistry_SecondLoginEvictsFirst(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(slog.Default())

	first := &stubChannel{}
	second := &stubChannel{}
	alice := domain.UserID(1)

	reg.Register(alice, first)
	req.False(first.isClosed())

	// Same user, new connection: the old channel is closed and replaced
	reg.Register(alice, second)
	req.True(first.isClosed())
	req.False(second.isClosed())

	current, ok := reg.Lookup(alice)
	req.True(ok)
	req.Same(second, current.(*stubChannel))
	req.Equal(1, reg.OnlineCount())
}

func TestRegistry_LateUnregisterDoesNotEvictReplacement(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(slog.Default())

	first := &stubChannel{}
	second := &stubChannel{}
	alice := domain.UserID(1)

	reg.Register(alice, first)
	reg.Register(alice, second)

	// The evicted session tears down late; the new mapping must survive
	reg.Unregister(alice, first)

	current, ok := reg.Lookup(alice)
	req.True(ok)
	req.Same(second, current.(*stubChannel))

	// Unregistering the live channel actually removes the user
	reg.Unregister(alice, second)
	_, ok = reg.Lookup(alice)
	req.False(ok)
	req.Equal(0, reg.OnlineCount())
}

func TestRegistry_BroadcastExcept(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(slog.Default())

	alice, bob, clara := domain.UserID(1), domain.UserID(2), domain.UserID(3)
	bobCh := &stubChannel{}
	claraCh := &stubChannel{}

	reg.Register(bob, bobCh)
	reg.Register(clara, claraCh)

	// Alice is offline and also the excluded sender
	reg.BroadcastExcept([]domain.UserID{alice, bob, clara}, alice, protocol.FailResponse("x"))
	req.Equal(1, bobCh.sentCount())
	req.Equal(1, claraCh.sentCount())

	// The excluded user receives nothing even when online
	reg.BroadcastExcept([]domain.UserID{bob, clara}, bob, protocol.FailResponse("y"))
	req.Equal(1, bobCh.sentCount())
	req.Equal(2, claraCh.sentCount())
}
