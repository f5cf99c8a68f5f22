package runtime

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-core/contract"
	"chat-core/domain"
	"chat-core/protocol"
)

type stubDispatcher struct {
	fn func(sess contract.Session, cmd protocol.Command) protocol.Response
}

func (d *stubDispatcher) Dispatch(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	return d.fn(sess, cmd)
}

type stubPresence struct {
	online  atomic.Int32
	offline atomic.Int32
}

func (p *stubPresence) WentOnline(domain.UserID)  { p.online.Add(1) }
func (p *stubPresence) WentOffline(domain.UserID) { p.offline.Add(1) }

func sendRequest(t *testing.T, conn net.Conn, kind protocol.Kind, payload any) {
	t.Helper()
	body, err := protocol.NewCodec().EncodeRequest(kind, payload)
	require.NoError(t, err)
	require.NoError(t, protocol.WriteFrame(conn, body))
}

func readResponse(t *testing.T, conn net.Conn) protocol.Response {
	t.Helper()
	body, err := protocol.ReadFrame(conn)
	require.NoError(t, err)
	resp, err := protocol.NewCodec().DecodeResponse(body)
	require.NoError(t, err)
	return resp
}

func TestSession_DispatchesAndReplies(t *testing.T) {
	req := require.New(t)
	client, server := net.Pipe()
	defer client.Close()

	reg := NewRegistry(slog.Default())
	dispatcher := &stubDispatcher{fn: func(sess contract.Session, cmd protocol.Command) protocol.Response {
		return protocol.OkResponse(string(cmd.Kind), nil)
	}}

	sess := newSession(server, protocol.NewCodec(), reg, dispatcher, nil, 8, slog.Default())
	go sess.run(context.Background())

	sendRequest(t, client, protocol.KindLogin, protocol.LoginPayload{Username: "alice", Password: "secret"})
	resp := readResponse(t, client)
	req.True(resp.OK)
	req.Equal("LOGIN", resp.Message)
}

func TestSession_UnauthenticatedFailureHasNoSideEffects(t *testing.T) {
	req := require.New(t)
	client, server := net.Pipe()
	defer client.Close()

	reg := NewRegistry(slog.Default())
	dispatcher := &stubDispatcher{fn: func(sess contract.Session, cmd protocol.Command) protocol.Response {
		if _, ok := sess.User(); !ok && !cmd.Kind.Authenticating() {
			return protocol.FailResponse("authentication required")
		}
		return protocol.OkResponse("ok", nil)
	}}

	sess := newSession(server, protocol.NewCodec(), reg, dispatcher, nil, 8, slog.Default())
	go sess.run(context.Background())

	sendRequest(t, client, protocol.KindSendMessage, protocol.SendMessagePayload{ChatID: 1, Content: "hi"})
	resp := readResponse(t, client)
	req.False(resp.OK)
	req.Equal(0, reg.OnlineCount())

	// The connection stays usable afterwards
	sendRequest(t, client, protocol.KindLogin, protocol.LoginPayload{Username: "alice", Password: "secret"})
	resp = readResponse(t, client)
	req.True(resp.OK)
}

func TestSession_MalformedFrameBudget(t *testing.T) {
	req := require.New(t)
	client, server := net.Pipe()
	defer client.Close()

	reg := NewRegistry(slog.Default())
	dispatcher := &stubDispatcher{fn: func(contract.Session, protocol.Command) protocol.Response {
		return protocol.OkResponse("ok", nil)
	}}

	sess := newSession(server, protocol.NewCodec(), reg, dispatcher, nil, 8, slog.Default())
	go sess.run(context.Background())

	// Each malformed frame earns an error reply, up to the budget
	for i := 0; i < decodeRetryBudget; i++ {
		req.NoError(protocol.WriteFrame(client, []byte("not json")))
		resp := readResponse(t, client)
		req.False(resp.OK)
	}

	// The budget is spent: the server closes the connection
	_, err := protocol.ReadFrame(client)
	req.ErrorIs(err, io.EOF)
}

func TestSession_TeardownUnregistersAndReportsOffline(t *testing.T) {
	req := require.New(t)
	client, server := net.Pipe()

	reg := NewRegistry(slog.Default())
	presence := &stubPresence{}
	alice := domain.User{ID: 1, Username: "alice"}

	dispatcher := &stubDispatcher{fn: func(sess contract.Session, cmd protocol.Command) protocol.Response {
		if cmd.Kind == protocol.KindLogin {
			sess.Bind(alice)
		}
		return protocol.OkResponse("ok", nil)
	}}

	sess := newSession(server, protocol.NewCodec(), reg, dispatcher, presence, 8, slog.Default())
	go sess.run(context.Background())

	sendRequest(t, client, protocol.KindLogin, protocol.LoginPayload{Username: "alice", Password: "secret"})
	readResponse(t, client)
	req.Equal(1, reg.OnlineCount())

	// Abrupt disconnect: teardown must run exactly once
	client.Close()

	req.Eventually(func() bool {
		return reg.OnlineCount() == 0
	}, time.Second, 10*time.Millisecond)
	req.Eventually(func() bool {
		return presence.offline.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// A second teardown attempt is a no-op
	sess.teardown()
	req.Equal(int32(1), presence.offline.Load())
}

func TestSession_EvictionClosesOldConnection(t *testing.T) {
	req := require.New(t)

	reg := NewRegistry(slog.Default())
	presence := &stubPresence{}
	alice := domain.User{ID: 1, Username: "alice"}
	dispatcher := &stubDispatcher{fn: func(sess contract.Session, cmd protocol.Command) protocol.Response {
		if cmd.Kind == protocol.KindLogin {
			sess.Bind(alice)
		}
		return protocol.OkResponse("ok", nil)
	}}

	firstClient, firstServer := net.Pipe()
	defer firstClient.Close()
	first := newSession(firstServer, protocol.NewCodec(), reg, dispatcher, presence, 8, slog.Default())
	go first.run(context.Background())

	sendRequest(t, firstClient, protocol.KindLogin, protocol.LoginPayload{Username: "alice", Password: "secret"})
	readResponse(t, firstClient)

	secondClient, secondServer := net.Pipe()
	defer secondClient.Close()
	second := newSession(secondServer, protocol.NewCodec(), reg, dispatcher, presence, 8, slog.Default())
	go second.run(context.Background())

	sendRequest(t, secondClient, protocol.KindLogin, protocol.LoginPayload{Username: "alice", Password: "secret"})
	readResponse(t, secondClient)

	// The first connection is evicted and its socket closes
	req.Eventually(func() bool {
		_, err := protocol.ReadFrame(firstClient)
		return err != nil
	}, time.Second, 10*time.Millisecond)

	// The replacement stays registered
	req.Equal(1, reg.OnlineCount())
	current, ok := reg.Lookup(alice.ID)
	req.True(ok)
	req.Same(second.ch, current)
}

func TestSession_RebindReleasesPreviousIdentity(t *testing.T) {
	req := require.New(t)
	client, server := net.Pipe()
	defer client.Close()

	reg := NewRegistry(slog.Default())
	var nextID domain.UserID = 1
	dispatcher := &stubDispatcher{fn: func(sess contract.Session, cmd protocol.Command) protocol.Response {
		sess.Bind(domain.User{ID: nextID})
		nextID++
		return protocol.OkResponse("ok", nil)
	}}

	sess := newSession(server, protocol.NewCodec(), reg, dispatcher, nil, 8, slog.Default())
	go sess.run(context.Background())

	sendRequest(t, client, protocol.KindLogin, protocol.LoginPayload{Username: "alice", Password: "secret"})
	readResponse(t, client)
	_, ok := reg.Lookup(1)
	req.True(ok)

	// A second login over the same socket binds a different user; the
	// first identity must not keep pointing at this channel.
	sendRequest(t, client, protocol.KindLogin, protocol.LoginPayload{Username: "bob", Password: "secret"})
	readResponse(t, client)

	_, ok = reg.Lookup(1)
	req.False(ok)
	current, ok := reg.Lookup(2)
	req.True(ok)
	req.Same(sess.ch, current)

	// Disconnecting leaves no mapping behind for either identity
	client.Close()
	req.Eventually(func() bool {
		return reg.OnlineCount() == 0
	}, time.Second, 10*time.Millisecond)
	_, ok = reg.Lookup(1)
	req.False(ok)
	_, ok = reg.Lookup(2)
	req.False(ok)
}
