package runtime

import (
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "chat-core/errors"
	"chat-core/protocol"
)

func TestChannel_DeliversFramesInOrder(t *testing.T) {
	req := require.New(t)
	client, server := net.Pipe()
	defer client.Close()

	ch := newChannel(server, protocol.NewCodec(), 8, slog.Default())
	defer ch.Close()

	req.NoError(ch.Send(protocol.OkResponse("first", nil)))
	req.NoError(ch.Send(protocol.OkResponse("second", nil)))

	codec := protocol.NewCodec()
	for _, want := range []string{"first", "second"} {
		body, err := protocol.ReadFrame(client)
		req.NoError(err)
		resp, err := codec.DecodeResponse(body)
		req.NoError(err)
		req.True(resp.OK)
		req.Equal(want, resp.Message)
	}
}

func TestChannel_SendAfterCloseFails(t *testing.T) {
	req := require.New(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ch := newChannel(server, protocol.NewCodec(), 8, slog.Default())
	ch.Close()
	ch.Close() // idempotent

	err := ch.Send(protocol.OkResponse("late", nil))
	req.ErrorIs(err, apperrors.ErrChannelClosed)
}

func TestChannel_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	req := require.New(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	// Nobody reads from client, so the writer goroutine blocks on the
	// first frame and the queue fills up behind it.
	ch := newChannel(server, protocol.NewCodec(), 2, slog.Default())
	defer ch.Close()

	done := make(chan error, 8)
	go func() {
		for i := 0; i < 8; i++ {
			done <- ch.Send(protocol.OkResponse("flood", nil))
		}
		close(done)
	}()

	var dropped int
	timeout := time.After(2 * time.Second)
	for i := 0; i < 8; i++ {
		select {
		case err := <-done:
			if err != nil {
				req.ErrorIs(err, apperrors.ErrQueueFull)
				dropped++
			}
		case <-timeout:
			req.Fail("Send must never block on a slow peer")
		}
	}
	req.Greater(dropped, 0)
}
