package runtime

import (
	"io"
	"log/slog"
	"sync"

	apperrors "chat-core/errors"
	"chat-core/protocol"
)

const defaultQueueSize = 64

// channel serializes all outbound frames of one connection through a
// single writer goroutine. Send never blocks on the peer's socket: when
// the bounded queue is full the frame is dropped and reported, so one
// slow reader cannot stall message fanout for everyone else.
type channel struct {
	codec *protocol.Codec
	out   chan protocol.Response
	done  chan struct{}
	once  sync.Once
	log   *slog.Logger
}

func newChannel(w io.Writer, codec *protocol.Codec, queueSize int, log *slog.Logger) *channel {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	ch := &channel{
		codec: codec,
		out:   make(chan protocol.Response, queueSize),
		done:  make(chan struct{}),
		log:   log,
	}
	go ch.writeLoop(w)
	return ch
}

func (c *channel) Send(resp protocol.Response) error {
	select {
	case <-c.done:
		return apperrors.ErrChannelClosed
	default:
	}

	select {
	case c.out <- resp:
		return nil
	case <-c.done:
		return apperrors.ErrChannelClosed
	default:
		c.log.Warn("outbound queue full, dropping frame", "message", resp.Message)
		return apperrors.ErrQueueFull
	}
}

// Close is idempotent. Queued frames are abandoned; the session teardown
// that follows closes the socket.
func (c *channel) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *channel) writeLoop(w io.Writer) {
	for {
		select {
		case <-c.done:
			return
		case resp := <-c.out:
			body, err := c.codec.Encode(resp)
			if err != nil {
				c.log.Error("response not encodable", "error", err)
				continue
			}
			if err := protocol.WriteFrame(w, body); err != nil {
				c.log.Debug("connection write failed", "error", err)
				c.Close()
				return
			}
		}
	}
}
