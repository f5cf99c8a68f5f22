package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"chat-core/contract"
	"chat-core/protocol"
)

// Listener is the accept loop of the text protocol, run under the
// supervisor. Each accepted connection gets its own session goroutine.
type Listener struct {
	addr       string
	codec      *protocol.Codec
	registry   contract.Registry
	dispatcher contract.Dispatcher
	presence   contract.Presence
	queueSize  int
	log        *slog.Logger
}

func NewListener(
	addr string,
	codec *protocol.Codec,
	registry contract.Registry,
	dispatcher contract.Dispatcher,
	presence contract.Presence,
	queueSize int,
	log *slog.Logger,
) *Listener {
	return &Listener{
		addr:       addr,
		codec:      codec,
		registry:   registry,
		dispatcher: dispatcher,
		presence:   presence,
		queueSize:  queueSize,
		log:        log,
	}
}

func (l *Listener) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", l.addr, err)
	}
	defer ln.Close()
	l.log.Info("accepting connections", "addr", ln.Addr().String())

	// Cancellation unblocks Accept by closing the listener.
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		sess := newSession(conn, l.codec, l.registry, l.dispatcher, l.presence, l.queueSize, l.log)
		go sess.run(ctx)
	}
}
