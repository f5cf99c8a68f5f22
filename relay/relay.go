// Package relay implements the media side channels for calls. Each
// relay listens on its own port and pairs incoming sockets strictly by
// arrival order: the first unpaired connection waits, the next one
// completes the pair, and bytes are pumped between the two in both
// directions. Pairing carries no identity; the callers coordinate who
// dials when through call signaling on the text protocol.
package relay

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	apperrors "chat-core/errors"
)

// maxVideoFrame bounds one video frame; a peer announcing more than
// this is considered broken and its pairing is dropped.
const maxVideoFrame = 8 << 20

const audioChunkSize = 4096

// forwardFunc pumps bytes from src to dst until an error.
type forwardFunc func(dst io.Writer, src io.Reader) error

type Relay struct {
	addr    string
	name    string
	forward forwardFunc
	log     *slog.Logger

	mu      sync.Mutex
	waiting net.Conn

	boundAddr atomic.Value // net.Addr once listening
}

// NewVideoRelay relays length-prefixed frames: a 4-byte big-endian size
// followed by that many bytes, re-framed identically on the way out.
func NewVideoRelay(addr string, log *slog.Logger) *Relay {
	return &Relay{addr: addr, name: "video", forward: forwardVideo, log: log}
}

// NewAudioRelay relays raw chunks with no framing at all.
func NewAudioRelay(addr string, log *slog.Logger) *Relay {
	return &Relay{addr: addr, name: "audio", forward: forwardAudio, log: log}
}

// Addr returns the bound listen address, nil before Run has bound it.
func (r *Relay) Addr() net.Addr {
	if v := r.boundAddr.Load(); v != nil {
		return v.(net.Addr)
	}
	return nil
}

func (r *Relay) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.addr)
	if err != nil {
		return fmt.Errorf("relay %s listen %s: %w", r.name, r.addr, err)
	}
	defer ln.Close()
	r.boundAddr.Store(ln.Addr())
	r.log.Info("relay accepting connections", "relay", r.name, "addr", ln.Addr().String())

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
			return fmt.Errorf("relay %s accept: %w", r.name, err)
		}
		r.pairOrWait(conn)
	}
}

// pairOrWait applies the arrival-order rule: an unpaired connection is
// parked; the next arrival is its partner.
func (r *Relay) pairOrWait(conn net.Conn) {
	r.mu.Lock()
	if r.waiting == nil {
		r.waiting = conn
		r.mu.Unlock()
		r.log.Debug("relay peer waiting for a partner", "relay", r.name, "remote", conn.RemoteAddr())
		return
	}
	partner := r.waiting
	r.waiting = nil
	r.mu.Unlock()

	r.log.Info("relay pair established", "relay", r.name,
		"first", partner.RemoteAddr(), "second", conn.RemoteAddr())
	go r.pump(partner, conn)
}

// pump moves bytes in both directions until either side fails, then
// closes both sockets. A failed pair never affects other pairs or the
// accept loop.
func (r *Relay) pump(a, b net.Conn) {
	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			_ = a.Close()
			_ = b.Close()
		})
	}

	var wg sync.WaitGroup
	for _, dir := range []struct{ dst, src net.Conn }{{a, b}, {b, a}} {
		wg.Add(1)
		go func(dst, src net.Conn) {
			defer wg.Done()
			if err := r.forward(dst, src); err != nil && err != io.EOF {
				r.log.Debug("relay stream ended", "relay", r.name, "error", err)
			}
			shutdown()
		}(dir.dst, dir.src)
	}
	wg.Wait()
	r.log.Info("relay pair closed", "relay", r.name)
}

// forwardVideo copies one length-prefixed frame at a time so frame
// boundaries survive the relay intact.
func forwardVideo(dst io.Writer, src io.Reader) error {
	var header [4]byte
	for {
		if _, err := io.ReadFull(src, header[:]); err != nil {
			return err
		}
		size := binary.BigEndian.Uint32(header[:])
		if size == 0 || size > maxVideoFrame {
			return fmt.Errorf("%w: video frame of %d bytes", apperrors.ErrFrameTooLarge, size)
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(src, payload); err != nil {
			return err
		}
		if _, err := dst.Write(header[:]); err != nil {
			return err
		}
		if _, err := dst.Write(payload); err != nil {
			return err
		}
	}
}

// forwardAudio copies raw bytes in fixed-size chunks. Audio has no
// framing; whatever arrives is passed along as-is.
func forwardAudio(dst io.Writer, src io.Reader) error {
	buf := make([]byte, audioChunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}
