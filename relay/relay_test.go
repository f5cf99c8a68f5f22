package relay

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startRelay(t *testing.T, r *Relay) net.Addr {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() { _ = r.Run(ctx) }()

	var addr net.Addr
	require.Eventually(t, func() bool {
		addr = r.Addr()
		return addr != nil
	}, time.Second, 5*time.Millisecond)
	return addr
}

func dial(t *testing.T, addr net.Addr) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeVideoFrame(t *testing.T, w io.Writer, payload []byte) {
	t.Helper()
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	_, err := w.Write(header[:])
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
}

func readVideoFrame(t *testing.T, r io.Reader) []byte {
	t.Helper()
	var header [4]byte
	_, err := io.ReadFull(r, header[:])
	require.NoError(t, err)
	payload := make([]byte, binary.BigEndian.Uint32(header[:]))
	_, err = io.ReadFull(r, payload)
	require.NoError(t, err)
	return payload
}

func TestVideoRelay_ForwardsFramesBetweenArrivalPair(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t, NewVideoRelay("127.0.0.1:0", slog.Default()))

	caller := dial(t, addr)
	callee := dial(t, addr)

	// A 100-byte frame crosses the relay with its boundary intact
	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}
	writeVideoFrame(t, caller, payload)

	got := readVideoFrame(t, callee)
	req.Equal(payload, got)

	// And the reverse direction works too
	writeVideoFrame(t, callee, []byte("reply"))
	req.Equal([]byte("reply"), readVideoFrame(t, caller))
}

func TestAudioRelay_ForwardsRawBytes(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t, NewAudioRelay("127.0.0.1:0", slog.Default()))

	caller := dial(t, addr)
	callee := dial(t, addr)

	chunk := make([]byte, audioChunkSize)
	for i := range chunk {
		chunk[i] = byte(i % 251)
	}
	_, err := caller.Write(chunk)
	req.NoError(err)

	got := make([]byte, len(chunk))
	_, err = io.ReadFull(callee, got)
	req.NoError(err)
	req.Equal(chunk, got)
}

func TestRelay_PairsByArrivalOrder(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t, NewAudioRelay("127.0.0.1:0", slog.Default()))

	first := dial(t, addr)
	second := dial(t, addr)
	third := dial(t, addr)
	fourth := dial(t, addr)

	// first<->second are one pair, third<->fourth another
	_, err := first.Write([]byte("pair-one"))
	req.NoError(err)
	buf := make([]byte, 8)
	_, err = io.ReadFull(second, buf)
	req.NoError(err)
	req.Equal([]byte("pair-one"), buf)

	_, err = third.Write([]byte("pair-two"))
	req.NoError(err)
	_, err = io.ReadFull(fourth, buf)
	req.NoError(err)
	req.Equal([]byte("pair-two"), buf)
}

func TestRelay_OneFailingPairLeavesOthersAlive(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t, NewAudioRelay("127.0.0.1:0", slog.Default()))

	brokenA := dial(t, addr)
	brokenB := dial(t, addr)
	liveA := dial(t, addr)
	liveB := dial(t, addr)

	// Kill the first pair: its partner sees EOF
	req.NoError(brokenA.Close())
	buf := make([]byte, 1)
	req.Eventually(func() bool {
		_ = brokenB.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		_, err := brokenB.Read(buf)
		return err == io.EOF
	}, time.Second, 10*time.Millisecond)

	// The other pair keeps relaying
	_, err := liveA.Write([]byte("x"))
	req.NoError(err)
	_ = liveB.SetReadDeadline(time.Now().Add(time.Second))
	_, err = io.ReadFull(liveB, buf)
	req.NoError(err)
	req.Equal(byte('x'), buf[0])
}

func TestVideoRelay_RejectsOversizedFrame(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t, NewVideoRelay("127.0.0.1:0", slog.Default()))

	caller := dial(t, addr)
	callee := dial(t, addr)

	// Announce an absurd frame size: the pairing is torn down
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], maxVideoFrame+1)
	_, err := caller.Write(header[:])
	req.NoError(err)

	buf := make([]byte, 1)
	req.Eventually(func() bool {
		_ = callee.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		_, err := callee.Read(buf)
		return err == io.EOF
	}, time.Second, 10*time.Millisecond)
}
