// Package protocol defines the wire protocol: a 4-byte big-endian length
// prefix followed by a JSON body. The encoding is self-describing, so no
// byte of free-text payload content can ever be mistaken for framing.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	apperrors "chat-core/errors"
)

// MaxFrameSize bounds a single frame. Large media travels over the relay
// listeners, never through the text protocol.
const MaxFrameSize = 1 << 20

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size == 0 {
		return nil, fmt.Errorf("%w: empty frame", apperrors.ErrDecode)
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", apperrors.ErrFrameTooLarge, size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// WriteFrame writes one length-prefixed frame to w.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", apperrors.ErrFrameTooLarge, len(body))
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
