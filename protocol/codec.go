package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "chat-core/errors"
)

// Request is the wire shape of a client frame.
type Request struct {
	Kind    Kind            `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Command is a decoded, validated request. Payload is the typed struct
// for the kind (nil for payload-less kinds). Immutable once decoded.
type Command struct {
	Kind    Kind
	Payload any
	raw     json.RawMessage
}

// Codec translates frames to commands and responses to frames. It is
// stateless and performs no I/O; framing lives in ReadFrame/WriteFrame.
type Codec struct {
	validate *validator.Validate
}

func NewCodec() *Codec {
	return &Codec{validate: validator.New()}
}

// Decode parses and shape-checks one frame. Failures here are decode
// errors: malformed JSON, an unknown kind, or a payload missing required
// fields. Valid-but-unexpected values pass through to the handlers.
func (c *Codec) Decode(frame []byte) (Command, error) {
	var req Request
	if err := json.Unmarshal(frame, &req); err != nil {
		return Command{}, fmt.Errorf("%w: %v", apperrors.ErrDecode, err)
	}

	proto, hasPayload := payloadPrototypes[req.Kind]
	if !hasPayload {
		if _, known := noPayloadKinds[req.Kind]; !known {
			return Command{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownKind, req.Kind)
		}
		return Command{Kind: req.Kind, raw: req.Payload}, nil
	}

	payload := proto()
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, payload); err != nil {
			return Command{}, fmt.Errorf("%w: payload for %s: %v", apperrors.ErrDecode, req.Kind, err)
		}
	}
	if err := c.validate.Struct(payload); err != nil {
		return Command{}, fmt.Errorf("%w: payload for %s: %v", apperrors.ErrDecode, req.Kind, err)
	}
	return Command{Kind: req.Kind, Payload: payload, raw: req.Payload}, nil
}

// EncodeCommand re-encodes a decoded command into an equivalent frame.
// Used by the tester client, and it keeps re-encoding idempotent.
func (c *Codec) EncodeCommand(cmd Command) ([]byte, error) {
	raw := cmd.raw
	if raw == nil && cmd.Payload != nil {
		b, err := json.Marshal(cmd.Payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Request{Kind: cmd.Kind, Payload: raw})
}

// EncodeRequest builds a request frame body from a kind and its payload.
func (c *Codec) EncodeRequest(kind Kind, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Request{Kind: kind, Payload: raw})
}

// Encode serializes a response into a frame body.
func (c *Codec) Encode(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}

// DecodeResponse parses a response frame body (client side).
func (c *Codec) DecodeResponse(frame []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(frame, &resp); err != nil {
		return Response{}, fmt.Errorf("%w: %v", apperrors.ErrDecode, err)
	}
	return resp, nil
}
