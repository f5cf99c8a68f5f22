package protocol

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "chat-core/errors"
)

func TestFrame_RoundTrip(t *testing.T) {
	req := require.New(t)

	var buf bytes.Buffer
	body := []byte(`{"command":"LOGOUT"}`)
	req.NoError(WriteFrame(&buf, body))

	got, err := ReadFrame(&buf)
	req.NoError(err)
	req.Equal(body, got)
}

func TestFrame_RejectsOversized(t *testing.T) {
	req := require.New(t)

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], MaxFrameSize+1)
	_, err := ReadFrame(bytes.NewReader(header[:]))
	req.ErrorIs(err, apperrors.ErrFrameTooLarge)

	err = WriteFrame(&bytes.Buffer{}, make([]byte, MaxFrameSize+1))
	req.ErrorIs(err, apperrors.ErrFrameTooLarge)
}

func TestFrame_RejectsEmpty(t *testing.T) {
	req := require.New(t)

	var header [4]byte
	_, err := ReadFrame(bytes.NewReader(header[:]))
	req.ErrorIs(err, apperrors.ErrDecode)
}

// Payload bytes that look like JSON framing must never confuse the
// codec: the length prefix is the only framing.
func TestFrame_PayloadCannotBreakFraming(t *testing.T) {
	req := require.New(t)

	var buf bytes.Buffer
	codec := NewCodec()
	body, err := codec.EncodeRequest(KindSendMessage, SendMessagePayload{
		ChatID:  1,
		Content: `"}{"command":"DELETE_USER","payload":{"userId":1}}`,
	})
	req.NoError(err)
	req.NoError(WriteFrame(&buf, body))

	frame, err := ReadFrame(&buf)
	req.NoError(err)
	cmd, err := codec.Decode(frame)
	req.NoError(err)
	req.Equal(KindSendMessage, cmd.Kind)
	payload := cmd.Payload.(*SendMessagePayload)
	req.Contains(payload.Content, "DELETE_USER")
}

func TestCodec_DecodeValidCommand(t *testing.T) {
	req := require.New(t)
	codec := NewCodec()

	frame := []byte(`{"command":"LOGIN","payload":{"username":"alice","password":"secret"}}`)
	cmd, err := codec.Decode(frame)
	req.NoError(err)
	req.Equal(KindLogin, cmd.Kind)

	payload := cmd.Payload.(*LoginPayload)
	req.Equal("alice", payload.Username)
	req.Equal("secret", payload.Password)
}

func TestCodec_DecodeErrors(t *testing.T) {
	codec := NewCodec()

	cases := []struct {
		name  string
		frame string
		want  error
	}{
		{"malformed json", `{"command":`, apperrors.ErrDecode},
		{"unknown kind", `{"command":"TELEPORT"}`, apperrors.ErrUnknownKind},
		{"missing required field", `{"command":"LOGIN","payload":{"username":"alice"}}`, apperrors.ErrDecode},
		{"wrong payload type", `{"command":"LOGIN","payload":{"username":42}}`, apperrors.ErrDecode},
		{"missing payload entirely", `{"command":"SEND_MESSAGE"}`, apperrors.ErrDecode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode([]byte(tc.frame))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

// Decoding then re-encoding then decoding again must give back the same
// command.
func TestCodec_ReencodeIsIdempotent(t *testing.T) {
	req := require.New(t)
	codec := NewCodec()

	frame := []byte(`{"command":"SEND_MESSAGE","payload":{"chatId":7,"content":"hello"}}`)
	first, err := codec.Decode(frame)
	req.NoError(err)

	reencoded, err := codec.EncodeCommand(first)
	req.NoError(err)

	second, err := codec.Decode(reencoded)
	req.NoError(err)
	req.Equal(first.Kind, second.Kind)
	req.Equal(first.Payload, second.Payload)
}

func TestCodec_PayloadlessKinds(t *testing.T) {
	req := require.New(t)
	codec := NewCodec()

	cmd, err := codec.Decode([]byte(`{"command":"LOGOUT"}`))
	req.NoError(err)
	req.Equal(KindLogout, cmd.Kind)
	req.Nil(cmd.Payload)
}

func TestCodec_ResponseRoundTrip(t *testing.T) {
	req := require.New(t)
	codec := NewCodec()

	resp := OkResponse("Chat created", map[string]int{"id": 3})
	frame, err := codec.Encode(resp)
	req.NoError(err)

	decoded, err := codec.DecodeResponse(frame)
	req.NoError(err)
	req.True(decoded.OK)
	req.Equal("Chat created", decoded.Message)
	req.JSONEq(`{"id":3}`, string(decoded.Data))
}
