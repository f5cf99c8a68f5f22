package protocol

import "encoding/json"

// Response is the wire shape of every server frame, both direct replies
// and unsolicited pushes. Clients tell them apart by the pairing
// discipline (one outstanding request at a time) plus the reserved push
// sentinel in Message.
type Response struct {
	OK      bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Reserved sentinel messages identifying unsolicited pushes.
const (
	PushNewMessage   = "New message received"
	PushIncomingCall = "Incoming call"
	PushUserOnline   = "User online"
	PushUserOffline  = "User offline"
)

// OkResponse builds a success response, marshaling data when present.
// A marshal failure degrades to a plain success with no data; the data
// types are our own, so this only trips on programming errors.
func OkResponse(message string, data any) Response {
	resp := Response{OK: true, Message: message}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			resp.Data = b
		}
	}
	return resp
}

func FailResponse(message string) Response {
	return Response{OK: false, Message: message}
}
