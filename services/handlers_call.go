package services

import (
	"context"

	"chat-core/contract"
	"chat-core/domain"
	"chat-core/protocol"
)

// handleCallAction relays call signaling between two users. The server
// forwards RING/ACCEPT/REJECT/END; the media itself travels over the
// relay listeners once both sides connect there.
func (d *Dispatcher) handleCallAction(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.CallActionPayload)
	self, _ := sess.User()

	if payload.CalleeID == self.ID {
		return protocol.FailResponse("You cannot call yourself")
	}

	// A blocked caller cannot reach the callee.
	blocked, err := d.store.IsBlocked(payload.CalleeID, self.ID)
	if err != nil {
		return d.fail(err)
	}
	if blocked {
		return protocol.FailResponse("User is unavailable")
	}

	ch, online := d.registry.Lookup(payload.CalleeID)
	if !online {
		return protocol.FailResponse("User is offline")
	}

	push := protocol.OkResponse(protocol.PushIncomingCall, callEvent{
		CallerID: self.ID,
		Caller:   self.Username,
		Action:   payload.Action,
	})
	if err := ch.Send(push); err != nil {
		return protocol.FailResponse("User is unreachable")
	}
	return protocol.OkResponse("Call action delivered", nil)
}

type callEvent struct {
	CallerID domain.UserID       `json:"callerId"`
	Caller   string              `json:"caller"`
	Action   protocol.CallAction `json:"action"`
}
