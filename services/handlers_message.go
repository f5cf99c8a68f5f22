package services

import (
	"context"
	"time"

	"chat-core/contract"
	"chat-core/protocol"
)

func (d *Dispatcher) handleSendMessage(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.SendMessagePayload)
	self, _ := sess.User()

	msg, err := d.delivery.Deliver(self, *payload)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Message sent", msg)
}

func (d *Dispatcher) handleGetChatMessages(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.GetChatMessagesPayload)
	self, _ := sess.User()

	if resp, ok := d.requireParticipant(payload.ChatID, self.ID); !ok {
		return resp
	}

	msgs, err := d.store.ListMessages(payload.ChatID, payload.Limit, payload.Offset)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Chat messages", msgs)
}

func (d *Dispatcher) handleUpdateMessage(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.UpdateMessagePayload)
	self, _ := sess.User()

	msg, err := d.store.GetMessage(payload.MessageID)
	if err != nil {
		return d.fail(err)
	}
	if msg.SenderID != self.ID {
		return protocol.FailResponse("You can only edit your own messages")
	}
	if msg.Deleted {
		return protocol.FailResponse("Message has been deleted")
	}

	now := time.Now().UTC()
	msg.Content = payload.Content
	msg.EditedAt = &now

	if err := d.store.UpdateMessage(msg); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Message updated", msg)
}

func (d *Dispatcher) handleDeleteMessage(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.MessageRefPayload)
	self, _ := sess.User()

	msg, err := d.store.GetMessage(payload.MessageID)
	if err != nil {
		return d.fail(err)
	}
	if msg.SenderID != self.ID {
		return protocol.FailResponse("You can only delete your own messages")
	}

	if err := d.store.SoftDeleteMessage(payload.MessageID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Message deleted", nil)
}

func (d *Dispatcher) handleMarkRead(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.MarkReadPayload)
	self, _ := sess.User()

	if resp, ok := d.requireParticipant(payload.ChatID, self.ID); !ok {
		return resp
	}

	if err := d.store.ResetUnread(payload.ChatID, self.ID, payload.MessageID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Messages marked as read", nil)
}

func (d *Dispatcher) handleSearchMessages(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.SearchMessagesPayload)
	self, _ := sess.User()

	msgs, err := d.store.SearchMessages(self.ID, payload.Query, payload.Limit)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Search results", msgs)
}
