package services

import (
	"context"

	"chat-core/contract"
	"chat-core/domain"
	"chat-core/protocol"
)

func (d *Dispatcher) handleCreateChat(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.CreateChatPayload)
	self, _ := sess.User()

	chatType := payload.Type
	if chatType == "" {
		chatType = domain.ChatTypeGroup
	}

	chat, err := d.store.CreateChat(domain.Chat{
		Name:      payload.Name,
		Type:      chatType,
		CreatorID: self.ID,
	})
	if err != nil {
		return d.fail(err)
	}

	// The creator is the first participant.
	err = d.store.AddParticipant(domain.ChatParticipant{
		ChatID: chat.ID,
		UserID: self.ID,
		Role:   domain.RoleCreator,
	})
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Chat created", chat)
}

func (d *Dispatcher) handleGetUserChats(_ context.Context, sess contract.Session, _ protocol.Command) protocol.Response {
	self, _ := sess.User()

	chats, err := d.store.ListChatsForUser(self.ID)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("User chats", chats)
}

func (d *Dispatcher) handleGetChatDetails(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.ChatRefPayload)
	self, _ := sess.User()

	if resp, ok := d.requireParticipant(payload.ChatID, self.ID); !ok {
		return resp
	}

	chat, err := d.store.GetChat(payload.ChatID)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Chat details", chat)
}

func (d *Dispatcher) handleUpdateChat(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.UpdateChatPayload)
	self, _ := sess.User()

	chat, err := d.store.GetChat(payload.ChatID)
	if err != nil {
		return d.fail(err)
	}
	if chat.CreatorID != self.ID {
		return protocol.FailResponse("Only the chat creator can update the chat")
	}

	if payload.Name != nil {
		chat.Name = *payload.Name
	}
	if payload.Type != nil {
		chat.Type = *payload.Type
	}

	if err := d.store.UpdateChat(chat); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Chat updated", chat)
}

func (d *Dispatcher) handleDeleteChat(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.ChatRefPayload)
	self, _ := sess.User()

	chat, err := d.store.GetChat(payload.ChatID)
	if err != nil {
		return d.fail(err)
	}
	if chat.CreatorID != self.ID {
		return protocol.FailResponse("Only the chat creator can delete the chat")
	}

	if err := d.store.DeleteChat(payload.ChatID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Chat deleted", nil)
}

// requireParticipant answers (failure response, false) when userID is
// not a member of chatID.
func (d *Dispatcher) requireParticipant(chatID domain.ChatID, userID domain.UserID) (protocol.Response, bool) {
	ok, err := d.store.IsParticipant(chatID, userID)
	if err != nil {
		return d.fail(err), false
	}
	if !ok {
		return protocol.FailResponse("You are not a participant of this chat"), false
	}
	return protocol.Response{}, true
}
