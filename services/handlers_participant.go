package services

import (
	"context"

	"chat-core/contract"
	"chat-core/domain"
	"chat-core/protocol"
)

func (d *Dispatcher) handleAddParticipant(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.AddParticipantPayload)
	self, _ := sess.User()

	if resp, ok := d.requireChatAdmin(payload.ChatID, self.ID); !ok {
		return resp
	}

	role := payload.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !domain.ValidRole(role) || role == domain.RoleCreator {
		return protocol.FailResponse("Invalid participant role")
	}

	// The account must exist before joining a chat.
	if _, err := d.store.GetUserByID(payload.UserID); err != nil {
		return d.fail(err)
	}

	already, err := d.store.IsParticipant(payload.ChatID, payload.UserID)
	if err != nil {
		return d.fail(err)
	}
	if already {
		return protocol.FailResponse("User is already a participant")
	}

	err = d.store.AddParticipant(domain.ChatParticipant{
		ChatID: payload.ChatID,
		UserID: payload.UserID,
		Role:   role,
	})
	if err != nil {
		return d.fail(err)
	}

	d.notifyJoined(payload.ChatID, payload.UserID)
	return protocol.OkResponse("Participant added", nil)
}

func (d *Dispatcher) handleGetParticipants(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.ChatRefPayload)
	self, _ := sess.User()

	if resp, ok := d.requireParticipant(payload.ChatID, self.ID); !ok {
		return resp
	}

	members, err := d.store.ListParticipants(payload.ChatID)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Chat participants", members)
}

func (d *Dispatcher) handleUpdateParticipant(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.UpdateParticipantPayload)
	self, _ := sess.User()

	chat, err := d.store.GetChat(payload.ChatID)
	if err != nil {
		return d.fail(err)
	}
	// Role assignments are a creator privilege; the creator role itself
	// is not transferable.
	if chat.CreatorID != self.ID {
		return protocol.FailResponse("Only the chat creator can change roles")
	}
	if !domain.ValidRole(payload.Role) || payload.Role == domain.RoleCreator {
		return protocol.FailResponse("Invalid participant role")
	}
	if payload.UserID == self.ID {
		return protocol.FailResponse("The creator role cannot be changed")
	}

	if err := d.store.UpdateParticipantRole(payload.ChatID, payload.UserID, payload.Role); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Participant updated", nil)
}

func (d *Dispatcher) handleRemoveParticipant(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.RemoveParticipantPayload)
	self, _ := sess.User()

	// Anyone may leave; removing someone else takes admin rights.
	if payload.UserID != self.ID {
		if resp, ok := d.requireChatAdmin(payload.ChatID, self.ID); !ok {
			return resp
		}
		target, err := d.store.GetParticipant(payload.ChatID, payload.UserID)
		if err != nil {
			return d.fail(err)
		}
		if target.Role == domain.RoleCreator {
			return protocol.FailResponse("The chat creator cannot be removed")
		}
	}

	if err := d.store.RemoveParticipant(payload.ChatID, payload.UserID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Participant removed", nil)
}

// requireChatAdmin answers (failure response, false) unless userID holds
// the admin or creator role in chatID.
func (d *Dispatcher) requireChatAdmin(chatID domain.ChatID, userID domain.UserID) (protocol.Response, bool) {
	p, err := d.store.GetParticipant(chatID, userID)
	if err != nil {
		return d.fail(err), false
	}
	if p.Role != domain.RoleAdmin && p.Role != domain.RoleCreator {
		return protocol.FailResponse("Admin rights required"), false
	}
	return protocol.Response{}, true
}

func (d *Dispatcher) notifyJoined(chatID domain.ChatID, userID domain.UserID) {
	chat, err := d.store.GetChat(chatID)
	if err != nil {
		return
	}
	_, err = d.store.CreateNotification(domain.Notification{
		RecipientID: userID,
		Text:        "You were added to " + chat.Name,
	})
	if err != nil {
		d.log.Warn("join notification not stored", "userId", userID, "chatId", chatID, "error", err)
	}
}
