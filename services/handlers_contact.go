package services

import (
	"context"

	"chat-core/contract"
	"chat-core/protocol"
)

func (d *Dispatcher) handleAddContact(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.ContactPayload)
	self, _ := sess.User()

	if payload.ContactUserID == self.ID {
		return protocol.FailResponse("You cannot add yourself as a contact")
	}

	if err := d.store.AddContact(self.ID, payload.ContactUserID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Contact added", nil)
}

func (d *Dispatcher) handleGetContacts(_ context.Context, sess contract.Session, _ protocol.Command) protocol.Response {
	self, _ := sess.User()

	contacts, err := d.store.ListContacts(self.ID)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Contacts", contacts)
}

func (d *Dispatcher) handleRemoveContact(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.ContactPayload)
	self, _ := sess.User()

	if err := d.store.RemoveContact(self.ID, payload.ContactUserID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Contact removed", nil)
}

func (d *Dispatcher) handleBlockUser(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.BlockPayload)
	self, _ := sess.User()

	if payload.TargetUserID == self.ID {
		return protocol.FailResponse("You cannot block yourself")
	}

	if err := d.store.BlockUser(self.ID, payload.TargetUserID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("User blocked", nil)
}

func (d *Dispatcher) handleUnblockUser(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.BlockPayload)
	self, _ := sess.User()

	if err := d.store.UnblockUser(self.ID, payload.TargetUserID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("User unblocked", nil)
}
