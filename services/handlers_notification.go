package services

import (
	"context"

	"chat-core/contract"
	"chat-core/protocol"
)

func (d *Dispatcher) handleGetNotifications(_ context.Context, sess contract.Session, _ protocol.Command) protocol.Response {
	self, _ := sess.User()

	notifs, err := d.store.ListNotifications(self.ID)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Notifications", notifs)
}

func (d *Dispatcher) handleMarkNotification(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.NotificationRefPayload)
	self, _ := sess.User()

	n, err := d.store.GetNotification(payload.NotificationID)
	if err != nil {
		return d.fail(err)
	}
	if n.RecipientID != self.ID {
		return protocol.FailResponse("Not your notification")
	}

	if err := d.store.MarkNotificationRead(payload.NotificationID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Notification marked as read", nil)
}

func (d *Dispatcher) handleDeleteNotification(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.NotificationRefPayload)
	self, _ := sess.User()

	n, err := d.store.GetNotification(payload.NotificationID)
	if err != nil {
		return d.fail(err)
	}
	if n.RecipientID != self.ID {
		return protocol.FailResponse("Not your notification")
	}

	if err := d.store.DeleteNotification(payload.NotificationID); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Notification deleted", nil)
}
