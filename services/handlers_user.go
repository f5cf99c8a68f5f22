package services

import (
	"context"

	"github.com/samber/lo"

	"chat-core/contract"
	"chat-core/domain"
	"chat-core/protocol"
)

func (d *Dispatcher) handleGetUserProfile(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.GetUserProfilePayload)
	self, _ := sess.User()

	var (
		user domain.User
		err  error
	)
	switch {
	case payload.Username != "":
		user, err = d.store.GetUserByUsername(payload.Username)
	case payload.UserID != 0:
		user, err = d.store.GetUserByID(payload.UserID)
	default:
		user, err = d.store.GetUserByID(self.ID)
	}
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("User profile", user.Sanitized())
}

func (d *Dispatcher) handleUpdateUserProfile(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.UpdateUserProfilePayload)
	self, _ := sess.User()

	// Only the account owner can touch a profile.
	if payload.UserID != self.ID {
		return protocol.FailResponse("You can only update your own profile")
	}

	user, err := d.store.GetUserByID(self.ID)
	if err != nil {
		return d.fail(err)
	}
	if payload.FirstName != nil {
		user.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		user.LastName = *payload.LastName
	}
	if payload.Bio != nil {
		user.Bio = *payload.Bio
	}
	if payload.ProfilePictureURL != nil {
		user.ProfilePictureURL = *payload.ProfilePictureURL
	}

	if err := d.store.UpdateUser(user); err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Profile updated", user.Sanitized())
}

func (d *Dispatcher) handleDeleteUser(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.DeleteUserPayload)
	self, _ := sess.User()

	if payload.UserID != self.ID {
		return protocol.FailResponse("You can only delete your own account")
	}

	if err := d.store.DeleteUser(self.ID); err != nil {
		return d.fail(err)
	}

	// Deleting the account invalidates the live connection too.
	if ch, ok := d.registry.Lookup(self.ID); ok {
		d.registry.Unregister(self.ID, ch)
	}
	return protocol.OkResponse("Account deleted", nil)
}

func (d *Dispatcher) handleGetAllUsers(_ context.Context, _ contract.Session, _ protocol.Command) protocol.Response {
	users, err := d.store.ListUsers()
	if err != nil {
		return d.fail(err)
	}
	sanitized := lo.Map(users, func(u domain.User, _ int) domain.User {
		return u.Sanitized()
	})
	return protocol.OkResponse("All users", sanitized)
}
