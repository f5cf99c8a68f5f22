package services

import (
	"context"
	"errors"
	"log/slog"

	"chat-core/contract"
	apperrors "chat-core/errors"
	"chat-core/protocol"
)

type handlerFunc func(ctx context.Context, sess contract.Session, cmd protocol.Command) protocol.Response

// Dispatcher routes decoded commands to their handlers. It enforces the
// single cross-cutting precondition, authentication, in one place so no
// handler can forget it.
type Dispatcher struct {
	authService IAuthService
	delivery    *DeliveryService
	presence    contract.Presence
	store       contract.Storage
	registry    contract.Registry
	log         *slog.Logger

	handlers map[protocol.Kind]handlerFunc
}

func NewDispatcher(
	authService IAuthService,
	delivery *DeliveryService,
	presence contract.Presence,
	store contract.Storage,
	registry contract.Registry,
	log *slog.Logger,
) *Dispatcher {
	d := &Dispatcher{
		authService: authService,
		delivery:    delivery,
		presence:    presence,
		store:       store,
		registry:    registry,
		log:         log,
	}
	d.handlers = map[protocol.Kind]handlerFunc{
		protocol.KindLogin:         d.handleLogin,
		protocol.KindRegister:      d.handleRegister,
		protocol.KindResumeSession: d.handleResumeSession,
		protocol.KindLogout:        d.handleLogout,

		protocol.KindGetUserProfile:    d.handleGetUserProfile,
		protocol.KindUpdateUserProfile: d.handleUpdateUserProfile,
		protocol.KindDeleteUser:        d.handleDeleteUser,
		protocol.KindGetAllUsers:       d.handleGetAllUsers,

		protocol.KindCreateChat:     d.handleCreateChat,
		protocol.KindGetUserChats:   d.handleGetUserChats,
		protocol.KindGetChatDetails: d.handleGetChatDetails,
		protocol.KindUpdateChat:     d.handleUpdateChat,
		protocol.KindDeleteChat:     d.handleDeleteChat,

		protocol.KindSendMessage:     d.handleSendMessage,
		protocol.KindGetChatMessages: d.handleGetChatMessages,
		protocol.KindUpdateMessage:   d.handleUpdateMessage,
		protocol.KindDeleteMessage:   d.handleDeleteMessage,
		protocol.KindMarkRead:        d.handleMarkRead,
		protocol.KindSearchMessages:  d.handleSearchMessages,
		protocol.KindUploadMedia:     d.handleUploadMedia,
		protocol.KindGetMedia:        d.handleGetMedia,

		protocol.KindAddParticipant:    d.handleAddParticipant,
		protocol.KindGetParticipants:   d.handleGetParticipants,
		protocol.KindUpdateParticipant: d.handleUpdateParticipant,
		protocol.KindRemoveParticipant: d.handleRemoveParticipant,

		protocol.KindAddContact:    d.handleAddContact,
		protocol.KindGetContacts:   d.handleGetContacts,
		protocol.KindRemoveContact: d.handleRemoveContact,
		protocol.KindBlockUser:     d.handleBlockUser,
		protocol.KindUnblockUser:   d.handleUnblockUser,

		protocol.KindGetNotifications: d.handleGetNotifications,
		protocol.KindMarkNotification: d.handleMarkNotification,
		protocol.KindDeleteNotif:      d.handleDeleteNotification,

		protocol.KindCallAction: d.handleCallAction,
	}
	return d
}

// Dispatch applies the authentication precondition, then routes. A
// failed precondition produces a response and nothing else: no handler
// runs, no state changes.
func (d *Dispatcher) Dispatch(ctx context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	if !cmd.Kind.Authenticating() {
		if _, ok := sess.User(); !ok {
			return protocol.FailResponse("Authentication required")
		}
	}

	handler, ok := d.handlers[cmd.Kind]
	if !ok {
		return protocol.FailResponse("Unsupported command")
	}
	return handler(ctx, sess, cmd)
}

// fail converts an error into a non-success response. Sentinel errors
// keep their message; anything else is reported as a storage failure
// and logged with its cause, which never reaches the client.
func (d *Dispatcher) fail(err error) protocol.Response {
	for _, sentinel := range []error{
		apperrors.ErrAuthorizationDenied,
		apperrors.ErrNotFound,
		apperrors.ErrInvalidCredentials,
		apperrors.ErrInvalidPassword,
		apperrors.ErrUserAlreadyExists,
		apperrors.ErrTooManyAttempts,
		apperrors.ErrTokenGeneration,
	} {
		if errors.Is(err, sentinel) {
			return protocol.FailResponse(sentinel.Error())
		}
	}
	d.log.Error("command failed", "error", err)
	return protocol.FailResponse(apperrors.ErrStorage.Error())
}

func (d *Dispatcher) handleLogin(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.LoginPayload)

	user, token, err := d.authService.Login(payload.Username, payload.Password, payload.Username)
	if err != nil {
		return d.fail(err)
	}

	sess.Bind(user)
	d.presence.WentOnline(user.ID)

	return protocol.OkResponse("Login successful", loginData{User: user.Sanitized(), Token: token})
}

func (d *Dispatcher) handleRegister(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.RegisterPayload)

	user, token, err := d.authService.Register(*payload)
	if err != nil {
		return d.fail(err)
	}

	sess.Bind(user)
	d.presence.WentOnline(user.ID)

	return protocol.OkResponse("Registration successful", loginData{User: user.Sanitized(), Token: token})
}

func (d *Dispatcher) handleResumeSession(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.ResumeSessionPayload)

	user, err := d.authService.Resume(payload.Token)
	if err != nil {
		return d.fail(err)
	}

	sess.Bind(user)
	d.presence.WentOnline(user.ID)

	return protocol.OkResponse("Session resumed", loginData{User: user.Sanitized()})
}

// handleLogout acknowledges; the session closes the connection after the
// reply and teardown handles presence and the registry.
func (d *Dispatcher) handleLogout(_ context.Context, _ contract.Session, _ protocol.Command) protocol.Response {
	return protocol.OkResponse("Logout successful", nil)
}

type loginData struct {
	User  any   `json:"user"`
	Token Token `json:"token,omitempty"`
}
