package protocol

import "chat-core/domain"

// One payload shape per kind. Required-field validation happens in the
// codec with validator tags; anything beyond shape (existence, ownership,
// roles) is a business rule checked by the handlers.

type LoginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterPayload struct {
	Username    string `json:"username" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
}

type ResumeSessionPayload struct {
	Token string `json:"token" validate:"required"`
}

type GetUserProfilePayload struct {
	// All optional: an empty payload means "my own profile".
	UserID   domain.UserID `json:"userId,omitempty"`
	Username string        `json:"username,omitempty"`
}

type UpdateUserProfilePayload struct {
	UserID            domain.UserID `json:"userId" validate:"required"`
	FirstName         *string       `json:"firstName,omitempty"`
	LastName          *string       `json:"lastName,omitempty"`
	Bio               *string       `json:"bio,omitempty"`
	ProfilePictureURL *string       `json:"profilePictureUrl,omitempty"`
}

type DeleteUserPayload struct {
	UserID domain.UserID `json:"userId" validate:"required"`
}

type CreateChatPayload struct {
	Name string          `json:"name" validate:"required"`
	Type domain.ChatType `json:"type,omitempty"`
}

type ChatRefPayload struct {
	ChatID domain.ChatID `json:"chatId" validate:"required"`
}

type UpdateChatPayload struct {
	ChatID domain.ChatID    `json:"chatId" validate:"required"`
	Name   *string          `json:"name,omitempty"`
	Type   *domain.ChatType `json:"type,omitempty"`
}

type SendMessagePayload struct {
	ChatID            domain.ChatID      `json:"chatId" validate:"required"`
	Content           string             `json:"content" validate:"required"`
	Type              domain.MessageType `json:"type,omitempty"`
	MediaID           *domain.MediaID    `json:"mediaId,omitempty"`
	RepliedToID       *domain.MessageID  `json:"repliedToId,omitempty"`
	ForwardedFromUser *domain.UserID     `json:"forwardedFromUser,omitempty"`
	ForwardedFromChat *domain.ChatID     `json:"forwardedFromChat,omitempty"`
}

type GetChatMessagesPayload struct {
	ChatID domain.ChatID `json:"chatId" validate:"required"`
	Limit  int           `json:"limit,omitempty"`
	Offset int           `json:"offset,omitempty"`
}

type UpdateMessagePayload struct {
	MessageID domain.MessageID `json:"messageId" validate:"required"`
	Content   string           `json:"content" validate:"required"`
}

type MessageRefPayload struct {
	MessageID domain.MessageID `json:"messageId" validate:"required"`
}

type MarkReadPayload struct {
	ChatID    domain.ChatID    `json:"chatId" validate:"required"`
	MessageID domain.MessageID `json:"messageId" validate:"required"`
}

type SearchMessagesPayload struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit,omitempty"`
}

type AddParticipantPayload struct {
	ChatID domain.ChatID `json:"chatId" validate:"required"`
	UserID domain.UserID `json:"userId" validate:"required"`
	Role   domain.Role   `json:"role,omitempty"`
}

type UpdateParticipantPayload struct {
	ChatID domain.ChatID `json:"chatId" validate:"required"`
	UserID domain.UserID `json:"userId" validate:"required"`
	Role   domain.Role   `json:"role" validate:"required"`
}

type RemoveParticipantPayload struct {
	ChatID domain.ChatID `json:"chatId" validate:"required"`
	UserID domain.UserID `json:"userId" validate:"required"`
}

type ContactPayload struct {
	ContactUserID domain.UserID `json:"contactUserId" validate:"required"`
}

type BlockPayload struct {
	TargetUserID domain.UserID `json:"targetUserId" validate:"required"`
}

type NotificationRefPayload struct {
	NotificationID domain.NotificationID `json:"notificationId" validate:"required"`
}

// UploadMediaPayload carries the attachment bytes inline; JSON encodes
// Content as base64 and the frame size cap bounds the upload size.
type UploadMediaPayload struct {
	FileName string `json:"fileName" validate:"required"`
	Content  []byte `json:"content" validate:"required"`
}

type MediaRefPayload struct {
	MediaID domain.MediaID `json:"mediaId" validate:"required"`
}

type CallAction string

const (
	CallRing   CallAction = "RING"
	CallAccept CallAction = "ACCEPT"
	CallReject CallAction = "REJECT"
	CallEnd    CallAction = "END"
)

type CallActionPayload struct {
	CalleeID domain.UserID `json:"calleeId" validate:"required"`
	Action   CallAction    `json:"action" validate:"required,oneof=RING ACCEPT REJECT END"`
}

// payloadPrototypes maps each kind to a factory for its payload shape.
// Kinds absent from the map carry no payload.
var payloadPrototypes = map[Kind]func() any{
	KindLogin:             func() any { return &LoginPayload{} },
	KindRegister:          func() any { return &RegisterPayload{} },
	KindResumeSession:     func() any { return &ResumeSessionPayload{} },
	KindGetUserProfile:    func() any { return &GetUserProfilePayload{} },
	KindUpdateUserProfile: func() any { return &UpdateUserProfilePayload{} },
	KindDeleteUser:        func() any { return &DeleteUserPayload{} },
	KindCreateChat:        func() any { return &CreateChatPayload{} },
	KindGetChatDetails:    func() any { return &ChatRefPayload{} },
	KindUpdateChat:        func() any { return &UpdateChatPayload{} },
	KindDeleteChat:        func() any { return &ChatRefPayload{} },
	KindSendMessage:       func() any { return &SendMessagePayload{} },
	KindGetChatMessages:   func() any { return &GetChatMessagesPayload{} },
	KindUpdateMessage:     func() any { return &UpdateMessagePayload{} },
	KindDeleteMessage:     func() any { return &MessageRefPayload{} },
	KindMarkRead:          func() any { return &MarkReadPayload{} },
	KindSearchMessages:    func() any { return &SearchMessagesPayload{} },
	KindAddParticipant:    func() any { return &AddParticipantPayload{} },
	KindGetParticipants:   func() any { return &ChatRefPayload{} },
	KindUpdateParticipant: func() any { return &UpdateParticipantPayload{} },
	KindRemoveParticipant: func() any { return &RemoveParticipantPayload{} },
	KindAddContact:        func() any { return &ContactPayload{} },
	KindRemoveContact:     func() any { return &ContactPayload{} },
	KindBlockUser:         func() any { return &BlockPayload{} },
	KindUnblockUser:       func() any { return &BlockPayload{} },
	KindUploadMedia:       func() any { return &UploadMediaPayload{} },
	KindGetMedia:          func() any { return &MediaRefPayload{} },
	KindMarkNotification:  func() any { return &NotificationRefPayload{} },
	KindDeleteNotif:       func() any { return &NotificationRefPayload{} },
	KindCallAction:        func() any { return &CallActionPayload{} },
}

// noPayloadKinds closes the kind universe for decode-time validation.
var noPayloadKinds = map[Kind]struct{}{
	KindLogout:           {},
	KindGetAllUsers:      {},
	KindGetUserChats:     {},
	KindGetContacts:      {},
	KindGetNotifications: {},
}
