//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mocks
package contract

import "chat-core/domain"

// Storage is the persistence collaborator consumed by the messaging
// core. Implementations must be safe for concurrent use; every method
// may fail with a storage error, which handlers convert into a
// non-success response.
type Storage interface {
	UserStore
	ChatStore
	MessageStore
	ParticipantStore
	ContactStore
	NotificationStore
	MediaStore
}

type UserStore interface {
	CreateUser(user domain.User) (domain.User, error)
	GetUserByID(id domain.UserID) (domain.User, error)
	GetUserByUsername(username string) (domain.User, error)
	GetUserByPhone(phone string) (domain.User, error)
	UpdateUser(user domain.User) error
	DeleteUser(id domain.UserID) error
	ListUsers() ([]domain.User, error)
	SetUserOnline(id domain.UserID, online bool) error
}

type ChatStore interface {
	CreateChat(chat domain.Chat) (domain.Chat, error)
	GetChat(id domain.ChatID) (domain.Chat, error)
	UpdateChat(chat domain.Chat) error
	DeleteChat(id domain.ChatID) error
	ListChatsForUser(userID domain.UserID) ([]domain.Chat, error)
}

type MessageStore interface {
	CreateMessage(msg domain.Message) (domain.Message, error)
	GetMessage(id domain.MessageID) (domain.Message, error)
	UpdateMessage(msg domain.Message) error
	SoftDeleteMessage(id domain.MessageID) error
	ListMessages(chatID domain.ChatID, limit, offset int) ([]domain.Message, error)
	SearchMessages(userID domain.UserID, query string, limit int) ([]domain.Message, error)
}

type ParticipantStore interface {
	AddParticipant(p domain.ChatParticipant) error
	GetParticipant(chatID domain.ChatID, userID domain.UserID) (domain.ChatParticipant, error)
	ListParticipants(chatID domain.ChatID) ([]domain.ChatParticipant, error)
	UpdateParticipantRole(chatID domain.ChatID, userID domain.UserID, role domain.Role) error
	RemoveParticipant(chatID domain.ChatID, userID domain.UserID) error
	IsParticipant(chatID domain.ChatID, userID domain.UserID) (bool, error)
	IncrementUnread(chatID domain.ChatID, userID domain.UserID) error
	ResetUnread(chatID domain.ChatID, userID domain.UserID, lastRead domain.MessageID) error
}

type ContactStore interface {
	AddContact(ownerID, contactUserID domain.UserID) error
	ListContacts(ownerID domain.UserID) ([]domain.Contact, error)
	RemoveContact(ownerID, contactUserID domain.UserID) error
	HasContact(ownerID, contactUserID domain.UserID) (bool, error)
	BlockUser(blockerID, blockedID domain.UserID) error
	UnblockUser(blockerID, blockedID domain.UserID) error
	IsBlocked(blockerID, blockedID domain.UserID) (bool, error)
}

type NotificationStore interface {
	CreateNotification(n domain.Notification) (domain.Notification, error)
	GetNotification(id domain.NotificationID) (domain.Notification, error)
	ListNotifications(recipientID domain.UserID) ([]domain.Notification, error)
	MarkNotificationRead(id domain.NotificationID) error
	DeleteNotification(id domain.NotificationID) error
}

type MediaStore interface {
	CreateMedia(m domain.Media, content []byte) (domain.Media, error)
	GetMedia(id domain.MediaID) (domain.Media, error)
	GetMediaContent(id domain.MediaID) ([]byte, error)
}
