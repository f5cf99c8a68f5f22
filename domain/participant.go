package domain

import "time"

type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleCreator    Role = "creator"
	RoleSubscriber Role = "subscriber"
)

// ChatParticipant links a user to a chat. UnreadCount is never negative:
// it is incremented by exactly one per message delivered while the user
// is offline and reset to zero when the user's own message becomes the
// most recent one in the chat.
type ChatParticipant struct {
	ChatID            ChatID     `json:"chatId"`
	UserID            UserID     `json:"userId"`
	Role              Role       `json:"role"`
	JoinedAt          time.Time  `json:"joinedAt"`
	UnreadCount       int        `json:"unreadCount"`
	LastReadMessageID *MessageID `json:"lastReadMessageId,omitempty"`
}

func ValidRole(r Role) bool {
	switch r {
	case RoleMember, RoleAdmin, RoleCreator, RoleSubscriber:
		return true
	}
	return false
}
