package domain

import "time"

type MessageID int64

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeMedia MessageType = "media"
)

// Message is an immutable chat event once persisted; edits touch Content
// and EditedAt only, deletion is a soft flag so history stays addressable.
type Message struct {
	ID                MessageID   `json:"id"`
	ChatID            ChatID      `json:"chatId"`
	SenderID          UserID      `json:"senderId"`
	Type              MessageType `json:"type"`
	Content           string      `json:"content"`
	Language          string      `json:"language,omitempty"`
	MediaID           *MediaID    `json:"mediaId,omitempty"`
	RepliedToID       *MessageID  `json:"repliedToId,omitempty"`
	ForwardedFromUser *UserID     `json:"forwardedFromUser,omitempty"`
	ForwardedFromChat *ChatID     `json:"forwardedFromChat,omitempty"`
	SentAt            time.Time   `json:"sentAt"`
	EditedAt          *time.Time  `json:"editedAt,omitempty"`
	Deleted           bool        `json:"deleted"`
	ViewCount         int         `json:"viewCount"`
}

type MediaID int64

// Media describes an attachment referenced by a media message. The mime
// type is sniffed server-side, never trusted from the client.
type Media struct {
	ID         MediaID   `json:"id"`
	UploaderID UserID    `json:"uploaderId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}
