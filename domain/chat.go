package domain

import "time"

type ChatID int64

type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
	ChatTypeChannel ChatType = "channel"
)

type Chat struct {
	ID        ChatID    `json:"id"`
	Name      string    `json:"name"`
	Type      ChatType  `json:"type"`
	CreatorID UserID    `json:"creatorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
