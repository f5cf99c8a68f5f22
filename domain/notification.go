package domain

import "time"

type NotificationID int64

type Notification struct {
	ID          NotificationID `json:"id"`
	RecipientID UserID         `json:"recipientId"`
	Text        string         `json:"text"`
	Read        bool           `json:"read"`
	CreatedAt   time.Time      `json:"createdAt"`
}
