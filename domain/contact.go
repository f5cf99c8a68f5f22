package domain

import "time"

type Contact struct {
	OwnerID       UserID    `json:"ownerId"`
	ContactUserID UserID    `json:"contactUserId"`
	AddedAt       time.Time `json:"addedAt"`
}

type BlockedUser struct {
	BlockerID UserID    `json:"blockerId"`
	BlockedID UserID    `json:"blockedId"`
	BlockedAt time.Time `json:"blockedAt"`
}
