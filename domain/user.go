// Package domain contains the canonical entities of the chat system.
// Each concept is defined exactly once here; mapping to storage or wire
// shapes happens at those boundaries, never by redefining the entity.
package domain

import "time"

type UserID int64

// User is the account entity. PasswordHash never leaves the server:
// Sanitized must be called before a User is placed in a response payload.
type User struct {
	ID                UserID     `json:"id"`
	PhoneNumber       string     `json:"phoneNumber"`
	Username          string     `json:"username"`
	PasswordHash      string     `json:"-"`
	FirstName         string     `json:"firstName,omitempty"`
	LastName          string     `json:"lastName,omitempty"`
	Bio               string     `json:"bio,omitempty"`
	ProfilePictureURL string     `json:"profilePictureUrl,omitempty"`
	Online            bool       `json:"online"`
	LastSeenAt        *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Sanitized returns a copy safe to serialize toward clients.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
