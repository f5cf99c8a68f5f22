package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chat-core/domain"
)

// TokenIssuer signs and validates session resume tokens. A token lets a
// reconnecting client skip the password exchange; it never extends past
// its original expiry.
type TokenIssuer struct {
	key      []byte
	duration time.Duration
}

func NewTokenIssuer(secret string, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{key: []byte(secret), duration: duration}
}

// SessionClaims is the data carried inside the JWT.
type SessionClaims struct {
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
	jwt.RegisteredClaims
}

// Generate creates a signed token for a freshly authenticated user.
func (t *TokenIssuer) Generate(userID domain.UserID, username string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-core",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// Validate parses and checks the signature and expiry of a token string.
func (t *TokenIssuer) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
