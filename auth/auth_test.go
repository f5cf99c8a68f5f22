package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Wrong password must not match
	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"alice42", "+33612345678", "ComplexPass123!"}, false},
		{"Username too short", RegisterRequest{"al", "+33612345678", "ComplexPass123!"}, true},
		{"Username with spaces", RegisterRequest{"al ice", "+33612345678", "ComplexPass123!"}, true},
		{"Invalid phone number", RegisterRequest{"alice42", "0612345678", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"alice42", "+33612345678", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"alice42", "+33612345678", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"alice42", "+33612345678", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"alice42", "+33612345678", "nouppercase1234!"}, true},
		{"Password too long (edge case)", RegisterRequest{"alice42", "+33612345678", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Generate(42, "alice")
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := issuer.Validate(token)
	req.NoError(err)
	req.EqualValues(42, claims.UserID)
	req.Equal("alice", claims.Username)
}

func TestTokenIssuer_RejectsTampering(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Generate(42, "alice")
	req.NoError(err)

	// Wrong signing key
	_, err = other.Validate(token)
	req.Error(err)

	// Expired token
	expired := NewTokenIssuer("test-secret", -time.Minute)
	token, err = expired.Generate(42, "alice")
	req.NoError(err)
	_, err = expired.Validate(token)
	req.Error(err)
}

func TestLoginLimiter(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	limiter := NewLoginLimiter(0.001, 2, time.Minute)

	// Burst of two attempts per key, then blocked
	req.True(limiter.Allow("alice", now))
	req.True(limiter.Allow("alice", now))
	req.False(limiter.Allow("alice", now))

	// Keys are independent
	req.True(limiter.Allow("bob", now))

	// A nil limiter allows everything
	var disabled *LoginLimiter
	req.True(disabled.Allow("alice", now))
}

// BenchmarkHashPassword measures the CPU cost of one hash.
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
