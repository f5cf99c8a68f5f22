package services

import (
	"fmt"
	"log/slog"
	"time"

	"chat-core/auth"
	"chat-core/contract"
	"chat-core/domain"
	apperrors "chat-core/errors"
	"chat-core/protocol"
)

type IAuthService interface {
	Login(username, password, remoteKey string) (domain.User, Token, error)
	Register(payload protocol.RegisterPayload) (domain.User, Token, error)
	Resume(token string) (domain.User, error)
}

type Token string

// AuthService owns the credential exchange: password verification with
// Argon2id, registration validation and resume tokens for reconnects.
type AuthService struct {
	users   contract.UserStore
	issuer  *auth.TokenIssuer
	limiter *auth.LoginLimiter
	log     *slog.Logger
}

func NewAuthService(users contract.UserStore, issuer *auth.TokenIssuer, limiter *auth.LoginLimiter, log *slog.Logger) IAuthService {
	return &AuthService{users: users, issuer: issuer, limiter: limiter, log: log}
}

func (s *AuthService) Login(username, password, remoteKey string) (domain.User, Token, error) {
	if !s.limiter.Allow(remoteKey, time.Now()) {
		return domain.User{}, "", apperrors.ErrTooManyAttempts
	}

	// Generic error either way to prevent user enumeration.
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		return domain.User{}, "", apperrors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.User{}, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(user.ID, user.Username)
	if err != nil {
		return domain.User{}, "", apperrors.ErrTokenGeneration
	}
	return user, Token(token), nil
}

func (s *AuthService) Register(payload protocol.RegisterPayload) (domain.User, Token, error) {
	valReq := auth.RegisterRequest{
		Username:    payload.Username,
		PhoneNumber: payload.PhoneNumber,
		Password:    payload.Password,
	}

	// Business rules first, before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", apperrors.ErrInvalidPassword, err)
	}

	hashedPassword, err := auth.HashPassword(payload.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.CreateUser(domain.User{
		Username:     payload.Username,
		PhoneNumber:  payload.PhoneNumber,
		PasswordHash: hashedPassword,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
	})
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.issuer.Generate(user.ID, user.Username)
	if err != nil {
		return domain.User{}, "", apperrors.ErrTokenGeneration
	}
	return user, Token(token), nil
}

// Resume authenticates from a token issued by a previous login. The
// account may have been deleted since, so the lookup can still fail.
func (s *AuthService) Resume(token string) (domain.User, error) {
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return domain.User{}, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.GetUserByID(claims.UserID)
	if err != nil {
		return domain.User{}, apperrors.ErrInvalidCredentials
	}
	return user, nil
}
