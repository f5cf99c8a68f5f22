package errors

import "fmt"

var (
	// Protocol failures. ErrDecode is connection-fatal once the session's
	// retry budget is spent: the stream position may be desynchronized.
	ErrDecode        = fmt.Errorf("malformed frame")
	ErrUnknownKind   = fmt.Errorf("unknown command kind")
	ErrFrameTooLarge = fmt.Errorf("frame exceeds maximum size")

	// Recoverable command failures, surfaced as non-success responses.
	ErrAuthenticationRequired = fmt.Errorf("authentication required")
	ErrAuthorizationDenied    = fmt.Errorf("authorization denied")
	ErrNotFound               = fmt.Errorf("not found")
	ErrStorage                = fmt.Errorf("storage failure")

	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrUserAlreadyExists  = fmt.Errorf("username or phone number already registered")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrTooManyAttempts    = fmt.Errorf("too many login attempts")

	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrChannelClosed = fmt.Errorf("outbound channel closed")
	ErrQueueFull     = fmt.Errorf("outbound queue full")
	ErrEmptyWords    = fmt.Errorf("no words have been found")
)
