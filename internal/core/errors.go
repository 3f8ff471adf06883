package core

import "errors"

// Error codes surfaced to clients inside error events.
const (
	ErrCodeInvalidParticipant = "invalid_participant"
	ErrCodeEmptyMessage       = "empty_message"
	ErrCodeBadRequest         = "bad_request"
)

var (
	// ErrInvalidParticipant is returned when a participant id is missing or blank.
	ErrInvalidParticipant = errors.New("invalid participant")
	// ErrEmptyMessage is returned when chat text trims to nothing.
	ErrEmptyMessage = errors.New("empty message")
)

// CoreError wraps a code and human-readable message for delivery to the
// connection that caused it. It never propagates to other members.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
