package core

import "time"

// ChatMessage is the transient domain model for a chat message. It is
// constructed on receipt, fanned out to channel members, and discarded;
// no database row ever represents it.
type ChatMessage struct {
	From      string
	To        string
	Text      string
	CreatedAt time.Time
}

// TypingSignal tells channel members that a participant is typing.
// Fire-and-forget, no payload beyond identity.
type TypingSignal struct {
	From string
	To   string
}
