package core

// EventKind is a notification the relay emits to connections.
type EventKind int

const (
	// EventReceiveMessage delivers a chat message to channel members.
	EventReceiveMessage EventKind = iota
	// EventTyping delivers a typing signal to channel members.
	EventTyping
	// EventError reports a domain error to the connection that caused it.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Message ChatMessage
	Typing  TypingSignal
	Error   *CoreError
}
