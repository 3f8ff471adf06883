package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinChannel subscribes the connection to the pair channel,
	// replacing any previous membership.
	CommandJoinChannel CommandKind = iota
	// CommandSendMessage relays a chat message to channel members.
	CommandSendMessage
	// CommandSendTyping relays a typing signal to channel members.
	CommandSendTyping
)

// Command represents an action requested by a client connection.
type Command struct {
	Kind CommandKind

	// UserID and OtherUserID carry the pair for CommandJoinChannel.
	UserID      string
	OtherUserID string

	Message ChatMessage
	Typing  TypingSignal
}
