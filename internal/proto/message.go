package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom    = "join_room"
	InboundTypeSendMessage = "send_message"
	InboundTypeTyping      = "typing"

	OutboundTypeReceiveMessage = "receive_message"
	OutboundTypeTyping         = "typing"
	OutboundTypeError          = "error"
)

// JoinRoomData announces which pair channel the client wants to enter.
type JoinRoomData struct {
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

// SendMessageData is a chat message submission.
type SendMessageData struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// TypingData is a typing signal, inbound and outbound alike.
type TypingData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// ReceiveMessageData is a relayed chat message. CreatedAt is stamped by the
// relay, RFC3339.
type ReceiveMessageData struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
