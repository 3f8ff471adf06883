package core

// Client is one live transport session as seen by the hub. A client belongs
// to at most one channel at a time; joining another replaces the membership.
type Client struct {
	// ID is an opaque connection handle, unique per transport session.
	ID string
	// UserID is the authenticated participant behind this connection.
	// The hub rejects events that claim a different identity.
	UserID string

	Commands chan *Command
	Events   chan *Event

	// channel is the currently joined channel id, empty when unjoined.
	// Owned exclusively by the hub goroutine.
	channel string

	// done is closed by the hub on unregister so the command pump for
	// this connection terminates.
	done chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id, userID string) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		done:     make(chan struct{}),
	}
}
