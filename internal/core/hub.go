package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Hub owns channel membership and relays chat events between connections.
// All mutations and fan-outs run on the single Run goroutine, so joins and
// sends addressed to the same channel are serialized relative to each other.
// Nothing here touches durable storage: membership and in-flight messages
// die with the process.
type Hub struct {
	log *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	queries    chan membersQuery

	// members maps a channel id to the set of connections joined to it.
	// clients is the set of live registered connections; commands from a
	// connection outside it are stale and discarded. Both maps are owned
	// exclusively by the Run goroutine.
	members map[string]map[*Client]struct{}
	clients map[*Client]struct{}
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

type membersQuery struct {
	channel string
	reply   chan []string
}

// NewHub creates a hub with no members.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
		queries:    make(chan membersQuery),
	}
}

// RegisterClient announces a new connection to the hub. The connection starts
// with no channel membership.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes the connection from its channel, if any. Safe to
// call for a client that never joined. Idempotent.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes hub events until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.members = make(map[string]map[*Client]struct{})
	h.clients = make(map[*Client]struct{})

	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			go h.pump(ctx, c)
			h.log.Debug().Str("conn_id", c.ID).Str("user_id", c.UserID).Msg("client connected")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			h.removeFromChannel(c)
			close(c.done)
			h.log.Debug().Str("conn_id", c.ID).Msg("client disconnected")
		case cc := <-h.commands:
			h.handleCommand(cc.client, cc.cmd)
		case q := <-h.queries:
			ids := make([]string, 0, len(h.members[q.channel]))
			for client := range h.members[q.channel] {
				ids = append(ids, client.ID)
			}
			q.reply <- ids
		case <-ctx.Done():
			return
		}
	}
}

// MembersOf returns the connection ids currently joined to a channel.
// Read-only; the membership map itself never leaves the hub goroutine.
func (h *Hub) MembersOf(channel string) []string {
	q := membersQuery{channel: channel, reply: make(chan []string, 1)}
	h.queries <- q
	return <-q.reply
}

// pump forwards one client's commands into the hub loop, preserving the
// order the connection issued them. It exits when the connection is
// unregistered or the hub shuts down.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	// A command can still be in flight when its connection unregisters;
	// acting on it would resurrect a dead membership entry.
	if _, ok := h.clients[c]; !ok {
		return
	}

	switch cmd.Kind {
	case CommandJoinChannel:
		h.handleJoin(c, cmd.UserID, cmd.OtherUserID)
	case CommandSendMessage:
		h.handleMessage(c, cmd.Message)
	case CommandSendTyping:
		h.handleTyping(c, cmd.Typing)
	default:
		h.sendError(c, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) handleJoin(c *Client, userID, otherUserID string) {
	if userID != c.UserID {
		h.sendError(c, coreError(ErrCodeInvalidParticipant, "userId does not match authenticated user"))
		return
	}

	channel, err := DeriveChannel(userID, otherUserID)
	if err != nil {
		h.sendError(c, coreError(ErrCodeInvalidParticipant, "both participant ids are required"))
		return
	}

	if c.channel == channel {
		return
	}

	// Joining replaces the previous membership; a connection belongs to at
	// most one channel.
	h.removeFromChannel(c)

	set, ok := h.members[channel]
	if !ok {
		set = make(map[*Client]struct{})
		h.members[channel] = set
	}
	set[c] = struct{}{}
	c.channel = channel

	h.log.Debug().Str("user_id", userID).Str("channel", channel).Msg("joined channel")
}

func (h *Hub) handleMessage(c *Client, msg ChatMessage) {
	if msg.From != c.UserID {
		h.sendError(c, coreError(ErrCodeInvalidParticipant, "from does not match authenticated user"))
		return
	}

	channel, err := DeriveChannel(msg.From, msg.To)
	if err != nil {
		h.sendError(c, coreError(ErrCodeInvalidParticipant, "both participant ids are required"))
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		h.sendError(c, coreError(ErrCodeEmptyMessage, "message text is empty"))
		return
	}

	// Relay clock is the single authoritative ordering reference.
	msg.CreatedAt = time.Now()

	h.broadcast(channel, &Event{Kind: EventReceiveMessage, Message: msg})
}

func (h *Hub) handleTyping(c *Client, sig TypingSignal) {
	if sig.From != c.UserID {
		h.sendError(c, coreError(ErrCodeInvalidParticipant, "from does not match authenticated user"))
		return
	}

	channel, err := DeriveChannel(sig.From, sig.To)
	if err != nil {
		h.sendError(c, coreError(ErrCodeInvalidParticipant, "both participant ids are required"))
		return
	}

	h.broadcast(channel, &Event{Kind: EventTyping, Typing: sig})
}

// broadcast delivers an event to every current member of the channel,
// including the sender if joined. A channel with no members is not an
// error: delivery simply reaches nobody.
func (h *Hub) broadcast(channel string, event *Event) {
	for client := range h.members[channel] {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// removeFromChannel clears the client's membership and garbage-collects the
// channel entry once empty.
func (h *Hub) removeFromChannel(c *Client) {
	if c.channel == "" {
		return
	}
	if set, ok := h.members[c.channel]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.members, c.channel)
		}
	}
	c.channel = ""
}

// sendError reports a domain error to the offending connection only.
func (h *Hub) sendError(c *Client, cerr *CoreError) {
	select {
	case c.Events <- &Event{Kind: EventError, Error: cerr}:
	default:
	}
}
