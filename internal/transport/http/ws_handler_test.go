package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/core"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/proto"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store"
)

// wsEnvelope mirrors proto.Outbound with the payload left raw so tests can
// decode it per event type.
type wsEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func (e *testEnv) wsURL(token string) string {
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return url
}

func (e *testEnv) dialWS(t *testing.T, ctx context.Context, token string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, e.wsURL(token), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

func sendWS(t *testing.T, ctx context.Context, conn *websocket.Conn, eventType string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s data: %v", eventType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: eventType, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", eventType, err)
	}
}

func readWS(t *testing.T, ctx context.Context, conn *websocket.Conn) wsEnvelope {
	t.Helper()

	readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var envelope wsEnvelope
	if err := wsjson.Read(readCtx, conn, &envelope); err != nil {
		t.Fatalf("read ws event: %v", err)
	}
	return envelope
}

func (e *testEnv) waitForChannelMembers(t *testing.T, channel string, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(e.hub.MembersOf(channel)) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("channel %s never reached %d members", channel, want)
}

func wsUserID(u *store.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func TestWSRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, env.wsURL(""), nil)
	if err == nil {
		t.Fatal("expected dial to fail without token")
	}
	if resp == nil || resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func TestWSMessageRelay(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, alice := env.register(t, "Alice", "alice@example.com")
	bobToken, bob := env.register(t, "Bob", "bob@example.com")
	aliceID, bobID := wsUserID(alice), wsUserID(bob)

	channel, err := core.DeriveChannel(aliceID, bobID)
	if err != nil {
		t.Fatalf("derive channel: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	aliceConn := env.dialWS(t, ctx, aliceToken)
	bobConn := env.dialWS(t, ctx, bobToken)

	sendWS(t, ctx, aliceConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{UserID: aliceID, OtherUserID: bobID})
	sendWS(t, ctx, bobConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{UserID: bobID, OtherUserID: aliceID})
	env.waitForChannelMembers(t, channel, 2)

	sendWS(t, ctx, aliceConn, proto.InboundTypeSendMessage, proto.SendMessageData{
		From: aliceID,
		To:   bobID,
		Text: "hola, ¿sigue disponible?",
	})

	for name, conn := range map[string]*websocket.Conn{"alice": aliceConn, "bob": bobConn} {
		envelope := readWS(t, ctx, conn)
		if envelope.Type != proto.OutboundTypeReceiveMessage {
			t.Fatalf("%s: expected receive_message, got %q (err=%+v)", name, envelope.Type, envelope.Error)
		}
		var msg proto.ReceiveMessageData
		if err := json.Unmarshal(envelope.Data, &msg); err != nil {
			t.Fatalf("%s: decode message: %v", name, err)
		}
		if msg.From != aliceID || msg.To != bobID || msg.Text != "hola, ¿sigue disponible?" {
			t.Fatalf("%s: unexpected message %+v", name, msg)
		}
		if _, err := time.Parse(time.RFC3339, msg.CreatedAt); err != nil {
			t.Fatalf("%s: created_at not RFC3339: %v", name, err)
		}
	}
}

func TestWSTypingRelay(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, alice := env.register(t, "Alice", "alice@example.com")
	bobToken, bob := env.register(t, "Bob", "bob@example.com")
	aliceID, bobID := wsUserID(alice), wsUserID(bob)

	channel, err := core.DeriveChannel(aliceID, bobID)
	if err != nil {
		t.Fatalf("derive channel: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	aliceConn := env.dialWS(t, ctx, aliceToken)
	bobConn := env.dialWS(t, ctx, bobToken)

	sendWS(t, ctx, aliceConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{UserID: aliceID, OtherUserID: bobID})
	sendWS(t, ctx, bobConn, proto.InboundTypeJoinRoom, proto.JoinRoomData{UserID: bobID, OtherUserID: aliceID})
	env.waitForChannelMembers(t, channel, 2)

	sendWS(t, ctx, aliceConn, proto.InboundTypeTyping, proto.TypingData{From: aliceID, To: bobID})

	envelope := readWS(t, ctx, bobConn)
	if envelope.Type != proto.OutboundTypeTyping {
		t.Fatalf("expected typing, got %q", envelope.Type)
	}
	var typing proto.TypingData
	if err := json.Unmarshal(envelope.Data, &typing); err != nil {
		t.Fatalf("decode typing: %v", err)
	}
	if typing.From != aliceID || typing.To != bobID {
		t.Fatalf("unexpected typing signal %+v", typing)
	}
}

func TestWSProtocolErrors(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, alice := env.register(t, "Alice", "alice@example.com")
	_, bob := env.register(t, "Bob", "bob@example.com")
	aliceID, bobID := wsUserID(alice), wsUserID(bob)

	channel, err := core.DeriveChannel(aliceID, bobID)
	if err != nil {
		t.Fatalf("derive channel: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := env.dialWS(t, ctx, aliceToken)

	sendWS(t, ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{UserID: aliceID, OtherUserID: bobID})
	env.waitForChannelMembers(t, channel, 1)

	// Whitespace-only text is refused.
	sendWS(t, ctx, conn, proto.InboundTypeSendMessage, proto.SendMessageData{From: aliceID, To: bobID, Text: "   "})
	envelope := readWS(t, ctx, conn)
	if envelope.Type != proto.OutboundTypeError || envelope.Error == nil || envelope.Error.Code != "empty_message" {
		t.Fatalf("expected empty_message error, got %+v", envelope)
	}

	// The connection is bound to the token's identity.
	sendWS(t, ctx, conn, proto.InboundTypeSendMessage, proto.SendMessageData{From: bobID, To: aliceID, Text: "spoofed"})
	envelope = readWS(t, ctx, conn)
	if envelope.Type != proto.OutboundTypeError || envelope.Error == nil || envelope.Error.Code != "invalid_participant" {
		t.Fatalf("expected invalid_participant error, got %+v", envelope)
	}

	// Unknown event types are answered without dropping the connection.
	sendWS(t, ctx, conn, "dance", struct{}{})
	envelope = readWS(t, ctx, conn)
	if envelope.Type != proto.OutboundTypeError || envelope.Error == nil || envelope.Error.Code != "invalid_event" {
		t.Fatalf("expected invalid_event error, got %+v", envelope)
	}
}
