package http

import (
	"encoding/json"
	"time"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/core"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:        core.CommandJoinChannel,
			UserID:      join.UserID,
			OtherUserID: join.OtherUserID,
		}, nil, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Message: core.ChatMessage{
				// CreatedAt is stamped by the relay, not the client.
				From: msg.From,
				To:   msg.To,
				Text: msg.Text,
			},
		}, nil, nil
	case proto.InboundTypeTyping:
		var typing proto.TypingData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:   core.CommandSendTyping,
			Typing: core.TypingSignal{From: typing.From, To: typing.To},
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_event", Msg: "unknown event type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventReceiveMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeReceiveMessage,
			Data: proto.ReceiveMessageData{
				From:      event.Message.From,
				To:        event.Message.To,
				Text:      event.Message.Text,
				CreatedAt: event.Message.CreatedAt.Format(time.RFC3339),
			},
		}
	case core.EventTyping:
		return proto.Outbound{
			Type: proto.OutboundTypeTyping,
			Data: proto.TypingData{
				From: event.Typing.From,
				To:   event.Typing.To,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}
