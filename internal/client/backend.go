package client

import (
	"context"
	"errors"
	"io"

	"github.com/matheus3301/pairchat/internal/conversation"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	"google.golang.org/grpc"
)

// EnsureLog creates the log of id on the daemon when absent.
func (c *Client) EnsureLog(ctx context.Context, id conversation.ID) error {
	_, err := c.Conversation.EnsureLog(ctx, &pairchatv1.EnsureLogRequest{ConversationID: id.String()})
	return FromStatus(err)
}

// Append sends m; the daemon returns it with its stored timestamp.
func (c *Client) Append(ctx context.Context, id conversation.ID, m conversation.Message) (conversation.Message, error) {
	resp, err := c.Conversation.Append(ctx, &pairchatv1.AppendRequest{ConversationID: id.String(), Message: m})
	if err != nil {
		return conversation.Message{}, FromStatus(err)
	}
	return resp.Message, nil
}

// ReadLog returns the current log of id.
func (c *Client) ReadLog(ctx context.Context, id conversation.ID) ([]conversation.Message, error) {
	resp, err := c.Conversation.GetLog(ctx, &pairchatv1.GetLogRequest{ConversationID: id.String()})
	if err != nil {
		return nil, FromStatus(err)
	}
	return resp.Messages, nil
}

// WatchLog streams log snapshots of id into fn until ctx ends, fn fails or
// the stream breaks.
func (c *Client) WatchLog(ctx context.Context, id conversation.ID, fn func([]conversation.Message) error) error {
	stream, err := c.Conversation.WatchLog(ctx, &pairchatv1.WatchLogRequest{ConversationID: id.String()})
	if err != nil {
		return FromStatus(err)
	}
	return drain(ctx, stream, func(s *pairchatv1.LogSnapshot) error {
		return fn(s.Messages)
	})
}

// SetTyping writes the caller's flag. The daemon derives the participant
// from the token, so participant only documents intent.
func (c *Client) SetTyping(ctx context.Context, id conversation.ID, _ string, typing bool) error {
	_, err := c.Conversation.SetTyping(ctx, &pairchatv1.SetTypingRequest{ConversationID: id.String(), Typing: typing})
	return FromStatus(err)
}

// WatchTyping streams typing documents of id into fn.
func (c *Client) WatchTyping(ctx context.Context, id conversation.ID, fn func(conversation.TypingState) error) error {
	stream, err := c.Conversation.WatchTyping(ctx, &pairchatv1.WatchTypingRequest{ConversationID: id.String()})
	if err != nil {
		return FromStatus(err)
	}
	return drain(ctx, stream, func(s *pairchatv1.TypingSnapshot) error {
		return fn(s.State)
	})
}

func drain[T any](ctx context.Context, stream grpc.ServerStreamingClient[T], fn func(*T) error) error {
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return FromStatus(err)
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}
