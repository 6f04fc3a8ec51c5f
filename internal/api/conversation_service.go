package api

import (
	"context"
	"fmt"

	"github.com/matheus3301/pairchat/internal/conversation"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	intsync "github.com/matheus3301/pairchat/internal/sync"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// ConversationService implements the ConversationService gRPC service.
// Callers only reach conversations they are a party of.
type ConversationService struct {
	pairchatv1.UnimplementedConversationServiceServer

	engine *intsync.Engine
	logger *zap.Logger
}

// NewConversationService creates a conversation service backed by the engine.
func NewConversationService(engine *intsync.Engine, logger *zap.Logger) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{engine: engine, logger: logger}
}

func (s *ConversationService) EnsureLog(ctx context.Context, req *pairchatv1.EnsureLogRequest) (*pairchatv1.EnsureLogResponse, error) {
	_, id, err := member(ctx, req.ConversationID)
	if err != nil {
		return nil, toStatus(s.logger, "ensure log", err)
	}
	if err := s.engine.EnsureLog(ctx, id); err != nil {
		return nil, toStatus(s.logger, "ensure log", err)
	}
	return &pairchatv1.EnsureLogResponse{}, nil
}

// Append stores a message sent by the caller. An empty sender is filled in;
// any other sender is rejected.
func (s *ConversationService) Append(ctx context.Context, req *pairchatv1.AppendRequest) (*pairchatv1.AppendResponse, error) {
	self, id, err := member(ctx, req.ConversationID)
	if err != nil {
		return nil, toStatus(s.logger, "append", err)
	}
	m := req.Message
	if m.SenderID == "" {
		m.SenderID = self
	}
	if m.SenderID != self {
		err := fmt.Errorf("%w: sender %q is not the caller", conversation.ErrInvalidMessage, m.SenderID)
		return nil, toStatus(s.logger, "append", err)
	}
	stored, err := s.engine.Append(ctx, id, m)
	if err != nil {
		return nil, toStatus(s.logger, "append", err)
	}
	return &pairchatv1.AppendResponse{Message: stored}, nil
}

func (s *ConversationService) GetLog(ctx context.Context, req *pairchatv1.GetLogRequest) (*pairchatv1.GetLogResponse, error) {
	_, id, err := member(ctx, req.ConversationID)
	if err != nil {
		return nil, toStatus(s.logger, "get log", err)
	}
	msgs, err := s.engine.ReadLog(ctx, id)
	if err != nil {
		return nil, toStatus(s.logger, "get log", err)
	}
	return &pairchatv1.GetLogResponse{Messages: nonNil(msgs)}, nil
}

// WatchLog sends the whole log once and again after every change.
func (s *ConversationService) WatchLog(req *pairchatv1.WatchLogRequest, stream grpc.ServerStreamingServer[pairchatv1.LogSnapshot]) error {
	ctx := stream.Context()
	_, id, err := member(ctx, req.ConversationID)
	if err != nil {
		return toStatus(s.logger, "watch log", err)
	}
	err = s.engine.WatchLog(ctx, id, func(msgs []conversation.Message) error {
		return stream.Send(&pairchatv1.LogSnapshot{ConversationID: id.String(), Messages: nonNil(msgs)})
	})
	return endOfStream(ctx, s.logger, "watch log", err)
}

// SetTyping writes the caller's own flag.
func (s *ConversationService) SetTyping(ctx context.Context, req *pairchatv1.SetTypingRequest) (*pairchatv1.SetTypingResponse, error) {
	self, id, err := member(ctx, req.ConversationID)
	if err != nil {
		return nil, toStatus(s.logger, "set typing", err)
	}
	if err := s.engine.SetTyping(ctx, id, self, req.Typing); err != nil {
		return nil, toStatus(s.logger, "set typing", err)
	}
	return &pairchatv1.SetTypingResponse{}, nil
}

func (s *ConversationService) GetTyping(ctx context.Context, req *pairchatv1.GetTypingRequest) (*pairchatv1.GetTypingResponse, error) {
	_, id, err := member(ctx, req.ConversationID)
	if err != nil {
		return nil, toStatus(s.logger, "get typing", err)
	}
	state, err := s.engine.ReadTyping(ctx, id)
	if err != nil {
		return nil, toStatus(s.logger, "get typing", err)
	}
	return &pairchatv1.GetTypingResponse{State: nonNilState(state)}, nil
}

func (s *ConversationService) WatchTyping(req *pairchatv1.WatchTypingRequest, stream grpc.ServerStreamingServer[pairchatv1.TypingSnapshot]) error {
	ctx := stream.Context()
	_, id, err := member(ctx, req.ConversationID)
	if err != nil {
		return toStatus(s.logger, "watch typing", err)
	}
	err = s.engine.WatchTyping(ctx, id, func(state conversation.TypingState) error {
		return stream.Send(&pairchatv1.TypingSnapshot{ConversationID: id.String(), State: nonNilState(state)})
	})
	return endOfStream(ctx, s.logger, "watch typing", err)
}

// endOfStream treats the client going away as a normal end.
func endOfStream(ctx context.Context, logger *zap.Logger, op string, err error) error {
	if err == nil || ctx.Err() != nil {
		return nil
	}
	return toStatus(logger, op, err)
}

func nonNil(msgs []conversation.Message) []conversation.Message {
	if msgs == nil {
		return []conversation.Message{}
	}
	return msgs
}

func nonNilState(state conversation.TypingState) conversation.TypingState {
	if state == nil {
		return conversation.TypingState{}
	}
	return state
}
