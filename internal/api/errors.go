package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheus3301/pairchat/internal/auth"
	"github.com/matheus3301/pairchat/internal/conversation"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	"github.com/matheus3301/pairchat/internal/store"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

var errNotParticipant = errors.New("caller is not a participant of the conversation")

type mapping struct {
	target error
	code   codes.Code
	reason string
}

var mappings = []mapping{
	{conversation.ErrLogNotFound, codes.NotFound, pairchatv1.ReasonLogNotFound},
	{conversation.ErrInvalidMessage, codes.InvalidArgument, pairchatv1.ReasonInvalidMessage},
	{conversation.ErrPermissionDenied, codes.PermissionDenied, pairchatv1.ReasonPermissionDenied},
	{conversation.ErrUploadFailed, codes.Unavailable, pairchatv1.ReasonUploadFailed},
	{errNotParticipant, codes.PermissionDenied, pairchatv1.ReasonNotParticipant},
	{store.ErrProfileNotFound, codes.NotFound, pairchatv1.ReasonProfileNotFound},
	{auth.ErrInvalidCredentials, codes.Unauthenticated, pairchatv1.ReasonInvalidCredentials},
	{auth.ErrEmailTaken, codes.AlreadyExists, pairchatv1.ReasonEmailTaken},
}

// toStatus converts a domain error into a gRPC status error. Unknown errors
// are logged and reported as Internal without their text.
func toStatus(logger *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := grpcstatus.FromError(err); ok {
		return err
	}

	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		return withInfo(codes.InvalidArgument, verr.Message, pairchatv1.ReasonValidation,
			map[string]string{pairchatv1.MetadataField: verr.Field})
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return withInfo(m.code, err.Error(), m.reason, nil)
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		return grpcstatus.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return grpcstatus.Error(codes.DeadlineExceeded, err.Error())
	}

	logger.Error("request failed", zap.String("op", op), zap.Error(err))
	return grpcstatus.Errorf(codes.Internal, "%s failed", op)
}

func withInfo(code codes.Code, msg, reason string, metadata map[string]string) error {
	st := grpcstatus.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   pairchatv1.ErrorDomain,
		Metadata: metadata,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// caller returns the authenticated participant of ctx.
func caller(ctx context.Context) (string, error) {
	id, ok := auth.ParticipantFrom(ctx)
	if !ok {
		return "", grpcstatus.Error(codes.Unauthenticated, "no authenticated participant")
	}
	return id, nil
}

// member returns the caller after checking they are a party of id.
func member(ctx context.Context, id string) (string, conversation.ID, error) {
	self, err := caller(ctx)
	if err != nil {
		return "", "", err
	}
	conv := conversation.ID(id)
	if _, ok := conv.Peer(self); !ok {
		return "", "", fmt.Errorf("%w: %q", errNotParticipant, id)
	}
	return self, conv, nil
}
