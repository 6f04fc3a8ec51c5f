package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matheus3301/pairchat/internal/auth"
	"github.com/matheus3301/pairchat/internal/conversation"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

var (
	// ErrNotParticipant is returned for conversations the caller is not part of.
	ErrNotParticipant = errors.New("caller is not a participant of the conversation")
	// ErrProfileNotFound is returned for unknown participant ids.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrUnauthenticated is returned when the daemon rejects the token.
	ErrUnauthenticated = errors.New("not authenticated, log in again")
	// ErrUnavailable is returned when the daemon cannot be reached.
	ErrUnavailable = errors.New("daemon unavailable")
)

var sentinels = map[string]error{
	pairchatv1.ReasonLogNotFound:        conversation.ErrLogNotFound,
	pairchatv1.ReasonInvalidMessage:     conversation.ErrInvalidMessage,
	pairchatv1.ReasonPermissionDenied:   conversation.ErrPermissionDenied,
	pairchatv1.ReasonUploadFailed:       conversation.ErrUploadFailed,
	pairchatv1.ReasonNotParticipant:     ErrNotParticipant,
	pairchatv1.ReasonProfileNotFound:    ErrProfileNotFound,
	pairchatv1.ReasonInvalidCredentials: auth.ErrInvalidCredentials,
	pairchatv1.ReasonEmailTaken:         auth.ErrEmailTaken,
}

// FromStatus maps a gRPC error back to the domain error it was built from,
// so callers can keep using errors.Is and errors.As.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := grpcstatus.FromError(err)
	if !ok {
		return err
	}

	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.Domain != pairchatv1.ErrorDomain {
			continue
		}
		if info.Reason == pairchatv1.ReasonValidation {
			return &auth.ValidationError{Field: info.Metadata[pairchatv1.MetadataField], Message: st.Message()}
		}
		if target, ok := sentinels[info.Reason]; ok {
			msg := st.Message()
			if msg == target.Error() {
				return target
			}
			return fmt.Errorf("%w: %s", target, strings.TrimPrefix(msg, target.Error()+": "))
		}
	}

	switch st.Code() {
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthenticated, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	}
	return err
}
