package api

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/matheus3301/pairchat/internal/bus"
	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/presence"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	"github.com/matheus3301/pairchat/internal/store"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// DirectoryService implements the DirectoryService gRPC service.
type DirectoryService struct {
	pairchatv1.UnimplementedDirectoryServiceServer

	db       *store.DB
	presence presence.Store
	tracker  *presence.Tracker
	bus      *bus.Bus
	logger   *zap.Logger
}

// NewDirectoryService creates a directory service.
func NewDirectoryService(db *store.DB, ps presence.Store, tracker *presence.Tracker, b *bus.Bus, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{db: db, presence: ps, tracker: tracker, bus: b, logger: logger}
}

// ListContacts returns every participant except the caller, filtered by a
// case-insensitive name query.
func (s *DirectoryService) ListContacts(ctx context.Context, req *pairchatv1.ListContactsRequest) (*pairchatv1.ListContactsResponse, error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.db.ListProfiles(ctx, self, strings.TrimSpace(req.Query))
	if err != nil {
		return nil, toStatus(s.logger, "list contacts", err)
	}
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	statuses, err := s.presence.GetMany(ctx, ids)
	if err != nil {
		// Contacts stay usable without presence.
		s.logger.Warn("presence lookup failed", zap.Error(err))
		statuses = map[string]presence.Status{}
	}

	contacts := make([]pairchatv1.Contact, len(profiles))
	for i, p := range profiles {
		st, ok := statuses[p.ID]
		if !ok {
			st = presence.Status{ParticipantID: p.ID, State: presence.StateDisconnected}
		}
		contacts[i] = pairchatv1.Contact{Profile: public(p), Presence: st}
	}
	return &pairchatv1.ListContactsResponse{Contacts: contacts}, nil
}

// GetProfile reads one participant; an empty id reads the caller, who alone
// sees their email.
func (s *DirectoryService) GetProfile(ctx context.Context, req *pairchatv1.GetProfileRequest) (*pairchatv1.GetProfileResponse, error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	id := req.ParticipantID
	if id == "" {
		id = self
	}
	p, err := s.db.GetProfile(ctx, id)
	if err != nil {
		return nil, toStatus(s.logger, "get profile", err)
	}
	st, err := s.presence.Get(ctx, id)
	if err != nil {
		s.logger.Warn("presence lookup failed", zap.String("participant", id), zap.Error(err))
		st = presence.Status{ParticipantID: id, State: presence.StateDisconnected}
	}
	profile := *p
	if id != self {
		profile = public(profile)
	}
	return &pairchatv1.GetProfileResponse{Contact: pairchatv1.Contact{Profile: profile, Presence: st}}, nil
}

func (s *DirectoryService) SetProfileImage(ctx context.Context, req *pairchatv1.SetProfileImageRequest) (*pairchatv1.SetProfileImageResponse, error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.db.SetProfileImage(ctx, self, strings.TrimSpace(req.URL)); err != nil {
		return nil, toStatus(s.logger, "set profile image", err)
	}
	p, err := s.db.GetProfile(ctx, self)
	if err != nil {
		return nil, toStatus(s.logger, "set profile image", err)
	}
	return &pairchatv1.SetProfileImageResponse{Profile: *p}, nil
}

// Attach marks the caller connected for as long as the stream is open and
// relays every presence change to it.
func (s *DirectoryService) Attach(_ *pairchatv1.AttachRequest, stream grpc.ServerStreamingServer[pairchatv1.PresenceEvent]) error {
	ctx := stream.Context()
	self, err := caller(ctx)
	if err != nil {
		return err
	}

	ch, unsub := s.bus.Subscribe(bus.KindPresenceChanged, 256)
	defer unsub()

	detach, err := s.tracker.Attach(ctx, self)
	if err != nil {
		return toStatus(s.logger, "attach", err)
	}
	defer detach()
	s.logger.Debug("participant attached", zap.String("participant", self))

	return s.relay(ctx, stream, ch, nil)
}

// WatchPresence sends the current status of the requested participants, then
// every change among them. No ids means everyone and no initial statuses.
func (s *DirectoryService) WatchPresence(req *pairchatv1.WatchPresenceRequest, stream grpc.ServerStreamingServer[pairchatv1.PresenceEvent]) error {
	ctx := stream.Context()
	if _, err := caller(ctx); err != nil {
		return err
	}

	ch, unsub := s.bus.Subscribe(bus.KindPresenceChanged, 256)
	defer unsub()

	if len(req.ParticipantIDs) > 0 {
		current, err := s.presence.GetMany(ctx, req.ParticipantIDs)
		if err != nil {
			return toStatus(s.logger, "watch presence", err)
		}
		for _, id := range req.ParticipantIDs {
			st, ok := current[id]
			if !ok {
				st = presence.Status{ParticipantID: id, State: presence.StateDisconnected}
			}
			if err := send(stream, st); err != nil {
				return err
			}
		}
	}
	return s.relay(ctx, stream, ch, req.ParticipantIDs)
}

func (s *DirectoryService) relay(ctx context.Context, stream grpc.ServerStreamingServer[pairchatv1.PresenceEvent], ch <-chan bus.Event, only []string) error {
	for {
		select {
		case evt := <-ch:
			st, ok := evt.Payload.(presence.Status)
			if !ok {
				continue
			}
			if len(only) > 0 && !slices.Contains(only, st.ParticipantID) {
				continue
			}
			if err := send(stream, st); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func send(stream grpc.ServerStreamingServer[pairchatv1.PresenceEvent], st presence.Status) error {
	return stream.Send(&pairchatv1.PresenceEvent{
		EventID: uuid.New().String(),
		Status:  st,
	})
}

// public strips the fields only the owner sees.
func public(p conversation.Profile) conversation.Profile {
	p.Email = ""
	return p
}
