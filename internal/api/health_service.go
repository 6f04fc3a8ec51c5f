package api

import (
	"context"
	"time"

	"github.com/matheus3301/pairchat/internal/presence"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	"github.com/matheus3301/pairchat/internal/status"
	intsync "github.com/matheus3301/pairchat/internal/sync"
	"go.uber.org/zap"
)

// HealthService implements the HealthService gRPC service.
type HealthService struct {
	pairchatv1.UnimplementedHealthServiceServer

	startedAt  time.Time
	machine    *status.Machine
	engine     *intsync.Engine
	tracker    *presence.Tracker
	storageURL string
	logger     *zap.Logger
}

// NewHealthService creates a new health service.
func NewHealthService(machine *status.Machine, engine *intsync.Engine, tracker *presence.Tracker, storageURL string, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{
		startedAt:  time.Now(),
		machine:    machine,
		engine:     engine,
		tracker:    tracker,
		storageURL: storageURL,
		logger:     logger,
	}
}

func (s *HealthService) GetStatus(ctx context.Context, _ *pairchatv1.GetStatusRequest) (*pairchatv1.GetStatusResponse, error) {
	resp := &pairchatv1.GetStatusResponse{
		State:         string(s.machine.Current()),
		StatusMessage: s.machine.Reason(),
		UptimeMs:      time.Since(s.startedAt).Milliseconds(),
		StorageURL:    s.storageURL,
	}
	if s.tracker != nil {
		resp.Connected = s.tracker.Connected()
	}

	// Counts are best effort.
	if s.engine != nil {
		stats, err := s.engine.Stats(ctx)
		if err != nil {
			s.logger.Warn("read stats", zap.Error(err))
		} else {
			resp.LogCount = stats.Logs
			resp.MessageCount = stats.Messages
			resp.ProfileCount = stats.Profiles
		}
	}
	return resp, nil
}
