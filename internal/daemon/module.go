package daemon

import (
	"context"
	"fmt"

	"github.com/matheus3301/pairchat/internal/api"
	"github.com/matheus3301/pairchat/internal/auth"
	"github.com/matheus3301/pairchat/internal/blob"
	"github.com/matheus3301/pairchat/internal/bus"
	"github.com/matheus3301/pairchat/internal/config"
	"github.com/matheus3301/pairchat/internal/httpapi"
	"github.com/matheus3301/pairchat/internal/lock"
	"github.com/matheus3301/pairchat/internal/logging"
	"github.com/matheus3301/pairchat/internal/presence"
	"github.com/matheus3301/pairchat/internal/session"
	"github.com/matheus3301/pairchat/internal/status"
	"github.com/matheus3301/pairchat/internal/store"
	intsync "github.com/matheus3301/pairchat/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved configuration passed to the fx module.
type Params struct {
	Config config.Daemon
	Logger *zap.Logger // optional override for testing; nil = log file + stderr
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			providePresence,
			provideTracker,
			provideSyncEngine,
			provideAuthenticator,
			provideAccounts,
			provideBlobs,
			api.NewConversationService,
			provideDirectoryService,
			api.NewAuthService,
			provideHealthService,
			httpapi.NewServer,
			NewServer,
			NewHTTPServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.Logger != nil {
		return p.Logger, nil
	}
	return logging.New(session.LogPath(p.Config.DataDir), "pairchatd", p.Config.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring data directory lock", zap.String("dir", p.Config.DataDir))
	l, err := lock.Acquire(p.Config.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("data directory lock acquired")
	return l, nil
}

// provideStore depends on the lock so no second daemon opens the database.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.DBPath(p.Config.DataDir)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

// Presence is the presence backend chosen at startup. When Redis is
// configured but unreachable the daemon falls back to memory and reports
// itself degraded.
type Presence struct {
	Store    presence.Store
	redis    *presence.RedisStore
	degraded string
}

func providePresence(p Params, b *bus.Bus, logger *zap.Logger) *Presence {
	if p.Config.RedisURL == "" {
		logger.Info("presence kept in memory")
		return &Presence{Store: presence.NewMemoryStore(b)}
	}
	rs, err := presence.ConnectRedis(context.Background(), p.Config.RedisURL, b, logger)
	if err != nil {
		logger.Warn("redis unavailable, presence kept in memory", zap.Error(err))
		return &Presence{
			Store:    presence.NewMemoryStore(b),
			degraded: fmt.Sprintf("presence in memory: %v", err),
		}
	}
	logger.Info("presence kept in redis")
	return &Presence{Store: rs, redis: rs}
}

func provideTracker(ps *Presence, logger *zap.Logger) *presence.Tracker {
	return presence.NewTracker(ps.Store, logger)
}

func provideSyncEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *intsync.Engine {
	return intsync.NewEngine(db, b, logger)
}

func provideAuthenticator(p Params) (*auth.Authenticator, error) {
	ttl, err := p.Config.TokenValidity()
	if err != nil {
		return nil, err
	}
	return auth.NewAuthenticator(p.Config.JWTSecret, p.Config.JWTIssuer, ttl), nil
}

func provideAccounts(db *store.DB, authn *auth.Authenticator, logger *zap.Logger) *auth.Service {
	return auth.NewService(db, authn, logger)
}

func provideBlobs(p Params, db *store.DB, logger *zap.Logger) (*blob.FSStore, error) {
	return blob.NewFSStore(session.BlobDir(p.Config.DataDir), db, p.Config.PublicURL, p.Config.MaxUploadBytes, logger)
}

func provideDirectoryService(db *store.DB, ps *Presence, tracker *presence.Tracker, b *bus.Bus, logger *zap.Logger) *api.DirectoryService {
	return api.NewDirectoryService(db, ps.Store, tracker, b, logger)
}

func provideHealthService(p Params, m *status.Machine, engine *intsync.Engine, tracker *presence.Tracker, logger *zap.Logger) *api.HealthService {
	return api.NewHealthService(m, engine, tracker, p.Config.PublicURL, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, web *HTTPServer, lk *lock.Lock, db *store.DB, ps *Presence, engine *intsync.Engine, machine *status.Machine, logger *zap.Logger) {
	var stopRelay context.CancelFunc = func() {}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Clears typing flags when participants disconnect.
			engine.Start(context.Background())

			if ps.redis != nil {
				var relayCtx context.Context
				relayCtx, stopRelay = context.WithCancel(context.Background())
				go ps.redis.Run(relayCtx)
			}

			if err := web.Start(); err != nil {
				_ = machine.TransitionWithReason(status.Error, err.Error())
				return err
			}
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
					_ = machine.TransitionWithReason(status.Error, err.Error())
				}
			}()

			if err := machine.Transition(status.Serving); err != nil {
				return err
			}
			if ps.degraded != "" {
				_ = machine.TransitionWithReason(status.Degraded, ps.degraded)
			}
			logger.Info("daemon serving",
				zap.String("socket", srv.SocketPath()),
				zap.String("http", web.Addr()),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = machine.Transition(status.Draining)
			web.Stop(ctx)
			srv.Stop(ctx)
			engine.Stop()
			stopRelay()
			if err := ps.Store.Close(); err != nil {
				logger.Warn("error closing presence store", zap.Error(err))
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			_ = machine.Transition(status.Stopped)
			logger.Info("daemon stopped")
			return nil
		},
	})
}
