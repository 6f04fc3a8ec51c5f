package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/matheus3301/pairchat/internal/api"
	"github.com/matheus3301/pairchat/internal/auth"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server manages the gRPC server lifecycle of the daemon.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger
}

// NewServer creates a gRPC server bound to the daemon's Unix domain socket.
// Every method except registration, login and status requires a token.
func NewServer(
	p Params,
	logger *zap.Logger,
	authn *auth.Authenticator,
	conversationSvc *api.ConversationService,
	directorySvc *api.DirectoryService,
	authSvc *api.AuthService,
	healthSvc *api.HealthService,
) (*Server, error) {
	socketPath := p.Config.Socket

	if err := os.MkdirAll(filepath.Dir(socketPath), 0700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	// Clean stale socket if it exists. The data directory lock is already
	// held, so no live daemon owns it.
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen unix socket: %w", err)
	}

	// Set socket permissions to 0600.
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(authn.UnaryServerInterceptor(pairchatv1.PublicMethods...)),
		grpc.ChainStreamInterceptor(authn.StreamServerInterceptor(pairchatv1.PublicMethods...)),
	)
	pairchatv1.RegisterConversationServiceServer(srv, conversationSvc)
	pairchatv1.RegisterDirectoryServiceServer(srv, directorySvc)
	pairchatv1.RegisterAuthServiceServer(srv, authSvc)
	pairchatv1.RegisterHealthServiceServer(srv, healthSvc)

	return &Server{
		grpcServer: srv,
		listener:   listener,
		socketPath: socketPath,
		logger:     logger,
	}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins serving gRPC requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("gRPC server starting", zap.String("socket", s.socketPath))
	return s.grpcServer.Serve(s.listener)
}

// Stop performs a graceful shutdown and removes the socket file. Open watch
// streams are cut when ctx ends.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("gRPC server stopping")
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
		<-done
	}
	_ = os.Remove(s.socketPath)
}
