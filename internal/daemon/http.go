package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/matheus3301/pairchat/internal/httpapi"
	"go.uber.org/zap"
)

// HTTPServer serves blob storage, websocket feeds and the health probe.
type HTTPServer struct {
	srv      *http.Server
	addr     string
	listener net.Listener
	logger   *zap.Logger
}

// NewHTTPServer prepares the HTTP server; it listens on Start.
func NewHTTPServer(p Params, handlers *httpapi.Server, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Handler:           handlers.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		addr:   p.Config.HTTPAddr,
		logger: logger,
	}
}

// Start listens and serves in the background. Listen errors are returned.
func (h *HTTPServer) Start() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	h.listener = lis
	h.logger.Info("HTTP server starting", zap.String("addr", lis.Addr().String()))
	go func() {
		if err := h.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, which differs from the configured one when
// the port was 0.
func (h *HTTPServer) Addr() string {
	if h.listener == nil {
		return h.addr
	}
	return h.listener.Addr().String()
}

// Stop shuts the server down. Websocket feeds are hijacked connections and
// end when their watch loop notices the closed socket.
func (h *HTTPServer) Stop(ctx context.Context) {
	h.logger.Info("HTTP server stopping")
	if err := h.srv.Shutdown(ctx); err != nil {
		h.logger.Warn("HTTP shutdown", zap.Error(err))
		_ = h.srv.Close()
	}
}
