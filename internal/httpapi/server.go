// Package httpapi serves the blob storage endpoints, the websocket feeds and
// the health probe of pairchatd.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/matheus3301/pairchat/internal/auth"
	"github.com/matheus3301/pairchat/internal/blob"
	"github.com/matheus3301/pairchat/internal/status"
	"github.com/matheus3301/pairchat/internal/store"
	intsync "github.com/matheus3301/pairchat/internal/sync"
	"go.uber.org/zap"
)

// Server routes the HTTP surface of the daemon.
type Server struct {
	blobs   *blob.FSStore
	db      *store.DB
	engine  *intsync.Engine
	authn   *auth.Authenticator
	machine *status.Machine
	logger  *zap.Logger
}

// NewServer creates the HTTP server handlers.
func NewServer(blobs *blob.FSStore, db *store.DB, engine *intsync.Engine, authn *auth.Authenticator, machine *status.Machine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		blobs:   blobs,
		db:      db,
		engine:  engine,
		authn:   authn,
		machine: machine,
		logger:  logger,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc(blob.PublicPath+"{bucket}/{name:.+}", s.download).Methods(http.MethodGet, http.MethodHead)

	protected := r.NewRoute().Subrouter()
	protected.Use(s.authn.Middleware)
	protected.HandleFunc("/storage/v1/object/{bucket}/{name:.+}", s.upload).Methods(http.MethodPost, http.MethodPut)
	protected.HandleFunc("/ws/conversations/{id}", s.watchLog).Methods(http.MethodGet)
	protected.HandleFunc("/ws/typing/{id}", s.watchTyping).Methods(http.MethodGet)

	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	code := http.StatusOK
	if !s.machine.Accepting() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{
		"state":  string(s.machine.Current()),
		"reason": s.machine.Reason(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
