package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/matheus3301/pairchat/internal/auth"
	"github.com/matheus3301/pairchat/internal/conversation"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Feeds authenticate with a token, never with cookies.
	CheckOrigin: func(*http.Request) bool { return true },
}

// LogFrame is one websocket message of /ws/conversations/{id}.
type LogFrame struct {
	ConversationID string                 `json:"conversationId"`
	Messages       []conversation.Message `json:"messages"`
}

// TypingFrame is one websocket message of /ws/typing/{id}.
type TypingFrame struct {
	Typing bool `json:"typing"`
}

var errSlowConsumer = errors.New("feed buffer exceeded")

// feed owns one websocket. Writes go through a buffered channel drained by
// a single writer goroutine that also sends pings.
type feed struct {
	ws   *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func newFeed(ws *websocket.Conn) *feed {
	return &feed{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// emit queues v as a JSON text frame. A client that falls a whole buffer
// behind is disconnected.
func (f *feed) emit(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-f.done:
		return websocket.ErrCloseSent
	case f.send <- payload:
		return nil
	default:
		f.close(websocket.CloseGoingAway, "send buffer full")
		return errSlowConsumer
	}
}

func (f *feed) close(code int, reason string) {
	f.once.Do(func() {
		close(f.done)
		_ = f.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = f.ws.Close()
	})
}

func (f *feed) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case msg := <-f.send:
			if err := f.write(websocket.TextMessage, msg); err != nil {
				f.close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-ticker.C:
			if err := f.write(websocket.PingMessage, nil); err != nil {
				f.close(websocket.CloseAbnormalClosure, "")
				return
			}
		}
	}
}

func (f *feed) write(kind int, payload []byte) error {
	if err := f.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return f.ws.WriteMessage(kind, payload)
}

// readLoop discards client frames and returns when the client goes away.
func (f *feed) readLoop() {
	f.ws.SetReadLimit(512)
	_ = f.ws.SetReadDeadline(time.Now().Add(pongWait))
	f.ws.SetPongHandler(func(string) error {
		return f.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := f.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// serve upgrades the request and runs watch until the client leaves or
// watch fails.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, watch func(ctx context.Context, f *feed) error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	f := newFeed(ws)
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	go f.writeLoop()
	go func() {
		f.readLoop()
		cancel()
	}()
	go func() {
		<-f.done
		cancel()
	}()

	err = watch(ctx, f)
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("feed failed", zap.String("path", r.URL.Path), zap.Error(err))
		f.close(websocket.CloseInternalServerErr, "feed failed")
		return
	}
	f.close(websocket.CloseNormalClosure, "")
}

// membership resolves {id} and checks the caller is a party of it.
func membership(w http.ResponseWriter, r *http.Request) (self string, id conversation.ID, peer string, ok bool) {
	self, _ = auth.ParticipantFrom(r.Context())
	id = conversation.ID(mux.Vars(r)["id"])
	peer, ok = id.Peer(self)
	if !ok {
		writeError(w, http.StatusForbidden, "not a participant of this conversation")
	}
	return self, id, peer, ok
}

func (s *Server) watchLog(w http.ResponseWriter, r *http.Request) {
	_, id, _, ok := membership(w, r)
	if !ok {
		return
	}
	s.serve(w, r, func(ctx context.Context, f *feed) error {
		return s.engine.WatchLog(ctx, id, func(msgs []conversation.Message) error {
			if msgs == nil {
				msgs = []conversation.Message{}
			}
			return f.emit(LogFrame{ConversationID: id.String(), Messages: msgs})
		})
	})
}

// watchTyping reports the peer's flag once, then on every change of it.
func (s *Server) watchTyping(w http.ResponseWriter, r *http.Request) {
	_, id, peer, ok := membership(w, r)
	if !ok {
		return
	}
	if q := r.URL.Query().Get("peer"); q != "" && q != peer {
		writeError(w, http.StatusBadRequest, "peer is not the other participant")
		return
	}
	s.serve(w, r, func(ctx context.Context, f *feed) error {
		sent, last := false, false
		return s.engine.WatchTyping(ctx, id, func(state conversation.TypingState) error {
			typing := state[peer]
			if sent && typing == last {
				return nil
			}
			sent, last = true, typing
			return f.emit(TypingFrame{Typing: typing})
		})
	})
}
