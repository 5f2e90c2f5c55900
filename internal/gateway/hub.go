package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func playerID(sessionID uint64) string {
	return fmt.Sprintf("p%d", sessionID)
}

// Hub accepts websocket connections and tracks live sessions. Broadcast
// fans out to every in-world session without touching the world lock: it
// marshals once and enqueues on each session's bounded queue.
type Hub struct {
	mu       sync.Mutex
	sessions map[uint64]*Session
	nextID   atomic.Uint64

	upgrader websocket.Upgrader
	server   *http.Server
	router   Router
	log      *zap.Logger

	accepting atomic.Bool

	outQueueSize int
	writeTimeout time.Duration
	readTimeout  time.Duration
	pingInterval time.Duration
}

type HubConfig struct {
	BindAddress  string
	OutQueueSize int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	PingInterval time.Duration
}

func NewHub(cfg HubConfig, router Router, log *zap.Logger) *Hub {
	h := &Hub{
		sessions: make(map[uint64]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// 遊戲客戶端不是瀏覽器，不做 Origin 檢查
			CheckOrigin: func(*http.Request) bool { return true },
		},
		router:       router,
		log:          log,
		outQueueSize: cfg.OutQueueSize,
		writeTimeout: cfg.WriteTimeout,
		readTimeout:  cfg.ReadTimeout,
		pingInterval: cfg.PingInterval,
	}
	h.accepting.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	h.server = &http.Server{Addr: cfg.BindAddress, Handler: mux}
	return h
}

// ListenAndServe blocks serving websocket upgrades until Shutdown.
func (h *Hub) ListenAndServe() error {
	err := h.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	if !h.accepting.Load() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket 升級失敗", zap.Error(err))
		return
	}

	id := h.nextID.Add(1)
	sess := newSession(conn, id, h, h.log)

	h.mu.Lock()
	h.sessions[id] = sess
	h.mu.Unlock()

	h.log.Info("玩家連線", zap.Uint64("session", id), zap.String("ip", sess.IP))
	sess.Start(h.router)
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID)
	h.mu.Unlock()
	h.log.Info("玩家斷線", zap.Uint64("session", s.ID))
}

// Broadcast sends v to every in-world session.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("廣播訊息序列化失敗", zap.Error(err))
		return
	}
	h.mu.Lock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		if s.State() == StateInWorld {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	for _, s := range targets {
		s.Enqueue(data)
	}
}

// BroadcastExcept sends v to every in-world session except one.
func (h *Hub) BroadcastExcept(exclude uint64, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("廣播訊息序列化失敗", zap.Error(err))
		return
	}
	h.mu.Lock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		if s.ID != exclude && s.State() == StateInWorld {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	for _, s := range targets {
		s.Enqueue(data)
	}
}

// Session returns the live session with the given ID, or nil.
func (h *Hub) Session(id uint64) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[id]
}

// Shutdown stops accepting connections and closes every live session after
// a best-effort flush of their queues.
func (h *Hub) Shutdown(ctx context.Context) {
	h.accepting.Store(false)
	h.server.Shutdown(ctx)

	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
