// Package gateway owns the websocket transport: one Session per client
// connection with a reader goroutine, a writer goroutine draining a bounded
// outbound queue, and a three-state message state machine
// (Unauthenticated → CharacterSelect → InWorld).
package gateway

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionState is the connection's position in the auth state machine.
type SessionState int32

const (
	StateUnauthenticated SessionState = iota
	StateCharacterSelect
	StateInWorld
)

// Router dispatches decoded inbound frames and observes disconnects. The
// handler package implements it.
type Router interface {
	Dispatch(s *Session, raw []byte)
	Disconnected(s *Session)
}

// Session represents a single client connection. Network I/O runs in the
// session's own goroutines; gameplay state is mutated under the world lock
// inside Router.Dispatch.
type Session struct {
	ID   uint64
	conn *websocket.Conn

	state atomic.Int32

	// Bound after successful login / character select.
	AccountID   atomic.Int64
	CharacterID atomic.Int64

	out       chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	IP  string
	log *zap.Logger

	writeTimeout time.Duration
	readTimeout  time.Duration
	pingInterval time.Duration

	hub *Hub
}

func newSession(conn *websocket.Conn, id uint64, hub *Hub, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		out:          make(chan []byte, hub.outQueueSize),
		closeCh:      make(chan struct{}),
		IP:           conn.RemoteAddr().String(),
		log:          log.With(zap.Uint64("session", id)),
		writeTimeout: hub.writeTimeout,
		readTimeout:  hub.readTimeout,
		pingInterval: hub.pingInterval,
		hub:          hub,
	}
	s.state.Store(int32(StateUnauthenticated))
	return s
}

func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *Session) SetState(st SessionState) {
	s.state.Store(int32(st))
}

// PlayerID is the session-bound wire identifier for the player.
func (s *Session) PlayerID() string {
	return playerID(s.ID)
}

// SendJSON marshals v and enqueues the frame. A full queue means the client
// cannot keep up: the session is disconnected (backpressure), never the
// server blocked.
func (s *Session) SendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("外送訊息序列化失敗", zap.Error(err))
		return
	}
	s.Enqueue(data)
}

// Enqueue places a pre-marshalled frame on the outbound queue.
func (s *Session) Enqueue(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.out <- data:
	default:
		s.log.Warn("外送佇列已滿，斷開連線（backpressure）")
		s.Close()
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start(router Router) {
	go s.writeLoop()
	go s.readLoop(router)
}

func (s *Session) readLoop(router Router) {
	defer func() {
		s.Close()
		router.Disconnected(s)
		s.hub.remove(s)
	}()

	s.conn.SetReadLimit(64 * 1024)
	s.resetReadDeadline()
	s.conn.SetPongHandler(func(string) error {
		s.resetReadDeadline()
		return nil
	})

	for {
		msgType, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("連線異常關閉", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue // 協議只走文字訊息
		}
		s.resetReadDeadline()
		router.Dispatch(s, raw)
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.Close()
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.closeCh:
			// Drain whatever is already queued, best effort.
			for {
				select {
				case data := <-s.out:
					s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
					if s.conn.WriteMessage(websocket.TextMessage, data) != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (s *Session) resetReadDeadline() {
	if s.readTimeout > 0 {
		s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}
}

// Close tears the connection down exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}
