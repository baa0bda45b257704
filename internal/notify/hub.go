package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Leganyst/services-marketplace/internal/logger"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

var ErrNoSession = errors.New("user has no open websocket session")

type session struct {
	userID uuid.UUID
	out    chan []byte
}

// Hub держит websocket-сессии пользователей и доставляет им уведомления.
// У одного пользователя может быть несколько вкладок.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*session]struct{}

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]map[*session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // origin проверяет фронтовый прокси
		},
	}
}

// Deliver реализует Sink: кладёт сообщение в очереди всех сессий пользователя.
// Медленная сессия теряет сообщение, а не тормозит остальных.
func (h *Hub) Deliver(n Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.sessions[n.UserID]
	if len(set) == 0 {
		return ErrNoSession
	}
	for s := range set {
		select {
		case s.out <- b:
		default:
			logger.With(zap.String("user_id", n.UserID.String())).Warn("ws session queue full, notification dropped")
		}
	}
	return nil
}

// Connected: число открытых сессий пользователя.
func (h *Hub) Connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// Serve апгрейдит соединение и держит его до закрытия клиентом.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	s := &session{userID: userID, out: make(chan []byte, sendBuffer)}
	h.register(s)
	defer h.unregister(s)

	done := make(chan struct{})
	defer close(done)

	// Writer goroutine.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case b := <-s.out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					_ = conn.Close()
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	// Reader loop: клиент ничего не шлёт, читаем ради pong и close.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.userID]
	if !ok {
		set = make(map[*session]struct{})
		h.sessions[s.userID] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.sessions[s.userID]
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.userID)
	}
}
