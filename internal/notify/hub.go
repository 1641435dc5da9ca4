package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub delivers events to connected websocket sessions in real time.
// Clients and drivers connect once and receive the events addressed to
// them; broadcast events reach every connected driver.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*session
	drivers map[string]*session
}

type session struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *session) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*session),
		drivers: make(map[string]*session),
	}
}

// RegisterClient attaches a client connection, replacing any previous one.
func (h *Hub) RegisterClient(id string, conn *websocket.Conn) {
	h.register(h.clients, id, conn)
}

// RegisterDriver attaches a driver connection, replacing any previous one.
func (h *Hub) RegisterDriver(id string, conn *websocket.Conn) {
	h.register(h.drivers, id, conn)
}

func (h *Hub) register(pool map[string]*session, id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := pool[id]; ok {
		old.conn.Close()
	}
	pool[id] = &session{conn: conn}
}

// UnregisterClient drops a client connection if it is still the active one.
func (h *Hub) UnregisterClient(id string, conn *websocket.Conn) {
	h.unregister(h.clients, id, conn)
}

// UnregisterDriver drops a driver connection if it is still the active one.
func (h *Hub) UnregisterDriver(id string, conn *websocket.Conn) {
	h.unregister(h.drivers, id, conn)
}

func (h *Hub) unregister(pool map[string]*session, id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := pool[id]; ok && s.conn == conn {
		delete(pool, id)
	}
}

// Notify implements Notifier. A recipient without a live connection is not
// an error; the event simply has nowhere to go on this transport.
func (h *Hub) Notify(_ context.Context, rcpt Recipient, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	switch rcpt.Audience {
	case AudienceClient:
		h.send(h.clients, rcpt.ID, data)
	case AudienceDriver:
		h.send(h.drivers, rcpt.ID, data)
	case AudienceAllDrivers:
		h.mu.RLock()
		ids := make([]string, 0, len(h.drivers))
		for id := range h.drivers {
			ids = append(ids, id)
		}
		h.mu.RUnlock()
		for _, id := range ids {
			h.send(h.drivers, id, data)
		}
	}
	return nil
}

func (h *Hub) send(pool map[string]*session, id string, data []byte) {
	h.mu.RLock()
	s, ok := pool[id]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := s.write(data); err != nil {
		log.Printf("notify: websocket write to %s failed: %v", id, err)
	}
}

// Ensure Hub implements Notifier.
var _ Notifier = (*Hub)(nil)
