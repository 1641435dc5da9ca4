package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"viajes/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WSHandler upgrades HTTP connections and attaches them to the notifier hub.
type WSHandler struct {
	hub *notify.Hub
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *notify.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// ClientSocket handles GET /v1/ws/clients/:id
func (h *WSHandler) ClientSocket(c *gin.Context) {
	id := c.Param("id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed for client %s: %v", id, err)
		return
	}

	h.hub.RegisterClient(id, conn)
	go h.drain(conn, func() { h.hub.UnregisterClient(id, conn) })
}

// DriverSocket handles GET /v1/ws/drivers/:id
func (h *WSHandler) DriverSocket(c *gin.Context) {
	id := c.Param("id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed for driver %s: %v", id, err)
		return
	}

	h.hub.RegisterDriver(id, conn)
	go h.drain(conn, func() { h.hub.UnregisterDriver(id, conn) })
}

// drain consumes inbound frames until the peer disconnects. The hub only
// pushes events; inbound payloads are discarded.
func (h *WSHandler) drain(conn *websocket.Conn, unregister func()) {
	defer func() {
		unregister()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
