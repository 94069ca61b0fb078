package socket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Hub tracks vendor dashboard connections, keyed by vendor id. Vendors get
// live order events pushed over their socket.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register attaches a vendor connection, replacing any previous one.
func (h *Hub) Register(vendorID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[vendorID] = conn
	logrus.Infof("websocket client registered: %s", vendorID)
}

// Unregister drops a vendor connection.
func (h *Hub) Unregister(vendorID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[vendorID]; ok {
		delete(h.clients, vendorID)
		logrus.Infof("websocket client unregistered: %s", vendorID)
	}
}

// Send writes one JSON message to a vendor. An offline vendor is not an
// error.
func (h *Hub) Send(vendorID string, payload interface{}) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[vendorID]
	if !ok {
		return nil
	}

	message, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, message)
}
