package notifyhub

import (
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/moyoez/upload-widget-go/tool"
)

// Hub holds WebSocket connections and broadcasts payloads to all clients.
// Implements notify.Broadcaster.
type Hub struct {
	name  string
	mu    sync.RWMutex
	wmu   sync.Mutex // serializes writes, gorilla conns allow one writer
	conns map[*websocket.Conn]struct{}
	last  []byte
}

// New creates a new notify hub. name is used in logs only.
func New(name string) *Hub {
	return &Hub{
		name:  name,
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Register adds a WebSocket connection to the hub and replays the last payload,
// so a page connecting late still sees the current state.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	last := h.last
	h.mu.Unlock()

	if last != nil {
		h.wmu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, last)
		h.wmu.Unlock()
	}
}

// Unregister removes a WebSocket connection from the hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// LastPayload returns the last broadcast message, nil if none.
func (h *Hub) LastPayload() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Broadcast sends payload as JSON to all registered connections.
func (h *Hub) Broadcast(payload any) {
	if payload == nil {
		return
	}
	data, err := sonic.Marshal(payload)
	if err != nil {
		tool.DefaultLogger.Errorf("[Hub %s] Failed to encode payload: %v", h.name, err)
		return
	}

	h.mu.Lock()
	h.last = data
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	h.wmu.Lock()
	defer h.wmu.Unlock()
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			tool.DefaultLogger.Debugf("[Hub %s] Write failed, dropping connection: %v", h.name, err)
			h.Unregister(conn)
			_ = conn.Close()
		}
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	h.wmu.Lock()
	defer h.wmu.Unlock()
	for conn := range conns {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
		_ = conn.Close()
	}
}
