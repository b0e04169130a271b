package notifyhub

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/moyoez/upload-widget-go/tool"
)

// NewUpgrader returns an upgrader whose origin check follows the allow list.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if tool.OriginAllowed(origin, allowedOrigins) {
				return true
			}
			tool.DefaultLogger.Warnf("[Hub] Rejected websocket from origin %q", origin)
			return false
		},
	}
}

// HandleNotifyWS upgrades the request to WebSocket and registers the connection with the hub.
func HandleNotifyWS(hub *Hub, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		Serve(c, hub, upgrader)
	}
}

// Serve upgrades the connection and blocks until the client goes away.
func Serve(c *gin.Context, hub *Hub, upgrader *websocket.Upgrader) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			tool.DefaultLogger.Debugf("Failed to close WebSocket connection: %v", err)
		}
	}()

	hub.Register(conn)
	defer hub.Unregister(conn)

	// Read loop to detect client close and keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
