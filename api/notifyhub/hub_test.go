package notifyhub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHubServer(t *testing.T, hub *Hub, origins []string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", HandleNotifyWS(hub, NewUpgrader(origins)))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url, origin string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForConns(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Len() == n }, 2*time.Second, 10*time.Millisecond)
}

func readJSON(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := New("test")
	url := setupHubServer(t, hub, []string{"*"})
	a := dial(t, url, "https://erp.example.com")
	b := dial(t, url, "")
	waitForConns(t, hub, 2)

	hub.Broadcast(map[string]string{"status": "error", "message": "x"})
	assert.JSONEq(t, `{"status":"error","message":"x"}`, readJSON(t, a))
	assert.JSONEq(t, `{"status":"error","message":"x"}`, readJSON(t, b))
}

func TestRegisterReplaysLastPayload(t *testing.T) {
	hub := New("test")
	url := setupHubServer(t, hub, []string{"*"})
	hub.Broadcast(map[string]int{"n": 1})
	hub.Broadcast(map[string]int{"n": 2})

	conn := dial(t, url, "")
	assert.JSONEq(t, `{"n":2}`, readJSON(t, conn))
}

func TestUpgraderRejectsForeignOrigin(t *testing.T) {
	hub := New("test")
	url := setupHubServer(t, hub, []string{"https://erp.example.com"})

	header := http.Header{}
	header.Set("Origin", "https://evil.example.org")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.Len())

	dial(t, url, "https://erp.example.com")
	waitForConns(t, hub, 1)
}

func TestCloseAllDisconnects(t *testing.T) {
	hub := New("test")
	url := setupHubServer(t, hub, []string{"*"})
	conn := dial(t, url, "")
	waitForConns(t, hub, 1)

	hub.CloseAll()
	assert.Zero(t, hub.Len())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestBroadcastNilIsIgnored(t *testing.T) {
	hub := New("test")
	hub.Broadcast(nil)
	assert.Nil(t, hub.LastPayload())
}
