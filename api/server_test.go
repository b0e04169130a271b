package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/upload-widget-go/api/controllers"
	"github.com/moyoez/upload-widget-go/api/models"
	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/transfer"
)

func newTestServer(t *testing.T, webOutPath string) http.Handler {
	t.Helper()
	spool, err := models.NewSpool(filepath.Join(t.TempDir(), "spool"))
	require.NoError(t, err)
	store := models.NewSessionStore(time.Minute)
	t.Cleanup(store.CloseAll)

	srv := NewServer(ServerOptions{
		Port:             0,
		AllowedOrigins:   []string{"https://erp.example.com"},
		UploadRatePerMin: 60,
		WebOutPath:       webOutPath,
		Widget: controllers.WidgetOptions{
			Store:    store,
			Spool:    spool,
			Uploader: transfer.NewClient("http://127.0.0.1:1/", nil),
			Filter:   session.DefaultFilter(),
			Endpoint: "http://127.0.0.1:1/",
		},
	})
	return srv.Handler()
}

func TestServerRoutes(t *testing.T) {
	h := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)

	req = httptest.NewRequest(http.MethodOptions, "/api/widget/v1/sessions", nil)
	req.Header.Set("Origin", "https://erp.example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://erp.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/widget/v1/status", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServerOperatorRoutesAreLocalOnly(t *testing.T) {
	h := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/widget/v1/config", nil)
	req.RemoteAddr = "10.0.0.9:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/widget/v1/metrics", nil)
	req.RemoteAddr = "127.0.0.1:5000"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code) // no collectors configured
}

func TestServerServesWebBuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>widget</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	h := newTestServer(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/upload?modul=", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "widget")

	req = httptest.NewRequest(http.MethodGet, "/app.js", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/missing.css", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
