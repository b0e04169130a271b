package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/upload-widget-go/api/controllers"
	"github.com/moyoez/upload-widget-go/api/middlewares"
	"github.com/moyoez/upload-widget-go/tool"
)

// Server represents the HTTP API server of the upload widget
type Server struct {
	port           int
	allowedOrigins []string
	uploadRate     int
	webOutPath     string
	tlsCert        *tls.Certificate
	ctrl           *controllers.WidgetController
	engine         *gin.Engine
	server         *http.Server
	mu             sync.RWMutex
}

// ServerOptions configures NewServer.
type ServerOptions struct {
	Port             int
	AllowedOrigins   []string
	UploadRatePerMin int              // 0 disables the upload rate limit
	WebOutPath       string           // widget front-end build, optional
	TLSCert          *tls.Certificate // serve https when set
	Widget           controllers.WidgetOptions
}

// NewServer creates a new API server instance
func NewServer(opts ServerOptions) *Server {
	widget := opts.Widget
	if widget.AllowedOrigins == nil {
		widget.AllowedOrigins = opts.AllowedOrigins
	}
	if webPathExists(opts.WebOutPath, "index.html") {
		widget.WebIndexPath = filepath.Join(opts.WebOutPath, "index.html")
	}
	return &Server{
		port:           opts.Port,
		allowedOrigins: opts.AllowedOrigins,
		uploadRate:     opts.UploadRatePerMin,
		webOutPath:     opts.WebOutPath,
		tlsCert:        opts.TLSCert,
		ctrl:           controllers.NewWidgetController(widget),
	}
}

// webPathExists returns true if name exists as file or as dir (with index.html) below root.
func webPathExists(root, name string) bool {
	if root == "" {
		return false
	}
	f := os.DirFS(root)
	name = strings.TrimPrefix(name, "/")
	if name == "" || name == "." {
		name = "index.html"
	}
	if _, err := fs.Stat(f, name); err == nil {
		return true
	}
	_, err := fs.Stat(f, name+"/index.html")
	return err == nil
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(middlewares.AllowOrigins(s.allowedOrigins))

	ctrl := s.ctrl
	limit := middlewares.RateLimit(s.uploadRate)

	engine.GET("/", ctrl.HandleRoot)
	engine.GET("/upload", ctrl.HandleUploadPage)

	v1 := engine.Group("/api/widget/v1")
	{
		v1.POST("/sessions", ctrl.HandleCreateSession)
		v1.GET("/sessions/:id", ctrl.HandleGetSession)
		v1.DELETE("/sessions/:id", ctrl.HandleCloseSession)
		v1.POST("/sessions/:id/files", ctrl.HandleSelectFiles)
		v1.DELETE("/sessions/:id/files", ctrl.HandleClearFiles)
		v1.DELETE("/sessions/:id/files/:fileId", ctrl.HandleRemoveFile)
		v1.GET("/sessions/:id/files/:fileId/content", ctrl.HandleFileContent)
		v1.POST("/sessions/:id/preview/:fileId", ctrl.HandleTogglePreview) // same file again hides it
		v1.DELETE("/sessions/:id/preview", ctrl.HandleClearPreview)
		v1.POST("/sessions/:id/upload", limit, ctrl.HandleUpload)
		v1.GET("/sessions/:id/status-ws", ctrl.HandleStatusWS) // toasts, progress and state
		v1.GET("/sessions/:id/frame-ws", ctrl.HandleFrameWS)   // outcome messages for the embedding page
		v1.GET("/sessions/:id/qrcode", ctrl.HandleSessionQRCode)
		v1.GET("/status", ctrl.HandleStatus)
	}
	local := engine.Group("/api/widget/v1", middlewares.OnlyAllowLocal)
	{
		local.GET("/config", controllers.HandleConfig)
		local.GET("/metrics", ctrl.HandleMetrics())
	}

	// Serve the widget front-end build. HTML routes fall back to index.html so
	// the single page app handles its own routing.
	if webPathExists(s.webOutPath, "index.html") {
		webFS := os.DirFS(s.webOutPath)
		fileServer := http.FileServer(http.FS(webFS))
		engine.NoRoute(gin.WrapF(func(w http.ResponseWriter, r *http.Request) {
			path := strings.TrimPrefix(r.URL.Path, "/")
			if path == "" {
				path = "index.html"
			}
			if ext := filepath.Ext(path); ext != "" && ext != ".html" {
				if webPathExists(s.webOutPath, path) {
					fileServer.ServeHTTP(w, r)
					return
				}
				http.NotFound(w, r)
				return
			}
			data, err := fs.ReadFile(webFS, "index.html")
			if err != nil {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
		}))
		tool.DefaultLogger.Infof("[Server] Serving widget page from %s", s.webOutPath)
	}

	return engine
}

// Handler builds the routes without listening, for tests and embedding.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		s.engine = s.setupRoutes()
	}
	return s.engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	handler := s.Handler()

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: handler,
	}
	srv := s.server
	s.mu.Unlock()

	var err error
	if s.tlsCert != nil {
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{*s.tlsCert},
		}
		tool.DefaultLogger.Infof("Starting API server on https://0.0.0.0:%d", s.port)
		err = srv.ListenAndServeTLS("", "")
	} else {
		tool.DefaultLogger.Infof("Starting API server on http://0.0.0.0:%d", s.port)
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
