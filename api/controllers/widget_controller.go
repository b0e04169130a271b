package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/moyoez/upload-widget-go/api/models"
	"github.com/moyoez/upload-widget-go/api/notifyhub"
	"github.com/moyoez/upload-widget-go/metrics"
	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/tool"
)

// WidgetOptions carries the dependencies shared by the widget endpoints.
type WidgetOptions struct {
	Store          *models.SessionStore
	Spool          *models.Spool
	Uploader       session.Uploader
	Filter         session.Filter
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Endpoint       string
	ProbeBackend   bool
	WebIndexPath   string // index.html of the front-end build, empty when not served
}

type WidgetController struct {
	store    *models.SessionStore
	spool    *models.Spool
	uploader session.Uploader
	filter   session.Filter
	metrics  *metrics.Metrics
	upgrader *websocket.Upgrader
	endpoint string
	probe    bool
	webIndex string
}

func NewWidgetController(opts WidgetOptions) *WidgetController {
	return &WidgetController{
		store:    opts.Store,
		spool:    opts.Spool,
		uploader: opts.Uploader,
		filter:   opts.Filter,
		metrics:  opts.Metrics,
		upgrader: notifyhub.NewUpgrader(opts.AllowedOrigins),
		endpoint: opts.Endpoint,
		probe:    opts.ProbeBackend,
		webIndex: opts.WebIndexPath,
	}
}

// lookup resolves :id or writes a 404.
func (ctrl *WidgetController) lookup(c *gin.Context) (*models.SessionEntry, bool) {
	entry, ok := ctrl.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found or expired"))
		return nil, false
	}
	return entry, true
}

// HandleStatusWS streams state, progress and toasts of one session.
// GET /api/widget/v1/sessions/:id/status-ws
func (ctrl *WidgetController) HandleStatusWS(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	notifyhub.Serve(c, entry.Status, ctrl.upgrader)
}

// HandleFrameWS streams outcome messages to the embedding page.
// GET /api/widget/v1/sessions/:id/frame-ws
func (ctrl *WidgetController) HandleFrameWS(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	notifyhub.Serve(c, entry.Frame, ctrl.upgrader)
}
