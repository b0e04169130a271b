package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/tool"
	"github.com/moyoez/upload-widget-go/types"
)

// HandleRoot sends bare visits to the upload route with an empty context.
// GET /
func (ctrl *WidgetController) HandleRoot(c *gin.Context) {
	c.Redirect(http.StatusFound, "/upload?"+tool.ContextQuery(types.UploadContext{}))
}

// HandleUploadPage serves the front-end when one is configured and the client
// wants HTML; otherwise it returns the bootstrap parameters for the context in
// the query string. No session is opened here, that is left to POST /sessions.
// GET /upload
func (ctrl *WidgetController) HandleUploadPage(c *gin.Context) {
	if ctrl.webIndex != "" && strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.File(ctrl.webIndex)
		return
	}
	uctx, ok := bindContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.bootstrap("", uctx)))
}

// HandleCreateSession opens a session for the context in the query string.
// POST /api/widget/v1/sessions?modul=&firmaGuid=&fisTurId=&satirGuid=
func (ctrl *WidgetController) HandleCreateSession(c *gin.Context) {
	uctx, ok := bindContext(c)
	if !ok {
		return
	}

	s := session.New(uctx, ctrl.uploader, session.WithBlobStore(ctrl.spool))
	ctrl.store.Open(s)
	ctrl.metrics.SessionOpened()
	tool.DefaultLogger.Infof("[Session] Opened %s (modul=%q firmaGuid=%q fisTurId=%q satirGuid=%q)",
		s.ID(), uctx.Modul, uctx.FirmaGuid, uctx.FisTurId, uctx.SatirGuid)

	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.bootstrap(s.ID(), uctx)))
}

func bindContext(c *gin.Context) (types.UploadContext, bool) {
	var query types.UploadRequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid query: "+err.Error()))
		return types.UploadContext{}, false
	}
	return query.Context(), true
}

func (ctrl *WidgetController) bootstrap(id string, uctx types.UploadContext) types.BootstrapResponse {
	return types.BootstrapResponse{
		SessionId:   id,
		Context:     uctx,
		Accept:      ctrl.filter.AcceptString(),
		MaxFileSize: ctrl.filter.MaxFileSize,
	}
}

// HandleGetSession returns the session state and the capacity indicator.
// GET /api/widget/v1/sessions/:id
func (ctrl *WidgetController) HandleGetSession(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.stateView(entry.Session.Snapshot())))
}

// HandleCloseSession drops the session and its selected files.
// DELETE /api/widget/v1/sessions/:id
func (ctrl *WidgetController) HandleCloseSession(c *gin.Context) {
	if !ctrl.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found or expired"))
		return
	}
	tool.DefaultLogger.Infof("[Session] Closed %s", c.Param("id"))
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

func (ctrl *WidgetController) stateView(st session.State) gin.H {
	return gin.H{
		"state":    st,
		"capacity": tool.Capacity(st.TotalSize, ctrl.filter.MaxFileSize),
	}
}
