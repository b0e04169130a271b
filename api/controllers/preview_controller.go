package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/tool"
)

// HandleTogglePreview shows a candidate in the preview pane, or hides it when
// it is already showing.
// POST /api/widget/v1/sessions/:id/preview/:fileId
func (ctrl *WidgetController) HandleTogglePreview(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	if _, err := entry.Session.TogglePreview(c.Param("fileId")); err != nil {
		if errors.Is(err, session.ErrUnknownCandidate) {
			c.JSON(http.StatusNotFound, tool.FastReturnError("File not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.stateView(entry.Session.Snapshot())))
}

// HandleClearPreview closes the preview pane.
// DELETE /api/widget/v1/sessions/:id/preview
func (ctrl *WidgetController) HandleClearPreview(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	entry.Session.ClearPreview()
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.stateView(entry.Session.Snapshot())))
}
