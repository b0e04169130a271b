package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/tool"
)

// HandleUpload transmits the first selected file to the backend.
// A transfer failure is still a 200: the outcome is in the result and has
// already been pushed to the status and frame channels.
// POST /api/widget/v1/sessions/:id/upload
func (ctrl *WidgetController) HandleUpload(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	// The transfer outlives the request: a client that goes away still gets
	// the outcome on its channels.
	ctx := context.WithoutCancel(c.Request.Context())
	start := time.Now()
	result, err := entry.Session.Upload(ctx)
	switch {
	case errors.Is(err, session.ErrNoCandidates):
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Please select a file first"))
		return
	case errors.Is(err, session.ErrUploadInFlight):
		c.JSON(http.StatusConflict, tool.FastReturnErrorWithData("An upload is already in progress",
			ctrl.stateView(entry.Session.Snapshot())))
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}

	ctrl.metrics.UploadFinished(string(result.Outcome), result.File.Size, time.Since(start))
	view := ctrl.stateView(entry.Session.Snapshot())
	view["result"] = result
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(view))
}
