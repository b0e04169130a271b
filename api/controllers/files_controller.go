package controllers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upload-widget-go/notify"
	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/tool"
	"github.com/moyoez/upload-widget-go/types"
)

// FilesFormField is the multipart field the front-end picker posts files under.
const FilesFormField = "files"

// HandleSelectFiles streams the posted files to the spool, applies the picker
// filter and appends the accepted ones to the session. Refused files are
// reported on the status channel and in the response.
// POST /api/widget/v1/sessions/:id/files
func (ctrl *WidgetController) HandleSelectFiles(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	reader, err := c.Request.MultipartReader()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Expected multipart/form-data body"))
		return
	}

	var accepted []types.CandidateFile
	var rejected []types.RejectedFile
	release := func() {
		for _, f := range accepted {
			_ = ctrl.spool.Release(f.Handle)
		}
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			release()
			tool.DefaultLogger.Errorf("[Select] Failed to read multipart body: %v", err)
			c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read request body"))
			return
		}
		if part.FormName() != FilesFormField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		name := part.FileName()
		declared := part.Header.Get("Content-Type")
		handle, written, head, err := ctrl.spool.Save(c.Request.Context(), part, ctrl.filter.MaxFileSize)
		_ = part.Close()
		if errors.Is(err, tool.ErrCopyLimitExceeded) {
			rejected = append(rejected, ctrl.reject(name, written, declared, ctrl.filter.Check(ctrl.filter.MaxFileSize+1, declared)))
			continue
		}
		if err != nil {
			release()
			tool.DefaultLogger.Errorf("[Select] Failed to spool %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to store file"))
			return
		}

		mediaType := session.SniffMediaType(head, declared)
		if err := ctrl.filter.Check(written, mediaType); err != nil {
			_ = ctrl.spool.Release(handle)
			rejected = append(rejected, ctrl.reject(name, written, mediaType, err))
			continue
		}
		accepted = append(accepted, types.CandidateFile{
			Name:      name,
			Size:      written,
			MediaType: mediaType,
			Handle:    handle,
		})
	}

	added, err := entry.Session.Select(accepted...)
	if err != nil {
		release()
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	ctrl.metrics.FilesSelected(len(added))
	if len(rejected) > 0 {
		notify.Send(entry.Status, notify.SelectionRejected(rejected))
	}
	tool.DefaultLogger.Infof("[Select] Session %s: %d accepted, %d rejected", entry.Session.ID(), len(added), len(rejected))

	view := ctrl.stateView(entry.Session.Snapshot())
	view["added"] = added
	view["rejected"] = rejected
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(view))
}

func (ctrl *WidgetController) reject(name string, size int64, mediaType string, err error) types.RejectedFile {
	reason := "type"
	if errors.Is(err, session.ErrFileTooLarge) {
		reason = "size"
	}
	ctrl.metrics.FileRejected(reason)
	tool.DefaultLogger.Warnf("[Select] Rejected %s (%d bytes, %s): %v", name, size, mediaType, err)
	return session.Reject(name, size, mediaType, err)
}

// HandleRemoveFile drops one candidate.
// DELETE /api/widget/v1/sessions/:id/files/:fileId
func (ctrl *WidgetController) HandleRemoveFile(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	removed := entry.Session.Remove(c.Param("fileId"))
	view := ctrl.stateView(entry.Session.Snapshot())
	view["removed"] = removed
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(view))
}

// HandleClearFiles drops every candidate.
// DELETE /api/widget/v1/sessions/:id/files
func (ctrl *WidgetController) HandleClearFiles(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	entry.Session.ClearAll()
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.stateView(entry.Session.Snapshot())))
}

// HandleFileContent serves the bytes of a candidate for the preview pane.
// PDFs carry their page count in X-Page-Count.
// GET /api/widget/v1/sessions/:id/files/:fileId/content
func (ctrl *WidgetController) HandleFileContent(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	file, ok := entry.Session.Lookup(c.Param("fileId"))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("File not found"))
		return
	}

	blob, err := ctrl.spool.OpenSeeker(file.Handle)
	if err != nil {
		tool.DefaultLogger.Errorf("[Preview] Failed to open %s: %v", file.Name, err)
		c.JSON(http.StatusNotFound, tool.FastReturnError("File content not available"))
		return
	}
	defer func() {
		if err := blob.Close(); err != nil {
			tool.DefaultLogger.Debugf("Failed to close blob: %v", err)
		}
	}()

	if file.IsPDF() {
		if pages, err := tool.PDFPageCount(blob); err != nil {
			tool.DefaultLogger.Warnf("[Preview] %s: %v", file.Name, err)
		} else {
			c.Header("X-Page-Count", strconv.Itoa(pages))
		}
		if _, err := blob.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to read file"))
			return
		}
	}

	c.Header("Content-Type", file.MediaType)
	c.Header("Content-Disposition", "inline; filename*=UTF-8''"+url.PathEscape(file.Name))
	http.ServeContent(c.Writer, c.Request, file.Name, file.SelectedAt, blob)
}
