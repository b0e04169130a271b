package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/moyoez/upload-widget-go/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// HandleSessionQRCode returns a PNG QR code of the widget URL for the session
// context, so the same upload can be opened on another device.
// GET /api/widget/v1/sessions/:id/qrcode?size=200x200
func (ctrl *WidgetController) HandleSessionQRCode(c *gin.Context) {
	entry, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	link := tool.BuildWidgetURL(requestScheme(c), c.Request.Host, entry.Session.Context())
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}
	c.Header("X-Widget-URL", link)
	c.Data(http.StatusOK, "image/png", png)
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// parseSize parses size from "200x200" or "200" and returns the pixel dimension.
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, "x"); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
