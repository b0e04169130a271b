package middlewares

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upload-widget-go/tool"
)

// OnlyAllowLocal guards operator endpoints such as /metrics and /config.
func OnlyAllowLocal(c *gin.Context) {
	if ip := net.ParseIP(c.ClientIP()); ip != nil && ip.IsLoopback() {
		c.Next()
		return
	}
	c.AbortWithStatusJSON(http.StatusForbidden, tool.FastReturnError("Forbidden"))
}
