package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moyoez/upload-widget-go/tool"
	"github.com/moyoez/upload-widget-go/types"
)

// HandleStatus reports that the widget is running and, when probing is
// enabled, whether the upload backend host answers a ping.
// GET /api/widget/v1/status
func (ctrl *WidgetController) HandleStatus(c *gin.Context) {
	resp := types.StatusResponse{
		Running:  true,
		Endpoint: ctrl.endpoint,
		Sessions: ctrl.store.Len(),
	}
	if ctrl.probe {
		resp.BackendChecked = true
		ctx, cancel := context.WithTimeout(c.Request.Context(), tool.ProbeTimeout+time.Second)
		defer cancel()
		host, err := tool.EndpointHost(ctrl.endpoint)
		if err == nil {
			var res tool.ProbeResult
			res, err = tool.ProbeHost(ctx, host)
			resp.BackendAlive = res.Alive
			resp.BackendRttMs = res.Rtt.Milliseconds()
		}
		if err != nil {
			tool.DefaultLogger.Debugf("[Status] Backend probe failed: %v", err)
			resp.BackendError = err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleConfig returns the running configuration without the private key.
// GET /api/widget/v1/config
func HandleConfig(c *gin.Context) {
	cfg := *tool.GetCurrentConfig()
	cfg.KeyPEM = ""
	c.JSON(http.StatusOK, cfg)
}

// HandleMetrics exposes the widget collectors in the Prometheus text format.
// GET /api/widget/v1/metrics
func (ctrl *WidgetController) HandleMetrics() gin.HandlerFunc {
	if ctrl.metrics == nil {
		return func(c *gin.Context) {
			c.JSON(http.StatusNotFound, tool.FastReturnError("Metrics are disabled"))
		}
	}
	return gin.WrapH(promhttp.HandlerFor(ctrl.metrics.Registry, promhttp.HandlerOpts{}))
}
