package tool

import (
	"maps"

	"github.com/gin-gonic/gin"
)

// Response bodies shared by the widget endpoints: {"error": ...}, {"status": "ok"} or {"data": ...}.

func FastReturnError(msg string) gin.H {
	return gin.H{"error": msg}
}

func FastReturnSuccess() gin.H {
	return gin.H{"status": "ok"}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{"data": data}
}

// FastReturnErrorWithData adds extra keys next to the error, e.g. the current
// session state when an action is refused.
func FastReturnErrorWithData(msg string, data gin.H) gin.H {
	resp := FastReturnError(msg)
	maps.Copy(resp, data)
	return resp
}
