package middlewares

import (
	"net/http"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/moyoez/upload-widget-go/tool"
)

// RateLimit allows perMinute requests per client IP with a small burst.
// A non-positive perMinute disables the limit.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := perMinute / 10
	if burst < 3 {
		burst = 3
	}
	var mu sync.Mutex
	limiters := ttlworker.NewCache[string, *rate.Limiter](10 * time.Minute)
	every := rate.Every(time.Minute / time.Duration(perMinute))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		limiter := limiters.Get(ip)
		if limiter == nil {
			limiter = rate.NewLimiter(every, burst)
		}
		limiters.Set(ip, limiter)
		mu.Unlock()

		if !limiter.Allow() {
			tool.DefaultLogger.Warnf("[RateLimit] Too many requests from %s on %s", ip, c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, tool.FastReturnError("Too many requests"))
			return
		}
		c.Next()
	}
}
