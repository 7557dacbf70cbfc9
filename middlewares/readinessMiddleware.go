package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/config"
)

// ReadinessMiddleware gates app endpoints on dependency readiness. The server
// starts listening before the database is connected (startup probes are TCP
// based), so early requests see 503 instead of nil-pointer panics.
func ReadinessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	}
}
