package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type dashboardCache interface {
	Invalidate(ctx context.Context)
}

// CacheInvalidation clears cached dashboard snapshots after any successful
// mutating request, so counters never serve stale for a full cache TTL.
// Invalidation is best-effort and never affects the response.
func CacheInvalidation(cache dashboardCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if cache == nil {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		cache.Invalidate(c.Request.Context())
	}
}
