package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const metaContextKey = "vh_response_meta"

// WithResponseMeta attaches a metadata map to each request and stamps the
// handler duration into it once the chain returns.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := map[string]interface{}{}
		c.Set(metaContextKey, meta)
		begin := time.Now()
		c.Next()
		if _, set := meta["processing_time_ms"]; !set {
			meta["processing_time_ms"] = time.Since(begin).Milliseconds()
		}
	}
}

// SetCacheHit marks whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	if meta := ExtractMeta(c); meta != nil {
		meta["cache_hit"] = hit
	}
}

// ExtractMeta returns the request's metadata map, or nil when the
// middleware is not installed.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta, _ := c.Get(metaContextKey)
	typed, _ := meta.(map[string]interface{})
	return typed
}
