// In-memory response caching for hot GET endpoints.
//
// The slot inventory and the intervention catalog are read far more often
// than they change; a short-TTL response cache takes that read traffic off
// SQLite. The cache key is the full request URI, so query variants cache
// independently. Mutating endpoints must not be routed through this
// middleware; staleness is bounded by the TTL alone.
package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

// bodyCacheWriter tees the response body into a buffer while writing it to
// the client, so a successful response can be stored after the fact.
type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache serves GET responses from an in-memory store for ttl.
// Non-GET requests and non-2xx responses pass through uncached.
func ResponseCache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if resp, found := store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		bcw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = bcw

		c.Next()

		if bcw.Status() >= 200 && bcw.Status() < 300 {
			store.Set(key, cachedResponse{
				status:  bcw.Status(),
				headers: bcw.Header().Clone(),
				body:    bcw.body.Bytes(),
			}, ttl)
		}
	}
}
