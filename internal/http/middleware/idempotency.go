// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key handling for the unsafe garage
// endpoints, chiefly POST /cars/:id/repairs. The middleware validates the
// header, stashes the key on the context, and when a lookup is supplied marks
// requests that replay an already-completed operation. Persistence stays out
// of the middleware: the lookup is a narrow function the caller wires to the
// idempotency table.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's dedup key for unsafe operations.
// A retried repair request with the same key must not open a second repair.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys stashing idempotency state. Unexported, read through the
// accessor helpers below.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // true to skip rate limiting
)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
// Handlers read the key from here, never from the header directly.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats a previously completed
// operation for the same (user, car, key). Handlers serve the persisted
// result instead of re-executing.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation. TTL enforcement belongs in
// the lookup, not here.
type IdempotencyOptions struct {
	// MaxLen caps accepted key length; values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. nil means the default token
	// pattern ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a successful, still-valid result exists
// for (userID, carID, key) at the given time. Lookup errors must not block
// normal processing; return exists=false instead.
type IdempotencyLookup func(ctx context.Context, userID, carID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes it, and flags replays detected by lookup. A missing header is a
// no-op; a malformed one is rejected with 400 bad_idempotency_key. Replayed
// requests also get the rate-bypass flag so the limiter does not charge
// tokens for serving a stored result. The middleware never writes the cached
// payload itself; that stays in the handler.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			uid := userIDFromCtx(c)
			carID := c.Param("id") // POST /cars/:id/repairs
			now := time.Now().UTC()

			if exists, _ := lookup(c.Request.Context(), uid, carID, key, now); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// userIDFromCtx reads the principal set by upstream auth middleware, falling
// back to "demo-user" when the service runs without authentication.
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "demo-user"
}
