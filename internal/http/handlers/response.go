// Package handlers implements the HTTP handlers of the public garage API.
//
// This file holds the shared response helpers. Every failure goes through
// fail() so clients always receive the same envelope:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "resource not found"
//	}
//
// Success bodies are plain JSON of whatever the handler produced, written via
// ok() or noContent().
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-garage-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every endpoint. Code is a
// stable machine-readable string (see errors.go); Message is safe to show to
// users; RequestID echoes X-Request-ID so a client error can be matched to
// server logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"resource not found"`
}

// fail aborts the request with a structured error body. Server-side failures
// (5xx) are additionally logged through the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail exposes fail to other packages, mainly the router's no-route and
// method-not-allowed handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent answers 204 for operations with nothing to return.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
