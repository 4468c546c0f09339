package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vitapstudent/faculty-hub/internal/security"
)

// check runs one per-user limit check and writes the 429 when the
// budget is exhausted. A limiter failure never blocks the request.
func check(c *gin.Context, fn func() (*Result, error)) {
	result, err := fn()
	if err != nil {
		slog.Error("rate limit check failed", "error", err)
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

	if !result.Allowed {
		retryAfter := int(result.RetryAfter.Seconds())
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": retryAfter,
		})
		c.Abort()
		return
	}

	c.Next()
}

// RatingSubmitMiddleware limits rating submissions per user. Must run
// after the session middleware so the user is known.
func (rl *RateLimiter) RatingSubmitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := security.CurrentUser(c)
		if user == nil {
			c.Next()
			return
		}
		check(c, func() (*Result, error) {
			return rl.AllowRatingSubmit(c.Request.Context(), user.UserID)
		})
	}
}

// ChatMessageMiddleware limits chat messages per user
func (rl *RateLimiter) ChatMessageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := security.CurrentUser(c)
		if user == nil {
			c.Next()
			return
		}
		check(c, func() (*Result, error) {
			return rl.AllowChatMessage(c.Request.Context(), user.UserID)
		})
	}
}
