package security

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/vitapstudent/faculty-hub/internal/database"
	apperrors "github.com/vitapstudent/faculty-hub/internal/errors"
)

// SessionCookie is the cookie carrying the session token
const SessionCookie = "session_token"

// userKey is the gin context key the authenticated user is stored under
const userKey = "auth_user"

// SecurityConfig holds middleware configuration
type SecurityConfig struct {
	RequestsPerSecond float64       `json:"requests_per_second"`
	Burst             int           `json:"burst"`
	RequestTimeout    time.Duration `json:"request_timeout"`
}

// DefaultSecurityConfig returns production-ready defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		RequestsPerSecond: 20,
		Burst:             40,
		RequestTimeout:    30 * time.Second,
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SecurityMiddleware bundles the request-hardening middleware and the
// session authentication helpers.
type SecurityMiddleware struct {
	config      SecurityConfig
	userService *database.UserService

	mu         sync.Mutex
	ipLimiters map[string]*ipLimiter
}

// NewSecurityMiddleware creates the middleware set and starts the
// limiter cleanup loop.
func NewSecurityMiddleware(config SecurityConfig, userService *database.UserService) *SecurityMiddleware {
	sm := &SecurityMiddleware{
		config:      config,
		userService: userService,
		ipLimiters:  make(map[string]*ipLimiter),
	}
	go sm.cleanupLoop()
	return sm
}

var (
	scriptPattern  = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// SanitizeInput strips markup from user-supplied free text such as
// comments and chat messages.
func (sm *SecurityMiddleware) SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = scriptPattern.ReplaceAllString(input, "")
	input = htmlTagPattern.ReplaceAllString(input, "")
	input = spacePattern.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// RateLimitByIP implements per-IP rate limiting
func (sm *SecurityMiddleware) RateLimitByIP(c *gin.Context) {
	clientIP := c.ClientIP()

	sm.mu.Lock()
	entry, exists := sm.ipLimiters[clientIP]
	if !exists {
		entry = &ipLimiter{
			limiter: rate.NewLimiter(rate.Limit(sm.config.RequestsPerSecond), sm.config.Burst),
		}
		sm.ipLimiters[clientIP] = entry
	}
	entry.lastSeen = time.Now()
	sm.mu.Unlock()

	if !entry.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded for IP",
			"retry_after": "1",
		})
		c.Abort()
		return
	}

	c.Next()
}

// SecurityHeaders adds security headers to responses
func (sm *SecurityMiddleware) SecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")

	if c.Request.TLS != nil {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	c.Header("Content-Security-Policy", "default-src 'self'; img-src 'self' https:; style-src 'self' 'unsafe-inline'")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Permissions-Policy", "camera=(), microphone=()")

	c.Next()
}

// ValidateContentType rejects bodies that are not JSON or form encoded
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")

	allowedTypes := []string{
		"application/json",
		"application/x-www-form-urlencoded",
		"multipart/form-data",
	}

	if contentType != "" {
		found := false
		for _, allowed := range allowedTypes {
			if strings.Contains(strings.ToLower(contentType), allowed) {
				found = true
				break
			}
		}
		if !found {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported content type"})
			c.Abort()
			return
		}
	}

	c.Next()
}

// RequestTimeout enforces a per-request deadline
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// sessionToken extracts the token from the session cookie or the
// Authorization header.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

// RequireUser rejects unauthenticated requests and stores the resolved
// user in the gin context for the handler.
func (sm *SecurityMiddleware) RequireUser(c *gin.Context) {
	token := sessionToken(c)
	if token == "" {
		appErr := apperrors.NewAuthError("Not authenticated")
		c.JSON(appErr.HTTPStatus, appErr)
		c.Abort()
		return
	}

	user, err := sm.userService.Authenticate(token)
	if err != nil {
		appErr := apperrors.NewInternalError("failed to resolve session", err)
		c.JSON(appErr.HTTPStatus, appErr)
		c.Abort()
		return
	}
	if user == nil {
		appErr := apperrors.NewAuthError("Invalid or expired session")
		c.JSON(appErr.HTTPStatus, appErr)
		c.Abort()
		return
	}

	c.Set(userKey, user)
	c.Next()
}

// RequireAdmin rejects requests whose user is not an admin. Must run
// after RequireUser.
func (sm *SecurityMiddleware) RequireAdmin(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil || !user.IsAdmin {
		appErr := apperrors.NewForbiddenError("Admin access required")
		c.JSON(appErr.HTTPStatus, appErr)
		c.Abort()
		return
	}
	c.Next()
}

// CurrentUser returns the user RequireUser stored on the context
func CurrentUser(c *gin.Context) *database.User {
	value, exists := c.Get(userKey)
	if !exists {
		return nil
	}
	user, _ := value.(*database.User)
	return user
}

func (sm *SecurityMiddleware) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-30 * time.Minute)
		sm.mu.Lock()
		for ip, entry := range sm.ipLimiters {
			if entry.lastSeen.Before(cutoff) {
				delete(sm.ipLimiters, ip)
			}
		}
		sm.mu.Unlock()
	}
}
