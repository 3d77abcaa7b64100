package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader is the HTTP header name for trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for trace ID
	TraceIDKey = "trace_id"
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey = "user_id"
	// TokenFreshKey is the context key for the access token's fresh flag
	TokenFreshKey = "token_fresh"
	// TokenJTIKey is the context key for the access token's jti
	TokenJTIKey = "token_jti"
)

// EnrichContext adds a trace ID to each request, generating one when the
// caller did not supply it.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}

	if id, ok := userID.(int); ok && id > 0 {
		return id, true
	}

	return 0, false
}

// IsTokenFresh reports whether the request carries a fresh access token.
func IsTokenFresh(c *gin.Context) bool {
	fresh, exists := c.Get(TokenFreshKey)
	if !exists {
		return false
	}

	value, ok := fresh.(bool)
	return ok && value
}
