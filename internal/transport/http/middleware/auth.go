package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zywangzy/fun-with-flags/internal/infra/security"
	"github.com/zywangzy/fun-with-flags/internal/repository"
	"github.com/zywangzy/fun-with-flags/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the Authorization header, confirms the access token's
// jti is still live and stores the caller identity on the context. A token
// whose jti is missing from the session cache is treated as revoked.
func RequireAuth(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := authService.ParseAccessToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrExpiredToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "access token expired"))
			case errors.Is(err, repository.ErrNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "access token revoked"))
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid access token"))
			}
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TokenFreshKey, claims.Fresh)
		c.Set(TokenJTIKey, claims.ID)

		c.Next()
	}
}

// RequireRefresh validates a refresh token from the Authorization header.
// Used by the fresh-login flow, which re-checks the password for a caller
// whose identity is proven by a live refresh token.
func RequireRefresh(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := authService.ParseRefreshToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrExpiredToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "refresh token expired"))
			case errors.Is(err, repository.ErrNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "refresh token revoked"))
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid refresh token"))
			}
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TokenJTIKey, claims.ID)

		c.Next()
	}
}

// RequireFresh rejects requests whose access token was minted through the
// refresh flow. Protected profile changes demand a recent credential check.
func RequireFresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsTokenFresh(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "fresh access token required"))
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "missing authorization header"))
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "missing access token"))
		return "", false
	}

	return token, true
}
