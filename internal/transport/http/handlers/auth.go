package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zywangzy/fun-with-flags/internal/infra/security"
	"github.com/zywangzy/fun-with-flags/internal/repository"
	"github.com/zywangzy/fun-with-flags/internal/transport/http/middleware"
	"github.com/zywangzy/fun-with-flags/internal/usecase"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.POST("/fresh-login", middleware.RequireRefresh(h.auth), h.freshLogin)
	r.POST("/refresh", h.refresh)
	r.POST("/logout", h.logout)
}

func (h *AuthHandler) register(c *gin.Context) {
	var body RegistrationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	req, err := usecase.NewRegisterRequest(body.Username, body.Nickname, body.Email, body.Password)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to register user")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "username or email already exists"},
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{User: user})
}

func (h *AuthHandler) login(c *gin.Context) {
	var body LoginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), usecase.LoginRequest{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusUnauthorized, Message: "invalid credentials"},
		}, http.StatusInternalServerError, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, TokenPairResponse{
		AccessToken:  pair.AccessToken.Token,
		RefreshToken: pair.RefreshToken.Token,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn(pair.AccessToken),
	})
}

func (h *AuthHandler) freshLogin(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var body FreshLoginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password is required"))
		return
	}

	access, err := h.auth.FreshLogin(c.Request.Context(), userID, body.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusUnauthorized, Message: "invalid credentials"},
		}, http.StatusInternalServerError, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, AccessTokenResponse{
		AccessToken: access.Token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn(access),
		Fresh:       access.Fresh,
	})
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var body TokenRefreshRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh_token is required"))
		return
	}

	access, err := h.auth.RefreshAccessToken(c.Request.Context(), body.RefreshToken)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: security.ErrExpiredToken, Status: http.StatusUnauthorized, Message: "refresh token expired"},
			{Err: security.ErrInvalidToken, Status: http.StatusUnauthorized, Message: "invalid refresh token"},
			{Err: repository.ErrNotFound, Status: http.StatusUnauthorized, Message: "refresh token revoked"},
		}, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, AccessTokenResponse{
		AccessToken: access.Token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn(access),
		Fresh:       access.Fresh,
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	var body LogoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh_token is required"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), body.RefreshToken); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: security.ErrExpiredToken, Status: http.StatusUnauthorized, Message: "refresh token expired"},
			{Err: security.ErrInvalidToken, Status: http.StatusUnauthorized, Message: "invalid refresh token"},
		}, http.StatusInternalServerError, "failed to logout")
		return
	}

	c.Status(http.StatusNoContent)
}
