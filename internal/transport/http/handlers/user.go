package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zywangzy/fun-with-flags/internal/repository"
	"github.com/zywangzy/fun-with-flags/internal/transport/http/middleware"
	"github.com/zywangzy/fun-with-flags/internal/usecase"
)

// UserHandler exposes profile endpoints for the authenticated user.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds profile routes. The group must already carry the auth
// middleware; deletion additionally demands a fresh token.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.read)
	r.PATCH("", h.update)
	r.DELETE("", middleware.RequireFresh(), h.remove)
}

func (h *UserHandler) read(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	user, err := h.users.ReadUserBasic(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to read user")
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: user})
}

func (h *UserHandler) update(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var body UserUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid update payload"))
		return
	}

	req, err := usecase.NewUserUpdateRequest(userID, body, middleware.IsTokenFresh(c))
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to update user")
		return
	}

	if err := h.users.UpdateUser(c.Request.Context(), req); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "username or email already exists"},
		}, http.StatusInternalServerError, "failed to update user")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user updated"})
}

func (h *UserHandler) remove(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), userID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}
