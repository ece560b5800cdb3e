package handler

import (
	"net/http"

	"carereminder/internal/application/dto"
	"carereminder/internal/application/service"

	"github.com/labstack/echo/v4"
)

// UserHandler serves the caller's push destination.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterPushToken handles PUT /users/me/push-token.
func (h *UserHandler) RegisterPushToken(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req dto.RegisterPushTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	req.UserID = uid

	if err := h.userService.RegisterPushToken(c.Request().Context(), req); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
