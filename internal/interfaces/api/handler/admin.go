package handler

import (
	"net/http"
	"strconv"

	"carereminder/internal/application/dto"
	"carereminder/internal/application/service"
	"carereminder/internal/domain/constant"
	appErrors "carereminder/internal/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AdminHandler exposes operator views of reminder outcomes.
type AdminHandler struct {
	maintenanceService service.MaintenanceService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(maintenanceService service.MaintenanceService) *AdminHandler {
	return &AdminHandler{maintenanceService: maintenanceService}
}

// ListReminders handles GET /admin/reminders?status=failed&limit=50.
func (h *AdminHandler) ListReminders(c echo.Context) error {
	req := dto.ListRemindersRequest{Status: constant.ReminderStatus(c.QueryParam("status"))}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return errors.Wrapf(appErrors.ErrInvalidInput, "limit must be a non-negative integer, got %q", raw)
		}
		req.Limit = limit
	}
	list, err := h.maintenanceService.ListReminders(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// DispatchStats handles GET /admin/dispatch-stats.
func (h *AdminHandler) DispatchStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.maintenanceService.Stats())
}

// Health handles GET /healthz.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
