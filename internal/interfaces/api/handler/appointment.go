package handler

import (
	"net/http"

	"carereminder/internal/application/dto"
	"carereminder/internal/application/service"

	"github.com/labstack/echo/v4"
)

// AppointmentHandler serves appointment CRUD. Each mutation reschedules the reminder before responding.
type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// Create handles POST /appointments.
func (h *AppointmentHandler) Create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req dto.CreateAppointmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	req.UserID = uid

	resp, err := h.appointmentService.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// List handles GET /appointments.
func (h *AppointmentHandler) List(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	list, err := h.appointmentService.List(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /appointments/:id.
func (h *AppointmentHandler) Get(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	resp, err := h.appointmentService.Get(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Update handles PUT /appointments/:id.
func (h *AppointmentHandler) Update(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAppointmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	req.UserID = uid
	req.AppointmentID = c.Param("id")

	resp, err := h.appointmentService.Update(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /appointments/:id.
func (h *AppointmentHandler) Delete(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.appointmentService.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetReminder handles GET /appointments/:id/reminder.
func (h *AppointmentHandler) GetReminder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	resp, err := h.appointmentService.GetReminder(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
