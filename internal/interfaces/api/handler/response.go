package handler

import (
	"net/http"

	appErrors "carereminder/internal/pkg/errors"
	"carereminder/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// HeaderUserID carries the caller's identity. Authentication happens upstream.
const HeaderUserID = "X-User-ID"

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Error     ErrorInfo `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
}

// ErrorInfo holds a machine-readable code and a human message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate validates a request DTO.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return errors.Wrapf(appErrors.ErrInvalidInput, "%v", err)
	}
	return nil
}

// NewHTTPErrorHandler maps application errors onto status codes in one place.
func NewHTTPErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, code, message := classify(err)
		if status >= http.StatusInternalServerError {
			log.WithFields(logger.Fields{
				"method": c.Request().Method,
				"path":   c.Request().URL.Path,
			}).Error("Unhandled error", err)
		}
		resp := ErrorResponse{
			Error:     ErrorInfo{Code: code, Message: message},
			RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, resp)
		}
		if err != nil {
			log.Error("Failed to write error response", err)
		}
	}
}

func classify(err error) (int, string, string) {
	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, appErrors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.Is(err, appErrors.ErrAppointmentNotFound):
		return http.StatusNotFound, "APPOINTMENT_NOT_FOUND", "appointment not found"
	case errors.Is(err, appErrors.ErrReminderNotFound):
		return http.StatusNotFound, "REMINDER_NOT_FOUND", "no reminder scheduled for this appointment"
	case errors.Is(err, appErrors.ErrUserNotFound):
		return http.StatusNotFound, "USER_NOT_FOUND", "user not found"
	case errors.As(err, &httpErr):
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
		return httpErr.Code, "HTTP_ERROR", message
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error, please try again later"
	}
}

// userID returns the caller's identity or a 401.
func userID(c echo.Context) (string, error) {
	id := c.Request().Header.Get(HeaderUserID)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing "+HeaderUserID+" header")
	}
	return id, nil
}

// bindAndValidate binds the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.Wrapf(appErrors.ErrInvalidInput, "malformed request body: %v", err)
	}
	return c.Validate(req)
}
