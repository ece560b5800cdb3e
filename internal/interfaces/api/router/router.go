package router

import (
	"fmt"
	"net/http"

	"carereminder/internal/interfaces/api/handler"
	"carereminder/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config holds the dependencies for the router.
type Config struct {
	AppointmentHandler *handler.AppointmentHandler
	UserHandler        *handler.UserHandler
	AdminHandler       *handler.AdminHandler
	// LineHandler is only set when reminders are delivered through LINE.
	LineHandler *handler.LineHandler
	Logger      logger.Logger
}

// NewRouter creates and configures a new Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(cfg.Logger)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.WithFields(logger.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			}).Info(fmt.Sprintf("REQUEST: %s %s -> %d", v.Method, v.URI, v.Status))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, handler.HeaderUserID},
		MaxAge:       300,
	}))

	// Routes
	e.GET("/healthz", handler.Health)

	e.PUT("/users/me/push-token", cfg.UserHandler.RegisterPushToken)

	appointments := e.Group("/appointments")
	appointments.POST("", cfg.AppointmentHandler.Create)
	appointments.GET("", cfg.AppointmentHandler.List)
	appointments.GET("/:id", cfg.AppointmentHandler.Get)
	appointments.PUT("/:id", cfg.AppointmentHandler.Update)
	appointments.DELETE("/:id", cfg.AppointmentHandler.Delete)
	appointments.GET("/:id/reminder", cfg.AppointmentHandler.GetReminder)

	admin := e.Group("/admin")
	admin.GET("/reminders", cfg.AdminHandler.ListReminders)
	admin.GET("/dispatch-stats", cfg.AdminHandler.DispatchStats)

	if cfg.LineHandler != nil {
		// LINE Platform requires POST for webhook
		e.POST("/line/callback", cfg.LineHandler.HandleWebhook)
	}

	cfg.Logger.Info("Router initialized with routes.")
	return e
}
