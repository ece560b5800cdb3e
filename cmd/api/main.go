package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application Layer
	appService "carereminder/internal/application/service"
	"carereminder/internal/config"

	// Infrastructure Layer
	"carereminder/internal/infrastructure/database/sqlite"
	"carereminder/internal/infrastructure/push"
	"carereminder/internal/infrastructure/scheduler"

	// Interfaces Layer
	"carereminder/internal/interfaces/api/handler"
	"carereminder/internal/interfaces/api/router"

	// Packages
	appLogger "carereminder/internal/pkg/logger"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func gracefulShutdown(
	apiServer *http.Server,
	schedulerSvc appService.SchedulerService,
	housekeeping *scheduler.Cron,
	db *gorm.DB,
	appLog appLogger.Logger,
	done chan bool,
) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	appLog.Info("Shutting down gracefully, press Ctrl+C again to force")

	// Stop accepting requests first so no new reminders are scheduled.
	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", err)
	}

	// Disarm timers and wait for in-flight dispatches; pending reminders are re-armed on next start.
	schedulerSvc.Stop()
	housekeeping.Stop()

	if err := sqlite.CloseDB(db); err != nil {
		appLog.Error("Error closing database", err)
	} else {
		appLog.Info("Database connection closed.")
	}

	appLog.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// newGateway builds the configured push gateway behind the rate limiter.
func newGateway(ctx context.Context, cfg *config.Config, appLog appLogger.Logger) (push.Gateway, error) {
	var (
		gw  push.Gateway
		err error
	)
	switch cfg.Push.Provider {
	case config.ProviderFCM:
		gw, err = push.NewFirebaseGateway(ctx, cfg.Firebase.CredentialsPath)
	case config.ProviderLINE:
		gw, err = push.NewLineGateway(cfg.LINE.ChannelSecret, cfg.LINE.ChannelToken)
	case config.ProviderLog:
		appLog.Warn("Push provider is 'log'; notifications will only be logged.")
		gw = push.NewLogGateway(appLog)
	default:
		err = errors.Errorf("unknown push provider: %s", cfg.Push.Provider)
	}
	if err != nil {
		return nil, err
	}
	return push.NewRateLimitedGateway(gw, cfg.Push.RatePerSecond, cfg.Push.Burst), nil
}

func main() {
	// --- Initialization ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	appLog := appLogger.New(appLogger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	appLog.Info(fmt.Sprintf("Logger initialized (env=%s, push provider=%s).", cfg.Env, cfg.Push.Provider))

	// --- Infrastructure ---
	db, err := sqlite.NewDB(sqlite.Options{
		Path:          cfg.Database.Path,
		Debug:         cfg.Database.Debug,
		SlowThreshold: cfg.Database.SlowThreshold,
	}, appLog)
	if err != nil {
		appLog.Error("Failed to open database", err)
		os.Exit(1)
	}
	userRepo := sqlite.NewUserRepository(db)
	appointmentRepo := sqlite.NewAppointmentRepository(db)
	reminderRepo := sqlite.NewReminderRepository(db)
	appLog.Info("Database and repositories initialized.")

	gateway, err := newGateway(context.Background(), cfg, appLog)
	if err != nil {
		appLog.Error("Failed to initialize push gateway", err)
		os.Exit(1)
	}

	// --- Application Services ---
	dispatcherSvc := appService.NewDispatcherService(reminderRepo, appointmentRepo, userRepo, gateway,
		appService.DispatcherConfig{
			SendTimeout: cfg.Push.Timeout,
			Location:    cfg.DisplayLocation(),
		}, appLog)
	schedulerSvc := appService.NewSchedulerService(reminderRepo, appointmentRepo, dispatcherSvc, time.Now, appLog)
	appointmentSvc := appService.NewAppointmentService(appointmentRepo, reminderRepo, schedulerSvc, appLog)
	userSvc := appService.NewUserService(userRepo, appLog)
	housekeeping := scheduler.NewCron(appLog)
	maintenanceSvc := appService.NewMaintenanceService(reminderRepo, schedulerSvc, dispatcherSvc, housekeeping,
		cfg.Housekeeping.Retention, time.Now, appLog)
	appLog.Info("Application services initialized.")

	// --- Recover Schedules ---
	if err := schedulerSvc.RecoverOnStartup(context.Background()); err != nil {
		// Log the error but continue starting the server
		appLog.Error("Failed to recover reminder schedules on startup", err)
	}

	// --- Housekeeping ---
	if _, err := housekeeping.AddJob(cfg.Housekeeping.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		// Errors are logged by the service.
		_, _ = maintenanceSvc.PurgeTerminal(ctx)
	}); err != nil {
		appLog.Error("Failed to register housekeeping job", err)
		os.Exit(1)
	}
	housekeeping.Start()

	// --- API Handlers ---
	routerCfg := &router.Config{
		AppointmentHandler: handler.NewAppointmentHandler(appointmentSvc),
		UserHandler:        handler.NewUserHandler(userSvc),
		AdminHandler:       handler.NewAdminHandler(maintenanceSvc),
		Logger:             appLog,
	}
	if cfg.Push.Provider == config.ProviderLINE {
		routerCfg.LineHandler = handler.NewLineHandler(cfg.LINE.ChannelSecret, userSvc, appLog)
	}
	echoRouter := router.NewRouter(routerCfg)

	// --- HTTP Server ---
	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      echoRouter,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// --- Start Server & Shutdown Handling ---
	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, schedulerSvc, housekeeping, db, appLog, done)

	appLog.Info(fmt.Sprintf("Server starting on port %d", cfg.HTTP.Port))
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("HTTP server ListenAndServe error", err)
		os.Exit(1)
	}

	// Wait for graceful shutdown signal
	<-done
	appLog.Info("Graceful shutdown complete.")
}
