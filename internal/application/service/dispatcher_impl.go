package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"carereminder/internal/domain/constant"
	"carereminder/internal/domain/entity"
	"carereminder/internal/domain/repository"
	"carereminder/internal/infrastructure/push"
	appErrors "carereminder/internal/pkg/errors"
	"carereminder/internal/pkg/logger"

	"github.com/pkg/errors"
)

const (
	defaultSendTimeout = 10 * time.Second
	// notificationDateLayout renders dates without seconds.
	notificationDateLayout = "Jan 2, 2006 at 3:04 PM MST"
	notificationType       = "appointment_reminder"
)

// DispatcherConfig holds the dispatcher's tunables.
type DispatcherConfig struct {
	SendTimeout time.Duration
	Location    *time.Location
	Now         func() time.Time
}

type dispatcherService struct {
	reminderRepo    repository.ReminderRepository
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
	gateway         push.Gateway
	log             logger.Logger
	cfg             DispatcherConfig

	mu    sync.Mutex
	stats DispatchStats
}

// NewDispatcherService creates a new instance of DispatcherService implementation.
func NewDispatcherService(
	reminderRepo repository.ReminderRepository,
	appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	gateway push.Gateway,
	cfg DispatcherConfig,
	log logger.Logger,
) DispatcherService {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &dispatcherService{
		reminderRepo:    reminderRepo,
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		gateway:         gateway,
		log:             log,
		cfg:             cfg,
	}
}

// Dispatch resolves the appointment and push token at fire time, sends once and records Fired or Failed.
func (d *dispatcherService) Dispatch(ctx context.Context, r *entity.ScheduledReminder, snapshot *entity.Appointment) FireResult {
	log := d.log.WithFields(logger.Fields{
		"reminder_id":    r.ID,
		"appointment_id": r.AppointmentID,
		"fire_time":      r.FireAt.UTC().Format(time.RFC3339),
	})
	d.count(func(s *DispatchStats) {
		s.Dispatched++
		s.LastDispatchAt = d.cfg.Now()
	})

	current, err := d.reminderRepo.FindByID(ctx, r.ID)
	switch {
	case errors.Is(err, appErrors.ErrReminderNotFound):
		log.Warn("Reminder vanished before dispatch; skipping.")
		d.count(func(s *DispatchStats) { s.Skipped++ })
		return FireResult{ReminderID: r.ID, AppointmentID: r.AppointmentID, Skipped: true}
	case err != nil:
		// Without the current status a cancelled reminder could be sent; fail it instead.
		return d.fail(ctx, log, r, errors.Wrapf(appErrors.ErrDeliveryFailed, "reload reminder: %v", err))
	case !current.Status.Settleable():
		log.Info(fmt.Sprintf("Reminder is %s; skipping dispatch.", current.Status))
		d.count(func(s *DispatchStats) { s.Skipped++ })
		return FireResult{ReminderID: r.ID, AppointmentID: r.AppointmentID, Status: current.Status, Skipped: true}
	}

	appointment, err := d.appointmentRepo.FindByID(ctx, r.AppointmentID)
	switch {
	case errors.Is(err, appErrors.ErrAppointmentNotFound) && snapshot != nil:
		// Deleted after the reminder fired; the send still goes out.
		log.Info("Appointment deleted during dispatch; sending from the fire-time snapshot.")
		appointment = snapshot
	case err != nil:
		return d.fail(ctx, log, r, errors.Wrapf(appErrors.ErrDeliveryFailed, "load appointment: %v", err))
	}

	token, err := d.userRepo.GetPushToken(ctx, appointment.UserID)
	if err != nil {
		return d.fail(ctx, log, r, errors.Wrapf(appErrors.ErrDeliveryFailed, "load push token: %v", err))
	}
	if err := push.ValidateToken(token); err != nil {
		return d.fail(ctx, log, r, err)
	}

	msg, err := BuildMessage(appointment, d.cfg.Location)
	if err != nil {
		return d.fail(ctx, log, r, errors.Wrapf(appErrors.ErrDeliveryFailed, "build payload: %v", err))
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	err = d.gateway.Send(sendCtx, token, msg)
	cancel()
	if err != nil {
		if !errors.Is(err, push.ErrInvalidToken) {
			err = errors.Wrapf(appErrors.ErrDeliveryFailed, "%v", err)
		}
		return d.fail(ctx, log, r, err)
	}

	changed, err := d.reminderRepo.MarkFired(ctx, r.ID)
	if err != nil {
		log.Error("Notification sent but recording Fired failed", err)
	} else if !changed {
		log.Warn("Notification sent for a reminder that was settled or superseded meanwhile.")
	}
	d.count(func(s *DispatchStats) { s.Fired++ })
	log.Info("Reminder fired.")
	return FireResult{ReminderID: r.ID, AppointmentID: r.AppointmentID, Status: constant.ReminderFired}
}

// fail records the terminal Failed transition. Every failure is logged at error level.
func (d *dispatcherService) fail(ctx context.Context, log logger.Logger, r *entity.ScheduledReminder, cause error) FireResult {
	reason := appErrors.Reason(cause)
	log = log.WithFields(logger.Fields{"reason": reason})

	changed, err := d.reminderRepo.MarkFailed(ctx, r.ID, reason)
	switch {
	case err != nil:
		log.Error("Failed to record Failed transition", err)
	case !changed:
		log.Warn("Reminder was settled or superseded before its failure could be recorded.")
	}
	log.Error("Reminder delivery failed", cause)

	d.count(func(s *DispatchStats) {
		s.Failed++
		if reason == appErrors.ReasonInvalidToken {
			s.InvalidToken++
		} else {
			s.DeliveryFailed++
		}
	})
	return FireResult{
		ReminderID:    r.ID,
		AppointmentID: r.AppointmentID,
		Status:        constant.ReminderFailed,
		Reason:        reason,
		Err:           cause,
	}
}

func (d *dispatcherService) count(update func(s *DispatchStats)) {
	d.mu.Lock()
	update(&d.stats)
	d.mu.Unlock()
}

// Stats returns a snapshot of the dispatch counters.
func (d *dispatcherService) Stats() DispatchStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// BuildMessage renders the reminder notification for appointment a, formatting dates in loc.
func BuildMessage(a *entity.Appointment, loc *time.Location) (push.Message, error) {
	if loc == nil {
		loc = time.UTC
	}
	blob, err := json.Marshal(a)
	if err != nil {
		return push.Message{}, errors.Wrap(err, "marshal appointment")
	}
	return push.Message{
		Title: "Appointment Reminder: " + a.Title,
		Body: fmt.Sprintf("Don't forget your appointment at %s on %s.",
			a.Location, a.ScheduledAt.In(loc).Format(notificationDateLayout)),
		Data: map[string]string{
			"type":          notificationType,
			"appointmentId": a.ID,
			"appointment":   string(blob),
		},
	}, nil
}
