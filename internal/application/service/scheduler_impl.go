package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carereminder/internal/domain/entity"
	"carereminder/internal/domain/policy"
	"carereminder/internal/domain/repository"
	appErrors "carereminder/internal/pkg/errors"
	"carereminder/internal/pkg/keymutex"
	"carereminder/internal/pkg/logger"

	"github.com/pkg/errors"
)

// task is one armed reminder: a goroutine parked on a timer until fire time or cancellation.
type task struct {
	reminderID uint
	fireAt     time.Time
	cancel     context.CancelFunc
}

type schedulerService struct {
	reminderRepo    repository.ReminderRepository
	appointmentRepo repository.AppointmentRepository
	dispatcher      DispatcherService
	log          logger.Logger
	now          func() time.Time
	locks        *keymutex.KeyMutex

	mu       sync.Mutex
	tasks    map[string]*task // appointment ID -> armed task
	inflight map[string]uint  // appointment ID -> reminder being dispatched
	stopped  bool
	wg       sync.WaitGroup

	root     context.Context
	stopRoot context.CancelFunc
}

// NewSchedulerService creates a new instance of SchedulerService implementation.
// now defaults to time.Now.
func NewSchedulerService(
	reminderRepo repository.ReminderRepository,
	appointmentRepo repository.AppointmentRepository,
	dispatcher DispatcherService,
	now func() time.Time,
	log logger.Logger,
) SchedulerService {
	if now == nil {
		now = time.Now
	}
	root, stop := context.WithCancel(context.Background())
	return &schedulerService{
		reminderRepo:    reminderRepo,
		appointmentRepo: appointmentRepo,
		dispatcher:      dispatcher,
		log:             log,
		now:             now,
		locks:           keymutex.New(),
		tasks:           make(map[string]*task),
		inflight:        make(map[string]uint),
		root:            root,
		stopRoot:        stop,
	}
}

// Schedule computes the fire time and arms a timer for it.
func (s *schedulerService) Schedule(ctx context.Context, appointment *entity.Appointment) error {
	unlock := s.locks.Lock(appointment.ID)
	defer unlock()
	return s.scheduleLocked(ctx, appointment)
}

// Reschedule cancels then schedules under a single per-appointment lock.
func (s *schedulerService) Reschedule(ctx context.Context, appointment *entity.Appointment) error {
	unlock := s.locks.Lock(appointment.ID)
	defer unlock()
	if err := s.cancelLocked(ctx, appointment.ID); err != nil {
		return err
	}
	return s.scheduleLocked(ctx, appointment)
}

// Cancel disarms the timer and marks the reminder Cancelled.
func (s *schedulerService) Cancel(ctx context.Context, appointmentID string) error {
	unlock := s.locks.Lock(appointmentID)
	defer unlock()
	return s.cancelLocked(ctx, appointmentID)
}

func (s *schedulerService) scheduleLocked(ctx context.Context, appointment *entity.Appointment) error {
	fireAt, err := policy.ComputeFireTime(appointment.ScheduledAt, appointment.ReminderPreference, s.now())
	if err != nil {
		if cancelErr := s.cancelLocked(ctx, appointment.ID); cancelErr != nil {
			return cancelErr
		}
		if errors.Is(err, policy.ErrNoReminder) {
			s.log.Debug(fmt.Sprintf("Appointment %s has no reminder preference; nothing armed.", appointment.ID))
			return nil
		}
		s.log.Warn(fmt.Sprintf("Reminder for appointment %s rejected: %v", appointment.ID, err))
		return err
	}

	reminder := &entity.ScheduledReminder{
		AppointmentID: appointment.ID,
		UserID:        appointment.UserID,
		FireAt:        fireAt,
	}
	// Store first: the old timer stays armed if persisting the replacement fails.
	if err := s.reminderRepo.Upsert(ctx, reminder); err != nil {
		s.log.Error(fmt.Sprintf("Failed to persist reminder for appointment %s", appointment.ID), err)
		return errors.Wrapf(appErrors.ErrScheduling, "%v", err)
	}
	s.disarm(appointment.ID)
	s.arm(reminder)

	s.log.Info(fmt.Sprintf("Scheduled reminder %d for appointment %s at %s",
		reminder.ID, appointment.ID, fireAt.Format(time.RFC3339)))
	return nil
}

func (s *schedulerService) cancelLocked(ctx context.Context, appointmentID string) error {
	s.disarm(appointmentID)

	s.mu.Lock()
	reminderID, dispatching := s.inflight[appointmentID]
	s.mu.Unlock()
	if dispatching {
		// The send is already under way and its row is Dispatching; it settles as Fired or Failed.
		s.log.Info(fmt.Sprintf("Reminder %d for appointment %s is being dispatched; leaving it to settle.",
			reminderID, appointmentID))
		return nil
	}

	if err := s.reminderRepo.Cancel(ctx, appointmentID); err != nil {
		s.log.Error(fmt.Sprintf("Failed to cancel reminder for appointment %s", appointmentID), err)
		return errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	return nil
}

// arm starts the task goroutine for r. Callers hold r's appointment lock.
func (s *schedulerService) arm(r *entity.ScheduledReminder) {
	ctx, cancel := context.WithCancel(s.root)
	t := &task{reminderID: r.ID, fireAt: r.FireAt, cancel: cancel}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		cancel()
		s.log.Warn(fmt.Sprintf("Scheduler stopped; reminder %d not armed.", r.ID))
		return
	}
	s.tasks[r.AppointmentID] = t
	s.wg.Add(1)
	s.mu.Unlock()

	snapshot := *r
	go s.run(ctx, t, &snapshot)
}

// disarm cancels the appointment's armed timer, if any. Callers hold the appointment lock.
func (s *schedulerService) disarm(appointmentID string) {
	s.mu.Lock()
	t, ok := s.tasks[appointmentID]
	if ok {
		delete(s.tasks, appointmentID)
	}
	s.mu.Unlock()

	if ok {
		t.cancel()
		s.log.Debug(fmt.Sprintf("Disarmed reminder %d for appointment %s", t.reminderID, appointmentID))
	}
}

func (s *schedulerService) run(ctx context.Context, t *task, r *entity.ScheduledReminder) {
	defer s.wg.Done()
	defer t.cancel()

	delay := t.fireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	snapshot, ok := s.claim(ctx, t, r)
	if !ok {
		return
	}
	defer s.release(r.AppointmentID, r.ID)

	// A cancel, reschedule or delete arriving from here on does not abort the send.
	result := s.dispatcher.Dispatch(context.WithoutCancel(ctx), r, snapshot)
	if result.Err != nil {
		s.log.Warn(fmt.Sprintf("Reminder %d for appointment %s settled as %s (%s)",
			r.ID, r.AppointmentID, result.Status, result.Reason))
	}
}

// claim moves t from armed to in-flight if it is still the appointment's current task.
// Under the appointment lock it marks the row Dispatching and snapshots the appointment, so a
// later reschedule or delete can neither cancel the row nor starve the send of its payload.
func (s *schedulerService) claim(ctx context.Context, t *task, r *entity.ScheduledReminder) (*entity.Appointment, bool) {
	unlock := s.locks.Lock(r.AppointmentID)
	defer unlock()

	s.mu.Lock()
	if ctx.Err() != nil || s.tasks[r.AppointmentID] != t {
		s.mu.Unlock()
		return nil, false
	}
	delete(s.tasks, r.AppointmentID)
	s.inflight[r.AppointmentID] = r.ID
	s.mu.Unlock()

	// The dispatch context outlives cancellation; store calls here must too.
	storeCtx := context.WithoutCancel(ctx)
	changed, err := s.reminderRepo.MarkDispatching(storeCtx, r.ID)
	switch {
	case err != nil:
		// Let the dispatcher reload the row and record the outcome.
		s.log.Error(fmt.Sprintf("Failed to mark reminder %d dispatching", r.ID), err)
	case !changed:
		s.log.Info(fmt.Sprintf("Reminder %d is no longer pending; not dispatching.", r.ID))
		s.release(r.AppointmentID, r.ID)
		return nil, false
	}

	snapshot, err := s.appointmentRepo.FindByID(storeCtx, r.AppointmentID)
	if err != nil {
		s.log.Warn(fmt.Sprintf("No appointment snapshot for reminder %d: %v", r.ID, err))
	}
	return snapshot, true
}

func (s *schedulerService) release(appointmentID string, reminderID uint) {
	s.mu.Lock()
	if s.inflight[appointmentID] == reminderID {
		delete(s.inflight, appointmentID)
	}
	s.mu.Unlock()
}

// RecoverOnStartup re-arms every Pending reminder. Overdue reminders are dispatched immediately.
func (s *schedulerService) RecoverOnStartup(ctx context.Context) error {
	s.log.Info("Recovering pending reminders from the store...")

	// Dispatching rows not owned by this process were interrupted mid-send; whether the
	// notification went out is unknown, so they are failed rather than sent twice.
	s.mu.Lock()
	live := make([]uint, 0, len(s.inflight))
	for _, id := range s.inflight {
		live = append(live, id)
	}
	s.mu.Unlock()
	interrupted, err := s.reminderRepo.FailDispatching(ctx, appErrors.ReasonDeliveryFailed, live)
	if err != nil {
		s.log.Error("Failed to settle interrupted dispatches", err)
		return errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	if interrupted > 0 {
		s.log.Warn(fmt.Sprintf("Marked %d interrupted dispatches as %s.", interrupted, appErrors.ReasonDeliveryFailed))
	}

	reminders, err := s.reminderRepo.ListPending(ctx)
	if err != nil {
		s.log.Error("Failed to list pending reminders for recovery", err)
		return errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}

	now := s.now()
	armed, overdue := 0, 0
	for _, r := range reminders {
		unlock := s.locks.Lock(r.AppointmentID)
		s.mu.Lock()
		_, armedAlready := s.tasks[r.AppointmentID]
		_, dispatching := s.inflight[r.AppointmentID]
		s.mu.Unlock()
		if !armedAlready && !dispatching {
			if !r.FireAt.After(now) {
				overdue++
			}
			s.arm(r)
			armed++
		}
		unlock()
	}

	s.log.Info(fmt.Sprintf("Recovery complete. Armed: %d (overdue, dispatching now: %d)", armed, overdue))
	return nil
}

// Armed returns the number of armed timers.
func (s *schedulerService) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop disarms every timer and waits for running dispatches.
func (s *schedulerService) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.tasks = make(map[string]*task)
	s.mu.Unlock()

	s.stopRoot()
	s.wg.Wait()
	s.log.Info("Reminder scheduler stopped.")
}
