package service

import (
	"context"
	"fmt"

	"carereminder/internal/application/dto"
	"carereminder/internal/domain/constant"
	"carereminder/internal/domain/entity"
	"carereminder/internal/domain/repository"
	appErrors "carereminder/internal/pkg/errors"
	"carereminder/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type appointmentService struct {
	appointmentRepo repository.AppointmentRepository
	reminderRepo    repository.ReminderRepository
	scheduler       SchedulerService
	log             logger.Logger
}

// NewAppointmentService creates a new instance of AppointmentService implementation.
func NewAppointmentService(
	appointmentRepo repository.AppointmentRepository,
	reminderRepo repository.ReminderRepository,
	scheduler SchedulerService,
	log logger.Logger,
) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		reminderRepo:    reminderRepo,
		scheduler:       scheduler,
		log:             log,
	}
}

// Create saves a new appointment and schedules its reminder.
func (s *appointmentService) Create(ctx context.Context, req dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	pref := constant.ReminderPreference(req.ReminderPreference)
	if pref == "" {
		pref = constant.PreferenceNone
	}
	appointment := &entity.Appointment{
		ID:                 uuid.NewString(),
		UserID:             req.UserID,
		Title:              req.Title,
		Location:           req.Location,
		ScheduledAt:        req.ScheduledAt,
		ReminderPreference: pref,
		Notes:              req.Notes,
	}
	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		s.log.Error(fmt.Sprintf("Failed to create appointment for user %s", req.UserID), err)
		return nil, errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	s.log.Info(fmt.Sprintf("Created appointment %s for user %s", appointment.ID, req.UserID))

	reminderErr, err := s.syncReminder(ctx, appointment, s.scheduler.Schedule)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, appointment, reminderErr)
}

// Get returns one of the user's appointments with its current reminder.
func (s *appointmentService) Get(ctx context.Context, userID, appointmentID string) (*dto.AppointmentResponse, error) {
	appointment, err := s.owned(ctx, userID, appointmentID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, appointment, "")
}

// List returns the user's appointments ordered by scheduled time.
func (s *appointmentService) List(ctx context.Context, userID string) ([]dto.AppointmentResponse, error) {
	appointments, err := s.appointmentRepo.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to list appointments for user %s", userID), err)
		return nil, errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	list := make([]dto.AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		resp, err := s.respond(ctx, a, "")
		if err != nil {
			return nil, err
		}
		list = append(list, *resp)
	}
	return list, nil
}

// Update applies the non-nil fields and reschedules when the time or preference changed.
func (s *appointmentService) Update(ctx context.Context, req dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	current, err := s.owned(ctx, req.UserID, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	next := *current
	if req.Title != nil {
		next.Title = *req.Title
	}
	if req.Location != nil {
		next.Location = *req.Location
	}
	if req.ScheduledAt != nil {
		next.ScheduledAt = *req.ScheduledAt
	}
	if req.ReminderPreference != nil {
		next.ReminderPreference = constant.ReminderPreference(*req.ReminderPreference)
	}
	if req.Notes != nil {
		next.Notes = req.Notes
	}

	if err := s.appointmentRepo.Update(ctx, &next); err != nil {
		s.log.Error(fmt.Sprintf("Failed to update appointment %s", next.ID), err)
		return nil, errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}

	var reminderErr string
	if current.NeedsReschedule(&next) {
		reminderErr, err = s.syncReminder(ctx, &next, s.scheduler.Reschedule)
		if err != nil {
			return nil, err
		}
	}
	s.log.Info(fmt.Sprintf("Updated appointment %s", next.ID))
	return s.respond(ctx, &next, reminderErr)
}

// Delete cancels the appointment's reminder and removes the appointment.
func (s *appointmentService) Delete(ctx context.Context, userID, appointmentID string) error {
	if _, err := s.owned(ctx, userID, appointmentID); err != nil {
		return err
	}
	if err := s.scheduler.Cancel(ctx, appointmentID); err != nil {
		return err
	}
	if err := s.appointmentRepo.Delete(ctx, appointmentID); err != nil {
		s.log.Error(fmt.Sprintf("Failed to delete appointment %s", appointmentID), err)
		return errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	s.log.Info(fmt.Sprintf("Deleted appointment %s", appointmentID))
	return nil
}

// GetReminder returns the appointment's most recent scheduled reminder.
func (s *appointmentService) GetReminder(ctx context.Context, userID, appointmentID string) (*dto.ReminderResponse, error) {
	if _, err := s.owned(ctx, userID, appointmentID); err != nil {
		return nil, err
	}
	reminder, err := s.reminderRepo.Get(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appErrors.ErrReminderNotFound) {
			return nil, err
		}
		s.log.Error(fmt.Sprintf("Failed to load reminder for appointment %s", appointmentID), err)
		return nil, errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	resp := dto.ToReminderResponse(reminder)
	return &resp, nil
}

// syncReminder runs op and splits its outcome: policy rejections become the response's
// reminder error, anything else fails the request.
func (s *appointmentService) syncReminder(
	ctx context.Context,
	appointment *entity.Appointment,
	op func(context.Context, *entity.Appointment) error,
) (string, error) {
	err := op(ctx, appointment)
	switch {
	case err == nil:
		return "", nil
	case appErrors.IsSchedulingRejection(err):
		return err.Error(), nil
	default:
		s.log.Error(fmt.Sprintf("Failed to schedule reminder for appointment %s", appointment.ID), err)
		return "", err
	}
}

// owned loads the appointment and hides other users' appointments as not found.
func (s *appointmentService) owned(ctx context.Context, userID, appointmentID string) (*entity.Appointment, error) {
	appointment, err := s.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appErrors.ErrAppointmentNotFound) {
			return nil, err
		}
		s.log.Error(fmt.Sprintf("Failed to find appointment %s", appointmentID), err)
		return nil, errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	if appointment.UserID != userID {
		return nil, errors.Wrapf(appErrors.ErrAppointmentNotFound, "appointment %s", appointmentID)
	}
	return appointment, nil
}

func (s *appointmentService) respond(ctx context.Context, a *entity.Appointment, reminderErr string) (*dto.AppointmentResponse, error) {
	reminder, err := s.reminderRepo.Get(ctx, a.ID)
	if err != nil {
		if !errors.Is(err, appErrors.ErrReminderNotFound) {
			s.log.Error(fmt.Sprintf("Failed to load reminder for appointment %s", a.ID), err)
			return nil, errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
		}
	}
	resp := dto.ToAppointmentResponse(a, reminder)
	resp.ReminderError = reminderErr
	return &resp, nil
}
