package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"carereminder/internal/domain/constant"
	"carereminder/internal/domain/entity"
	"carereminder/internal/domain/repository"
	"carereminder/internal/infrastructure/database/sqlite"
	"carereminder/internal/infrastructure/push"
	"carereminder/internal/testfixtures"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testRepos struct {
	reminders    repository.ReminderRepository
	appointments repository.AppointmentRepository
	users        repository.UserRepository
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	db := testfixtures.NewSQLite(t)
	return testRepos{
		reminders:    sqlite.NewReminderRepository(db),
		appointments: sqlite.NewAppointmentRepository(db),
		users:        sqlite.NewUserRepository(db),
	}
}

// appointmentFiringIn returns an appointment whose "1 hour before" reminder fires after d.
func appointmentFiringIn(d time.Duration) *entity.Appointment {
	return &entity.Appointment{
		ID:                 uuid.NewString(),
		UserID:             "u1",
		Title:              "Oncology checkup",
		Location:           "St. Mary's Hospital",
		ScheduledAt:        time.Now().Add(time.Hour + d),
		ReminderPreference: constant.PreferenceOneHour,
	}
}

// fakeDispatcher records dispatches and settles reminders as Fired.
// When gate is set, Dispatch signals entered and blocks until gate is closed.
type fakeDispatcher struct {
	repo    repository.ReminderRepository
	entered chan uint
	gate    chan struct{}

	mu        sync.Mutex
	calls     []uint
	snapshots []*entity.Appointment
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, r *entity.ScheduledReminder, snapshot *entity.Appointment) FireResult {
	f.mu.Lock()
	f.calls = append(f.calls, r.ID)
	f.snapshots = append(f.snapshots, snapshot)
	f.mu.Unlock()
	if f.gate != nil {
		f.entered <- r.ID
		<-f.gate
	}
	_, _ = f.repo.MarkFired(ctx, r.ID)
	return FireResult{ReminderID: r.ID, AppointmentID: r.AppointmentID, Status: constant.ReminderFired}
}

func (f *fakeDispatcher) Stats() DispatchStats { return DispatchStats{} }

func (f *fakeDispatcher) Calls() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.calls...)
}

func (f *fakeDispatcher) Snapshots() []*entity.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.Appointment(nil), f.snapshots...)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Send(ctx context.Context, token string, msg push.Message) error {
	return m.Called(ctx, token, msg).Error(0)
}
