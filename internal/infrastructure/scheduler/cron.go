package scheduler

import (
	"fmt"
	"sync"
	"time"

	"carereminder/internal/pkg/logger"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Cron runs recurring maintenance jobs. Reminder delivery does not go through it: each
// reminder owns its own timer in the application scheduler.
type Cron struct {
	cron *cron.Cron
	log  logger.Logger
	mu   sync.Mutex
}

// NewCron creates a stopped cron runner using six-field specs (seconds first).
func NewCron(log logger.Logger) *Cron {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Cron{cron: c, log: log}
}

// Start begins running scheduled jobs in the background.
func (s *Cron) Start() {
	s.cron.Start()
	s.log.Info("Cron scheduler started.")
}

// AddJob registers cmd under spec, e.g. "0 30 3 * * *".
func (s *Cron) AddJob(spec string, cmd func()) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, cmd)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to add cron job %q", spec)
	}
	s.log.Info(fmt.Sprintf("Added cron job with ID %d, spec: %s", id, spec))
	return id, nil
}

// Stop stops scheduling and waits for running jobs to complete.
func (s *Cron) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Cron scheduler stopped.")
}

// NextRun returns the earliest upcoming activation across all jobs, or the zero time
// when nothing is scheduled or the runner has not been started.
func (s *Cron) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next time.Time
	for _, e := range s.cron.Entries() {
		if e.Next.IsZero() {
			continue
		}
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.WithFields(kvFields(keysAndValues)).Error("cron: "+msg, err)
}

func kvFields(keysAndValues []any) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
