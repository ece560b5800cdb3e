package sqlite

import (
	"context"
	"fmt"
	"time"

	"carereminder/internal/pkg/logger"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

type gormLogger struct {
	log           logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log logger.Logger, debug bool, slowThreshold time.Duration) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowThreshold
	}
	return &gormLogger{log: log, level: level, slowThreshold: slowThreshold}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cloned := *l
	cloned.level = level
	return &cloned
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level < gormlogger.Info {
		return
	}
	l.log.Info("GORM: " + fmt.Sprintf(msg, args...))
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level < gormlogger.Warn {
		return
	}
	l.log.Warn("GORM: " + fmt.Sprintf(msg, args...))
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level < gormlogger.Error {
		return
	}
	l.log.Error("GORM: "+fmt.Sprintf(msg, args...), nil)
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.WithFields(logger.Fields{"elapsed": elapsed.String(), "rows": rows, "sql": sql}).
			Error("GORM query failed", err)
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.WithFields(logger.Fields{"elapsed": elapsed.String(), "rows": rows, "sql": sql}).
			Warn("GORM slow query")
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.WithFields(logger.Fields{"elapsed": elapsed.String(), "rows": rows, "sql": sql}).
			Debug("GORM query")
	}
}
