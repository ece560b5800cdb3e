package sqlite

import (
	"fmt"
	"strings"
	"time"

	"carereminder/internal/domain/entity"
	"carereminder/internal/pkg/logger"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Options configures the database connection.
type Options struct {
	Path          string
	Debug         bool
	SlowThreshold time.Duration
}

// NewDB opens the SQLite database at opts.Path and migrates the schema.
func NewDB(opts Options, log logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn(opts.Path)), &gorm.Config{
		Logger:  newGormLogger(log, opts.Debug, opts.SlowThreshold),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to database %s", opts.Path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying *sql.DB")
	}
	// SQLite allows a single writer; one connection keeps transactions serialized.
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("Connected to database %s, schema migrated.", opts.Path))
	return db, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000&_foreign_keys=on"
}

// AutoMigrate automatically migrates the database schema for the defined entities.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.User{},
		&entity.Appointment{},
		&entity.ScheduledReminder{},
	)
	if err != nil {
		return errors.Wrap(err, "schema migration failed")
	}
	return nil
}

// CloseDB closes the database connection.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying *sql.DB")
	}
	return sqlDB.Close()
}
