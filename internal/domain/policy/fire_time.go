// Package policy maps a reminder preference onto an absolute fire time.
package policy

import (
	"time"

	"carereminder/internal/domain/constant"
	appErrors "carereminder/internal/pkg/errors"

	"github.com/pkg/errors"
)

// ErrNoReminder is returned for the "none" preference. It is not a failure.
var ErrNoReminder = errors.New("no reminder requested")

var offsets = map[constant.ReminderPreference]time.Duration{
	constant.PreferenceOneHour:   time.Hour,
	constant.PreferenceTwoHours:  2 * time.Hour,
	constant.PreferenceDayBefore: 24 * time.Hour,
}

// Offset returns how long before the appointment p fires.
func Offset(p constant.ReminderPreference) (time.Duration, bool) {
	d, ok := offsets[p]
	return d, ok
}

// IsValid reports whether p is a recognized preference, including "none".
func IsValid(p constant.ReminderPreference) bool {
	_, ok := offsets[p]
	return ok || p == constant.PreferenceNone
}

// ComputeFireTime returns appointmentTime minus the preference offset, in UTC.
// It fails with ErrNoReminder for "none", ErrInvalidPreference for unknown values
// and ErrFireTimeInPast when the result is not strictly after now.
func ComputeFireTime(appointmentTime time.Time, pref constant.ReminderPreference, now time.Time) (time.Time, error) {
	if pref == constant.PreferenceNone {
		return time.Time{}, ErrNoReminder
	}
	offset, ok := offsets[pref]
	if !ok {
		return time.Time{}, errors.Wrapf(appErrors.ErrInvalidPreference, "%q", string(pref))
	}
	fireAt := appointmentTime.Add(-offset).UTC()
	if !fireAt.After(now) {
		return time.Time{}, errors.Wrapf(appErrors.ErrFireTimeInPast, "fire time %s is not after %s",
			fireAt.Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	return fireAt, nil
}
