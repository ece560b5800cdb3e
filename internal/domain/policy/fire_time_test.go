package policy

import (
	"testing"
	"time"

	"carereminder/internal/domain/constant"
	appErrors "carereminder/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFireTime_Offsets(t *testing.T) {
	appt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		pref constant.ReminderPreference
		want time.Time
	}{
		{constant.PreferenceOneHour, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)},
		{constant.PreferenceTwoHours, time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)},
		{constant.PreferenceDayBefore, time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.pref.String(), func(t *testing.T) {
			got, err := ComputeFireTime(appt, tt.pref, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestComputeFireTime_OncologyCheckup(t *testing.T) {
	appt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	got, err := ComputeFireTime(appt, constant.PreferenceOneHour, now)

	require.NoError(t, err)
	assert.Equal(t, "2025-03-10T08:00:00Z", got.Format(time.RFC3339))
}

func TestComputeFireTime_KeepsInstantAcrossZones(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	appt := time.Date(2025, 3, 10, 10, 0, 0, 0, berlin)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	got, err := ComputeFireTime(appt, constant.PreferenceOneHour, now)

	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, "2025-03-10T08:00:00Z", got.Format(time.RFC3339))
}

func TestComputeFireTime_None(t *testing.T) {
	got, err := ComputeFireTime(time.Now().Add(48*time.Hour), constant.PreferenceNone, time.Now())

	assert.ErrorIs(t, err, ErrNoReminder)
	assert.False(t, appErrors.IsSchedulingRejection(err))
	assert.True(t, got.IsZero())
}

func TestComputeFireTime_InvalidPreference(t *testing.T) {
	for _, p := range []constant.ReminderPreference{"", "1 Hour Before", "3 hours before", "NONE"} {
		_, err := ComputeFireTime(time.Now().Add(48*time.Hour), p, time.Now())
		assert.ErrorIs(t, err, appErrors.ErrInvalidPreference, "preference %q", p)
	}
}

func TestComputeFireTime_InPast(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	appt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		appt time.Time
		pref constant.ReminderPreference
	}{
		{"exactly now", appt, constant.PreferenceOneHour},
		{"one second late", appt.Add(-time.Second), constant.PreferenceOneHour},
		{"inside two hour window", appt, constant.PreferenceTwoHours},
		{"appointment years ago", appt.AddDate(-5, 0, 0), constant.PreferenceDayBefore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeFireTime(tt.appt, tt.pref, now)
			assert.ErrorIs(t, err, appErrors.ErrFireTimeInPast)
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(constant.PreferenceNone))
	assert.True(t, IsValid(constant.PreferenceDayBefore))
	assert.False(t, IsValid("tomorrow"))
}
