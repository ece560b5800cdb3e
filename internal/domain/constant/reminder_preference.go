package constant

// ReminderPreference is the user-chosen offset before an appointment. Values are case-sensitive.
type ReminderPreference string

const (
	PreferenceOneHour   ReminderPreference = "1 hour before"
	PreferenceTwoHours  ReminderPreference = "2 hours before"
	PreferenceDayBefore ReminderPreference = "the day before"
	PreferenceNone      ReminderPreference = "none"
)

func (p ReminderPreference) String() string {
	return string(p)
}
