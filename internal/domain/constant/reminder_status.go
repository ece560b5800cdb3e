package constant

// ReminderStatus is the lifecycle state of a scheduled reminder.
type ReminderStatus string

const (
	// ReminderPending is armed and waiting for its fire time.
	ReminderPending ReminderStatus = "pending"
	// ReminderDispatching has fired and is being sent; only the dispatcher settles it.
	ReminderDispatching ReminderStatus = "dispatching"
	// ReminderFired was delivered to the push gateway.
	ReminderFired ReminderStatus = "fired"
	// ReminderFailed could not be delivered; see LastError.
	ReminderFailed ReminderStatus = "failed"
	// ReminderCancelled was superseded or withdrawn before firing.
	ReminderCancelled ReminderStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s ReminderStatus) IsTerminal() bool {
	return s == ReminderFired || s == ReminderFailed || s == ReminderCancelled
}

// Valid reports whether s is a known status.
func (s ReminderStatus) Valid() bool {
	return s == ReminderPending || s == ReminderDispatching || s.IsTerminal()
}

// Settleable reports whether s may still transition to Fired or Failed.
func (s ReminderStatus) Settleable() bool {
	return s == ReminderPending || s == ReminderDispatching
}

func (s ReminderStatus) String() string {
	return string(s)
}
