package appointment

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses occupy a slot.
var ActiveStatuses = []string{string(StatusPending), string(StatusConfirmed)}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanReschedule reports whether date/time may still change.
func (s Status) CanReschedule() bool {
	return s != StatusCompleted && s != StatusCancelled
}

func InitialStatus() Status {
	return StatusPending
}
