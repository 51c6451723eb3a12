package domain

// Status is the moderation state of a listing.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusRejected Status = "rejected"
)

var listingStatuses = []Status{StatusPending, StatusActive, StatusRejected}

// IsValid reports whether s is one of the three moderation states.
func (s Status) IsValid() bool {
	for _, v := range listingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParseStatus converts client input into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", Invalid("status", "must be one of pending, active, rejected")
	}
	return st, nil
}

// InitialStatus is the status a new listing gets from its creator's role.
// It is assigned once at creation and never re-derived.
func InitialStatus(role Role) Status {
	if role.IsStaff() {
		return StatusActive
	}
	return StatusPending
}

// CanTransition reports whether a listing may move from one state to another.
// Every state is reachable from every other one; there is no terminal state.
func CanTransition(from, to Status) bool {
	return from.IsValid() && to.IsValid()
}

// Transition moves the listing to status to. Only the status field is written;
// moving to the current state is a no-op.
func (l *Listing) Transition(to Status) error {
	if !CanTransition(l.Status, to) {
		return Invalid("status", "must be one of pending, active, rejected")
	}
	l.Status = to
	return nil
}
