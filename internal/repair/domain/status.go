package domain

// Status is the lifecycle state of a repair request.
type Status string

const (
	StatusPending             Status = "pending"
	StatusWaitingConfirmation Status = "waiting_confirmation"
	StatusInProgress          Status = "in_progress"
	StatusCompleted           Status = "completed"
)

// Event is a lifecycle transition trigger.
type Event string

const (
	EventPropose  Event = "propose"  // staff proposes a time slot
	EventConfirm  Event = "confirm"  // customer accepts the proposed time
	EventDecline  Event = "decline"  // customer rejects the proposed time
	EventComplete Event = "complete" // staff marks the job done
)

// transitions is the full lifecycle graph. Anything not listed here is
// illegal, including writing an arbitrary status onto a document.
var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventPropose: StatusWaitingConfirmation,
	},
	StatusWaitingConfirmation: {
		EventConfirm: StatusInProgress,
		EventDecline: StatusPending,
	},
	StatusInProgress: {
		EventComplete: StatusCompleted,
	},
}

// Transition returns the state that applying event from current yields.
// Illegal pairs return ErrInvalidTransition; completed has no outgoing
// edges and is terminal in practice.
func Transition(current Status, event Event) (Status, error) {
	next, ok := transitions[current][event]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusWaitingConfirmation, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}
