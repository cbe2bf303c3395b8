package videosession

// Status represents the lifecycle status of a video session.
type Status string

const (
	StatusWaiting Status = "waiting" // Created, room provisioned, teacher not started yet
	StatusActive  Status = "active"  // Started, teacher token issued

	// Terminal states (no further transitions allowed)
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// allStatuses keeps a stable order for SourcesFor.
var allStatuses = []Status{StatusWaiting, StatusActive, StatusCompleted, StatusCancelled}

// ValidTransitions defines allowed status transitions.
var ValidTransitions = map[Status][]Status{
	StatusWaiting:   {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	_, ok := ValidTransitions[s]
	return ok
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if a transition from current status to target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range ValidTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// SourcesFor returns every status from which target can be reached.
// It is the expected-status set for a compare-and-swap into target.
func SourcesFor(target Status) []Status {
	var sources []Status
	for _, from := range allStatuses {
		if from.CanTransitionTo(target) {
			sources = append(sources, from)
		}
	}
	return sources
}
