package store

// transitions is the status state machine: allowed targets per source.
// done is terminal. parked can be reached from every non-terminal state
// but only returns to backlog, so a parked item re-enters the workflow
// from the top.
var transitions = map[Status][]Status{
	StatusBacklog:    {StatusReady, StatusParked},
	StatusReady:      {StatusInProgress, StatusBacklog, StatusParked},
	StatusInProgress: {StatusReview, StatusReady, StatusParked},
	StatusReview:     {StatusMerged, StatusDone, StatusInProgress, StatusParked},
	StatusMerged:     {StatusDone, StatusInProgress, StatusParked},
	StatusDone:       {},
	StatusParked:     {StatusBacklog},
}

// AllowedTargets returns the statuses an item in status s may move to.
func AllowedTargets(s Status) []Status {
	targets := transitions[s]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
