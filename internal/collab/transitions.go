package collab

import "fmt"

// transitions maps each status to the statuses it may move to.
var transitions = map[Status][]Status{
	StatusRequested:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusRejected:   {},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether the edge from -> to exists in the lifecycle
// graph, ignoring who is asking.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition validates a requested status change against both the
// lifecycle graph and the caller's role on the collaboration. The caller must
// already be a participant.
func CheckTransition(c *Collaboration, callerID string, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(c.Status, to) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, c.Status, to)
	}

	switch to {
	case StatusAccepted, StatusRejected:
		// Only the influencer answers a request.
		if callerID != c.InfluencerID {
			return fmt.Errorf("%w: only the influencer can %s a request", ErrForbidden, verb(to))
		}
	case StatusCompleted:
		// Only the influencer marks work as done.
		if callerID != c.InfluencerID {
			return fmt.Errorf("%w: only the influencer can complete a collaboration", ErrForbidden)
		}
	case StatusCancelled, StatusInProgress:
		// Either party, participant check already done by the caller.
	}
	return nil
}

func verb(to Status) string {
	if to == StatusAccepted {
		return "accept"
	}
	return "reject"
}
