package shipment

import appErrors "logipro/pkg/errors"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAssigned  Status = "ASSIGNED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusFailed    Status = "FAILED"
)

// transitions is the complete shipment state machine. ASSIGNED→ASSIGNED is
// a driver re-assignment.
var transitions = map[Status][]Status{
	StatusPending:   {StatusAssigned},
	StatusAssigned:  {StatusAssigned, StatusInTransit},
	StatusInTransit: {StatusDelivered, StatusFailed},
	StatusDelivered: {},
	StatusFailed:    {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns an INVALID_TRANSITION error for edges outside the table.
func ValidateTransition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return appErrors.InvalidTransition(string(from), string(to))
	}
	return nil
}

// AllowedTransitions returns the statuses reachable from s.
func AllowedTransitions(s Status) []Status {
	return append([]Status(nil), transitions[s]...)
}
