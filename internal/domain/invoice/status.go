package invoice

import appErrors "logipro/pkg/errors"

type Status string

const (
	StatusDraft Status = "DRAFT"
	StatusSent  Status = "SENT"
	StatusPaid  Status = "PAID"
	StatusVoid  Status = "VOID"
)

var transitions = map[Status][]Status{
	StatusDraft: {StatusSent, StatusPaid, StatusVoid},
	StatusSent:  {StatusPaid, StatusVoid},
	StatusPaid:  {},
	StatusVoid:  {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return appErrors.InvalidTransition(string(from), string(to))
	}
	return nil
}
