package payment

import "github.com/capmatchph/capital-match-api/internal/httperr"

// ===============================
// Payment Attempt Status
// ===============================

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ===============================
// Transition rules
// ===============================

// CanComplete gates the only transitions the machine permits:
// PENDING -> SUCCEEDED and PENDING -> FAILED. A terminal attempt is
// reported as an error rather than silently accepted, so duplicate
// webhook deliveries surface.
func CanComplete(current, outcome Status) error {
	if outcome != StatusSucceeded && outcome != StatusFailed {
		return httperr.ValidationErr("invalid_outcome")
	}
	if current.Terminal() {
		return httperr.InvalidTransitionErr("attempt_already_terminal")
	}
	if current != StatusPending {
		return httperr.InvalidTransitionErr("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}
