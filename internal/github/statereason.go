package github

import "fmt"

// StateReason is the reason recorded when an issue's state changes.
type StateReason string

const (
	// ReasonNone omits the reason from the update.
	ReasonNone StateReason = ""

	ReasonCompleted  StateReason = "completed"
	ReasonNotPlanned StateReason = "not_planned"
	ReasonDuplicate  StateReason = "duplicate"

	// ReasonReopened signals clearing the reason when an issue is
	// reopened; it has no wire value of its own.
	ReasonReopened StateReason = "reopened"
)

// APIValue returns the wire value sent to the API, or "" when the reason must
// be omitted from the request (none and reopened).
func (r StateReason) APIValue() string {
	if r == ReasonReopened {
		return ""
	}
	return string(r)
}

// CloseReasons lists the reasons a caller may pick when closing an issue.
func CloseReasons() []StateReason {
	return []StateReason{ReasonCompleted, ReasonNotPlanned, ReasonDuplicate}
}

// ParseStateReason converts user input into a StateReason.
func ParseStateReason(s string) (StateReason, error) {
	switch StateReason(s) {
	case ReasonCompleted, ReasonNotPlanned, ReasonDuplicate, ReasonReopened:
		return StateReason(s), nil
	}
	return ReasonNone, fmt.Errorf("unknown state reason %q", s)
}
