package tether

// OpPhase is the lifecycle phase of the most recent remote issue operation.
type OpPhase string

const (
	OpIdle       OpPhase = "idle"
	OpInProgress OpPhase = "in_progress"
	OpSucceeded  OpPhase = "succeeded"
	OpFailed     OpPhase = "failed"
)

// OpState reports how the last remote issue operation went. A failed remote
// call never rolls back the local mutation it followed; the failure is
// surfaced here and through the operation's error return.
type OpState struct {
	Phase OpPhase
	Err   error
}

// Failed reports whether the last operation failed.
func (s OpState) Failed() bool {
	return s.Phase == OpFailed
}
