package process

// State is the lifecycle state of one streaming session:
// idle → receiving → finished | aborted | errored
type State string

const (
	// StateIdle indicates no stream is being consumed
	StateIdle State = ""

	// StateReceiving indicates events are being decoded and applied
	StateReceiving State = "receiving"

	// StateFinished indicates the stream ended naturally or with [DONE]
	StateFinished State = "finished"

	// StateAborted indicates the caller cancelled the stream
	StateAborted State = "aborted"

	// StateErrored indicates the transport failed
	StateErrored State = "errored"
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether the state ends a stream
func (s State) IsTerminal() bool {
	switch s {
	case StateFinished, StateAborted, StateErrored:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to next is allowed. Terminal
// states may start a new stream; a receiving session must end first.
func (s State) CanTransition(next State) bool {
	switch s {
	case StateIdle, StateFinished, StateAborted, StateErrored:
		return next == StateReceiving
	case StateReceiving:
		return next.IsTerminal()
	default:
		return false
	}
}

// GetIcon returns the appropriate icon for a given process state
func (s State) GetIcon() string {
	switch s {
	case StateReceiving:
		return "↓"
	case StateFinished:
		return "✓"
	case StateAborted:
		return "■"
	case StateErrored:
		return "✗"
	default:
		return ""
	}
}

// GetDisplayName returns a human-readable name for the state
func (s State) GetDisplayName() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReceiving:
		return "Receiving"
	case StateFinished:
		return "Finished"
	case StateAborted:
		return "Cancelled"
	case StateErrored:
		return "Failed"
	default:
		return ""
	}
}
