// Package achievement implements the achievement element tree: completion
// state aggregation, force-complete overrides and the requirement evaluators
// driven by domain events.
package achievement

import (
	"fmt"
	"strings"
)

// State is the completion state of an element or a requirement's progress.
type State int

// Completion states.
const (
	Incomplete State = iota
	InProgress
	Complete
)

// String returns the persisted form of the state.
func (s State) String() string {
	switch s {
	case Incomplete:
		return "INCOMPLETE"
	case InProgress:
		return "IN_PROGRESS"
	case Complete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Label returns the human readable form of the state.
func (s State) Label() string {
	switch s {
	case InProgress:
		return "In Progress"
	case Complete:
		return "Complete"
	default:
		return "Incomplete"
	}
}

// ParseState parses the persisted form of a state.
func ParseState(v string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "INCOMPLETE":
		return Incomplete, nil
	case "IN_PROGRESS":
		return InProgress, nil
	case "COMPLETE":
		return Complete, nil
	default:
		return Incomplete, fmt.Errorf("parse state %q: unknown value", v)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if s < Incomplete || s > Complete {
		return nil, fmt.Errorf("marshal state: invalid value %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(data []byte) error {
	v, err := ParseState(string(data))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
