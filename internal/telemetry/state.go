package telemetry

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// State is the igniter operating phase reported by the engine controller.
type State uint8

const (
	Idle State = iota
	Prefire
	Firing
	Purge
)

// States lists every state the controller can report, in state machine order.
var States = []State{Idle, Prefire, Firing, Purge}

var stateNames = [...]string{
	Idle:    "Idle",
	Prefire: "Prefire",
	Firing:  "Firing",
	Purge:   "Purge",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// ParseState maps a controller label onto a State. Labels are case sensitive
// and must match the controller's spelling exactly.
func ParseState(label string) (State, bool) {
	for i, name := range stateNames {
		if name == label {
			return State(i), true
		}
	}
	return 0, false
}

// suggestState returns the closest known label for an unrecognised one, or ""
// when nothing is close enough to be a plausible typo.
func suggestState(label string) string {
	best, bestDist := "", 3
	for _, name := range stateNames {
		d := levenshtein.ComputeDistance(strings.ToLower(label), strings.ToLower(name))
		if d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	st, ok := ParseState(string(b))
	if !ok {
		return fmt.Errorf("unknown igniter state %q", string(b))
	}
	*s = st
	return nil
}
