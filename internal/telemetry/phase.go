package telemetry

// Anchor is the record index used as time-zero.
type Anchor struct {
	Index int
	// Fallback is set when no Idle->Prefire transition was found and Index
	// is the configured fallback rather than a detected ignition.
	Fallback bool
}

// Window is a half-open range [Start, End) of record indices.
type Window struct {
	Start int
	End   int
}

// Len returns the number of records in the window.
func (w Window) Len() int { return w.End - w.Start }

// FindAnchor returns the index of the first Prefire record that directly
// follows an Idle record. Later ignitions in the same log are ignored.
func FindAnchor(states []State, fallback int) Anchor {
	for i := 1; i < len(states); i++ {
		if states[i-1] == Idle && states[i] == Prefire {
			return Anchor{Index: i}
		}
	}
	return Anchor{Index: fallback, Fallback: true}
}

// AnalysisWindow returns [anchor-preRoll, anchor+postRoll) clamped to [0, n].
func AnalysisWindow(anchor, n, preRoll, postRoll int) Window {
	return Window{
		Start: clamp(anchor-preRoll, 0, n),
		End:   clamp(anchor+postRoll, 0, n),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StatesOf extracts the state sequence from parsed records.
func StatesOf(records []RawRecord) []State {
	states := make([]State, len(records))
	for i, r := range records {
		states[i] = r.State
	}
	return states
}
