// Package availability implements the availability state engine: the
// time-accumulating state machine that walks sorted events and emits
// per-entity bucket totals and an optional log (spec.md §4.F, §4.G).
package availability

import "monavail/internal/eventlog"

// history is the engine-owned per-entity state, mutated only during
// the event walk and discarded once Calculate returns (spec.md §3).
type history struct {
	inDowntime     bool
	lastState      eventlog.State
	lastKnownState *int // nil means "never observed a concrete state"
	lastStateTime  int64
}

func newHistory(initial eventlog.State) *history {
	h := &history{lastState: initial}
	if code, ok := initial.IsConcrete(); ok {
		c := code
		h.lastKnownState = &c
	}
	return h
}

// knownOrLast returns last_known_state, falling back to last_state,
// per §4.F step 3a's "using each entity's last_known_state (fallback
// last_state)".
func (h *history) knownOrLast() eventlog.State {
	if h.lastKnownState != nil {
		return eventlog.Concrete(*h.lastKnownState)
	}
	return h.lastState
}

func (h *history) setState(s eventlog.State, t int64) {
	h.lastState = s
	if code, ok := s.IsConcrete(); ok {
		c := code
		h.lastKnownState = &c
	}
	h.lastStateTime = t
}
