package menu

import "fmt"

// State is the lifecycle of a context menu presentation.
type State int

const (
	Idle State = iota
	Shown
	ActionChosen
	Dismissed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Shown:
		return "shown"
	case ActionChosen:
		return "action-chosen"
	case Dismissed:
		return "dismissed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Machine tracks one menu's presentation. Terminal states fall back to Idle
// once the outcome is reported, so a menu can be shown again.
type Machine struct {
	state  State
	chosen string
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Show moves to Shown. It reports false if the menu is already shown; the
// caller must dismiss it first.
func (m *Machine) Show() bool {
	if m.state == Shown {
		return false
	}
	m.state = Shown
	m.chosen = ""
	return true
}

// Choose records the picked item. Only valid while shown.
func (m *Machine) Choose(item string) bool {
	if m.state != Shown {
		return false
	}
	m.state = ActionChosen
	m.chosen = item
	return true
}

// Dismiss records that the menu closed without a choice.
func (m *Machine) Dismiss() bool {
	if m.state != Shown {
		return false
	}
	m.state = Dismissed
	return true
}

// Settle returns the outcome of a terminal state and resets to Idle.
func (m *Machine) Settle() (item string, cancelled bool) {
	switch m.state {
	case ActionChosen:
		item = m.chosen
	case Dismissed:
		cancelled = true
	default:
		return "", false
	}
	m.state = Idle
	m.chosen = ""
	return item, cancelled
}
