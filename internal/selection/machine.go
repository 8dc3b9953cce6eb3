package selection

import (
	"errors"

	"streetfeast-web/internal/schedule"
	"streetfeast-web/internal/truck"
)

var (
	ErrDateOutOfWindow     = errors.New("date is outside the schedule window")
	ErrNoDateSelected      = errors.New("no date selected")
	ErrOccurrenceNotInDate = errors.New("occurrence is not scheduled on the selected date")
)

// State is the selection state of the schedule view.
type State int

const (
	NoDateSelected State = iota
	DateSelectedNoOccurrence
	DateSelectedWithOccurrence
)

func (s State) String() string {
	switch s {
	case DateSelectedNoOccurrence:
		return "date_selected_no_occurrence"
	case DateSelectedWithOccurrence:
		return "date_selected_with_occurrence"
	default:
		return "no_date_selected"
	}
}

// Machine tracks which date slot and which occurrence within it are selected.
// It only holds pointers into already-loaded slots and never modifies them.
type Machine struct {
	slots    []schedule.DateSlot
	state    State
	dateIdx  int
	activeID truck.ID
}

// New returns a machine with nothing selected.
func New() *Machine {
	return &Machine{dateIdx: -1}
}

// Load installs freshly built slots and selects today, plus today's first
// occurrence when there is one. If today is outside the slots nothing is selected.
func (m *Machine) Load(slots []schedule.DateSlot, today schedule.Date) {
	m.slots = slots
	m.state = NoDateSelected
	m.dateIdx = -1
	m.activeID = ""

	_ = m.SelectDate(today)
}

// SelectDate selects a day. A day with occurrences selects its first one;
// an empty day clears the active occurrence.
func (m *Machine) SelectDate(day schedule.Date) error {
	slot, idx, ok := schedule.SlotFor(m.slots, day)
	if !ok {
		return ErrDateOutOfWindow
	}

	m.dateIdx = idx
	if first := slot.First(); first != nil {
		m.state = DateSelectedWithOccurrence
		m.activeID = first.ID
	} else {
		m.state = DateSelectedNoOccurrence
		m.activeID = ""
	}
	return nil
}

// SelectOccurrence picks an occurrence from the currently selected day's list.
func (m *Machine) SelectOccurrence(id truck.ID) error {
	if m.dateIdx < 0 {
		return ErrNoDateSelected
	}
	if m.slots[m.dateIdx].Find(id) == nil {
		return ErrOccurrenceNotInDate
	}
	m.state = DateSelectedWithOccurrence
	m.activeID = id
	return nil
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// SelectedSlot returns the selected day's slot.
func (m *Machine) SelectedSlot() (schedule.DateSlot, bool) {
	if m.dateIdx < 0 {
		return schedule.DateSlot{}, false
	}
	return m.slots[m.dateIdx], true
}

// ActiveID returns the selected occurrence id, or "".
func (m *Machine) ActiveID() truck.ID {
	return m.activeID
}

// Active returns the selected occurrence, or nil.
func (m *Machine) Active() *truck.Occurrence {
	if m.state != DateSelectedWithOccurrence {
		return nil
	}
	return m.slots[m.dateIdx].Find(m.activeID)
}
