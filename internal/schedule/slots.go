package schedule

import "streetfeast-web/internal/truck"

// DateSlot is one calendar day of the display window and the occurrences opening on it.
type DateSlot struct {
	Date        Date
	Occurrences []truck.Occurrence
}

// HasOccurrences reports whether the slot can be selected for schedule details.
// Empty slots stay in the calendar but show no indicator.
func (s DateSlot) HasOccurrences() bool {
	return len(s.Occurrences) > 0
}

// First returns the earliest occurrence of the day, or nil.
func (s DateSlot) First() *truck.Occurrence {
	if len(s.Occurrences) == 0 {
		return nil
	}
	return &s.Occurrences[0]
}

// Find returns the occurrence with the given id, or nil.
func (s DateSlot) Find(id truck.ID) *truck.Occurrence {
	for i := range s.Occurrences {
		if s.Occurrences[i].ID == id {
			return &s.Occurrences[i]
		}
	}
	return nil
}

// BuildDateSlots produces exactly windowLengthDays consecutive slots starting at
// windowStart. An occurrence is bucketed by the calendar day of its open time
// only, so a window that runs past midnight is never split. Occurrences opening
// outside the window are not placed in any slot.
func BuildDateSlots(occurrences []truck.Occurrence, windowStart Date, windowLengthDays int) []DateSlot {
	if windowLengthDays <= 0 {
		return nil
	}

	slots := make([]DateSlot, windowLengthDays)
	index := make(map[Date]int, windowLengthDays)
	for i := range slots {
		d := windowStart.AddDays(i)
		slots[i] = DateSlot{Date: d}
		index[d] = i
	}

	for _, o := range occurrences {
		i, ok := index[DateOf(o.Open)]
		if !ok {
			continue
		}
		slots[i].Occurrences = append(slots[i].Occurrences, o)
	}

	for i := range slots {
		sortByOpen(slots[i].Occurrences)
	}
	return slots
}

// SlotFor returns the slot for day, if it is inside the window.
func SlotFor(slots []DateSlot, day Date) (DateSlot, int, bool) {
	for i, s := range slots {
		if s.Date == day {
			return s, i, true
		}
	}
	return DateSlot{}, -1, false
}
