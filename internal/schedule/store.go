package schedule

import (
	"sort"

	"streetfeast-web/internal/truck"
)

// Store holds the occurrences fetched for one truck over the display window.
// Its only mutation is a wholesale Replace with a fresh fetch result.
type Store struct {
	occurrences []truck.Occurrence
}

// Replace swaps the held occurrences for a new fetch result.
func (s *Store) Replace(occurrences []truck.Occurrence) {
	cp := make([]truck.Occurrence, len(occurrences))
	copy(cp, occurrences)
	s.occurrences = cp
}

// All returns the held occurrences in fetch order.
func (s *Store) All() []truck.Occurrence {
	return s.occurrences
}

// Len returns the number of held occurrences.
func (s *Store) Len() int {
	return len(s.occurrences)
}

// On returns the occurrences whose open time falls on day, sorted by open time.
func (s *Store) On(day Date) []truck.Occurrence {
	return OccurrencesOn(s.occurrences, day)
}

// OccurrencesOn filters occurrences to those opening on day and sorts them
// ascending by open time. The sort is stable so equal open times keep input order.
func OccurrencesOn(occurrences []truck.Occurrence, day Date) []truck.Occurrence {
	var out []truck.Occurrence
	for _, o := range occurrences {
		if DateOf(o.Open) == day {
			out = append(out, o)
		}
	}
	sortByOpen(out)
	return out
}

func sortByOpen(occurrences []truck.Occurrence) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Open.Before(occurrences[j].Open)
	})
}
