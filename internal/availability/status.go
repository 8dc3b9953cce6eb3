package availability

import (
	"time"

	"streetfeast-web/internal/truck"
)

// SoonWindow is how close to an open or close time a truck counts as
// "opening soon" or "closing soon".
const SoonWindow = 60 * time.Minute

// Label is the user-facing availability label.
type Label string

const (
	LabelOpen        Label = "Open"
	LabelClosingSoon Label = "Closing Soon"
	LabelOpeningSoon Label = "Opening Soon"
	LabelClosed      Label = "Closed"
)

// Kind returns the machine-friendly form of the label.
func (l Label) Kind() string {
	switch l {
	case LabelOpen:
		return "open"
	case LabelClosingSoon:
		return "closing-soon"
	case LabelOpeningSoon:
		return "opening-soon"
	default:
		return "closed"
	}
}

// priority ranks candidates; the highest across today's occurrences wins.
func (l Label) priority() int {
	switch l {
	case LabelOpen:
		return 5
	case LabelClosingSoon:
		return 4
	case LabelOpeningSoon:
		return 3
	default:
		return 0
	}
}

// Status is the result of one evaluation. Occurrence is the one the label was
// derived from; Soonest is today's earliest-opening occurrence regardless of
// which one won. Both are nil when there is nothing scheduled today.
type Status struct {
	Label      Label
	Occurrence *truck.Occurrence
	Soonest    *truck.Occurrence
}

// Classify returns the candidate label for a single occurrence at now.
// Windows are closed-open: now == open is Open, now == close is Closed.
func Classify(o truck.Occurrence, now time.Time) Label {
	if o.IsClosed {
		return LabelClosed
	}
	if !now.Before(o.Open) && now.Before(o.Close) {
		if o.Close.Sub(now) <= SoonWindow {
			return LabelClosingSoon
		}
		return LabelOpen
	}
	if untilOpen := o.Open.Sub(now); untilOpen > 0 && untilOpen <= SoonWindow {
		return LabelOpeningSoon
	}
	return LabelClosed
}

// Resolve computes the truck's status from today's occurrences at now.
// It is a pure function: the same inputs always give the same Status.
// On equal priority the first occurrence in input order wins.
func Resolve(today []truck.Occurrence, now time.Time) Status {
	if len(today) == 0 {
		return Status{Label: LabelClosed}
	}

	soonest := 0
	for i := 1; i < len(today); i++ {
		if today[i].Open.Before(today[soonest].Open) {
			soonest = i
		}
	}

	best := -1
	bestLabel := LabelClosed
	for i, o := range today {
		label := Classify(o, now)
		if best == -1 || label.priority() > bestLabel.priority() {
			best = i
			bestLabel = label
		}
	}

	winner := today[best]
	first := today[soonest]
	return Status{
		Label:      bestLabel,
		Occurrence: &winner,
		Soonest:    &first,
	}
}

// OccurrenceID returns the id of the occurrence the status came from, or "".
func (s Status) OccurrenceID() truck.ID {
	if s.Occurrence == nil {
		return ""
	}
	return s.Occurrence.ID
}

// Equal reports whether two statuses would render the same label for the same occurrence.
func (s Status) Equal(other Status) bool {
	return s.Label == other.Label && s.OccurrenceID() == other.OccurrenceID()
}

// Notifies reports whether moving into this label is worth telling subscribers about.
func (l Label) Notifies() bool {
	return l == LabelOpen || l == LabelOpeningSoon
}
