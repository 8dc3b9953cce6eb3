package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"streetfeast-web/internal/availability"
	"streetfeast-web/internal/menu"
	"streetfeast-web/internal/schedule"
	"streetfeast-web/internal/selection"
	"streetfeast-web/internal/truck"
)

var (
	// ErrSuperseded is returned by Load when a newer Load for another truck
	// started before this one finished. The stale result is discarded.
	ErrSuperseded = errors.New("load superseded by a newer truck")
	// ErrNotLoaded is returned when the session has no truck loaded.
	ErrNotLoaded = errors.New("no truck loaded")
)

// Source is the data the profile page needs from the backend.
type Source interface {
	Truck(ctx context.Context, truckID int64) (*truck.Truck, error)
	Occurrences(ctx context.Context, truckID int64, start, end schedule.Date) ([]truck.Occurrence, error)
	Menu(ctx context.Context, truckID int64, menuID truck.ID) (*truck.Menu, error)
}

// Options configures a Session.
type Options struct {
	Location      *time.Location
	WindowDays    int
	StoragePrefix string
	Now           func() time.Time
}

// Session is the state behind one truck profile page: the loaded truck, its
// occurrence store and date slots, the default menu, and the selection.
type Session struct {
	src  Source
	opts Options

	mu          sync.Mutex
	generation  uint64
	truck       *truck.Truck
	store       schedule.Store
	slots       []schedule.DateSlot
	defaultMenu *truck.Menu
	selection   *selection.Machine
}

// NewSession creates an empty session.
func NewSession(src Source, opts Options) *Session {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{src: src, opts: opts, selection: selection.New()}
}

// now returns the current wall-clock time in the truck-local frame.
func (s *Session) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

// Window returns the inclusive date range fetched and displayed for a load at now.
func (s *Session) Window(now time.Time) (schedule.Date, schedule.Date) {
	start := schedule.DateOf(now.In(s.opts.Location))
	return start, start.AddDays(s.opts.WindowDays - 1)
}

// Load fetches the truck and its occurrences concurrently, then the default
// menu once the truck says which one it is. A menu failure is logged and
// leaves the session without a default menu. If Load is called again for
// another truck before this call finishes, this call's result is dropped.
func (s *Session) Load(ctx context.Context, truckID int64) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	now := s.now()
	start, end := s.Window(now)
	logger := log.WithField("truck_id", truckID)

	var (
		details     *truck.Truck
		occurrences []truck.Occurrence
		defaultMenu *truck.Menu
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.src.Truck(gctx, truckID)
		if err != nil {
			return err
		}
		details = t

		if t.DefaultMenuID == nil {
			return nil
		}
		m, err := s.src.Menu(gctx, truckID, *t.DefaultMenuID)
		if err != nil {
			logger.Warnf("Default menu unavailable: %v", err)
			return nil
		}
		defaultMenu = m
		return nil
	})
	g.Go(func() error {
		o, err := s.src.Occurrences(gctx, truckID, start, end)
		if err != nil {
			return err
		}
		occurrences = o
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		logger.Debugf("Discarding stale load")
		return ErrSuperseded
	}
	if err != nil {
		s.truck = nil
		s.defaultMenu = nil
		s.store.Replace(nil)
		s.slots = nil
		s.selection = selection.New()
		return fmt.Errorf("load truck %d: %w", truckID, err)
	}

	s.truck = details
	s.defaultMenu = defaultMenu
	s.store.Replace(occurrences)
	s.slots = schedule.BuildDateSlots(s.store.All(), start, s.opts.WindowDays)
	s.selection = selection.New()
	s.selection.Load(s.slots, start)

	logger.Debugf("Loaded %d occurrences over %d days", s.store.Len(), s.opts.WindowDays)
	return nil
}

// SelectDate applies a date pick to the selection.
func (s *Session) SelectDate(day schedule.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.truck == nil {
		return ErrNotLoaded
	}
	return s.selection.SelectDate(day)
}

// SelectOccurrence applies an occurrence pick within the selected date.
func (s *Session) SelectOccurrence(id truck.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.truck == nil {
		return ErrNotLoaded
	}
	return s.selection.SelectOccurrence(id)
}

// Status resolves the availability status at now against the slot for now's
// calendar day. It is recomputed on every call.
func (s *Session) Status(now time.Time) (availability.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.truck == nil {
		return availability.Status{}, ErrNotLoaded
	}
	return s.statusLocked(now), nil
}

func (s *Session) statusLocked(now time.Time) availability.Status {
	now = now.In(s.opts.Location)
	slot, _, _ := schedule.SlotFor(s.slots, schedule.DateOf(now))
	return availability.Resolve(slot.Occurrences, now)
}

// Menu resolves the menu for the current selection.
func (s *Session) Menu() (menu.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.truck == nil {
		return menu.View{}, ErrNotLoaded
	}
	return menu.ResolveView(s.selection.Active(), s.defaultMenu), nil
}

// View renders the whole page at now.
func (s *Session) View(now time.Time) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.truck == nil {
		return nil, ErrNotLoaded
	}
	return s.render(now.In(s.opts.Location)), nil
}
