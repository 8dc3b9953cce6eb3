package watcher

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"streetfeast-web/config"
	"streetfeast-web/internal/availability"
	"streetfeast-web/internal/notification"
	"streetfeast-web/internal/parse"
	"streetfeast-web/internal/schedule"
	"streetfeast-web/internal/store"
	"streetfeast-web/internal/truck"
)

// Source fetches a truck's occurrences for a date range.
type Source interface {
	Occurrences(ctx context.Context, truckID int64, start, end schedule.Date) ([]truck.Occurrence, error)
}

// Dispatcher queues a notification job.
type Dispatcher interface {
	Dispatch(job notification.Job)
}

// Service re-evaluates the status of every followed truck on a timer and
// notifies followers when a truck opens or is about to.
type Service struct {
	cfg        config.WatcherConfig
	loc        *time.Location
	store      store.Store
	src        Source
	dispatcher Dispatcher
	now        func() time.Time
}

// NewService creates a watcher. loc is the truck-local timezone.
func NewService(cfg config.WatcherConfig, loc *time.Location, s store.Store, src Source, d Dispatcher) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		cfg:        cfg,
		loc:        loc,
		store:      s,
		src:        src,
		dispatcher: d,
		now:        time.Now,
	}
}

// WithClock replaces the time source used by ticks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run ticks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Info("Status watcher is disabled. Not starting.")
		return
	}
	log.Info("Starting status watcher...")

	s.TickOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Status watcher shutting down.")
			return
		case <-timer.C:
			s.TickOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// TickOnce evaluates every watched truck once. A truck whose schedule cannot
// be fetched keeps its previous status until the next tick.
func (s *Service) TickOnce(ctx context.Context) {
	truckIDs, err := s.store.WatchedTruckIDs(ctx)
	if err != nil {
		log.Errorf("Watcher tick aborted: %v", err)
		return
	}
	if len(truckIDs) == 0 {
		return
	}

	now := s.now().In(s.loc)
	today := schedule.DateOf(now)
	log.Debugf("Watcher tick for %d trucks", len(truckIDs))

	for _, truckID := range truckIDs {
		if ctx.Err() != nil {
			return
		}
		s.evaluate(ctx, truckID, today, now)
	}
}

func (s *Service) evaluate(ctx context.Context, truckID int64, today schedule.Date, now time.Time) {
	logger := log.WithField("truck_id", truckID)

	occurrences, err := s.src.Occurrences(ctx, truckID, today, today)
	if err != nil {
		logger.Warnf("Skipping status check: %v", err)
		return
	}

	status := availability.Resolve(schedule.OccurrencesOn(occurrences, today), now)
	change, err := s.store.RecordStatus(ctx, now.UTC(), store.StatusObservation{
		TruckID:      truckID,
		Label:        string(status.Label),
		OccurrenceID: string(status.OccurrenceID()),
	})
	if err != nil {
		logger.Errorf("Failed to record status: %v", err)
		return
	}

	if !change.Changed || !status.Label.Notifies() {
		return
	}

	job := notification.Job{TruckID: truckID, Label: status.Label}
	if status.Occurrence != nil {
		job.Hours = parse.Hours(status.Occurrence.Open, status.Occurrence.Close)
	}
	logger.Infof("Status %s -> %s, notifying followers", change.PreviousLabel, status.Label)
	s.dispatcher.Dispatch(job)
}
