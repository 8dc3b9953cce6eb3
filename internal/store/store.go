package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"streetfeast-web/internal/model"
)

// ErrNotFound is returned when a subscription does not exist.
var ErrNotFound = errors.New("record not found")

// closedLabel is the status of a truck with no row in the open table.
const closedLabel = "Closed"

// StatusObservation is one watcher evaluation of a truck.
type StatusObservation struct {
	TruckID      int64
	Label        string
	OccurrenceID string
}

// StatusChange describes what RecordStatus did with an observation.
type StatusChange struct {
	Changed       bool
	PreviousLabel string
}

// Store defines the interface for all database operations.
type Store interface {
	SaveContactMessage(ctx context.Context, msg *model.ContactMessage) error

	PutSubscription(ctx context.Context, sub *model.PushSubscription, truckIDs []int64) error
	SubscribedTrucks(ctx context.Context, endpoint string) ([]int64, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForTruck(ctx context.Context, truckID int64) ([]model.PushSubscription, error)
	WatchedTruckIDs(ctx context.Context) ([]int64, error)

	RecordStatus(ctx context.Context, now time.Time, obs StatusObservation) (StatusChange, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) SaveContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	return nil
}

// PutSubscription creates or replaces a subscription and the set of trucks it follows.
func (s *gormStore) PutSubscription(ctx context.Context, sub *model.PushSubscription, truckIDs []int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&model.TruckSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to clear trucks for subscription: %w", err)
		}

		links := truckLinks(sub.Endpoint, truckIDs)
		if len(links) == 0 {
			return nil
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("failed to link trucks to subscription: %w", err)
		}
		return nil
	})
}

func truckLinks(endpoint string, truckIDs []int64) []model.TruckSubscription {
	seen := make(map[int64]bool, len(truckIDs))
	links := make([]model.TruckSubscription, 0, len(truckIDs))
	for _, id := range truckIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, model.TruckSubscription{Endpoint: endpoint, TruckID: id})
	}
	return links
}

// SubscribedTrucks returns the trucks followed by endpoint in ascending order.
func (s *gormStore) SubscribedTrucks(ctx context.Context, endpoint string) ([]int64, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Trucks").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	ids := make([]int64, len(sub.Trucks))
	for i, t := range sub.Trucks {
		ids[i] = t.TruckID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// DeleteSubscription removes a subscription and its truck links.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.TruckSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete truck links: %w", err)
		}
		if err := tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

// SubscriptionsForTruck returns every subscription following truckID.
func (s *gormStore) SubscriptionsForTruck(ctx context.Context, truckID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN truck_subscriptions ON truck_subscriptions.endpoint = push_subscriptions.endpoint").
		Where("truck_subscriptions.truck_id = ?", truckID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriptions for truck %d: %w", truckID, err)
	}
	return subs, nil
}

// WatchedTruckIDs returns every truck with at least one subscriber.
func (s *gormStore) WatchedTruckIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&model.TruckSubscription{}).
		Distinct().Order("truck_id").Pluck("truck_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list watched trucks: %w", err)
	}
	return ids, nil
}

// RecordStatus compares an observation with the truck's open record. A
// change archives the old record into history; the open record is replaced,
// or removed when the truck is now closed. A truck with no open record counts
// as Closed.
func (s *gormStore) RecordStatus(ctx context.Context, now time.Time, obs StatusObservation) (StatusChange, error) {
	change := StatusChange{PreviousLabel: closedLabel}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.TruckStatusOpen
		err := tx.First(&current, "truck_id = ?", obs.TruckID).Error
		exists := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to fetch open status for truck %d: %w", obs.TruckID, err)
		}

		if !exists {
			if obs.Label == closedLabel {
				return nil
			}
			change.Changed = true
			record := openRecord(obs, now)
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to create open status for truck %d: %w", obs.TruckID, err)
			}
			return nil
		}

		change.PreviousLabel = current.Label
		if current.Label == obs.Label && current.OccurrenceID == obs.OccurrenceID {
			return nil
		}
		change.Changed = true

		if err := archiveRecord(tx, current, now); err != nil {
			return err
		}
		if obs.Label == closedLabel {
			if err := tx.Delete(&model.TruckStatusOpen{}, obs.TruckID).Error; err != nil {
				return fmt.Errorf("failed to delete open status for truck %d: %w", obs.TruckID, err)
			}
			return nil
		}
		record := openRecord(obs, now)
		if err := tx.Save(&record).Error; err != nil {
			return fmt.Errorf("failed to update open status for truck %d: %w", obs.TruckID, err)
		}
		return nil
	})
	if err != nil {
		return StatusChange{}, err
	}

	if change.Changed {
		log.WithField("truck_id", obs.TruckID).Debugf("Status %s -> %s", change.PreviousLabel, obs.Label)
	}
	return change, nil
}

func openRecord(obs StatusObservation, now time.Time) model.TruckStatusOpen {
	return model.TruckStatusOpen{
		TruckID:      obs.TruckID,
		ObservedAt:   now,
		Label:        obs.Label,
		OccurrenceID: obs.OccurrenceID,
	}
}

// archiveRecord moves an ended status period into history.
func archiveRecord(tx *gorm.DB, ended model.TruckStatusOpen, observationTime time.Time) error {
	history := model.TruckStatusHistory{
		TruckID:      ended.TruckID,
		ObservedAt:   observationTime,
		Label:        ended.Label,
		OccurrenceID: ended.OccurrenceID,
		PeriodStart:  ended.ObservedAt,
		PeriodEnd:    observationTime,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to archive status for truck %d: %w", ended.TruckID, err)
	}
	return nil
}
