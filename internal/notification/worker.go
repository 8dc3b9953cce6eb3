package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	log "github.com/sirupsen/logrus"

	"streetfeast-web/internal/availability"
	"streetfeast-web/internal/model"
	"streetfeast-web/internal/store"
	"streetfeast-web/internal/truck"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// TruckLookup resolves a truck's display name for the notification title.
type TruckLookup interface {
	Truck(ctx context.Context, truckID int64) (*truck.Truck, error)
}

// Job is a status transition worth telling a truck's followers about.
type Job struct {
	TruckID int64
	Label   availability.Label
	Hours   string
}

// Payload is the JSON document delivered to the service worker.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   store.Store
	trucks  TruckLookup
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, trucks TruckLookup, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size), // Buffered channel
		store:   s,
		trucks:  trucks,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Debugf("Worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			log.WithField("truck_id", job.TruckID).Debugf("Worker %d processing %q", id, job.Label)
			wp.sendNotificationsForTruck(ctx, job)
		case <-ctx.Done():
			log.Debugf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool. It blocks while the queue is full.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.jobs <- job
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// BuildPayload renders the notification for job. An empty truckName falls back to the id.
func BuildPayload(job Job, truckName string) Payload {
	if truckName == "" {
		truckName = fmt.Sprintf("Truck %d", job.TruckID)
	}

	var body string
	switch job.Label {
	case availability.LabelOpeningSoon:
		body = "Opening soon"
	case availability.LabelOpen:
		body = "Now open"
	default:
		body = string(job.Label)
	}
	if job.Hours != "" {
		body += ": " + job.Hours
	}

	return Payload{
		Title: truckName,
		Body:  body,
		URL:   fmt.Sprintf("/truck/%d", job.TruckID),
	}
}

// sendNotificationsForTruck fetches subscriptions and sends notifications for a given truck.
func (wp *WorkerPool) sendNotificationsForTruck(ctx context.Context, job Job) {
	logger := log.WithField("truck_id", job.TruckID)

	subscriptions, err := wp.store.SubscriptionsForTruck(ctx, job.TruckID)
	if err != nil {
		logger.Errorf("Error fetching subscriptions: %v", err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	logger.Infof("Sending %d notifications", len(subscriptions))

	var name string
	if wp.trucks != nil {
		if t, err := wp.trucks.Truck(ctx, job.TruckID); err != nil {
			logger.Warnf("Error fetching truck name: %v", err)
		} else {
			name = t.Name
		}
	}

	payload, err := json.Marshal(BuildPayload(job, name))
	if err != nil {
		logger.Errorf("Error encoding payload: %v", err)
		return
	}
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Warnf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Infof("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Errorf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
