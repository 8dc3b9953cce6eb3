package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"streetfeast-web/config"
	"streetfeast-web/internal/availability"
	"streetfeast-web/internal/backend"
	"streetfeast-web/internal/db"
	"streetfeast-web/internal/model"
	"streetfeast-web/internal/notification"
	"streetfeast-web/internal/store"
	"streetfeast-web/internal/watcher"
)

type jobRecorder struct {
	mu   sync.Mutex
	jobs []notification.Job
}

func (r *jobRecorder) Dispatch(job notification.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

type occurrenceJSON struct {
	ID             int    `json:"id"`
	OpenTimeLocal  string `json:"openTimeLocal"`
	CloseTimeLocal string `json:"closeTimeLocal"`
	IsClosed       bool   `json:"isClosed"`
}

// TestStatusLifecycle drives a followed truck from open to cancelled through
// the real backend client, watcher and gorm store, and checks the status
// tables at each step.
func TestStatusLifecycle(t *testing.T) {
	// --- Test Setup ---

	// 1. Setup an in-memory SQLite database for testing.
	testDB, err := gorm.Open(sqlite.Open("file:status_lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to the in-memory database")
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, db.Migrate(testDB))

	// 2. Mock backend: the lunch shift is on for the first request and
	// cancelled from then on.
	var (
		mu           sync.Mutex
		requestCount int
		lastQuery    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Truck/7/Schedule/Occurrences" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		cancelled := requestCount > 0
		requestCount++
		lastQuery = r.URL.RawQuery
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode([]occurrenceJSON{{
			ID:             501,
			OpenTimeLocal:  "2026-10-19T11:00:00",
			CloseTimeLocal: "2026-10-19T15:00:00",
			IsClosed:       cancelled,
		}}))
	}))
	defer server.Close()

	// 3. Wire the real components.
	client, err := backend.NewClient(config.BackendConfig{BaseURL: server.URL, Timezone: "UTC"})
	require.NoError(t, err)

	gormStore := store.NewGormStore(testDB)
	require.NoError(t, gormStore.PutSubscription(context.Background(),
		&model.PushSubscription{Endpoint: "https://push.example/1", P256DH: "k", Auth: "a"}, []int64{7}))

	rec := &jobRecorder{}
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	service := watcher.NewService(config.WatcherConfig{Enabled: true, Interval: time.Minute}, time.UTC, gormStore, client, rec).
		WithClock(func() time.Time { return now })

	// --- Cycle 1: truck is open ---
	t.Run("Cycle 1: Truck Opens", func(t *testing.T) {
		service.TickOnce(context.Background())

		mu.Lock()
		assert.Equal(t, "endLocal=2026-10-19&startLocal=2026-10-19", lastQuery)
		mu.Unlock()

		var open model.TruckStatusOpen
		require.NoError(t, testDB.Where("truck_id = ?", 7).First(&open).Error, "Expected to find one record in truck_status_opens")
		assert.Equal(t, "Open", open.Label)
		assert.Equal(t, "501", open.OccurrenceID)
		assert.True(t, open.ObservedAt.Equal(now))

		var historyCount int64
		testDB.Model(&model.TruckStatusHistory{}).Where("truck_id = ?", 7).Count(&historyCount)
		assert.Equal(t, int64(0), historyCount, "truck_status_histories should be empty")

		require.Len(t, rec.jobs, 1)
		assert.Equal(t, availability.LabelOpen, rec.jobs[0].Label)
		assert.Equal(t, "Mon, 11:00 AM - 3:00 PM", rec.jobs[0].Hours)
	})

	// --- Cycle 2: shift cancelled ---
	t.Run("Cycle 2: Shift Cancelled", func(t *testing.T) {
		now = now.Add(10 * time.Minute)
		service.TickOnce(context.Background())

		var openCount int64
		testDB.Model(&model.TruckStatusOpen{}).Where("truck_id = ?", 7).Count(&openCount)
		assert.Equal(t, int64(0), openCount, "truck_status_opens should be empty")

		var history model.TruckStatusHistory
		require.NoError(t, testDB.Where("truck_id = ?", 7).First(&history).Error, "Expected to find one record in truck_status_histories")
		assert.Equal(t, "Open", history.Label)
		assert.Equal(t, "501", history.OccurrenceID)
		assert.True(t, history.PeriodStart.Equal(now.Add(-10*time.Minute)))
		assert.True(t, history.PeriodEnd.Equal(now))

		assert.Len(t, rec.jobs, 1, "closing is not announced")
	})

	// --- Cycle 3: nothing changes ---
	t.Run("Cycle 3: Still Closed", func(t *testing.T) {
		now = now.Add(10 * time.Minute)
		service.TickOnce(context.Background())

		var historyCount int64
		testDB.Model(&model.TruckStatusHistory{}).Count(&historyCount)
		assert.Equal(t, int64(1), historyCount)
		assert.Len(t, rec.jobs, 1)
	})
}
