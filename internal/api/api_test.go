package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"streetfeast-web/config"
	"streetfeast-web/internal/backend"
	"streetfeast-web/internal/db"
	"streetfeast-web/internal/profile"
	"streetfeast-web/internal/schedule"
	"streetfeast-web/internal/store"
	"streetfeast-web/internal/truck"
)

const (
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaDesktop = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSource struct{}

func (fakeSource) Truck(ctx context.Context, truckID int64) (*truck.Truck, error) {
	switch truckID {
	case 7:
		return &truck.Truck{ID: "7", Name: "Taco Loco", Phone: "5551234567"}, nil
	case 500:
		return nil, errors.New("connection refused")
	default:
		return nil, fmt.Errorf("fetch truck %d: %w", truckID, backend.ErrNotFound)
	}
}

func (fakeSource) Occurrences(ctx context.Context, truckID int64, start, end schedule.Date) ([]truck.Occurrence, error) {
	day := func(offset, hour int) time.Time { return now.AddDate(0, 0, offset).Truncate(24 * time.Hour).Add(time.Duration(hour) * time.Hour) }
	return []truck.Occurrence{
		{
			ID:       "lunch",
			Open:     day(0, 10),
			Close:    day(0, 14),
			Location: &truck.Location{Address: "1 Main St"},
			Menu:     &truck.Menu{Categories: []truck.Category{{ID: "c1", Name: "Tacos", MenuItems: []truck.Item{{ID: "i1", Name: "Al Pastor", Price: 3.5}}}}},
		},
		{ID: "tomorrow", Open: day(1, 11), Close: day(1, 15)},
	}, nil
}

func (fakeSource) Menu(ctx context.Context, truckID int64, menuID truck.ID) (*truck.Menu, error) {
	return nil, backend.ErrNotFound
}

func newTestStore(t *testing.T) store.Store {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.NewGormStore(gormDB)
}

func setupRouter(t *testing.T, webpushOptions *webpush.Options) *gin.Engine {
	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Backend.BaseURL = "http://backend.test"
	cfg.Backend.StoragePrefix = "https://cdn.example.com"
	cfg.Links = config.LinksConfig{AppStore: "https://apps.apple.com/app/id1", GooglePlay: "https://play.google.com/store/apps/details?id=app"}
	cfg.AppLinks = config.AppLinksConfig{
		AppleAppIDs:     []string{"TEAMID.com.streetfeast.app"},
		AndroidPackages: []config.AndroidPackage{{Name: "com.streetfeast.app", Fingerprints: []string{"AA:BB"}}},
	}
	cfg.ApplyDefaults()

	handler := NewHandler(newTestStore(t), fakeSource{}, webpushOptions).
		WithProfileOptions(profile.Options{Location: time.UTC, WindowDays: cfg.Backend.WindowDays, StoragePrefix: cfg.Backend.StoragePrefix}).
		WithLinks(cfg.Links, cfg.AppLinks)
	handler.now = func() time.Time { return now }
	return newRouter(cfg, handler)
}

func do(r http.Handler, method, path, body, ua string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, nil)
	w := do(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetTruckProfile(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodGet, "/api/trucks/7", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view profile.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Taco Loco", view.Truck.Name)
	assert.Equal(t, "(555) 123-4567", view.Truck.Phone)
	assert.Equal(t, "Open", string(view.Status.Label))
	assert.Equal(t, "open", view.Status.Kind)
	assert.Len(t, view.Days, 30)
	assert.Equal(t, "date_selected_with_occurrence", view.Selection.State)
	assert.Equal(t, truck.ID("lunch"), view.Selection.OccurrenceID)
	assert.Equal(t, "occurrence", string(view.Menu.Source))
	require.NotNil(t, view.Location)
	assert.Equal(t, "https://maps.google.com/?q=1+Main+St", view.Location.MapsURL)
}

func TestGetTruckProfile_Selection(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodGet, "/api/trucks/7?date=2026-10-20", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view profile.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "2026-10-20", view.Selection.Date)
	assert.Equal(t, truck.ID("tomorrow"), view.Selection.OccurrenceID)
	assert.Equal(t, "none", string(view.Menu.Source))
	assert.Equal(t, "Open", string(view.Status.Label), "status always describes today")

	testCases := []struct {
		name  string
		query string
		error string
	}{
		{name: "malformed date", query: "?date=10/20/2026", error: "date must be YYYY-MM-DD"},
		{name: "date outside window", query: "?date=2026-12-31", error: "date is outside the schedule window"},
		{name: "occurrence on another date", query: "?occurrence=tomorrow", error: "occurrence is not on the selected date"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/trucks/7"+tc.query, "", "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.error), w.Body.String())
		})
	}
}

func TestGetTruckProfile_Errors(t *testing.T) {
	r := setupRouter(t, nil)

	testCases := []struct {
		path string
		code int
		body string
	}{
		{path: "/api/trucks/abc", code: http.StatusBadRequest, body: `{"error":"Invalid truck ID"}`},
		{path: "/api/trucks/-3", code: http.StatusBadRequest, body: `{"error":"Invalid truck ID"}`},
		{path: "/api/trucks/404", code: http.StatusNotFound, body: `{"error":"truck not found"}`},
		{path: "/api/trucks/500", code: http.StatusBadGateway, body: `{"error":"failed to load truck information"}`},
		{path: "/api/trucks/404/status", code: http.StatusNotFound, body: `{"error":"truck not found"}`},
	}
	for _, tc := range testCases {
		w := do(r, http.MethodGet, tc.path, "", "")
		assert.Equal(t, tc.code, w.Code, tc.path)
		assert.JSONEq(t, tc.body, w.Body.String(), tc.path)
	}
}

func TestGetTruckStatusAndMenu(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodGet, "/api/trucks/7/status", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status profile.StatusView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "Open", string(status.Label))
	assert.Equal(t, "Mon, 10:00 AM - 2:00 PM", status.Hours)

	w = do(r, http.MethodGet, "/api/trucks/7/menu", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var menu profile.MenuView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &menu))
	require.Len(t, menu.Categories, 1)
	assert.Equal(t, "$3.50", menu.Categories[0].Items[0].PriceText)

	// a second identical request is served from the cache
	w = do(r, http.MethodGet, "/api/trucks/7/menu", "", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
}

func TestWebRoutes(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodGet, "/truck/7", "", uaIPhone)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/m/truck/7", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/truck/7", "", uaDesktop)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/m/truck/7", "", uaIPhone)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/download", "", uaIPhone)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://apps.apple.com/app/id1", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/download", "", uaDesktop)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"app_store":"https://apps.apple.com/app/id1","google_play":"https://play.google.com/store/apps/details?id=app"}`, w.Body.String())
}

func TestWellKnown(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodGet, "/.well-known/apple-app-site-association", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"applinks": {"details": [{"appIDs": ["TEAMID.com.streetfeast.app"], "components": [{"/": "/m/*"}]}]},
		"webcredentials": {"apps": ["TEAMID.com.streetfeast.app"]}
	}`, w.Body.String())

	w = do(r, http.MethodGet, "/.well-known/assetlinks.json", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{
		"relation": ["delegate_permission/common.handle_all_urls"],
		"target": {"namespace": "android_app", "package_name": "com.streetfeast.app", "sha256_cert_fingerprints": ["AA:BB"]}
	}]`, w.Body.String())
}

func TestPostContact(t *testing.T) {
	r := setupRouter(t, nil)

	w := do(r, http.MethodPost, "/api/contact", `{"name":"Ana","email":"ana@example.com","message":"Do you cater?"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err)

	for _, body := range []string{
		``,
		`{"name":"Ana","email":"not-an-email","message":"hi"}`,
		`{"name":"   ","email":"ana@example.com","message":"hi"}`,
		`{"name":"Ana","email":"ana@example.com"}`,
	} {
		w := do(r, http.MethodPost, "/api/contact", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestSubscriptions(t *testing.T) {
	r := setupRouter(t, nil)
	endpoint := "https://push.example/abc%3D"

	w := do(r, http.MethodPut, "/api/subscriptions", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())

	w = do(r, http.MethodPut, "/api/subscriptions", fmt.Sprintf(`{"endpoint":%q,"p256dh":"k","auth":"a","subscribed_trucks":[0]}`, endpoint), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/subscriptions", fmt.Sprintf(`{"endpoint":%q,"p256dh":"k","auth":"a","subscribed_trucks":[9,7]}`, endpoint), "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribed_trucks":[7,9]}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/subscriptions", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/api/subscriptions", fmt.Sprintf(`{"endpoint":%q}`, endpoint), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	w := do(setupRouter(t, nil), http.MethodGet, "/api/vapid_public_key", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(setupRouter(t, &webpush.Options{VAPIDPublicKey: "BPub"}), http.MethodGet, "/api/vapid_public_key", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"BPub"}`, w.Body.String())
}
