package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"

	"streetfeast-web/config"
	"streetfeast-web/internal/schedule"
	"streetfeast-web/internal/truck"
)

// ErrNotFound is returned when the backend answers 404.
var ErrNotFound = errors.New("not found")

// Client talks to the truck REST backend. All endpoints used here are
// read-only and unauthenticated.
type Client struct {
	baseURL string
	client  *http.Client
	loc     *time.Location
	menus   *cache.Cache
	menuTTL time.Duration
}

// NewClient creates a backend client from configuration.
func NewClient(cfg config.BackendConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is required")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warnf("Invalid proxy URL %q: %v. Backend client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		loc:     loc,
		menuTTL: cfg.MenuCacheTTL,
	}
	if c.menuTTL > 0 {
		c.menus = cache.New(c.menuTTL, 2*c.menuTTL)
	}
	return c, nil
}

// Location is the truck-local timezone occurrences are parsed in.
func (c *Client) Location() *time.Location {
	return c.loc
}

// Truck fetches GET /Truck/{truckId}.
func (c *Client) Truck(ctx context.Context, truckID int64) (*truck.Truck, error) {
	var t truck.Truck
	if err := c.getJSON(ctx, fmt.Sprintf("/Truck/%d", truckID), nil, &t); err != nil {
		return nil, fmt.Errorf("fetch truck %d: %w", truckID, err)
	}
	return &t, nil
}

// Occurrences fetches the occurrences of a truck within the inclusive local
// date range. Records with unparseable or inverted times are dropped.
func (c *Client) Occurrences(ctx context.Context, truckID int64, start, end schedule.Date) ([]truck.Occurrence, error) {
	query := url.Values{}
	query.Set("startLocal", start.String())
	query.Set("endLocal", end.String())

	var raw []truck.Occurrence
	if err := c.getJSON(ctx, fmt.Sprintf("/Truck/%d/Schedule/Occurrences", truckID), query, &raw); err != nil {
		return nil, fmt.Errorf("fetch occurrences for truck %d: %w", truckID, err)
	}

	occurrences := make([]truck.Occurrence, 0, len(raw))
	for i := range raw {
		if err := raw[i].ParseTimes(c.loc); err != nil {
			log.WithField("truck_id", truckID).Warnf("Skipping occurrence: %v", err)
			continue
		}
		occurrences = append(occurrences, raw[i])
	}
	return occurrences, nil
}

// Menu fetches GET /Truck/{truckId}/Menu?menuId={id}, accepting both the
// object and the bare-array response shapes. Results are cached per menu.
func (c *Client) Menu(ctx context.Context, truckID int64, menuID truck.ID) (*truck.Menu, error) {
	key := strconv.FormatInt(truckID, 10) + "/" + string(menuID)
	if c.menus != nil {
		if m, found := c.menus.Get(key); found {
			return m.(*truck.Menu), nil
		}
	}

	query := url.Values{}
	query.Set("menuId", string(menuID))

	var payload truck.MenuPayload
	if err := c.getJSON(ctx, fmt.Sprintf("/Truck/%d/Menu", truckID), query, &payload); err != nil {
		return nil, fmt.Errorf("fetch menu %s for truck %d: %w", menuID, truckID, err)
	}

	m := payload.Normalize()
	if m == nil {
		return nil, fmt.Errorf("fetch menu %s for truck %d: %w", menuID, truckID, ErrNotFound)
	}
	if c.menus != nil {
		c.menus.Set(key, m, c.menuTTL)
	}
	return m, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
