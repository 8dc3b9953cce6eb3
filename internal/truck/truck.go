package truck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"streetfeast-web/internal/parse"
)

// ID is an opaque backend identifier. The backend sends numbers for most
// entities but the client never does arithmetic on them, so both JSON
// numbers and strings are accepted.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Image is a truck photo as stored by the backend.
type Image struct {
	ID        ID     `json:"id"`
	ImageURI  string `json:"imageUri"`
	SortOrder int    `json:"sortOrder"`
}

// Truck is the GET /Truck/{truckId} payload.
type Truck struct {
	ID            ID      `json:"id"`
	Name          string  `json:"name"`
	Cuisine       string  `json:"cuisine"`
	Description   string  `json:"description"`
	Phone         string  `json:"phone"`
	Website       string  `json:"website"`
	Instagram     string  `json:"instagram"`
	Facebook      string  `json:"facebook"`
	TikTok        string  `json:"tiktok"`
	Twitter       string  `json:"twitter"`
	Images        []Image `json:"images"`
	FavoriteID    *ID     `json:"favoriteId"`
	DefaultMenuID *ID     `json:"defaultMenuId"`
}

// IsFavorited reports whether the current viewer favorited the truck.
func (t *Truck) IsFavorited() bool {
	return t.FavoriteID != nil
}

// Location is where an occurrence takes place.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Occurrence is a single scheduled appearance of a truck.
type Occurrence struct {
	ID             ID        `json:"id"`
	OpenTimeLocal  string    `json:"openTimeLocal"`
	CloseTimeLocal string    `json:"closeTimeLocal"`
	IsClosed       bool      `json:"isClosed"`
	Location       *Location `json:"location"`
	Menu           *Menu     `json:"menu"`

	// Truck-local wall-clock times, filled by ParseTimes.
	Open  time.Time `json:"-"`
	Close time.Time `json:"-"`
}

// ParseTimes fills Open and Close from the raw local timestamps and checks
// that a non-cancelled occurrence opens before it closes.
func (o *Occurrence) ParseTimes(loc *time.Location) error {
	open, err := parse.LocalTime(o.OpenTimeLocal, loc)
	if err != nil {
		return fmt.Errorf("occurrence %s: open time: %w", o.ID, err)
	}
	closeAt, err := parse.LocalTime(o.CloseTimeLocal, loc)
	if err != nil {
		return fmt.Errorf("occurrence %s: close time: %w", o.ID, err)
	}
	if !o.IsClosed && !open.Before(closeAt) {
		return fmt.Errorf("occurrence %s: open time %s is not before close time %s", o.ID, o.OpenTimeLocal, o.CloseTimeLocal)
	}
	o.Open = open
	o.Close = closeAt
	return nil
}

// HasMenu reports whether the occurrence embeds a menu with at least one category.
func (o *Occurrence) HasMenu() bool {
	return o.Menu != nil && len(o.Menu.Categories) > 0
}
