package truck

import (
	"bytes"
	"encoding/json"
)

// ItemImage is an additional photo attached to a menu item.
type ItemImage struct {
	ID       ID     `json:"id"`
	ImageURI string `json:"imageUri"`
}

// Item is a single dish on a menu.
type Item struct {
	ID          ID          `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Image       string      `json:"image"`
	Images      []ItemImage `json:"images"`
}

// ImageURI returns the item's primary image, falling back to the first of Images.
func (i Item) ImageURI() string {
	if i.Image != "" {
		return i.Image
	}
	if len(i.Images) > 0 {
		return i.Images[0].ImageURI
	}
	return ""
}

// Category groups menu items. Order is significant.
type Category struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
	MenuItems []Item `json:"menuItems"`
}

// Menu is the GET /Truck/{truckId}/Menu payload and the shape embedded in occurrences.
type Menu struct {
	ID           ID         `json:"id"`
	TruckID      ID         `json:"truckId"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Categories   []Category `json:"categories"`
	IsDefault    bool       `json:"isDefault"`
	MenuImageURI string     `json:"menuImageUri"`
}

// MenuPayload is the menu endpoint response. Some backend versions return a
// single menu object, others a bare array of menu-like objects; exactly one
// of Single and List is set after decoding.
type MenuPayload struct {
	Single *Menu
	List   []Menu
}

// UnmarshalJSON decodes either shape.
func (p *MenuPayload) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*p = MenuPayload{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, &p.List)
	}
	p.Single = &Menu{}
	return json.Unmarshal(b, p.Single)
}

// Normalize returns the menu the payload describes, or nil when it is empty.
// For the array shape the wrapper is synthesized from the first element.
func (p MenuPayload) Normalize() *Menu {
	if p.Single != nil {
		return p.Single
	}
	if len(p.List) == 0 {
		return nil
	}
	first := p.List[0]
	return &Menu{
		ID:           first.ID,
		TruckID:      first.TruckID,
		Name:         first.Name,
		Description:  first.Description,
		Categories:   first.Categories,
		IsDefault:    first.IsDefault,
		MenuImageURI: first.MenuImageURI,
	}
}
