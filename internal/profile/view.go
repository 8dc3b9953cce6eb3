package profile

import (
	"net/url"
	"strings"
	"time"

	"streetfeast-web/internal/availability"
	"streetfeast-web/internal/menu"
	"streetfeast-web/internal/parse"
	"streetfeast-web/internal/schedule"
	"streetfeast-web/internal/truck"
)

const mapsBaseURL = "https://maps.google.com/?q="

// View is everything the truck profile page renders.
type View struct {
	Truck       TruckView     `json:"truck"`
	Status      StatusView    `json:"status"`
	Days        []DayView     `json:"days"`
	Selection   SelectionView `json:"selection"`
	Location    *LocationView `json:"location"`
	Menu        MenuView      `json:"menu"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

type TruckView struct {
	ID           truck.ID `json:"id"`
	Name         string   `json:"name"`
	Cuisine      string   `json:"cuisine,omitempty"`
	Description  string   `json:"description,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	PhoneURI     string   `json:"phoneUri,omitempty"`
	Website      string   `json:"website,omitempty"`
	Instagram    string   `json:"instagram,omitempty"`
	Facebook     string   `json:"facebook,omitempty"`
	TikTok       string   `json:"tiktok,omitempty"`
	Twitter      string   `json:"twitter,omitempty"`
	HeroImageURL string   `json:"heroImageUrl,omitempty"`
	IsFavorited  bool     `json:"isFavorited"`
}

type StatusView struct {
	Label        availability.Label `json:"label"`
	Kind         string             `json:"kind"`
	Hours        string             `json:"hours,omitempty"`
	OccurrenceID truck.ID           `json:"occurrenceId,omitempty"`
	SoonestID    truck.ID           `json:"soonestId,omitempty"`
}

type OccurrenceView struct {
	ID       truck.ID `json:"id"`
	Open     string   `json:"open"`
	Close    string   `json:"close"`
	Hours    string   `json:"hours"`
	IsClosed bool     `json:"isClosed"`
	Address  string   `json:"address,omitempty"`
	Active   bool     `json:"active"`
}

// DayView is one date card in the calendar strip.
type DayView struct {
	Date          string           `json:"date"`
	Month         string           `json:"month"`
	Day           int              `json:"day"`
	Weekday       string           `json:"weekday"`
	HasOccurrence bool             `json:"hasOccurrence"`
	Selected      bool             `json:"selected"`
	Occurrences   []OccurrenceView `json:"occurrences"`
}

type SelectionView struct {
	State        string   `json:"state"`
	Date         string   `json:"date,omitempty"`
	OccurrenceID truck.ID `json:"occurrenceId,omitempty"`
}

type LocationView struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	MapsURL   string  `json:"mapsUrl,omitempty"`
}

type ItemView struct {
	ID          truck.ID `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	PriceText   string   `json:"priceText"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

type CategoryView struct {
	ID    truck.ID   `json:"id"`
	Name  string     `json:"name"`
	Items []ItemView `json:"items"`
}

type MenuView struct {
	Source     menu.Source    `json:"source"`
	Categories []CategoryView `json:"categories"`
	ImageURL   string         `json:"imageUrl,omitempty"`
}

// render must be called with s.mu held.
func (s *Session) render(now time.Time) *View {
	status := s.statusLocked(now)
	active := s.selection.Active()
	selected, hasSelected := s.selection.SelectedSlot()

	v := &View{
		Truck:       s.truckView(),
		Status:      statusView(status),
		Days:        make([]DayView, 0, len(s.slots)),
		Selection:   SelectionView{State: s.selection.State().String(), OccurrenceID: s.selection.ActiveID()},
		Menu:        s.menuView(menu.ResolveView(active, s.defaultMenu)),
		GeneratedAt: now,
	}
	if hasSelected {
		v.Selection.Date = selected.Date.String()
	}

	for _, slot := range s.slots {
		v.Days = append(v.Days, dayView(slot, hasSelected && slot.Date == selected.Date, s.selection.ActiveID()))
	}

	if active != nil && active.Location != nil {
		v.Location = locationView(active.Location)
	}
	return v
}

func (s *Session) truckView() TruckView {
	t := s.truck
	tv := TruckView{
		ID:          t.ID,
		Name:        t.Name,
		Cuisine:     t.Cuisine,
		Description: t.Description,
		Phone:       parse.Phone(t.Phone),
		PhoneURI:    parse.PhoneURI(t.Phone),
		Website:     t.Website,
		Instagram:   t.Instagram,
		Facebook:    t.Facebook,
		TikTok:      t.TikTok,
		Twitter:     t.Twitter,
		IsFavorited: t.IsFavorited(),
	}
	if len(t.Images) > 0 {
		tv.HeroImageURL = ImageURL(s.opts.StoragePrefix, t.Images[0].ImageURI)
	}
	return tv
}

func statusView(st availability.Status) StatusView {
	sv := StatusView{
		Label:        st.Label,
		Kind:         st.Label.Kind(),
		OccurrenceID: st.OccurrenceID(),
	}
	if st.Occurrence != nil && !st.Occurrence.IsClosed {
		sv.Hours = parse.Hours(st.Occurrence.Open, st.Occurrence.Close)
	}
	if st.Soonest != nil {
		sv.SoonestID = st.Soonest.ID
	}
	return sv
}

func dayView(slot schedule.DateSlot, selected bool, activeID truck.ID) DayView {
	midnight := slot.Date.Midnight(time.UTC)
	dv := DayView{
		Date:          slot.Date.String(),
		Month:         midnight.Format("Jan"),
		Day:           slot.Date.Day,
		Weekday:       midnight.Format("Mon"),
		HasOccurrence: slot.HasOccurrences(),
		Selected:      selected,
		Occurrences:   make([]OccurrenceView, 0, len(slot.Occurrences)),
	}
	for _, o := range slot.Occurrences {
		ov := OccurrenceView{
			ID:       o.ID,
			Open:     parse.FormatLocal(o.Open),
			Close:    parse.FormatLocal(o.Close),
			Hours:    parse.Hours(o.Open, o.Close),
			IsClosed: o.IsClosed,
			Active:   selected && o.ID == activeID,
		}
		if o.Location != nil {
			ov.Address = o.Location.Address
		}
		dv.Occurrences = append(dv.Occurrences, ov)
	}
	return dv
}

func locationView(l *truck.Location) *LocationView {
	lv := &LocationView{
		Address:   l.Address,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
	}
	if l.Address != "" {
		lv.MapsURL = mapsBaseURL + url.QueryEscape(l.Address)
	}
	return lv
}

func (s *Session) menuView(resolved menu.View) MenuView {
	mv := MenuView{
		Source:     resolved.Source,
		Categories: make([]CategoryView, 0, len(resolved.Categories)),
	}
	if resolved.ImageURI != "" {
		mv.ImageURL = ImageURL(s.opts.StoragePrefix, resolved.ImageURI)
	}
	for _, c := range resolved.Categories {
		cv := CategoryView{ID: c.ID, Name: c.Name, Items: make([]ItemView, 0, len(c.MenuItems))}
		for _, item := range c.MenuItems {
			iv := ItemView{
				ID:          item.ID,
				Name:        item.Name,
				Description: item.Description,
				Price:       item.Price,
				PriceText:   parse.Price(item.Price),
			}
			if uri := item.ImageURI(); uri != "" {
				iv.ImageURL = ImageURL(s.opts.StoragePrefix, uri)
			}
			cv.Items = append(cv.Items, iv)
		}
		mv.Categories = append(mv.Categories, cv)
	}
	return mv
}

// ImageURL joins a relative storage key to prefix. Absolute http(s) URLs and
// an empty prefix leave uri unchanged.
func ImageURL(prefix, uri string) string {
	if uri == "" {
		return ""
	}
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") || prefix == "" {
		return uri
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(uri, "/")
}

// MenuView resolves the menu for the current selection in its rendered form.
func (s *Session) MenuView() (MenuView, error) {
	resolved, err := s.Menu()
	if err != nil {
		return MenuView{}, err
	}
	return s.menuView(resolved), nil
}

// StatusView resolves the status at now in its rendered form.
func (s *Session) StatusView(now time.Time) (StatusView, error) {
	st, err := s.Status(now)
	if err != nil {
		return StatusView{}, err
	}
	return statusView(st), nil
}
