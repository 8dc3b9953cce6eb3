package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"streetfeast-web/config"
	"streetfeast-web/internal/profile"
	"streetfeast-web/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	trucks   profile.Source
	webpush  *webpush.Options
	profile  profile.Options
	links    config.LinksConfig
	appLinks config.AppLinksConfig
	now      func() time.Time
}

// NewHandler creates a new API handler. trucks may be nil for handlers that
// never load a truck.
func NewHandler(s store.Store, trucks profile.Source, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		trucks:  trucks,
		webpush: webpushOptions,
		now:     time.Now,
	}
}

// WithProfileOptions sets the timezone, window and storage prefix used by truck pages.
func (h *Handler) WithProfileOptions(opts profile.Options) *Handler {
	h.profile = opts
	return h
}

// WithLinks sets the app store and app association settings.
func (h *Handler) WithLinks(links config.LinksConfig, appLinks config.AppLinksConfig) *Handler {
	h.links = links
	h.appLinks = appLinks
	return h
}
