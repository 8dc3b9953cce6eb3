package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"streetfeast-web/config"
	"streetfeast-web/internal/mw"
	"streetfeast-web/internal/profile"
	"streetfeast-web/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, trucks profile.Source, webpushOptions *webpush.Options) *gin.Engine {
	loc, err := cfg.Backend.Location()
	if err != nil {
		loc = time.Local
	}
	handler := NewHandler(s, trucks, webpushOptions).
		WithProfileOptions(profile.Options{
			Location:      loc,
			WindowDays:    cfg.Backend.WindowDays,
			StoragePrefix: cfg.Backend.StoragePrefix,
		}).
		WithLinks(cfg.Links, cfg.AppLinks)
	return newRouter(cfg, handler)
}

func newRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	r := gin.Default()

	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// Short TTL: status changes with the clock.
	cacheStore := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.Server.CacheTTL)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Web pages
	r.GET("/truck/:truck_id", mw.MobileDeepLink(), rateLimiter, caching, handler.GetTruckProfile)
	r.GET("/m/*path", handler.MobileFallback)
	r.GET("/download", mw.StoreRedirect(cfg.Links.AppStore, cfg.Links.GooglePlay), handler.GetDownload)
	r.GET("/.well-known/apple-app-site-association", handler.GetAppleAppSiteAssociation)
	r.GET("/.well-known/assetlinks.json", handler.GetAssetLinks)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/trucks/:truck_id", caching, handler.GetTruckProfile)
		api.GET("/trucks/:truck_id/status", caching, handler.GetTruckStatus)
		api.GET("/trucks/:truck_id/menu", caching, handler.GetTruckMenu)

		api.POST("/contact", handler.PostContact)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
