package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"streetfeast-web/config"
	"streetfeast-web/internal/api"
	"streetfeast-web/internal/backend"
	"streetfeast-web/internal/db"
	"streetfeast-web/internal/notification"
	"streetfeast-web/internal/store"
	"streetfeast-web/internal/watcher"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("failed to read .env: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	setupLogging(cfg.Logging)
	log.Infof("configuration loaded successfully from %s", configPath)

	// Push notifications need VAPID keys; only the watcher sends them.
	if cfg.Watcher.Enabled && (cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "") {
		log.Fatal("VAPID keys must be configured when the watcher is enabled. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Info("database initialized successfully")

	client, err := backend.NewClient(cfg.Backend)
	if err != nil {
		log.Fatalf("failed to create backend client: %v", err)
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	// Notifications and the status watcher run in the background.
	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, client, &webpushOptions)
	workerPool.Start(ctx)

	watcherSvc := watcher.NewService(cfg.Watcher, client.Location(), appStore, client, workerPool)
	go watcherSvc.Run(ctx)

	// Initialize router
	router := api.NewRouter(cfg, appStore, client, &webpushOptions)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	log.Info("Shutdown signal received, stopping services...")
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server Shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)
}
