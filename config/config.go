package config

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Links      LinksConfig      `yaml:"links"`
	AppLinks   AppLinksConfig   `yaml:"app_links"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// BackendConfig describes the remote truck API.
type BackendConfig struct {
	BaseURL             string        `yaml:"base_url"`
	TimeoutSeconds      int           `yaml:"timeout_seconds"`
	Timeout             time.Duration `yaml:"-"`
	HTTPProxy           string        `yaml:"http_proxy"`
	Timezone            string        `yaml:"timezone"`
	WindowDays          int           `yaml:"window_days"`
	StoragePrefix       string        `yaml:"storage_prefix"`
	MenuCacheTTLSeconds int           `yaml:"menu_cache_ttl_seconds"`
	MenuCacheTTL        time.Duration `yaml:"-"`
}

// Location loads the configured truck-local timezone.
func (b BackendConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(b.Timezone)
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableTimescale        bool   `yaml:"enable_timescale"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// WatcherConfig controls the periodic status re-evaluation.
type WatcherConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// LinksConfig holds the app store destinations used by /download.
type LinksConfig struct {
	AppStore   string `yaml:"app_store"`
	GooglePlay string `yaml:"google_play"`
}

// AppLinksConfig feeds the .well-known association documents.
type AppLinksConfig struct {
	AppleAppIDs     []string         `yaml:"apple_app_ids"`
	AppleLinkPaths  []string         `yaml:"apple_paths"`
	AndroidPackages []AndroidPackage `yaml:"android_packages"`
}

// AndroidPackage is one entry of assetlinks.json.
type AndroidPackage struct {
	Name         string   `yaml:"name"`
	Fingerprints []string `yaml:"sha256_cert_fingerprints"`
	LoginCreds   bool     `yaml:"login_creds"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv("STREETFEAST_API_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("STREETFEAST_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}

// ApplyDefaults fills in zero values. Load calls it; tests building a Config by hand may too.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = 15
	}
	cfg.Backend.Timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second

	if cfg.Backend.WindowDays <= 0 {
		cfg.Backend.WindowDays = 30
	}
	if cfg.Backend.MenuCacheTTLSeconds <= 0 {
		cfg.Backend.MenuCacheTTLSeconds = 300
	}
	cfg.Backend.MenuCacheTTL = time.Duration(cfg.Backend.MenuCacheTTLSeconds) * time.Second

	if cfg.Watcher.IntervalSeconds <= 0 {
		cfg.Watcher.IntervalSeconds = 60
	}
	cfg.Watcher.Interval = time.Duration(cfg.Watcher.IntervalSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if len(cfg.AppLinks.AppleLinkPaths) == 0 {
		cfg.AppLinks.AppleLinkPaths = []string{"/m/*"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
