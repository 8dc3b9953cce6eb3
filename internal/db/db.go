package db

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"streetfeast-web/config"
	"streetfeast-web/internal/model"
)

const sqlitePrefix = "sqlite://"

// Init initializes the database connection and runs migrations.
// A DSN starting with sqlite:// opens a sqlite file, anything else goes to postgres.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}

	dialector, isPostgres := Dialector(cfg.DSN)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnableTimescale {
		if !isPostgres {
			log.Warn("enable_timescale is set but the database is not postgres; skipping")
		} else {
			log.Info("TimescaleDB is enabled, applying TimescaleDB-specific DDL...")
			if err := applyTimescaleDDL(db); err != nil {
				log.Warnf("failed to apply some TimescaleDB DDL: %v. Continuing without them.", err)
			}
		}
	}

	log.Info("Database initialization complete.")
	return db, nil
}

// Dialector picks the gorm driver for dsn and reports whether it is postgres.
func Dialector(dsn string) (gorm.Dialector, bool) {
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		return sqlite.Open(path), false
	}
	return postgres.Open(dsn), true
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	log.Info("Running database migrations...")
	if err := db.AutoMigrate(
		&model.PushSubscription{},
		&model.TruckSubscription{},
		&model.TruckStatusOpen{},
		&model.TruckStatusHistory{},
		&model.ContactMessage{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func applyTimescaleDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS timescaledb;",
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		// hypertables need the time column in every unique index
		"ALTER TABLE truck_status_histories DROP CONSTRAINT IF EXISTS truck_status_histories_pkey;",
		"SELECT create_hypertable('truck_status_histories', 'observed_at', if_not_exists => TRUE, migrate_data => TRUE);",

		"ALTER TABLE truck_status_histories " +
			"ADD CONSTRAINT truck_status_histories_period_valid CHECK (period_start <= period_end);",

		// half-open [start, end) ranges, same as the status windows
		"CREATE INDEX IF NOT EXISTS idx_truck_status_history_period_expr ON truck_status_histories " +
			"USING GIST (truck_id, tstzrange(period_start, period_end, '[)'));",

		"CREATE INDEX IF NOT EXISTS idx_truck_status_history_truck_id_observed_at ON truck_status_histories (truck_id, observed_at DESC);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
