// Package db opens the database and brings its schema up to date.
package db

import (
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

var passwordRe = regexp.MustCompile(`(password=)([^\s]+)`)

// MaskDSN hides the password of a key=value DSN.
func MaskDSN(dsn string) string {
	return passwordRe.ReplaceAllString(dsn, `${1}***`)
}

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN()), MaskDSN(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath), cfg.SQLitePath, nil
	}
	return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Open connects with retries, leaving time for postgres to start.
func Open(cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	dial, target, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var db *gorm.DB
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dial, gcfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("database connection failed, retrying")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	log.Info().Str("driver", cfg.Driver).Str("dsn", target).Msg("database connected")
	return db, nil
}

// Connect opens the database and applies the configured migration mode.
func Connect(cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	db, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, cfg, log); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or upgrades the schema.
// "sql" runs the embedded golang-migrate files, "auto" uses gorm AutoMigrate, "off" does nothing.
func Migrate(db *gorm.DB, cfg config.DatabaseConfig, log zerolog.Logger) error {
	switch cfg.Migrations {
	case "off":
		log.Info().Msg("migrations disabled")
		return nil
	case "sql":
		log.Info().Msg("running sql migrations")
		if err := RunSQLMigrations(cfg.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	default:
		if err := AutoMigrate(db); err != nil {
			return err
		}
	}
	return checkTables(db)
}

// AutoMigrate creates every model table with gorm.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func checkTables(db *gorm.DB) error {
	for _, m := range models.All() {
		if !db.Migrator().HasTable(m) {
			return fmt.Errorf("missing table after migration: %T", m)
		}
	}
	return nil
}
