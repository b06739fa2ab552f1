package main

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-billing/i18n"
	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/db"
	"github.com/diewo77/go-billing/internal/numbering"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/pdf"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// backend holds the wired services shared by every command.
type backend struct {
	db       *gorm.DB
	rdb      *redis.Client
	alloc    *numbering.Allocator
	invoices *services.InvoiceService
	settings *services.SettingsService
	docs     *services.DocumentService
}

// openBackend connects the configured stores and wires the services.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	gdb, err := db.Connect(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis invoice counter enabled")
	}
	b, err := newBackend(gdb, rdb, cfg, log)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}
	return b, nil
}

// newBackend wires the services over already opened stores. rdb may be nil,
// in which case the database counter reserves invoice numbers.
func newBackend(gdb *gorm.DB, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	prefix := cfg.Document.InvoicePrefix
	store := numbering.NewGormStore(gdb, prefix)

	var (
		reserver numbering.Reserver = store
		counter  numbering.Advancer = store
	)
	if rdb != nil {
		rc := numbering.NewRedisCounter(rdb, cfg.Redis.Key, numbering.SeedFromSource(store, prefix), store, log.With().Str("component", "numbering").Logger())
		reserver, counter = rc, rc
	}
	alloc := numbering.NewAllocator(store, reserver, prefix, log.With().Str("component", "numbering").Logger())

	measurer := pdf.CoreMeasurer()
	if cfg.Document.FontPath != "" {
		m, err := pdf.NewFontMeasurer(cfg.Document.FontPath)
		if err != nil {
			return nil, fmt.Errorf("load document font: %w", err)
		}
		measurer = m
	}

	svcLog := log.With().Str("component", "services").Logger()
	invoices := services.NewInvoiceService(gdb, alloc, svcLog).
		WithDefaults(cfg.Document.DefaultCurrency, i18n.Parse(cfg.Document.DefaultLanguage))
	docs := services.NewDocumentService(
		invoices, gdb,
		pdf.NewEngine(measurer, log.With().Str("component", "layout").Logger()),
		pdf.Renderer{FontPath: cfg.Document.FontPath},
		services.FileLogoLoader("."),
		svcLog,
	)
	return &backend{
		db:       gdb,
		rdb:      rdb,
		alloc:    alloc,
		invoices: invoices,
		settings: services.NewSettingsService(gdb, counter),
		docs:     docs,
	}, nil
}

func (b *backend) Close() error {
	if b.rdb != nil {
		_ = b.rdb.Close()
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
