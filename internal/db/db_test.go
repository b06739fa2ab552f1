package db

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/migrations"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

func TestConnect_SQLiteAutoMigrate(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "billing.db"),
		Migrations: "auto",
	}
	d, err := Connect(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	for _, table := range []string{"company_settings", "counter_states", "clients", "products", "invoices", "invoice_items"} {
		if !d.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}
	// a second run is a no-op
	if err := Migrate(d, cfg, zerolog.Nop()); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
	if err := d.Create(&models.Client{Name: "ACME"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestConnect_MigrationsOff(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "empty.db"),
		Migrations: "off",
	}
	d, err := Connect(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if d.Migrator().HasTable("invoices") {
		t.Errorf("no tables expected with migrations off")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "mysql"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestMaskDSN(t *testing.T) {
	got := MaskDSN("host=db user=u password=secret dbname=n")
	if strings.Contains(got, "secret") || !strings.Contains(got, "password=***") {
		t.Errorf("MaskDSN() = %q", got)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatalf("iofs: %v", err)
	}
	defer src.Close()
	first, err := src.First()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first != 1 {
		t.Errorf("first version = %d, want 1", first)
	}
	up, _, err := src.ReadUp(first)
	if err != nil {
		t.Fatalf("read up: %v", err)
	}
	body, _ := io.ReadAll(up)
	up.Close()
	for _, table := range []string{"counter_states", "invoices", "invoice_items", "company_settings"} {
		if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("up migration does not create %s", table)
		}
	}
	down, _, err := src.ReadDown(first)
	if err != nil {
		t.Fatalf("read down: %v", err)
	}
	down.Close()
}
