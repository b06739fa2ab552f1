package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-billing/i18n"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/numbering"
	"github.com/diewo77/go-billing/pdf"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db       *gorm.DB
	store    *numbering.GormStore
	invoices *InvoiceService
	settings *SettingsService
	docs     *DocumentService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := setupTestDB(t)
	store := numbering.NewGormStore(db, "INV")
	alloc := numbering.NewAllocator(store, store, "INV", zerolog.Nop())
	inv := NewInvoiceService(db, alloc, zerolog.Nop())
	inv.now = func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) }
	docs := NewDocumentService(inv, db, pdf.NewEngine(pdf.CoreMeasurer(), zerolog.Nop()), pdf.Renderer{}, FileLogoLoader(t.TempDir()), zerolog.Nop())
	docs.now = func() time.Time { return time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC) }
	return fixture{db: db, store: store, invoices: inv, settings: NewSettingsService(db, store), docs: docs}
}

func simpleInput() CreateInvoiceInput {
	return CreateInvoiceInput{
		Client:  &ClientInput{Name: "ACME Corp", Email: "billing@acme.test"},
		TaxRate: 10,
		Items:   []ItemInput{{Description: "Consulting", Quantity: 2, UnitPrice: 50}},
	}
}

func TestEndToEnd_CreateAndGenerate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if got := f.invoices.ProposeNumber(ctx); got != "INV-0001" {
		t.Fatalf("ProposeNumber() = %q, want INV-0001", got)
	}
	inv, err := f.invoices.Create(ctx, simpleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Number != "INV-0001" {
		t.Errorf("number = %q, want INV-0001", inv.Number)
	}
	if inv.Subtotal != 100 || inv.Tax != 10 || inv.Total != 110 {
		t.Errorf("totals = %v/%v/%v, want 100/10/110", inv.Subtotal, inv.Tax, inv.Total)
	}
	if inv.Status != models.InvoiceStatusDraft || inv.Currency != "USD" || inv.Language != "en" {
		t.Errorf("defaults = %q/%q/%q", inv.Status, inv.Currency, inv.Language)
	}

	art, err := f.docs.Generate(ctx, inv.ID, i18n.EN)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if art.Name != "Invoice-INV-0001-EN" || art.Filename() != "Invoice-INV-0001-EN.pdf" {
		t.Errorf("artifact name = %q", art.Name)
	}
	if !bytes.HasPrefix(art.Data, []byte("%PDF")) {
		t.Errorf("artifact is not a PDF")
	}

	ar, err := f.docs.Generate(ctx, inv.ID, i18n.AR)
	if err != nil {
		t.Fatalf("generate ar: %v", err)
	}
	if ar.Name != "Invoice-INV-0001-AR" {
		t.Errorf("artifact name = %q", ar.Name)
	}
}

func TestGenerate_UsesInvoiceLanguageAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := simpleInput()
	in.Language = "ar"
	inv, err := f.invoices.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	art, err := f.docs.Generate(ctx, inv.ID, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if art.Lang != i18n.AR {
		t.Errorf("lang = %q, want ar", art.Lang)
	}
	if _, err := f.docs.Generate(ctx, 999, i18n.EN); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_SequentialNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var prev string
	for i := 1; i <= 3; i++ {
		inv, err := f.invoices.Create(ctx, simpleInput())
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if inv.Number <= prev {
			t.Errorf("number %q not greater than %q", inv.Number, prev)
		}
		prev = inv.Number
	}
	if prev != "INV-0003" {
		t.Errorf("last = %q, want INV-0003", prev)
	}
}

func TestCreate_HonoursStoredNextNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.settings.Save(ctx, SettingsInput{CompanyName: "Widgets", NextInvoiceNumber: 1001, Currency: "eur"}); err != nil {
		t.Fatalf("settings: %v", err)
	}
	if got := f.invoices.ProposeNumber(ctx); got != "INV-1001" {
		t.Errorf("ProposeNumber() = %q, want INV-1001", got)
	}
	inv, err := f.invoices.Create(ctx, simpleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Number != "INV-1001" || inv.Currency != "EUR" {
		t.Errorf("invoice = %q %q", inv.Number, inv.Currency)
	}
	if got := f.invoices.ProposeNumber(ctx); got != "INV-1002" {
		t.Errorf("ProposeNumber() after create = %q, want INV-1002", got)
	}
}

func TestCreate_SkipsNumbersAlreadyUsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := models.Client{Name: "Imported"}
	f.db.Create(&client)
	f.db.Create(&models.Invoice{Number: "INV-0001", ClientID: client.ID})
	f.db.Create(&models.CompanySettings{CompanyName: "Widgets", NextInvoiceNumber: 1})

	inv, err := f.invoices.Create(ctx, simpleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Number != "INV-0002" {
		t.Errorf("number = %q, want INV-0002", inv.Number)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tests := []struct {
		name  string
		in    CreateInvoiceInput
		field string
		code  string
	}{
		{"no client", CreateInvoiceInput{Items: []ItemInput{{Description: "x", Quantity: 1}}}, "client.name", "required"},
		{"blank client name", CreateInvoiceInput{Client: &ClientInput{Name: " "}, Items: []ItemInput{{Description: "x", Quantity: 1}}}, "client.name", "required"},
		{"no items", CreateInvoiceInput{Client: &ClientInput{Name: "A"}}, "items", "too_short"},
		{"zero quantity", CreateInvoiceInput{Client: &ClientInput{Name: "A"}, Items: []ItemInput{{Description: "x"}}}, "items[0].quantity", "must_be_positive"},
		{"negative price", CreateInvoiceInput{Client: &ClientInput{Name: "A"}, Items: []ItemInput{{Description: "x", Quantity: 1, UnitPrice: -1}}}, "items[0].unit_price", "must_not_be_negative"},
		{"negative tax", CreateInvoiceInput{Client: &ClientInput{Name: "A"}, TaxRate: -5, Items: []ItemInput{{Description: "x", Quantity: 1}}}, "tax_rate", "must_not_be_negative"},
		{"unknown currency", CreateInvoiceInput{Client: &ClientInput{Name: "A"}, Currency: "XYZ", Items: []ItemInput{{Description: "x", Quantity: 1}}}, "currency", "invalid_choice"},
		{"unknown status", CreateInvoiceInput{Client: &ClientInput{Name: "A"}, Status: "final", Items: []ItemInput{{Description: "x", Quantity: 1}}}, "status", "invalid_choice"},
		{"bad date", CreateInvoiceInput{Client: &ClientInput{Name: "A"}, DueDate: "tomorrow", Items: []ItemInput{{Description: "x", Quantity: 1}}}, "due_date", "invalid_date"},
		{"missing client id", CreateInvoiceInput{ClientID: 42, Items: []ItemInput{{Description: "x", Quantity: 1}}}, "client_id", "not_found"},
		{"missing product", CreateInvoiceInput{Client: &ClientInput{Name: "A"}, Items: []ItemInput{{ProductID: 7, Quantity: 1}}}, "items[0].product_id", "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.invoices.Create(ctx, tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) || !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Violations[tt.field] != tt.code {
				t.Errorf("violations = %v, want %s=%s", verr.Violations, tt.field, tt.code)
			}
		})
	}
	var count int64
	f.db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Errorf("invalid input stored %d invoices", count)
	}
	if got := f.invoices.ProposeNumber(ctx); got != "INV-0001" {
		t.Errorf("rejected input consumed a number, proposal = %q", got)
	}
}

func TestCreate_FromProductAndExistingClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := models.Client{Name: "Existing"}
	f.db.Create(&client)
	product := models.Product{Name: "Hosting", UnitPrice: 25}
	f.db.Create(&product)

	inv, err := f.invoices.Create(ctx, CreateInvoiceInput{
		ClientID: client.ID,
		Items:    []ItemInput{{ProductID: product.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	loaded, err := f.invoices.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Items) != 1 || loaded.Items[0].Description != "Hosting" || loaded.Items[0].LineTotal != 100 {
		t.Errorf("items = %+v", loaded.Items)
	}
	if loaded.Client == nil || loaded.Client.Name != "Existing" || loaded.Total != 100 {
		t.Errorf("invoice = %+v", loaded)
	}
}

func TestUpdateItems_Recomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, err := f.invoices.Create(ctx, simpleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := f.invoices.UpdateItems(ctx, inv.ID, []ItemInput{
		{Description: "Design", Quantity: 1, UnitPrice: 200},
		{Description: "Review", Quantity: 3, UnitPrice: 10},
	}, 20)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Items) != 2 || updated.Items[0].Description != "Design" {
		t.Errorf("items = %+v", updated.Items)
	}
	if updated.Subtotal != 230 || updated.Tax != 46 || updated.Total != 276 {
		t.Errorf("totals = %v/%v/%v, want 230/46/276", updated.Subtotal, updated.Tax, updated.Total)
	}
	if updated.Number != inv.Number {
		t.Errorf("number changed from %q to %q", inv.Number, updated.Number)
	}
	if _, err := f.invoices.UpdateItems(ctx, 999, []ItemInput{{Description: "x", Quantity: 1}}, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.invoices.UpdateItems(ctx, inv.ID, nil, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSetStatusAndRevenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, _ := f.invoices.Create(ctx, simpleInput())
	b, _ := f.invoices.Create(ctx, simpleInput())
	if a == nil || b == nil {
		t.Fatal("create failed")
	}

	if err := f.invoices.SetStatus(ctx, a.ID, models.InvoiceStatusPaid); err != nil {
		t.Fatalf("set status: %v", err)
	}
	// flat tag: paid may go back to pending
	if err := f.invoices.SetStatus(ctx, b.ID, models.InvoiceStatusPaid); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := f.invoices.SetStatus(ctx, b.ID, models.InvoiceStatusPending); err != nil {
		t.Fatalf("set status back: %v", err)
	}
	if err := f.invoices.SetStatus(ctx, a.ID, "final"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := f.invoices.SetStatus(ctx, 999, models.InvoiceStatusPaid); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	revenue, err := f.invoices.Revenue(ctx)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if revenue != 110 {
		t.Errorf("revenue = %v, want 110", revenue)
	}
	list, err := f.invoices.List(ctx)
	if err != nil || len(list) != 2 || list[0].ID != b.ID {
		t.Errorf("list = %v, %v", list, err)
	}
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	res := f.invoices.Preview([]ItemInput{{Quantity: 2, UnitPrice: 50}}, 10)
	if res.Subtotal != 100 || res.Tax != 10 || res.Total != 110 {
		t.Errorf("preview = %+v", res)
	}
	empty := f.invoices.Preview(nil, 10)
	if empty.Subtotal != 0 || empty.Tax != 0 || empty.Total != 0 {
		t.Errorf("empty preview = %+v", empty)
	}
}

func TestSettings_SaveAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.settings.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	first, err := f.settings.Save(ctx, SettingsInput{CompanyName: "Widgets", Country: "us", Language: "AR"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := f.settings.Save(ctx, SettingsInput{CompanyName: "Widgets Ltd", Website: "widgets.test", NextInvoiceNumber: 50})
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("settings not updated in place: %d vs %d", first.ID, second.ID)
	}
	got, err := f.settings.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompanyName != "Widgets Ltd" || got.Website != "widgets.test" || got.Currency != "USD" || got.Language != "en" {
		t.Errorf("settings = %+v", got)
	}
	var count int64
	f.db.Model(&models.CompanySettings{}).Count(&count)
	if count != 1 {
		t.Errorf("settings rows = %d, want 1", count)
	}
	if seq, _ := f.store.Reserve(ctx); seq != 50 {
		t.Errorf("counter after raise = %d, want 50", seq)
	}

	_, err = f.settings.Save(ctx, SettingsInput{CompanyName: "", Email: "bad", Currency: "XYZ", Language: "fr"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"company_name", "email", "currency", "language"} {
		if _, ok := verr.Violations[field]; !ok {
			t.Errorf("missing violation for %s in %v", field, verr.Violations)
		}
	}
}

func TestFileLogoLoader(t *testing.T) {
	load := FileLogoLoader(t.TempDir())
	if _, err := load(context.Background(), "https://example.com/logo.png"); err == nil {
		t.Error("remote references are not supported")
	}
	if _, err := load(context.Background(), "missing.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCreate_ServiceDefaults(t *testing.T) {
	f := newFixture(t)
	f.invoices.WithDefaults("sar", i18n.AR)
	inv, err := f.invoices.Create(context.Background(), simpleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Currency != "SAR" || inv.Language != "ar" {
		t.Errorf("defaults = %q/%q, want SAR/ar", inv.Currency, inv.Language)
	}
}

func TestCreate_SettingsReadFailure(t *testing.T) {
	f := newFixture(t)
	if err := f.db.Migrator().DropTable(&models.CompanySettings{}); err != nil {
		t.Fatalf("drop settings: %v", err)
	}
	_, err := f.invoices.Create(context.Background(), simpleInput())
	if err == nil {
		t.Fatal("expected error when settings cannot be read")
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Fatalf("got validation error %v, want the storage error", verr)
	}
	var count int64
	f.db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Errorf("invoices = %d, want 0", count)
	}
}
