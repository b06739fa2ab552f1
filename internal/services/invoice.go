package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-billing/i18n"
	"github.com/diewo77/go-billing/internal/format"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/numbering"
	"github.com/diewo77/go-billing/internal/totals"
	"github.com/diewo77/go-billing/validation"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// maxNumberAttempts bounds how many reserved numbers may be skipped because an
// invoice already carries them.
const maxNumberAttempts = 5

// ItemInput is one invoice line as submitted. When ProductID is set, empty
// description and price are copied from the product.
type ItemInput struct {
	ProductID   uint    `json:"product_id,omitempty"`
	Description string  `json:"description" validate:"notblank,max=500"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

// ClientInput creates a client together with the invoice.
type ClientInput struct {
	Name    string `json:"name" validate:"notblank,max=255"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address,omitempty" validate:"max=500"`
}

// CreateInvoiceInput is the payload of InvoiceService.Create.
type CreateInvoiceInput struct {
	ClientID  uint         `json:"client_id,omitempty"`
	Client    *ClientInput `json:"client,omitempty"`
	IssueDate string       `json:"issue_date,omitempty"`
	DueDate   string       `json:"due_date,omitempty"`
	Status    string       `json:"status,omitempty" validate:"omitempty,oneof=draft pending paid"`
	Currency  string       `json:"currency,omitempty"`
	Language  string       `json:"language,omitempty"`
	TaxRate   float64      `json:"tax_rate" validate:"gte=0"`
	Notes     string       `json:"notes,omitempty"`
	Terms     string       `json:"terms,omitempty"`
	Items     []ItemInput  `json:"items" validate:"min=1,dive"`
}

type updateItemsInput struct {
	TaxRate float64     `json:"tax_rate" validate:"gte=0"`
	Items   []ItemInput `json:"items" validate:"min=1,dive"`
}

// InvoiceService creates and updates invoices.
type InvoiceService struct {
	db    *gorm.DB
	alloc *numbering.Allocator
	log   zerolog.Logger
	now   func() time.Time

	// used when neither the input nor the settings name a value
	currency string
	lang     i18n.Lang
}

func NewInvoiceService(db *gorm.DB, alloc *numbering.Allocator, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{db: db, alloc: alloc, log: log, now: time.Now, currency: format.DefaultCurrency, lang: i18n.Default}
}

// WithDefaults sets the fallback currency and language of new invoices.
// Unsupported values are ignored.
func (s *InvoiceService) WithDefaults(currency string, lang i18n.Lang) *InvoiceService {
	if format.SupportedCurrency(currency) {
		s.currency = strings.ToUpper(currency)
	}
	if lang.Valid() {
		s.lang = lang
	}
	return s
}

// Preview computes totals for unsaved items. It never touches the database.
func (s *InvoiceService) Preview(items []ItemInput, taxRate float64) totals.Result {
	lines := make([]totals.Line, len(items))
	for i, it := range items {
		lines[i] = totals.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return totals.Compute(lines, taxRate)
}

// ProposeNumber returns the number to display on a new invoice form.
func (s *InvoiceService) ProposeNumber(ctx context.Context) string {
	return s.alloc.Propose(ctx)
}

// Create validates in, reserves a number and stores the invoice with its items.
// The stored number may differ from an earlier proposal.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	db := s.db.WithContext(ctx)
	v := validation.Violations{}
	if err := s.resolveProducts(db, in.Items, v); err != nil {
		return nil, err
	}
	v.Merge(validation.Struct(in))
	if in.ClientID == 0 && in.Client == nil {
		v["client.name"] = "required"
	}
	if in.Currency != "" && !format.SupportedCurrency(in.Currency) {
		v["currency"] = "invalid_choice"
	}
	if in.Language != "" && !i18n.Lang(strings.ToLower(in.Language)).Valid() {
		v["language"] = "invalid_choice"
	}
	issue := parseOptionalDate("issue_date", in.IssueDate, v)
	due := parseOptionalDate("due_date", in.DueDate, v)
	if err := invalid(v); err != nil {
		return nil, err
	}

	var settings models.CompanySettings
	res := db.Order("id").Limit(1).Find(&settings)
	if res.Error != nil {
		return nil, fmt.Errorf("load settings: %w", res.Error)
	}
	hasSettings := res.RowsAffected > 0

	inv := models.Invoice{
		ClientID:  in.ClientID,
		IssueDate: issue,
		DueDate:   due,
		Status:    models.InvoiceStatus(in.Status),
		Currency:  strings.ToUpper(in.Currency),
		Language:  strings.ToLower(in.Language),
		TaxRate:   in.TaxRate,
		Notes:     in.Notes,
		Terms:     in.Terms,
		Items:     toItems(in.Items),
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = s.now().UTC().Truncate(24 * time.Hour)
	}
	if inv.Currency == "" {
		inv.Currency = s.currency
		if hasSettings && settings.Currency != "" {
			inv.Currency = settings.Currency
		}
	}
	if inv.Language == "" {
		inv.Language = string(s.lang)
		if hasSettings && i18n.Lang(settings.Language).Valid() {
			inv.Language = settings.Language
		}
	}

	if in.Client == nil {
		if err := db.First(&models.Client{}, in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Violations: validation.Violations{"client_id": "not_found"}}
			}
			return nil, err
		}
	}

	// the counter commits on its own; a failed insert leaves a gap, never a duplicate
	number, err := s.reserveUnused(ctx, db)
	if err != nil {
		return nil, err
	}
	inv.Number = number

	err = db.Transaction(func(tx *gorm.DB) error {
		if in.Client != nil {
			client := models.Client{Name: strings.TrimSpace(in.Client.Name), Email: in.Client.Email, Address: in.Client.Address}
			if err := tx.Create(&client).Error; err != nil {
				return fmt.Errorf("create client: %w", err)
			}
			inv.ClientID = client.ID
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("number", inv.Number).Uint("invoice_id", inv.ID).Float64("total", inv.Total).Msg("invoice created")
	return &inv, nil
}

// reserveUnused reserves numbers until one is not carried by an existing invoice,
// which happens when invoices were imported or the counter was seeded from a stale setting.
func (s *InvoiceService) reserveUnused(ctx context.Context, db *gorm.DB) (string, error) {
	for i := 0; i < maxNumberAttempts; i++ {
		number, err := s.alloc.Reserve(ctx)
		if err != nil {
			return "", err
		}
		var taken int64
		if err := db.Unscoped().Model(&models.Invoice{}).Where("number = ?", number).Count(&taken).Error; err != nil {
			return "", err
		}
		if taken == 0 {
			return number, nil
		}
		s.log.Warn().Str("number", number).Msg("reserved invoice number already used, skipping")
	}
	return "", fmt.Errorf("no unused invoice number after %d attempts", maxNumberAttempts)
}

// Get loads an invoice with its client and ordered items.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns invoices without their items, newest first.
func (s *InvoiceService) List(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).Preload("Client").Order("id DESC").Find(&invoices).Error
	return invoices, err
}

// UpdateItems replaces the items and tax rate of an invoice; totals are recomputed on save.
func (s *InvoiceService) UpdateItems(ctx context.Context, id uint, items []ItemInput, taxRate float64) (*models.Invoice, error) {
	in := updateItemsInput{TaxRate: taxRate, Items: items}

	db := s.db.WithContext(ctx)
	v := validation.Violations{}
	if err := s.resolveProducts(db, in.Items, v); err != nil {
		return nil, err
	}
	v.Merge(validation.Struct(in))
	if err := invalid(v); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Unscoped().Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		inv.TaxRate = taxRate
		inv.Items = toItems(in.Items)
		return tx.Save(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetStatus changes the status tag. Any status may follow any other.
func (s *InvoiceService) SetStatus(ctx context.Context, id uint, status models.InvoiceStatus) error {
	if !status.Valid() {
		return &ValidationError{Violations: validation.Violations{"status": "invalid_choice"}}
	}
	res := s.db.WithContext(ctx).Model(&models.Invoice{ID: id}).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Revenue sums the totals of paid invoices, recomputed from their items.
func (s *InvoiceService) Revenue(ctx context.Context) (float64, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).Where("status = ?", models.InvoiceStatusPaid).
		Preload("Items").
		Find(&invoices).Error
	if err != nil {
		return 0, err
	}

	var total float64
	for i := range invoices {
		total += invoices[i].Recompute().Total
	}
	return total, nil
}

// resolveProducts fills description and price of items referencing a catalog product.
func (s *InvoiceService) resolveProducts(db *gorm.DB, items []ItemInput, v validation.Violations) error {
	for i := range items {
		if items[i].ProductID == 0 {
			continue
		}
		var p models.Product
		err := db.First(&p, items[i].ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			v["items["+strconv.Itoa(i)+"].product_id"] = "not_found"
			continue
		}
		if err != nil {
			return err
		}
		line := p.Item(items[i].Quantity)
		if strings.TrimSpace(items[i].Description) == "" {
			items[i].Description = line.Description
		}
		if items[i].UnitPrice == 0 {
			items[i].UnitPrice = line.UnitPrice
		}
	}
	return nil
}

func toItems(in []ItemInput) []models.InvoiceItem {
	items := make([]models.InvoiceItem, len(in))
	for i, it := range in {
		items[i] = models.InvoiceItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Position:    i + 1,
		}
	}
	return items
}

func parseOptionalDate(field, s string, v validation.Violations) time.Time {
	if strings.TrimSpace(s) == "" {
		return time.Time{}
	}
	t, ok := format.ParseDate(s)
	if !ok {
		v[field] = "invalid_date"
	}
	return t
}
