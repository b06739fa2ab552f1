package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-billing/i18n"
	"github.com/diewo77/go-billing/internal/format"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/numbering"
	"github.com/diewo77/go-billing/validation"
	"gorm.io/gorm"
)

// SettingsInput is the editable part of the company settings.
type SettingsInput struct {
	CompanyName        string `json:"company_name" validate:"notblank,max=255"`
	Address            string `json:"address" validate:"max=500"`
	Email              string `json:"email" validate:"omitempty,email"`
	Phone              string `json:"phone" validate:"max=50"`
	Website            string `json:"website" validate:"max=255"`
	TaxNumber          string `json:"tax_number" validate:"max=50"`
	Country            string `json:"country" validate:"omitempty,len=2"`
	LogoURL            string `json:"logo_url" validate:"max=500"`
	TermsAndConditions string `json:"terms_and_conditions"`
	Currency           string `json:"currency"`
	Language           string `json:"language"`
	NextInvoiceNumber  int64  `json:"next_invoice_number" validate:"gte=0"`
}

// SettingsService reads and writes the single company settings record.
type SettingsService struct {
	db      *gorm.DB
	counter numbering.Advancer
}

// NewSettingsService returns the service. counter may be nil; when set it is
// raised whenever a larger next invoice number is saved.
func NewSettingsService(db *gorm.DB, counter numbering.Advancer) *SettingsService {
	return &SettingsService{db: db, counter: counter}
}

// Get returns the settings, or ErrNotFound before the first save.
func (s *SettingsService) Get(ctx context.Context) (*models.CompanySettings, error) {
	var cs models.CompanySettings
	err := s.db.WithContext(ctx).Order("id").First(&cs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// Save creates the settings on first use and updates them in place afterwards.
func (s *SettingsService) Save(ctx context.Context, in SettingsInput) (*models.CompanySettings, error) {
	v := validation.Struct(in)
	if in.Currency != "" && !format.SupportedCurrency(in.Currency) {
		v["currency"] = "invalid_choice"
	}
	if in.Language != "" && !i18n.Lang(strings.ToLower(in.Language)).Valid() {
		v["language"] = "invalid_choice"
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	var cs models.CompanySettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id").Limit(1).Find(&cs).Error; err != nil {
			return err
		}
		cs.CompanyName = strings.TrimSpace(in.CompanyName)
		cs.Address = in.Address
		cs.Email = in.Email
		cs.Phone = in.Phone
		cs.Website = in.Website
		cs.TaxNumber = in.TaxNumber
		cs.Country = strings.ToUpper(in.Country)
		cs.LogoURL = in.LogoURL
		cs.TermsAndConditions = in.TermsAndConditions
		cs.Currency = strings.ToUpper(in.Currency)
		if cs.Currency == "" {
			cs.Currency = format.DefaultCurrency
		}
		cs.Language = strings.ToLower(in.Language)
		if cs.Language == "" {
			cs.Language = string(i18n.Default)
		}
		cs.NextInvoiceNumber = in.NextInvoiceNumber
		return tx.Save(&cs).Error
	})
	if err != nil {
		return nil, err
	}
	if s.counter != nil && in.NextInvoiceNumber > 0 {
		if err := s.counter.Advance(ctx, in.NextInvoiceNumber); err != nil {
			return nil, err
		}
	}
	return &cs, nil
}
