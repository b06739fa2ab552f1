package models

import (
	"time"

	"gorm.io/gorm"
)

// CompanySettings represents the company information printed on invoices.
// A business has a single record, updated in place.
type CompanySettings struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Company information
	CompanyName string `gorm:"size:255;not null" json:"company_name"`
	Address     string `gorm:"size:500" json:"address,omitempty"`
	Email       string `gorm:"size:255" json:"email,omitempty"`
	Phone       string `gorm:"size:50" json:"phone,omitempty"`
	Website     string `gorm:"size:255" json:"website,omitempty"`
	TaxNumber   string `gorm:"size:50" json:"tax_number,omitempty"`

	// Country is the ISO 3166 region used to format local phone numbers.
	Country string `gorm:"size:2" json:"country,omitempty"`

	// Branding
	LogoURL string `gorm:"size:500" json:"logo_url,omitempty"`

	TermsAndConditions string `gorm:"type:text" json:"terms_and_conditions,omitempty"`

	// Defaults for new invoices
	Currency string `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Language string `gorm:"size:5;not null;default:'en'" json:"language"`

	// NextInvoiceNumber is the sequence the next invoice is expected to take.
	// Zero means "not configured".
	NextInvoiceNumber int64 `gorm:"not null;default:0" json:"next_invoice_number"`
}
