package models

import (
	"time"

	"github.com/diewo77/go-billing/internal/totals"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus is informational only; no transitions are enforced.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPaid:
		return true
	}
	return false
}

// Invoice represents a billing invoice.
// Subtotal, Tax and Total are derived from Items and TaxRate by Recompute,
// which runs before every save.
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Number is assigned by the allocator and never reused.
	Number string `gorm:"size:50;uniqueIndex" json:"number"`

	// Client relationship
	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// Invoice dates; the zero value means "not set".
	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`

	Status   InvoiceStatus `gorm:"size:20;default:'draft'" json:"status"`
	Currency string        `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Language string        `gorm:"size:5;not null;default:'en'" json:"language"`

	// TaxRate is a percentage (8.5 means 8.5%).
	TaxRate  float64 `gorm:"type:decimal(7,4);not null;default:0" json:"tax_rate"`
	Subtotal float64 `gorm:"type:decimal(14,4);not null;default:0" json:"subtotal"`
	Tax      float64 `gorm:"type:decimal(14,4);not null;default:0" json:"tax"`
	Total    float64 `gorm:"type:decimal(14,4);not null;default:0" json:"total"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`
	Terms string `gorm:"type:text" json:"terms,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Lines returns the pricing input of the items, in order.
func (i *Invoice) Lines() []totals.Line {
	lines := make([]totals.Line, len(i.Items))
	for n, item := range i.Items {
		lines[n] = totals.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return lines
}

// Recompute refreshes every derived amount from the items and the tax rate.
// Stored line totals and invoice totals are never trusted.
func (i *Invoice) Recompute() totals.Result {
	res := totals.Compute(i.Lines(), i.TaxRate)
	for n := range i.Items {
		i.Items[n].LineTotal = res.LineTotals[n]
	}
	i.Subtotal = res.Subtotal
	i.Tax = res.Tax
	i.Total = res.Total
	return res
}

// BeforeSave keeps stored totals consistent with the items being saved.
// A nil Items slice means the items were not loaded, and the stored totals are left alone.
func (i *Invoice) BeforeSave(tx *gorm.DB) error {
	if i.Status == "" {
		i.Status = InvoiceStatusDraft
	}
	if i.Items == nil {
		return nil
	}
	for n := range i.Items {
		if i.Items[n].Key == "" {
			i.Items[n].Key = uuid.NewString()
		}
		if i.Items[n].Position == 0 {
			i.Items[n].Position = n + 1
		}
	}
	i.Recompute()
	return nil
}

// InvoiceItem represents a line item on an invoice.
type InvoiceItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Parent invoice
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	// Key is opaque and unique within the invoice.
	Key string `gorm:"size:36;not null" json:"key"`

	Description string  `gorm:"size:500;not null" json:"description"`
	Quantity    float64 `gorm:"type:decimal(12,3);not null;default:1" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(14,4);not null" json:"unit_price"`
	LineTotal   float64 `gorm:"type:decimal(14,4);not null;default:0" json:"line_total"`

	// Position for ordering
	Position int `gorm:"default:0" json:"position"`
}

// BeforeSave recomputes the line total when an item is saved on its own.
func (item *InvoiceItem) BeforeSave(tx *gorm.DB) error {
	if item.Key == "" {
		item.Key = uuid.NewString()
	}
	item.LineTotal = totals.LineTotal(item.Quantity, item.UnitPrice)
	return nil
}
