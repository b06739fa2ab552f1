package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog item that can be copied onto invoices.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	UnitPrice   float64 `gorm:"type:decimal(14,4);not null" json:"unit_price"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
}

// Item copies the product onto a new invoice line.
func (p *Product) Item(quantity float64) InvoiceItem {
	desc := p.Name
	if p.Description != "" {
		desc += " - " + p.Description
	}
	return InvoiceItem{
		Description: desc,
		Quantity:    quantity,
		UnitPrice:   p.UnitPrice,
	}
}
