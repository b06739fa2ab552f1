package models

import "time"

// CounterState is the single authoritative invoice sequence counter.
// Next only ever grows; it is advanced with a compare-and-increment update.
type CounterState struct {
	Name      string    `gorm:"primaryKey;size:50" json:"name"`
	Next      int64     `gorm:"not null" json:"next"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceCounter is the CounterState name used for invoice numbers.
const InvoiceCounter = "invoice"

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&CompanySettings{},
		&CounterState{},
		&Client{},
		&Product{},
		&Invoice{},
		&InvoiceItem{},
	}
}
