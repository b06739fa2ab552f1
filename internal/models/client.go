package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrClientNameRequired is returned when a client is saved without a name.
var ErrClientNameRequired = errors.New("client name is required")

// Client is the billed party printed in the "bill to" block.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"size:255" json:"email,omitempty"`

	// Postal address, each part optional
	Address    string `gorm:"size:500" json:"address,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`

	Invoices []Invoice `gorm:"foreignKey:ClientID" json:"invoices,omitempty"`
}

// FullAddress joins the non-empty address parts, one per line:
// street, then "postal code city", then country.
func (c *Client) FullAddress() string {
	locality := strings.TrimSpace(strings.Join([]string{c.PostalCode, c.City}, " "))
	var lines []string
	for _, part := range []string{c.Address, locality, c.Country} {
		if part = strings.TrimSpace(part); part != "" {
			lines = append(lines, part)
		}
	}
	return strings.Join(lines, "\n")
}

// BeforeSave rejects blank names; the name is the only required field.
func (c *Client) BeforeSave(tx *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrClientNameRequired
	}
	return nil
}
