// Package masterdata holds the reference records the invoicing and
// inventory cores point at: customers, currencies, suppliers and product
// categories.
package masterdata

import "time"

// Customer is an invoice counterparty.
type Customer struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email,omitempty"`
	Address    string    `json:"address,omitempty"`
	CurrencyID *int64    `json:"currency_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Currency denominates prices and invoice totals.
type Currency struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Supplier is where purchased stock comes from.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Category groups products for reporting.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomerInput carries customer fields for create/update.
type CustomerInput struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Address    string `json:"address,omitempty"`
	CurrencyID *int64 `json:"currency_id,omitempty" validate:"omitempty,gt=0"`
}

// CurrencyInput carries currency fields.
type CurrencyInput struct {
	Code   string `json:"code" validate:"required,len=3"`
	Symbol string `json:"symbol" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

// SupplierInput carries supplier fields.
type SupplierInput struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// CategoryInput carries category fields.
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}
