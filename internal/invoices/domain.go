package invoices

import (
	"errors"
	"fmt"
	"time"
)

// Status enumerates invoice statuses. Only draft, sent and paid are ever
// stored; overdue is a query-time view over draft/sent invoices whose due
// date has passed.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// storableStatuses are the values updateStatus may write. Transitions are
// deliberately free-form so an operator can correct mistakes.
var storableStatuses = map[Status]bool{
	StatusDraft: true,
	StatusSent:  true,
	StatusPaid:  true,
}

// Invoice is the invoice header, distinct from its line items.
type Invoice struct {
	ID             int64      `json:"id"`
	Number         string     `json:"invoice_number"`
	CustomerID     int64      `json:"customer_id"`
	CustomerName   string     `json:"customer_name,omitempty"`
	Status         Status     `json:"status"`
	CurrencyID     int64      `json:"currency_id"`
	CurrencyCode   string     `json:"currency_code,omitempty"`
	CurrencySymbol string     `json:"currency_symbol,omitempty"`
	TotalAmount    float64    `json:"total_amount"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CreatedBy      int64      `json:"created_by_user_id"`
}

// Item is one product/quantity/price line within an invoice. LineTotal is
// stored at write time and always equals Quantity * UnitPrice.
type Item struct {
	ID          int64   `json:"id"`
	InvoiceID   int64   `json:"invoice_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// InvoiceWithItems bundles a header with its line items.
type InvoiceWithItems struct {
	Invoice
	Items []Item `json:"items"`
}

// ItemInput is one draft line item.
type ItemInput struct {
	ProductID int64
	Quantity  int64
	UnitPrice float64
}

// CreateInput is a draft invoice submitted by the boundary layer.
type CreateInput struct {
	CustomerID int64
	CurrencyID int64
	DueDate    *time.Time
	Items      []ItemInput
	CreatedBy  int64
}

// ErrNoItems indicates a draft invoice without line items.
var ErrNoItems = errors.New("invoices: at least one line item required")

// ErrInvalidStatus indicates a status value that cannot be stored.
var ErrInvalidStatus = errors.New("invoices: invalid status")

const numberPrefix = "INV"

// numberFor renders the date-scoped, human-readable invoice identifier.
func numberFor(day string, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", numberPrefix, day, seq)
}
