package products

import (
	"errors"
	"time"
)

// ProductType says whether a product is sold, bought, or both.
type ProductType string

const (
	TypeSell ProductType = "sell"
	TypeBuy  ProductType = "buy"
	TypeBoth ProductType = "both"
)

// ProductStatus replaces a boolean active flag so future states do not need
// a schema migration.
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusDisabled ProductStatus = "disabled"
)

// Product is a catalog entry. StockQty is the authoritative running total,
// mutated only through recorded inventory movements.
type Product struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Type         ProductType   `json:"type"`
	CategoryID   *int64        `json:"category_id,omitempty"`
	CategoryName string        `json:"category_name,omitempty"`
	SellPrice    *float64      `json:"sell_price,omitempty"`
	BuyPrice     *float64      `json:"buy_price,omitempty"`
	CurrencyID   int64         `json:"currency_id"`
	CurrencyCode string        `json:"currency_code,omitempty"`
	StockQty     int64         `json:"stock_qty"`
	SupplierID   *int64        `json:"supplier_id,omitempty"`
	SupplierName string        `json:"supplier_name,omitempty"`
	Status       ProductStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

// CreateInput describes a new product. A non-zero InitialStock is recorded
// as an "initial" ledger movement so the audit trail covers the opening
// balance too.
type CreateInput struct {
	Name         string
	Type         ProductType
	CategoryID   *int64
	SellPrice    *float64
	BuyPrice     *float64
	CurrencyID   int64
	InitialStock int64
	SupplierID   *int64
	CreatedBy    int64
}

// UpdateInput carries editable fields. Stock is deliberately absent: stock
// edits go through inventory movements, never through a product update.
type UpdateInput struct {
	Name       string
	Type       ProductType
	CategoryID *int64
	SellPrice  *float64
	BuyPrice   *float64
	CurrencyID int64
	SupplierID *int64
}

var knownTypes = map[ProductType]bool{
	TypeSell: true,
	TypeBuy:  true,
	TypeBoth: true,
}

// ErrInvalidType indicates an unrecognised product type.
var ErrInvalidType = errors.New("products: invalid product type")
