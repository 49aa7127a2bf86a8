package inventory

import (
	"errors"
	"time"
)

// MovementType classifies the cause of a stock quantity change.
type MovementType string

const (
	// MovementPurchase is inbound stock bought from a supplier.
	MovementPurchase MovementType = "purchase"
	// MovementAdjustment is a manual correction, positive or negative.
	MovementAdjustment MovementType = "adjustment"
	// MovementReturn is stock coming back, including invoice reversals.
	MovementReturn MovementType = "return"
	// MovementSale is outbound stock sold through an invoice.
	MovementSale MovementType = "sale"
	// MovementInitial seeds the opening quantity of a new product.
	MovementInitial MovementType = "initial"
)

// knownMovementTypes guards inputs arriving from the boundary.
var knownMovementTypes = map[MovementType]bool{
	MovementPurchase:   true,
	MovementAdjustment: true,
	MovementReturn:     true,
	MovementSale:       true,
	MovementInitial:    true,
}

// Movement is one recorded, signed change to a product's stock quantity.
// Rows are append-only: nothing in the application updates or deletes them.
type Movement struct {
	ID            int64        `json:"id"`
	ProductID     int64        `json:"product_id"`
	ProductName   string       `json:"product_name,omitempty"`
	Quantity      int64        `json:"quantity"`
	Type          MovementType `json:"movement_type"`
	ReferenceType string       `json:"reference_type,omitempty"`
	ReferenceID   int64        `json:"reference_id,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	UnitCost      *float64     `json:"unit_cost,omitempty"`
	CreatedBy     int64        `json:"created_by"`
	CreatedByName string       `json:"created_by_username,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// MovementInput describes a movement to post. Quantity is a signed delta:
// positive is stock in, negative is stock out.
type MovementInput struct {
	ProductID     int64
	Quantity      int64
	Type          MovementType
	ReferenceType string
	ReferenceID   int64
	Notes         string
	UnitCost      *float64
	CreatedBy     int64
	RequestKey    string
}

// LowStockItem is a product at or below the reorder threshold.
type LowStockItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	StockQty int64   `json:"stock_qty"`
	BuyPrice float64 `json:"buy_price"`
}

// CategoryStock aggregates stock value per product category.
type CategoryStock struct {
	Category string  `json:"category"`
	Items    int64   `json:"items"`
	Value    float64 `json:"value"`
}

// Overview bundles the inventory aggregates shown on the dashboard.
type Overview struct {
	StockValue float64         `json:"stock_value"`
	LowStock   []LowStockItem  `json:"low_stock"`
	ByCategory []CategoryStock `json:"by_category"`
}

// ErrInvalidQuantity indicates a zero quantity delta.
var ErrInvalidQuantity = errors.New("inventory: quantity must be non zero")

// ErrUnknownMovementType indicates an unrecognised movement type.
var ErrUnknownMovementType = errors.New("inventory: unknown movement type")
