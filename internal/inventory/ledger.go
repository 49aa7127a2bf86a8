package inventory

import (
	"context"
	"fmt"

	"github.com/bigtal/bigtal/internal/platform/db"
	"github.com/bigtal/bigtal/internal/shared"
)

// Ledger is the single write path for stock. Every stock mutation in the
// system goes through Post, whether it comes from a manual movement, an
// invoice sale, a deletion reversal or an opening balance, so the movement
// log is always a complete history of stock_qty.
type Ledger struct{}

// NewLedger constructs a Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Post inserts the movement row and applies the quantity delta to the
// product's running stock on the same database handle. Callers supply the
// transaction; both effects commit or roll back together. Stock is allowed
// to go negative: overselling is a policy decision, not an error.
func (l *Ledger) Post(ctx context.Context, q db.DBTX, input MovementInput) (Movement, error) {
	if input.Quantity == 0 {
		return Movement{}, ErrInvalidQuantity
	}
	if !knownMovementTypes[input.Type] {
		return Movement{}, fmt.Errorf("%w: %q", ErrUnknownMovementType, input.Type)
	}
	if input.ProductID == 0 {
		return Movement{}, fmt.Errorf("inventory: product required")
	}

	var refType, notes any
	if input.ReferenceType != "" {
		refType = input.ReferenceType
	}
	if input.Notes != "" {
		notes = input.Notes
	}
	var refID any
	if input.ReferenceID != 0 {
		refID = input.ReferenceID
	}

	movement := Movement{
		ProductID:     input.ProductID,
		Quantity:      input.Quantity,
		Type:          input.Type,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		Notes:         input.Notes,
		UnitCost:      input.UnitCost,
		CreatedBy:     input.CreatedBy,
	}
	err := q.QueryRow(ctx, `INSERT INTO inventory_movements (product_id, quantity, movement_type, reference_type, reference_id, notes, unit_cost, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at`,
		input.ProductID, input.Quantity, string(input.Type), refType, refID, notes, input.UnitCost, input.CreatedBy).
		Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		return Movement{}, fmt.Errorf("inventory: insert movement: %w", err)
	}

	tag, err := q.Exec(ctx, `UPDATE products SET stock_qty = stock_qty + $1 WHERE id = $2`, input.Quantity, input.ProductID)
	if err != nil {
		return Movement{}, fmt.Errorf("inventory: adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Movement{}, fmt.Errorf("inventory: product %d: %w", input.ProductID, shared.ErrNotFound)
	}

	return movement, nil
}
