package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigtal/bigtal/internal/platform/db"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool   *pgxpool.Pool
	ledger *Ledger
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool, ledger *Ledger) *Repository {
	return &Repository{pool: pool, ledger: ledger}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	PostMovement(ctx context.Context, input MovementInput) (Movement, error)
}

type txRepository struct {
	tx     pgx.Tx
	ledger *Ledger
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, ledger: r.ledger})
	})
}

func (r *txRepository) PostMovement(ctx context.Context, input MovementInput) (Movement, error) {
	return r.ledger.Post(ctx, r.tx, input)
}

const movementColumns = `im.id, im.product_id, COALESCE(p.name, ''), im.quantity, im.movement_type,
COALESCE(im.reference_type, ''), COALESCE(im.reference_id, 0), COALESCE(im.notes, ''), im.unit_cost,
im.created_by, COALESCE(u.username, ''), im.created_at`

// ListMovements returns movements newest first, up to limit rows.
func (r *Repository) ListMovements(ctx context.Context, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT `+movementColumns+`
FROM inventory_movements im
LEFT JOIN products p ON im.product_id = p.id
LEFT JOIN users u ON im.created_by = u.id
ORDER BY im.created_at DESC, im.id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanMovements(rows)
}

// ListByProduct returns the full audit trail for one product, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID int64) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+movementColumns+`
FROM inventory_movements im
LEFT JOIN products p ON im.product_id = p.id
LEFT JOIN users u ON im.created_by = u.id
WHERE im.product_id = $1
ORDER BY im.created_at DESC, im.id DESC`, productID)
	if err != nil {
		return nil, err
	}
	return scanMovements(rows)
}

// StockValue computes the total value of active stock at buy price.
func (r *Repository) StockValue(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(stock_qty * COALESCE(buy_price, 0)), 0)
FROM products
WHERE status = 'active'`).Scan(&total)
	return total, err
}

// LowStock lists active products at or below the threshold, lowest first.
func (r *Repository) LowStock(ctx context.Context, threshold int64) ([]LowStockItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, stock_qty, COALESCE(buy_price, 0)
FROM products
WHERE status = 'active' AND stock_qty <= $1
ORDER BY stock_qty ASC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LowStockItem{}
	for rows.Next() {
		var item LowStockItem
		if err := rows.Scan(&item.ID, &item.Name, &item.StockQty, &item.BuyPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// StockByCategory aggregates stock value per category, highest value first.
func (r *Repository) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	rows, err := r.pool.Query(ctx, `SELECT COALESCE(pc.name, 'Uncategorized'), COUNT(p.id), COALESCE(SUM(p.stock_qty * COALESCE(p.buy_price, 0)), 0)
FROM products p
LEFT JOIN product_categories pc ON p.category_id = pc.id
WHERE p.status = 'active'
GROUP BY pc.name
ORDER BY 3 DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	groups := []CategoryStock{}
	for rows.Next() {
		var g CategoryStock
		if err := rows.Scan(&g.Category, &g.Items, &g.Value); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func scanMovements(rows pgx.Rows) ([]Movement, error) {
	defer rows.Close()
	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.Quantity, &m.Type,
			&m.ReferenceType, &m.ReferenceID, &m.Notes, &m.UnitCost,
			&m.CreatedBy, &m.CreatedByName, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
