package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigtal/bigtal/internal/inventory"
	"github.com/bigtal/bigtal/internal/platform/db"
	"github.com/bigtal/bigtal/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool   *pgxpool.Pool
	ledger *inventory.Ledger
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool, ledger *inventory.Ledger) *Repository {
	return &Repository{pool: pool, ledger: ledger}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	InsertProduct(ctx context.Context, input CreateInput) (int64, error)
	PostMovement(ctx context.Context, input inventory.MovementInput) (inventory.Movement, error)
}

type txRepository struct {
	tx     pgx.Tx
	ledger *inventory.Ledger
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("products repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, ledger: r.ledger})
	})
}

// InsertProduct writes the product with zero stock; the opening quantity is
// applied by the accompanying initial movement.
func (r *txRepository) InsertProduct(ctx context.Context, input CreateInput) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO products (name, type, category_id, sell_price, buy_price, currency_id, stock_qty, supplier_id, status)
VALUES ($1,$2,$3,$4,$5,$6,0,$7,'active') RETURNING id`,
		input.Name, string(input.Type), input.CategoryID, input.SellPrice, input.BuyPrice, input.CurrencyID, input.SupplierID).Scan(&id)
	return id, err
}

func (r *txRepository) PostMovement(ctx context.Context, input inventory.MovementInput) (inventory.Movement, error) {
	return r.ledger.Post(ctx, r.tx, input)
}

const productColumns = `p.id, p.name, p.type, p.category_id, COALESCE(pc.name, ''),
p.sell_price, p.buy_price, p.currency_id, COALESCE(c.code, ''), p.stock_qty,
p.supplier_id, COALESCE(s.name, ''), p.status, p.created_at`

const productJoins = `FROM products p
LEFT JOIN product_categories pc ON p.category_id = pc.id
LEFT JOIN currencies c ON p.currency_id = c.id
LEFT JOIN suppliers s ON p.supplier_id = s.id`

// Get returns a single product, or shared.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` `+productJoins+` WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns products ordered by name; disabled ones only when asked.
func (r *Repository) List(ctx context.Context, includeDisabled bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` ` + productJoins
	if !includeDisabled {
		query += ` WHERE p.status = 'active'`
	}
	query += ` ORDER BY p.name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// Search matches product names case-insensitively, capped at 20 rows.
func (r *Repository) Search(ctx context.Context, term string) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` `+productJoins+`
WHERE p.status = 'active' AND p.name ILIKE $1
ORDER BY p.name
LIMIT 20`, "%"+term+"%")
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// ListByCategory returns active products in one category.
func (r *Repository) ListByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` `+productJoins+`
WHERE p.status = 'active' AND p.category_id = $1
ORDER BY p.name`, categoryID)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// ListSellable returns active products that can appear on an invoice.
func (r *Repository) ListSellable(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` `+productJoins+`
WHERE p.status = 'active' AND p.type IN ('sell', 'both')
ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// Update writes the editable fields. Stock is not touched here.
func (r *Repository) Update(ctx context.Context, id int64, input UpdateInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products
SET name = $1, type = $2, category_id = $3, sell_price = $4, buy_price = $5, currency_id = $6, supplier_id = $7
WHERE id = $8`,
		input.Name, string(input.Type), input.CategoryID, input.SellPrice, input.BuyPrice, input.CurrencyID, input.SupplierID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetStatus soft-deletes or reactivates a product.
func (r *Repository) SetStatus(ctx context.Context, id int64, status ProductStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.CategoryID, &p.CategoryName,
		&p.SellPrice, &p.BuyPrice, &p.CurrencyID, &p.CurrencyCode, &p.StockQty,
		&p.SupplierID, &p.SupplierName, &p.Status, &p.CreatedAt)
	return p, err
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.CategoryID, &p.CategoryName,
			&p.SellPrice, &p.BuyPrice, &p.CurrencyID, &p.CurrencyCode, &p.StockQty,
			&p.SupplierID, &p.SupplierName, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
