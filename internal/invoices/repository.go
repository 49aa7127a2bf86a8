package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigtal/bigtal/internal/inventory"
	"github.com/bigtal/bigtal/internal/platform/db"
	"github.com/bigtal/bigtal/internal/shared"
)

// Repository persists invoices in PostgreSQL.
type Repository struct {
	pool   *pgxpool.Pool
	ledger *inventory.Ledger
}

// NewRepository constructs Repository. The ledger is shared with the
// inventory module so invoice-driven stock changes land in the same
// movement log as manual ones.
func NewRepository(pool *pgxpool.Pool, ledger *inventory.Ledger) *Repository {
	return &Repository{pool: pool, ledger: ledger}
}

// TxRepository exposes the operations available inside the invoice
// transaction. Everything it does commits or rolls back as one unit.
type TxRepository interface {
	NextSequence(ctx context.Context, day string) (int64, error)
	InsertInvoice(ctx context.Context, inv Invoice) (int64, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	HeaderForUpdate(ctx context.Context, id int64) (Invoice, error)
	ItemsForInvoice(ctx context.Context, invoiceID int64) ([]Item, error)
	DeleteInvoice(ctx context.Context, id int64) (bool, error)
	PostMovement(ctx context.Context, input inventory.MovementInput) (inventory.Movement, error)
}

type txRepository struct {
	tx     pgx.Tx
	ledger *inventory.Ledger
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("invoices repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, ledger: r.ledger})
	})
}

// NextSequence claims the next per-day counter value. The upsert takes a row
// lock on the day's counter, so two transactions allocating on the same day
// serialize here and can never observe the same sequence.
func (r *txRepository) NextSequence(ctx context.Context, day string) (int64, error) {
	var seq int64
	err := r.tx.QueryRow(ctx, `INSERT INTO invoice_day_counters (day, last_seq) VALUES ($1, 1)
ON CONFLICT (day) DO UPDATE SET last_seq = invoice_day_counters.last_seq + 1
RETURNING last_seq`, day).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("invoices: next sequence: %w", err)
	}
	return seq, nil
}

func (r *txRepository) InsertInvoice(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO invoices (invoice_number, customer_id, status, currency_id, total_amount, due_date, created_by_user_id)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		inv.Number, inv.CustomerID, string(inv.Status), inv.CurrencyID, inv.TotalAmount, inv.DueDate, inv.CreatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("invoices: insert header: %w", err)
	}
	return id, nil
}

func (r *txRepository) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price, line_total)
VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		item.InvoiceID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("invoices: insert item: %w", err)
	}
	return id, nil
}

// HeaderForUpdate locks and returns the invoice header, keeping concurrent
// deletes of the same invoice from both restoring stock.
func (r *txRepository) HeaderForUpdate(ctx context.Context, id int64) (Invoice, error) {
	var inv Invoice
	err := r.tx.QueryRow(ctx, `SELECT id, invoice_number, customer_id, status, currency_id, total_amount, due_date, created_at, created_by_user_id
FROM invoices WHERE id = $1 FOR UPDATE`, id).
		Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.Status, &inv.CurrencyID, &inv.TotalAmount, &inv.DueDate, &inv.CreatedAt, &inv.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, shared.ErrNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *txRepository) ItemsForInvoice(ctx context.Context, invoiceID int64) ([]Item, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, invoice_id, product_id, quantity, unit_price, line_total
FROM invoice_items WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteInvoice removes the header; items cascade at the schema level.
func (r *txRepository) DeleteInvoice(ctx context.Context, id int64) (bool, error) {
	tag, err := r.tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *txRepository) PostMovement(ctx context.Context, input inventory.MovementInput) (inventory.Movement, error) {
	return r.ledger.Post(ctx, r.tx, input)
}

const headerColumns = `i.id, i.invoice_number, i.customer_id, COALESCE(c.name, ''), i.status,
i.currency_id, COALESCE(cur.code, ''), COALESCE(cur.symbol, ''), i.total_amount, i.due_date, i.created_at, i.created_by_user_id`

const headerJoins = `FROM invoices i
LEFT JOIN customers c ON i.customer_id = c.id
LEFT JOIN currencies cur ON i.currency_id = cur.id`

// Get returns the invoice with its items, or shared.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*InvoiceWithItems, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+headerColumns+` `+headerJoins+` WHERE i.id = $1`, id)
	inv, err := scanHeader(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT ii.id, ii.invoice_id, ii.product_id, COALESCE(p.name, ''), ii.quantity, ii.unit_price, ii.line_total
FROM invoice_items ii
LEFT JOIN products p ON ii.product_id = p.id
WHERE ii.invoice_id = $1
ORDER BY ii.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &InvoiceWithItems{Invoice: inv, Items: items}, nil
}

// List returns all invoices, newest first.
func (r *Repository) List(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+headerColumns+` `+headerJoins+` ORDER BY i.created_at DESC, i.id DESC`)
	if err != nil {
		return nil, err
	}
	return scanHeaders(rows)
}

// ListByStatus filters invoices by status. The overdue pseudo-status selects
// draft/sent invoices whose due date has passed.
func (r *Repository) ListByStatus(ctx context.Context, status Status) ([]Invoice, error) {
	if status == StatusOverdue {
		rows, err := r.pool.Query(ctx, `SELECT `+headerColumns+` `+headerJoins+`
WHERE i.status IN ('draft','sent') AND i.due_date IS NOT NULL AND i.due_date < NOW()
ORDER BY i.created_at DESC, i.id DESC`)
		if err != nil {
			return nil, err
		}
		return scanHeaders(rows)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+headerColumns+` `+headerJoins+` WHERE i.status = $1 ORDER BY i.created_at DESC, i.id DESC`, string(status))
	if err != nil {
		return nil, err
	}
	return scanHeaders(rows)
}

// UpdateStatus writes the status field and returns the updated header.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) (*Invoice, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+headerColumns+` `+headerJoins+` WHERE i.id = $1`, id)
	inv, err := scanHeader(row)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanHeader(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.CustomerName, &inv.Status,
		&inv.CurrencyID, &inv.CurrencyCode, &inv.CurrencySymbol, &inv.TotalAmount, &inv.DueDate, &inv.CreatedAt, &inv.CreatedBy)
	return inv, err
}

func scanHeaders(rows pgx.Rows) ([]Invoice, error) {
	defer rows.Close()
	invoices := []Invoice{}
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.CustomerName, &inv.Status,
			&inv.CurrencyID, &inv.CurrencyCode, &inv.CurrencySymbol, &inv.TotalAmount, &inv.DueDate, &inv.CreatedAt, &inv.CreatedBy); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
