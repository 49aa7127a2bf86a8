package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigtal/bigtal/internal/shared"
)

// Repository persists master data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Customers ---

func (r *Repository) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (name, phone, email, address, currency_id)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(address, ''), currency_id, created_at`,
		input.Name, nullStr(input.Phone), nullStr(input.Email), nullStr(input.Address), input.CurrencyID).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CurrencyID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(address, ''), currency_id, created_at
FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CurrencyID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(address, ''), currency_id, created_at
FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CurrencyID, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *Repository) UpdateCustomer(ctx context.Context, id int64, input CustomerInput) (*Customer, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET name = $1, phone = $2, email = $3, address = $4, currency_id = $5 WHERE id = $6`,
		input.Name, nullStr(input.Phone), nullStr(input.Email), nullStr(input.Address), input.CurrencyID, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetCustomer(ctx, id)
}

// --- Currencies ---

func (r *Repository) CreateCurrency(ctx context.Context, input CurrencyInput) (*Currency, error) {
	var c Currency
	err := r.pool.QueryRow(ctx, `INSERT INTO currencies (code, symbol, name) VALUES ($1,$2,$3)
RETURNING id, code, symbol, name`, input.Code, input.Symbol, input.Name).
		Scan(&c.ID, &c.Code, &c.Symbol, &c.Name)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) ListCurrencies(ctx context.Context) ([]Currency, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, symbol, name FROM currencies ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	currencies := []Currency{}
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Symbol, &c.Name); err != nil {
			return nil, err
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

// --- Suppliers ---

func (r *Repository) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (name, phone, email) VALUES ($1,$2,$3)
RETURNING id, name, COALESCE(phone, ''), COALESCE(email, ''), created_at`,
		input.Name, nullStr(input.Phone), nullStr(input.Email)).
		Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), created_at FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	suppliers := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.CreatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// --- Categories ---

func (r *Repository) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `INSERT INTO product_categories (name, description) VALUES ($1,$2)
RETURNING id, name, COALESCE(description, ''), created_at`,
		input.Name, nullStr(input.Description)).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(description, ''), created_at FROM product_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
