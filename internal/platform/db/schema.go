package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Bootstrap creates the schema when it does not exist yet. The application owns
// its database the way an embedded deployment would, so there is no separate
// migration tool; statements are idempotent and run on every startup.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('admin', 'attendant')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS currencies (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			symbol TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			address TEXT,
			currency_id BIGINT REFERENCES currencies(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS suppliers (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS product_categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('sell', 'buy', 'both')),
			category_id BIGINT REFERENCES product_categories(id),
			sell_price NUMERIC,
			buy_price NUMERIC,
			currency_id BIGINT NOT NULL REFERENCES currencies(id),
			stock_qty BIGINT NOT NULL DEFAULT 0,
			supplier_id BIGINT REFERENCES suppliers(id),
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'disabled')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			id BIGSERIAL PRIMARY KEY,
			invoice_number TEXT NOT NULL UNIQUE,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'sent', 'paid')),
			currency_id BIGINT NOT NULL REFERENCES currencies(id),
			total_amount NUMERIC NOT NULL DEFAULT 0,
			due_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by_user_id BIGINT NOT NULL REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
			id BIGSERIAL PRIMARY KEY,
			invoice_id BIGINT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity BIGINT NOT NULL,
			unit_price NUMERIC NOT NULL,
			line_total NUMERIC NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS invoice_day_counters (
			day TEXT PRIMARY KEY,
			last_seq BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS inventory_movements (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity BIGINT NOT NULL,
			movement_type TEXT NOT NULL CHECK (movement_type IN ('purchase', 'adjustment', 'return', 'sale', 'initial')),
			reference_type TEXT,
			reference_id BIGINT,
			notes TEXT,
			unit_cost NUMERIC,
			created_by BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id BIGSERIAL PRIMARY KEY,
			event_id TEXT NOT NULL UNIQUE,
			actor_id BIGINT NOT NULL,
			action TEXT NOT NULL,
			entity TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			meta JSONB,
			occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS idempotency_keys (
			key TEXT PRIMARY KEY,
			module TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(name)`,
		`CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_movements_product ON inventory_movements(product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_movements_created_at ON inventory_movements(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: bootstrap: %w", err)
		}
	}
	return nil
}
