package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bigtal/bigtal/internal/inventory"
	"github.com/bigtal/bigtal/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*InvoiceWithItems, error)
	List(ctx context.Context) ([]Invoice, error)
	ListByStatus(ctx context.Context, status Status) ([]Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Invoice, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates invoice creation and deletion as atomic units spanning
// the header, its items and the resulting stock movements.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// Create persists a draft invoice with its items and decrements stock for
// every line through the shared ledger, all inside one transaction. Any
// failure rolls the whole invoice back: no partial header, items or stock
// changes survive.
func (s *Service) Create(ctx context.Context, input CreateInput) (*InvoiceWithItems, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoItems
	}
	if input.CustomerID == 0 || input.CurrencyID == 0 || input.CreatedBy == 0 {
		return nil, errors.New("invoices: customer, currency and acting user required")
	}
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, fmt.Errorf("invoices: item requires product and positive quantity")
		}
		if item.UnitPrice < 0 {
			return nil, fmt.Errorf("invoices: negative unit price")
		}
	}

	var total float64
	for _, item := range input.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}

	var invoiceID int64
	var number string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		day := s.now().UTC().Format("20060102")
		seq, err := tx.NextSequence(ctx, day)
		if err != nil {
			return err
		}
		number = numberFor(day, seq)

		invoiceID, err = tx.InsertInvoice(ctx, Invoice{
			Number:      number,
			CustomerID:  input.CustomerID,
			Status:      StatusDraft,
			CurrencyID:  input.CurrencyID,
			TotalAmount: total,
			DueDate:     input.DueDate,
			CreatedBy:   input.CreatedBy,
		})
		if err != nil {
			return err
		}

		// Items are written in the order supplied; each sale movement
		// decrements stock within the same transaction.
		for _, item := range input.Items {
			lineTotal := float64(item.Quantity) * item.UnitPrice
			if _, err := tx.InsertItem(ctx, Item{
				InvoiceID: invoiceID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				LineTotal: lineTotal,
			}); err != nil {
				return err
			}
			if _, err := tx.PostMovement(ctx, inventory.MovementInput{
				ProductID:     item.ProductID,
				Quantity:      -item.Quantity,
				Type:          inventory.MovementSale,
				ReferenceType: "invoice",
				ReferenceID:   invoiceID,
				Notes:         fmt.Sprintf("sale on %s", number),
				CreatedBy:     input.CreatedBy,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.CreatedBy,
			Action:   "invoices:create",
			Entity:   "invoice",
			EntityID: number,
			Meta:     map[string]any{"total_amount": total, "items": len(input.Items)},
		})
	}

	return s.repo.Get(ctx, invoiceID)
}

// Delete removes an invoice and restores the stock it consumed, atomically.
// A missing id reports (false, nil) so the caller can tell "nothing to do"
// from "something broke".
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	var number string
	var actor int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		header, err := tx.HeaderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		number = header.Number
		actor = header.CreatedBy

		items, err := tx.ItemsForInvoice(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := tx.PostMovement(ctx, inventory.MovementInput{
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				Type:          inventory.MovementReturn,
				ReferenceType: "invoice",
				ReferenceID:   id,
				Notes:         fmt.Sprintf("reversal of %s", number),
				CreatedBy:     header.CreatedBy,
			}); err != nil {
				return err
			}
		}

		deleted, err := tx.DeleteInvoice(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor,
			Action:   "invoices:delete",
			Entity:   "invoice",
			EntityID: number,
			Meta:     map[string]any{"invoice_id": id},
		})
	}
	return true, nil
}

// UpdateStatus writes a new stored status. It has no stock side effects and
// permits any stored-status transition; overdue is derived, never written.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Invoice, error) {
	if !storableStatuses[status] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// Get returns an invoice with its items.
func (s *Service) Get(ctx context.Context, id int64) (*InvoiceWithItems, error) {
	return s.repo.Get(ctx, id)
}

// List returns invoices, optionally filtered by status (including the
// derived overdue filter).
func (s *Service) List(ctx context.Context, status Status) ([]Invoice, error) {
	if status == "" {
		return s.repo.List(ctx)
	}
	if status != StatusOverdue && !storableStatuses[status] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.repo.ListByStatus(ctx, status)
}
