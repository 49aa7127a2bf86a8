package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/bigtal/bigtal/internal/inventory"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, includeDisabled bool) ([]Product, error)
	Search(ctx context.Context, term string) ([]Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	ListSellable(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, id int64, input UpdateInput) error
	SetStatus(ctx context.Context, id int64, status ProductStatus) error
}

// Service handles product catalog logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create inserts the product and, when an opening quantity is supplied,
// records it as an initial movement in the same transaction. The movement
// log therefore accounts for every unit the product has ever had.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	if input.Name == "" {
		return nil, errors.New("products: name required")
	}
	if !knownTypes[input.Type] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, input.Type)
	}
	if input.CurrencyID == 0 {
		return nil, errors.New("products: currency required")
	}
	if input.InitialStock != 0 && input.CreatedBy == 0 {
		return nil, errors.New("products: acting user required for initial stock")
	}

	var productID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertProduct(ctx, input)
		if err != nil {
			return err
		}
		productID = id
		if input.InitialStock != 0 {
			_, err = tx.PostMovement(ctx, inventory.MovementInput{
				ProductID: id,
				Quantity:  input.InitialStock,
				Type:      inventory.MovementInitial,
				Notes:     "opening balance",
				CreatedBy: input.CreatedBy,
			})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, productID)
}

// Update writes editable fields and returns the updated product.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*Product, error) {
	if !knownTypes[input.Type] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, input.Type)
	}
	if err := s.repo.Update(ctx, id, input); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Disable soft-deletes a product; its movement history stays intact.
func (s *Service) Disable(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusDisabled)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns the catalog.
func (s *Service) List(ctx context.Context, includeDisabled bool) ([]Product, error) {
	return s.repo.List(ctx, includeDisabled)
}

// Search finds products by name.
func (s *Service) Search(ctx context.Context, term string) ([]Product, error) {
	return s.repo.Search(ctx, term)
}

// ListByCategory returns active products in a category.
func (s *Service) ListByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	return s.repo.ListByCategory(ctx, categoryID)
}

// ListSellable returns products that may appear on invoices.
func (s *Service) ListSellable(ctx context.Context) ([]Product, error) {
	return s.repo.ListSellable(ctx)
}
