package masterdata

import (
	"context"
	"fmt"

	"github.com/bigtal/bigtal/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id int64, input CustomerInput) (*Customer, error)
	CreateCurrency(ctx context.Context, input CurrencyInput) (*Currency, error)
	ListCurrencies(ctx context.Context) ([]Currency, error)
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages customers, currencies, suppliers and categories.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) CreateCustomer(ctx context.Context, actorID int64, input CustomerInput) (*Customer, error) {
	customer, err := s.repo.CreateCustomer(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "masterdata:create", "customer", customer.ID)
	return customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) UpdateCustomer(ctx context.Context, actorID, id int64, input CustomerInput) (*Customer, error) {
	customer, err := s.repo.UpdateCustomer(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "masterdata:update", "customer", id)
	return customer, nil
}

func (s *Service) CreateCurrency(ctx context.Context, actorID int64, input CurrencyInput) (*Currency, error) {
	currency, err := s.repo.CreateCurrency(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "masterdata:create", "currency", currency.ID)
	return currency, nil
}

func (s *Service) ListCurrencies(ctx context.Context) ([]Currency, error) {
	return s.repo.ListCurrencies(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, actorID int64, input SupplierInput) (*Supplier, error) {
	supplier, err := s.repo.CreateSupplier(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "masterdata:create", "supplier", supplier.ID)
	return supplier, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, actorID int64, input CategoryInput) (*Category, error) {
	category, err := s.repo.CreateCategory(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "masterdata:create", "category", category.ID)
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entity string, entityID int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: fmt.Sprintf("%d", entityID),
	})
}
