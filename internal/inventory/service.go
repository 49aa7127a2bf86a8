package inventory

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bigtal/bigtal/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListMovements(ctx context.Context, limit int) ([]Movement, error)
	ListByProduct(ctx context.Context, productID int64) ([]Movement, error)
	StockValue(ctx context.Context) (float64, error)
	LowStock(ctx context.Context, threshold int64) ([]LowStockItem, error)
	StockByCategory(ctx context.Context) ([]CategoryStock, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards against duplicate movement submissions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	LowStockThreshold int64
}

// Service coordinates inventory operations.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency IdempotencyPort
	cache       *OverviewCache
	threshold   int64
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, idem IdempotencyPort, cache *OverviewCache, cfg ServiceConfig) *Service {
	threshold := cfg.LowStockThreshold
	if threshold <= 0 {
		threshold = 10
	}
	return &Service{repo: repo, audit: audit, idempotency: idem, cache: cache, threshold: threshold}
}

// RecordMovement atomically appends a movement row and applies the quantity
// delta to the product's stock. Both effects or neither.
func (s *Service) RecordMovement(ctx context.Context, input MovementInput) (Movement, error) {
	if input.Quantity == 0 {
		return Movement{}, ErrInvalidQuantity
	}
	if !knownMovementTypes[input.Type] {
		return Movement{}, fmt.Errorf("%w: %q", ErrUnknownMovementType, input.Type)
	}
	if input.ProductID == 0 || input.CreatedBy == 0 {
		return Movement{}, errors.New("inventory: product and acting user required")
	}

	insertedKey := false
	if s.idempotency != nil && input.RequestKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, input.RequestKey, "inventory"); err != nil {
			return Movement{}, err
		}
		insertedKey = true
	}

	var movement Movement
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		movement, err = tx.PostMovement(ctx, input)
		return err
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, input.RequestKey)
		}
		return Movement{}, err
	}

	s.cache.Invalidate(ctx)

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.CreatedBy,
			Action:   fmt.Sprintf("inventory:%s", input.Type),
			Entity:   "inventory_movement",
			EntityID: fmt.Sprintf("%d", movement.ID),
			Meta: map[string]any{
				"product_id": input.ProductID,
				"quantity":   input.Quantity,
				"notes":      input.Notes,
			},
		})
	}
	return movement, nil
}

// Movements lists recorded movements newest first. A zero productID lists
// across all products, capped at limit.
func (s *Service) Movements(ctx context.Context, productID int64, limit int) ([]Movement, error) {
	if productID != 0 {
		return s.repo.ListByProduct(ctx, productID)
	}
	return s.repo.ListMovements(ctx, limit)
}

// StockValue reports the total value of active stock at buy price.
func (s *Service) StockValue(ctx context.Context) (float64, error) {
	return s.repo.StockValue(ctx)
}

// LowStock lists products at or below threshold. A non-positive threshold
// falls back to the configured default.
func (s *Service) LowStock(ctx context.Context, threshold int64) ([]LowStockItem, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	return s.repo.LowStock(ctx, threshold)
}

// StockByCategory aggregates stock value per category.
func (s *Service) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	return s.repo.StockByCategory(ctx)
}

// Overview assembles the dashboard aggregates, serving from cache when warm.
// The three queries run concurrently; they are independent projections.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}

	var overview Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		value, err := s.repo.StockValue(gctx)
		overview.StockValue = value
		return err
	})
	g.Go(func() error {
		items, err := s.repo.LowStock(gctx, s.threshold)
		overview.LowStock = items
		return err
	})
	g.Go(func() error {
		groups, err := s.repo.StockByCategory(gctx)
		overview.ByCategory = groups
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, overview)
	}
	return overview, nil
}
