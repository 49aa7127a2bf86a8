package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bigtal/bigtal/internal/shared"
)

type memoryRepo struct {
	stocks    map[int64]int64
	movements []Movement
	nextID    int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{stocks: make(map[int64]int64)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) ListMovements(ctx context.Context, limit int) ([]Movement, error) {
	result := []Movement{}
	for i := len(r.movements) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, r.movements[i])
	}
	return result, nil
}

func (r *memoryRepo) ListByProduct(ctx context.Context, productID int64) ([]Movement, error) {
	result := []Movement{}
	for i := len(r.movements) - 1; i >= 0; i-- {
		if r.movements[i].ProductID == productID {
			result = append(result, r.movements[i])
		}
	}
	return result, nil
}

func (r *memoryRepo) StockValue(ctx context.Context) (float64, error) {
	return 0, nil
}

func (r *memoryRepo) LowStock(ctx context.Context, threshold int64) ([]LowStockItem, error) {
	items := []LowStockItem{}
	for id, qty := range r.stocks {
		if qty <= threshold {
			items = append(items, LowStockItem{ID: id, StockQty: qty})
		}
	}
	return items, nil
}

func (r *memoryRepo) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	return nil, nil
}

func (tx *memoryTx) PostMovement(ctx context.Context, input MovementInput) (Movement, error) {
	if _, ok := tx.repo.stocks[input.ProductID]; !ok {
		return Movement{}, shared.ErrNotFound
	}
	tx.repo.nextID++
	movement := Movement{
		ID:        tx.repo.nextID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		Type:      input.Type,
		Notes:     input.Notes,
		CreatedBy: input.CreatedBy,
	}
	tx.repo.stocks[input.ProductID] += input.Quantity
	tx.repo.movements = append(tx.repo.movements, movement)
	return movement, nil
}

type memoryIdempotency struct {
	keys map[string]bool
}

func (s *memoryIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	if s.keys == nil {
		s.keys = make(map[string]bool)
	}
	if s.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	s.keys[key] = true
	return nil
}

func (s *memoryIdempotency) Delete(ctx context.Context, key string) error {
	delete(s.keys, key)
	return nil
}

func TestRecordMovementAppliesDelta(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 5
	svc := NewService(repo, nil, nil, nil, ServiceConfig{})
	ctx := context.Background()

	movement, err := svc.RecordMovement(ctx, MovementInput{ProductID: 1, Quantity: 20, Type: MovementPurchase, CreatedBy: 7})
	require.NoError(t, err)
	require.Equal(t, MovementPurchase, movement.Type)
	require.EqualValues(t, 25, repo.stocks[1])
	require.Len(t, repo.movements, 1)
}

func TestRecordMovementAllowsNegativeStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 3
	svc := NewService(repo, nil, nil, nil, ServiceConfig{})

	_, err := svc.RecordMovement(context.Background(), MovementInput{ProductID: 1, Quantity: -10, Type: MovementSale, CreatedBy: 7})
	require.NoError(t, err)
	require.EqualValues(t, -7, repo.stocks[1])
}

func TestRecordMovementRejectsInvalidInput(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 5
	svc := NewService(repo, nil, nil, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 1, Quantity: 0, Type: MovementPurchase, CreatedBy: 7})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: 1, Quantity: 5, Type: MovementType("teleport"), CreatedBy: 7})
	require.ErrorIs(t, err, ErrUnknownMovementType)

	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: 1, Quantity: 5, Type: MovementPurchase})
	require.Error(t, err)

	require.Empty(t, repo.movements)
	require.EqualValues(t, 5, repo.stocks[1])
}

func TestRecordMovementUnknownProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, ServiceConfig{})

	_, err := svc.RecordMovement(context.Background(), MovementInput{ProductID: 99, Quantity: 5, Type: MovementAdjustment, CreatedBy: 7})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.movements)
}

func TestRecordMovementIdempotency(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 5
	idem := &memoryIdempotency{}
	svc := NewService(repo, nil, idem, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 1, Quantity: 5, Type: MovementPurchase, CreatedBy: 7, RequestKey: "req-1"})
	require.NoError(t, err)

	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: 1, Quantity: 5, Type: MovementPurchase, CreatedBy: 7, RequestKey: "req-1"})
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	require.EqualValues(t, 10, repo.stocks[1])
	require.Len(t, repo.movements, 1)
}

func TestRecordMovementReleasesKeyOnFailure(t *testing.T) {
	repo := newMemoryRepo()
	idem := &memoryIdempotency{}
	svc := NewService(repo, nil, idem, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 99, Quantity: 5, Type: MovementPurchase, CreatedBy: 7, RequestKey: "req-2"})
	require.Error(t, err)
	require.False(t, errors.Is(err, shared.ErrIdempotencyConflict))

	repo.stocks[99] = 0
	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: 99, Quantity: 5, Type: MovementPurchase, CreatedBy: 7, RequestKey: "req-2"})
	require.NoError(t, err)
}

func TestMovementsNewestFirst(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 0
	svc := NewService(repo, nil, nil, nil, ServiceConfig{})
	ctx := context.Background()

	for _, qty := range []int64{5, 10, -3} {
		movementType := MovementPurchase
		if qty < 0 {
			movementType = MovementAdjustment
		}
		_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 1, Quantity: qty, Type: movementType, CreatedBy: 7})
		require.NoError(t, err)
	}

	movements, err := svc.Movements(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, movements, 3)
	require.EqualValues(t, -3, movements[0].Quantity)
	require.EqualValues(t, 5, movements[2].Quantity)
}

func TestLowStockUsesConfiguredThreshold(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 2
	repo.stocks[2] = 50
	svc := NewService(repo, nil, nil, nil, ServiceConfig{LowStockThreshold: 5})

	items, err := svc.LowStock(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 1, items[0].ID)
}
