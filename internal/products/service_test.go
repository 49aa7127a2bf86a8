package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bigtal/bigtal/internal/inventory"
	"github.com/bigtal/bigtal/internal/shared"
)

type memoryRepo struct {
	products  map[int64]Product
	movements []inventory.Movement
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product)}
}

type memoryTx struct {
	repo *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]Product, len(r.products))
	for k, v := range r.products {
		snapshot[k] = v
	}
	movements := make([]inventory.Movement, len(r.movements))
	copy(movements, r.movements)
	nextID := r.nextID
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.products = snapshot
		r.movements = movements
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) List(ctx context.Context, includeDisabled bool) ([]Product, error) {
	result := []Product{}
	for _, p := range r.products {
		if !includeDisabled && p.Status != StatusActive {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (r *memoryRepo) Search(ctx context.Context, term string) ([]Product, error) {
	return nil, nil
}

func (r *memoryRepo) ListByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	return nil, nil
}

func (r *memoryRepo) ListSellable(ctx context.Context) ([]Product, error) {
	result := []Product{}
	for _, p := range r.products {
		if p.Status == StatusActive && (p.Type == TypeSell || p.Type == TypeBoth) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, input UpdateInput) error {
	p, ok := r.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Name = input.Name
	p.Type = input.Type
	r.products[id] = p
	return nil
}

func (r *memoryRepo) SetStatus(ctx context.Context, id int64, status ProductStatus) error {
	p, ok := r.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = status
	r.products[id] = p
	return nil
}

func (tx *memoryTx) InsertProduct(ctx context.Context, input CreateInput) (int64, error) {
	tx.repo.nextID++
	tx.repo.products[tx.repo.nextID] = Product{
		ID:         tx.repo.nextID,
		Name:       input.Name,
		Type:       input.Type,
		CurrencyID: input.CurrencyID,
		Status:     StatusActive,
	}
	return tx.repo.nextID, nil
}

func (tx *memoryTx) PostMovement(ctx context.Context, input inventory.MovementInput) (inventory.Movement, error) {
	p, ok := tx.repo.products[input.ProductID]
	if !ok {
		return inventory.Movement{}, shared.ErrNotFound
	}
	p.StockQty += input.Quantity
	tx.repo.products[input.ProductID] = p
	tx.repo.nextID++
	movement := inventory.Movement{
		ID:        tx.repo.nextID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		Type:      input.Type,
		Notes:     input.Notes,
		CreatedBy: input.CreatedBy,
	}
	tx.repo.movements = append(tx.repo.movements, movement)
	return movement, nil
}

func TestCreateProductWithOpeningStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	product, err := svc.Create(context.Background(), CreateInput{
		Name:         "Steel bolt M6",
		Type:         TypeBoth,
		CurrencyID:   1,
		InitialStock: 25,
		CreatedBy:    7,
	})
	require.NoError(t, err)
	require.EqualValues(t, 25, product.StockQty)
	require.Len(t, repo.movements, 1)
	require.Equal(t, inventory.MovementInitial, repo.movements[0].Type)
	require.EqualValues(t, 25, repo.movements[0].Quantity)
}

func TestCreateProductWithoutStockSkipsMovement(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	product, err := svc.Create(context.Background(), CreateInput{
		Name:       "Service fee",
		Type:       TypeSell,
		CurrencyID: 1,
	})
	require.NoError(t, err)
	require.EqualValues(t, 0, product.StockQty)
	require.Empty(t, repo.movements)
}

func TestCreateProductValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Type: TypeSell, CurrencyID: 1})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "x", Type: ProductType("rent"), CurrencyID: 1})
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Create(ctx, CreateInput{Name: "x", Type: TypeSell, CurrencyID: 1, InitialStock: 5})
	require.Error(t, err)

	require.Empty(t, repo.products)
}

func TestDisableProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateInput{Name: "Widget", Type: TypeSell, CurrencyID: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Disable(ctx, product.ID))

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, StatusDisabled, all[0].Status)

	require.ErrorIs(t, svc.Disable(ctx, 99), shared.ErrNotFound)
}
