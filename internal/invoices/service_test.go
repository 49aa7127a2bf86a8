package invoices

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bigtal/bigtal/internal/inventory"
	"github.com/bigtal/bigtal/internal/shared"
)

// memoryRepo emulates the transactional repository: WithTx snapshots the
// state and restores it when the callback fails, mirroring a rollback.
type memoryRepo struct {
	mu        sync.Mutex
	invoices  map[int64]Invoice
	items     map[int64][]Item
	stocks    map[int64]int64
	movements []inventory.Movement
	counters  map[string]int64
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		invoices: make(map[int64]Invoice),
		items:    make(map[int64][]Item),
		stocks:   make(map[int64]int64),
		counters: make(map[string]int64),
	}
}

func (r *memoryRepo) snapshot() *memoryRepo {
	clone := newMemoryRepo()
	clone.nextID = r.nextID
	for k, v := range r.invoices {
		clone.invoices[k] = v
	}
	for k, v := range r.items {
		items := make([]Item, len(v))
		copy(items, v)
		clone.items[k] = items
	}
	for k, v := range r.stocks {
		clone.stocks[k] = v
	}
	for k, v := range r.counters {
		clone.counters[k] = v
	}
	clone.movements = make([]inventory.Movement, len(r.movements))
	copy(clone.movements, r.movements)
	return clone
}

func (r *memoryRepo) restore(snap *memoryRepo) {
	r.invoices = snap.invoices
	r.items = snap.items
	r.stocks = snap.stocks
	r.counters = snap.counters
	r.movements = snap.movements
	r.nextID = snap.nextID
}

// WithTx serializes callers the way the day-counter row lock does in Postgres.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.snapshot()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*InvoiceWithItems, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	items := make([]Item, len(r.items[id]))
	copy(items, r.items[id])
	return &InvoiceWithItems{Invoice: inv, Items: items}, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []Invoice{}
	for _, inv := range r.invoices {
		result = append(result, inv)
	}
	return result, nil
}

func (r *memoryRepo) ListByStatus(ctx context.Context, status Status) ([]Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []Invoice{}
	now := time.Now()
	for _, inv := range r.invoices {
		if status == StatusOverdue {
			if inv.Status != StatusPaid && inv.DueDate != nil && inv.DueDate.Before(now) {
				result = append(result, inv)
			}
			continue
		}
		if inv.Status == status {
			result = append(result, inv)
		}
	}
	return result, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status Status) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	inv.Status = status
	r.invoices[id] = inv
	return &inv, nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (tx *memoryTx) NextSequence(ctx context.Context, day string) (int64, error) {
	tx.repo.counters[day]++
	return tx.repo.counters[day], nil
}

func (tx *memoryTx) InsertInvoice(ctx context.Context, inv Invoice) (int64, error) {
	tx.repo.nextID++
	inv.ID = tx.repo.nextID
	inv.CreatedAt = time.Now()
	tx.repo.invoices[inv.ID] = inv
	return inv.ID, nil
}

func (tx *memoryTx) InsertItem(ctx context.Context, item Item) (int64, error) {
	tx.repo.nextID++
	item.ID = tx.repo.nextID
	tx.repo.items[item.InvoiceID] = append(tx.repo.items[item.InvoiceID], item)
	return item.ID, nil
}

func (tx *memoryTx) HeaderForUpdate(ctx context.Context, id int64) (Invoice, error) {
	inv, ok := tx.repo.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, nil
}

func (tx *memoryTx) ItemsForInvoice(ctx context.Context, invoiceID int64) ([]Item, error) {
	items := make([]Item, len(tx.repo.items[invoiceID]))
	copy(items, tx.repo.items[invoiceID])
	return items, nil
}

func (tx *memoryTx) DeleteInvoice(ctx context.Context, id int64) (bool, error) {
	if _, ok := tx.repo.invoices[id]; !ok {
		return false, nil
	}
	delete(tx.repo.invoices, id)
	delete(tx.repo.items, id)
	return true, nil
}

func (tx *memoryTx) PostMovement(ctx context.Context, input inventory.MovementInput) (inventory.Movement, error) {
	if _, ok := tx.repo.stocks[input.ProductID]; !ok {
		return inventory.Movement{}, fmt.Errorf("inventory: product %d: %w", input.ProductID, shared.ErrNotFound)
	}
	tx.repo.nextID++
	tx.repo.stocks[input.ProductID] += input.Quantity
	movement := inventory.Movement{
		ID:            tx.repo.nextID,
		ProductID:     input.ProductID,
		Quantity:      input.Quantity,
		Type:          input.Type,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		Notes:         input.Notes,
		CreatedBy:     input.CreatedBy,
	}
	tx.repo.movements = append(tx.repo.movements, movement)
	return movement, nil
}

func newTestService(repo *memoryRepo) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCreateInvoice(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 10
	repo.stocks[2] = 4
	svc := newTestService(repo)

	invoice, err := svc.Create(context.Background(), CreateInput{
		CustomerID: 1,
		CurrencyID: 1,
		CreatedBy:  7,
		Items: []ItemInput{
			{ProductID: 1, Quantity: 2, UnitPrice: 100},
			{ProductID: 2, Quantity: 1, UnitPrice: 200},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "INV-20250314-0001", invoice.Number)
	require.Equal(t, StatusDraft, invoice.Status)
	require.InDelta(t, 400.0, invoice.TotalAmount, 0.0001)
	require.Len(t, invoice.Items, 2)
	require.InDelta(t, 200.0, invoice.Items[0].LineTotal, 0.0001)
	require.InDelta(t, 200.0, invoice.Items[1].LineTotal, 0.0001)

	require.EqualValues(t, 8, repo.stocks[1])
	require.EqualValues(t, 3, repo.stocks[2])
	require.Len(t, repo.movements, 2)
	for _, m := range repo.movements {
		require.Equal(t, inventory.MovementSale, m.Type)
		require.Equal(t, "invoice", m.ReferenceType)
		require.EqualValues(t, invoice.ID, m.ReferenceID)
	}
}

func TestCreateInvoiceRollsBackOnFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 10
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID: 1,
		CurrencyID: 1,
		CreatedBy:  7,
		Items: []ItemInput{
			{ProductID: 1, Quantity: 2, UnitPrice: 100},
			{ProductID: 99, Quantity: 1, UnitPrice: 50},
		},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.EqualValues(t, 10, repo.stocks[1])
	require.Empty(t, repo.invoices)
	require.Empty(t, repo.movements)
	require.EqualValues(t, 0, repo.counters["20250314"])
}

func TestCreateInvoiceValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{CustomerID: 1, CurrencyID: 1, CreatedBy: 7})
	require.ErrorIs(t, err, ErrNoItems)

	_, err = svc.Create(ctx, CreateInput{
		CustomerID: 1, CurrencyID: 1, CreatedBy: 7,
		Items: []ItemInput{{ProductID: 1, Quantity: 0, UnitPrice: 10}},
	})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateInput{
		CustomerID: 1, CurrencyID: 1, CreatedBy: 7,
		Items: []ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: -5}},
	})
	require.Error(t, err)
}

func TestCreateInvoiceAllowsOversell(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 3
	svc := newTestService(repo)

	invoice, err := svc.Create(context.Background(), CreateInput{
		CustomerID: 1, CurrencyID: 1, CreatedBy: 7,
		Items: []ItemInput{{ProductID: 1, Quantity: 10, UnitPrice: 25}},
	})
	require.NoError(t, err)
	require.InDelta(t, 250.0, invoice.TotalAmount, 0.0001)
	require.EqualValues(t, -7, repo.stocks[1])
}

func TestInvoiceNumbersAreSequentialPerDay(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 100
	svc := newTestService(repo)
	ctx := context.Background()

	input := CreateInput{
		CustomerID: 1, CurrencyID: 1, CreatedBy: 7,
		Items: []ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
	}

	first, err := svc.Create(ctx, input)
	require.NoError(t, err)
	second, err := svc.Create(ctx, input)
	require.NoError(t, err)

	require.Equal(t, "INV-20250314-0001", first.Number)
	require.Equal(t, "INV-20250314-0002", second.Number)
}

func TestInvoiceNumbersUniqueUnderConcurrentCreation(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 1000
	svc := newTestService(repo)
	ctx := context.Background()

	const workers = 20
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			invoice, err := svc.Create(ctx, CreateInput{
				CustomerID: 1, CurrencyID: 1, CreatedBy: 7,
				Items: []ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
			})
			if err == nil {
				numbers <- invoice.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for number := range numbers {
		require.False(t, seen[number], "duplicate invoice number %s", number)
		seen[number] = true
	}
	require.Len(t, seen, workers)
	require.EqualValues(t, 1000-workers, repo.stocks[1])
}

func TestDeleteInvoiceRestoresStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 10
	repo.stocks[2] = 4
	svc := newTestService(repo)
	ctx := context.Background()

	invoice, err := svc.Create(ctx, CreateInput{
		CustomerID: 1, CurrencyID: 1, CreatedBy: 7,
		Items: []ItemInput{
			{ProductID: 1, Quantity: 2, UnitPrice: 100},
			{ProductID: 2, Quantity: 1, UnitPrice: 200},
		},
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, invoice.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	require.EqualValues(t, 10, repo.stocks[1])
	require.EqualValues(t, 4, repo.stocks[2])
	require.Empty(t, repo.invoices)

	// Two sale movements plus two return movements; the log is append-only.
	require.Len(t, repo.movements, 4)
	returns := 0
	for _, m := range repo.movements {
		if m.Type == inventory.MovementReturn {
			returns++
			require.EqualValues(t, invoice.ID, m.ReferenceID)
		}
	}
	require.Equal(t, 2, returns)
}

func TestDeleteMissingInvoice(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	deleted, err := svc.Delete(context.Background(), 42)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestUpdateStatus(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 10
	svc := newTestService(repo)
	ctx := context.Background()

	invoice, err := svc.Create(ctx, CreateInput{
		CustomerID: 1, CurrencyID: 1, CreatedBy: 7,
		Items:      []ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, invoice.ID, StatusSent)
	require.NoError(t, err)
	require.Equal(t, StatusSent, updated.Status)

	// Status changes never touch stock.
	require.EqualValues(t, 9, repo.stocks[1])
	require.Len(t, repo.movements, 1)

	_, err = svc.UpdateStatus(ctx, invoice.ID, StatusOverdue)
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, invoice.ID, Status("void"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListOverdueIsDerived(t *testing.T) {
	repo := newMemoryRepo()
	repo.stocks[1] = 10
	svc := newTestService(repo)
	ctx := context.Background()

	past := time.Now().Add(-48 * time.Hour)
	invoice, err := svc.Create(ctx, CreateInput{
		CustomerID: 1, CurrencyID: 1, CreatedBy: 7, DueDate: &past,
		Items: []ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)

	overdue, err := svc.List(ctx, StatusOverdue)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, invoice.ID, overdue[0].ID)

	// Paying the invoice removes it from the overdue view.
	_, err = svc.UpdateStatus(ctx, invoice.ID, StatusPaid)
	require.NoError(t, err)
	overdue, err = svc.List(ctx, StatusOverdue)
	require.NoError(t, err)
	require.Empty(t, overdue)

	_, err = svc.List(ctx, Status("bogus"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}
