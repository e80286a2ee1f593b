package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/database"
	"go.uber.org/zap"
)

// mockStockStore keeps shelf stock in memory and records every write.
type mockStockStore struct {
	mu       sync.Mutex
	shelf    map[uuid.UUID]int32
	fabrics  map[uuid.UUID]decimal.Decimal
	writes   []int32
	reads    int
	setErr   map[uuid.UUID]error
	setCalls int
}

func newMockStockStore() *mockStockStore {
	return &mockStockStore{
		shelf:   make(map[uuid.UUID]int32),
		fabrics: make(map[uuid.UUID]decimal.Decimal),
		setErr:  make(map[uuid.UUID]error),
	}
}

func (m *mockStockStore) GetShelfItem(ctx context.Context, arg database.GetShelfItemParams) (database.ShelfItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	stock, ok := m.shelf[arg.ID]
	if !ok {
		return database.ShelfItem{}, pgx.ErrNoRows
	}
	return database.ShelfItem{ID: arg.ID, Brand: arg.Brand, ProductType: "dishdasha", BrandName: "Alsaad", Stock: stock}, nil
}

func (m *mockStockStore) SetShelfStock(ctx context.Context, arg database.SetShelfStockParams) (database.ShelfItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	m.writes = append(m.writes, arg.Stock)
	if err := m.setErr[arg.ID]; err != nil {
		return database.ShelfItem{}, err
	}
	if m.shelf[arg.ID] != arg.Expected {
		return database.ShelfItem{}, pgx.ErrNoRows
	}
	m.shelf[arg.ID] = arg.Stock
	return database.ShelfItem{ID: arg.ID, Stock: arg.Stock}, nil
}

func (m *mockStockStore) GetFabric(ctx context.Context, arg database.GetFabricParams) (database.Fabric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	length, ok := m.fabrics[arg.ID]
	if !ok {
		return database.Fabric{}, pgx.ErrNoRows
	}
	return database.Fabric{ID: arg.ID, Name: "Toyobo", StockLength: decimalToNumeric(length)}, nil
}

func (m *mockStockStore) SetFabricStock(ctx context.Context, arg database.SetFabricStockParams) (database.Fabric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	next := numericToDecimal(arg.StockLength)
	if next.IsNegative() {
		panic("negative fabric stock written")
	}
	m.fabrics[arg.ID] = next
	return database.Fabric{ID: arg.ID, StockLength: arg.StockLength}, nil
}

func TestSettleShelf_PartialFailure(t *testing.T) {
	store := newMockStockStore()
	a, b, c, missing := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	store.shelf[a] = 5
	store.shelf[b] = 1
	store.shelf[c] = 4
	store.setErr[c] = &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"}

	s := NewSettler(store, nil, 2, zap.NewNop())
	succeeded, err := s.SettleShelf(context.Background(), testBrand, []ShelfDecrement{
		{ShelfItemID: a, Quantity: 2},
		{ShelfItemID: b, Quantity: 3},
		{ShelfItemID: c, Quantity: 1},
		{ShelfItemID: missing, Quantity: 1},
	})

	var be *BatchError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BatchError, got: %v", err)
	}
	if len(succeeded) != 1 || succeeded[0] != a {
		t.Errorf("succeeded = %v, want [%s]", succeeded, a)
	}
	if len(be.Failed) != 3 {
		t.Fatalf("expected 3 failed lines, got %d: %v", len(be.Failed), err)
	}
	if !errors.Is(err, ErrInsufficientStock) {
		t.Error("expected ErrInsufficientStock in the batch")
	}
	if store.shelf[a] != 3 || store.shelf[b] != 1 {
		t.Errorf("stock a=%d b=%d", store.shelf[a], store.shelf[b])
	}
	for _, w := range store.writes {
		if w < 0 {
			t.Fatalf("negative stock written: %d", w)
		}
	}
}

func TestSettleShelf_MergesDuplicateLines(t *testing.T) {
	store := newMockStockStore()
	id := uuid.New()
	store.shelf[id] = 5

	s := NewSettler(store, nil, 4, zap.NewNop())
	_, err := s.SettleShelf(context.Background(), testBrand, []ShelfDecrement{
		{ShelfItemID: id, Quantity: 2},
		{ShelfItemID: id, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if store.shelf[id] != 1 || store.setCalls != 1 {
		t.Errorf("stock = %d after %d writes, want 1 after 1", store.shelf[id], store.setCalls)
	}

	// 1 left, 2 requested: nothing is written
	_, err = s.SettleShelf(context.Background(), testBrand, []ShelfDecrement{
		{ShelfItemID: id, Quantity: 1},
		{ShelfItemID: id, Quantity: 1},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got: %v", err)
	}
	if store.setCalls != 1 {
		t.Errorf("update issued for a line that would go negative")
	}
}

func TestSettleShelf_InvalidQuantity(t *testing.T) {
	s := NewSettler(newMockStockStore(), nil, 1, zap.NewNop())
	_, err := s.SettleShelf(context.Background(), testBrand, []ShelfDecrement{{ShelfItemID: uuid.New(), Quantity: 0}})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func TestSettleShelf_HugeQuantityNeverRaisesStock(t *testing.T) {
	store := newMockStockStore()
	id := uuid.New()
	store.shelf[id] = 5
	s := NewSettler(store, nil, 1, zap.NewNop())

	_, err := s.SettleShelf(context.Background(), testBrand, []ShelfDecrement{{ShelfItemID: id, Quantity: math.MaxInt32}})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got: %v", err)
	}

	// merged lines past the int32 range are rejected before any read
	_, err = s.SettleShelf(context.Background(), testBrand, []ShelfDecrement{
		{ShelfItemID: id, Quantity: math.MaxInt32},
		{ShelfItemID: id, Quantity: math.MaxInt32},
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if store.setCalls != 0 || store.shelf[id] != 5 {
		t.Errorf("stock = %d after %d writes, want 5 untouched", store.shelf[id], store.setCalls)
	}
}

func TestSettleFabrics(t *testing.T) {
	store := newMockStockStore()
	enough, short := uuid.New(), uuid.New()
	store.fabrics[enough] = decimal.RequireFromString("10")
	store.fabrics[short] = decimal.RequireFromString("1.5")

	cache := NewStockCache(time.Hour)
	cache.fabrics[enough] = cached[database.Fabric]{brand: testBrand, expires: time.Now().Add(time.Hour)}
	cache.fabrics[short] = cached[database.Fabric]{brand: testBrand, expires: time.Now().Add(time.Hour)}

	s := NewSettler(store, cache, 2, zap.NewNop())
	succeeded, err := s.SettleFabrics(context.Background(), testBrand, []FabricDecrement{
		{FabricID: enough, Length: decimal.RequireFromString("3.25")},
		{FabricID: short, Length: decimal.RequireFromString("2")},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got: %v", err)
	}
	if len(succeeded) != 1 || succeeded[0] != enough {
		t.Errorf("succeeded = %v", succeeded)
	}
	if !decEquals(store.fabrics[enough], "6.75") {
		t.Errorf("stock = %s, want 6.75", store.fabrics[enough])
	}
	if _, ok := cache.fabrics[enough]; ok {
		t.Error("cache entry of the settled fabric should be dropped")
	}
	if _, ok := cache.fabrics[short]; !ok {
		t.Error("cache entry of the failed fabric should be kept")
	}
}

func TestStockCache_TTLAndInvalidate(t *testing.T) {
	store := newMockStockStore()
	id := uuid.New()
	store.shelf[id] = 3

	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	cache := NewStockCache(time.Minute)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	cache.ShelfItem(ctx, store, testBrand, id)
	cache.ShelfItem(ctx, store, testBrand, id)
	if store.reads != 1 {
		t.Fatalf("reads = %d, want 1", store.reads)
	}

	if _, err := cache.ShelfItem(ctx, store, "OTHER", id); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if store.reads != 2 {
		t.Errorf("another brand must not be served from cache")
	}

	now = now.Add(2 * time.Minute)
	cache.ShelfItem(ctx, store, "OTHER", id)
	if store.reads != 3 {
		t.Errorf("expired entry should be reloaded, reads = %d", store.reads)
	}

	cache.Invalidate(id)
	cache.ShelfItem(ctx, store, "OTHER", id)
	if store.reads != 4 {
		t.Errorf("invalidated entry should be reloaded, reads = %d", store.reads)
	}
}

func TestMapBackendError(t *testing.T) {
	err := mapBackendError(&pgconn.PgError{Code: "P0002", Message: "customer belongs to another brand"})
	if !errors.Is(err, ErrOrderNotFoundOrDenied) {
		t.Errorf("P0002: got %v", err)
	}
	if err := mapBackendError(&pgconn.PgError{Code: "23514", Message: "fabric stock would go negative"}); !IsValidation(err) {
		t.Errorf("23514: got %v", err)
	}
	orig := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	var pgErr *pgconn.PgError
	if err := mapBackendError(orig); !errors.As(err, &pgErr) || pgErr != orig {
		t.Errorf("other codes must pass through unchanged: %v", err)
	}
}

func TestBatchError_Message(t *testing.T) {
	id := uuid.MustParse("66666666-6666-6666-6666-666666666666")
	err := &BatchError{
		Succeeded: []uuid.UUID{uuid.New()},
		Failed:    []LineError{{ID: id, Err: ErrStockChanged}},
	}
	want := "1 of 2 stock updates failed: 66666666-6666-6666-6666-666666666666: stock changed concurrently"
	if err.Error() != want {
		t.Errorf("got %q", err.Error())
	}
	if !errors.Is(err, ErrStockChanged) {
		t.Error("expected line error to unwrap")
	}
}
