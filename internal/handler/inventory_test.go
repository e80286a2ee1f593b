package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/handler"
	"github.com/tailor-pos/api/internal/service"
	"go.uber.org/zap"
)

type mockInventoryStore struct {
	upsertFn func(ctx context.Context, arg database.UpsertShelfItemParams) (database.ShelfItem, error)
}

func (m *mockInventoryStore) ListShelfItems(ctx context.Context, arg database.ListShelfItemsParams) ([]database.ShelfItem, int64, error) {
	return nil, 0, nil
}
func (m *mockInventoryStore) UpsertShelfItem(ctx context.Context, arg database.UpsertShelfItemParams) (database.ShelfItem, error) {
	return m.upsertFn(ctx, arg)
}
func (m *mockInventoryStore) ListFabrics(ctx context.Context, arg database.ListFabricsParams) ([]database.Fabric, int64, error) {
	return nil, 0, nil
}

type mockSettler struct {
	shelfFn  func(ctx context.Context, brand string, lines []service.ShelfDecrement) ([]uuid.UUID, error)
	fabricFn func(ctx context.Context, brand string, lines []service.FabricDecrement) ([]uuid.UUID, error)
}

func (m *mockSettler) SettleShelf(ctx context.Context, brand string, lines []service.ShelfDecrement) ([]uuid.UUID, error) {
	return m.shelfFn(ctx, brand, lines)
}
func (m *mockSettler) SettleFabrics(ctx context.Context, brand string, lines []service.FabricDecrement) ([]uuid.UUID, error) {
	return m.fabricFn(ctx, brand, lines)
}

type recordedInvalidations struct {
	ids []uuid.UUID
}

func (r *recordedInvalidations) Invalidate(ids ...uuid.UUID) {
	r.ids = append(r.ids, ids...)
}

func setupInventoryRouter(store handler.InventoryStore, settler handler.StockSettler, cache handler.StockInvalidator) http.Handler {
	h := handler.NewInventoryHandler(store, settler, cache, zap.NewNop())
	return authedRouter("/inventory", h.RegisterRoutes)
}

func TestUpsertShelf_InvalidatesCache(t *testing.T) {
	itemID := uuid.New()
	store := &mockInventoryStore{
		upsertFn: func(ctx context.Context, arg database.UpsertShelfItemParams) (database.ShelfItem, error) {
			return database.ShelfItem{ID: itemID, Brand: arg.Brand, ProductType: arg.ProductType, BrandName: arg.BrandName, Stock: arg.Stock, UnitPrice: arg.UnitPrice}, nil
		},
	}
	cache := &recordedInvalidations{}
	rr := doRequest(t, setupInventoryRouter(store, &mockSettler{}, cache), http.MethodPut, "/inventory/shelf",
		map[string]interface{}{"product_type": "ghutra", "brand_name": "Shimagh", "stock": 12, "unit_price": "4.250"}, enum.RoleManager)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(cache.ids) != 1 || cache.ids[0] != itemID {
		t.Errorf("invalidated = %v", cache.ids)
	}
}

func TestUpsertShelf_NegativeStock(t *testing.T) {
	rr := doRequest(t, setupInventoryRouter(&mockInventoryStore{}, &mockSettler{}, nil), http.MethodPut, "/inventory/shelf",
		map[string]interface{}{"product_type": "ghutra", "brand_name": "Shimagh", "stock": -1, "unit_price": "4"}, enum.RoleManager)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestSettleShelf(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	var gotLines []service.ShelfDecrement
	settler := &mockSettler{
		shelfFn: func(ctx context.Context, brand string, lines []service.ShelfDecrement) ([]uuid.UUID, error) {
			gotLines = lines
			return []uuid.UUID{a, b}, nil
		},
	}
	body := map[string]interface{}{"lines": []map[string]interface{}{
		{"shelf_item_id": a, "quantity": 1},
		{"shelf_item_id": b, "quantity": 2},
	}}
	rr := doRequest(t, setupInventoryRouter(&mockInventoryStore{}, settler, nil), http.MethodPost, "/inventory/shelf/settle", body, enum.RoleManager)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(gotLines) != 2 || gotLines[1].Quantity != 2 {
		t.Errorf("unexpected lines: %+v", gotLines)
	}
	if succeeded := dataOf(t, rr)["succeeded"].([]interface{}); len(succeeded) != 2 {
		t.Errorf("succeeded = %v", succeeded)
	}
}

func TestSettleShelf_EmptyBatch(t *testing.T) {
	rr := doRequest(t, setupInventoryRouter(&mockInventoryStore{}, &mockSettler{}, nil), http.MethodPost,
		"/inventory/shelf/settle", map[string]interface{}{"lines": []interface{}{}}, enum.RoleManager)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSettleShelf_QuantityOutOfRange(t *testing.T) {
	body := map[string]interface{}{"lines": []map[string]interface{}{
		{"shelf_item_id": uuid.New(), "quantity": int64(3000000000)},
	}}
	rr := doRequest(t, setupInventoryRouter(&mockInventoryStore{}, &mockSettler{}, nil), http.MethodPost,
		"/inventory/shelf/settle", body, enum.RoleManager)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSettleFabrics_PartialFailure(t *testing.T) {
	ok, short := uuid.New(), uuid.New()
	settler := &mockSettler{
		fabricFn: func(ctx context.Context, brand string, lines []service.FabricDecrement) ([]uuid.UUID, error) {
			if !lines[0].Length.Equal(decimal.RequireFromString("2.5")) {
				t.Errorf("length = %s", lines[0].Length)
			}
			return []uuid.UUID{ok}, &service.BatchError{
				Succeeded: []uuid.UUID{ok},
				Failed:    []service.LineError{{ID: short, Err: errors.New("not enough fabric")}},
			}
		},
	}
	body := map[string]interface{}{"lines": []map[string]interface{}{
		{"fabric_id": ok, "length": "2.5"},
		{"fabric_id": short, "length": "40"},
	}}
	rr := doRequest(t, setupInventoryRouter(&mockInventoryStore{}, settler, nil), http.MethodPost, "/inventory/fabrics/settle", body, enum.RoleManager)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
	data := dataOf(t, rr)
	if failed := data["failed"].([]interface{}); len(failed) != 1 {
		t.Errorf("failed = %v", failed)
	}
}
