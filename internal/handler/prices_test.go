package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/handler"
	"github.com/tailor-pos/api/internal/middleware"
	"github.com/tailor-pos/api/internal/pricing"
	"go.uber.org/zap"
)

type mockPriceStore struct {
	prices   []database.Price
	upserted []database.UpsertPriceParams
	deleteFn func(ctx context.Context, key string) (string, error)
}

func (m *mockPriceStore) ListPrices(ctx context.Context) ([]database.Price, error) {
	return m.prices, nil
}
func (m *mockPriceStore) UpsertPrice(ctx context.Context, arg database.UpsertPriceParams) (database.Price, error) {
	m.upserted = append(m.upserted, arg)
	return database.Price{Key: arg.Key, Value: arg.Value, Description: arg.Description}, nil
}
func (m *mockPriceStore) DeletePrice(ctx context.Context, key string) (string, error) {
	return m.deleteFn(ctx, key)
}

// setupPriceRouter mirrors the server wiring: reads for everyone, writes for
// owners and managers.
func setupPriceRouter(store handler.PriceStore) http.Handler {
	h := handler.NewPriceHandler(store, zap.NewNop())
	return authedRouter("/prices", func(r chi.Router) {
		h.RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.RoleOwner, enum.RoleManager))
			h.RegisterAdminRoutes(r)
		})
	})
}

func TestPriceList_FlagsUnknownKeys(t *testing.T) {
	store := &mockPriceStore{prices: []database.Price{
		{Key: string(pricing.KeyHomeDelivery), Value: num("2")},
		{Key: "LEGACY_BUTTON", Value: num("1")},
	}}
	rr := doRequest(t, setupPriceRouter(store), http.MethodGet, "/prices", nil, enum.RoleCashier)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	items := decodeBody(t, rr)["data"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(items))
	}
	if known := items[0].(map[string]interface{})["known"]; known != true {
		t.Errorf("HOME_DELIVERY known = %v", known)
	}
	if known := items[1].(map[string]interface{})["known"]; known != false {
		t.Errorf("LEGACY_BUTTON known = %v", known)
	}
}

func TestPriceUpsert(t *testing.T) {
	store := &mockPriceStore{}
	rr := doRequest(t, setupPriceRouter(store), http.MethodPut, "/prices/"+string(pricing.KeyExpress),
		map[string]string{"value": "3.500"}, enum.RoleManager)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(store.upserted) != 1 || store.upserted[0].Key != string(pricing.KeyExpress) {
		t.Fatalf("unexpected upserts: %+v", store.upserted)
	}
	if v := dataOf(t, rr)["value"]; v != "3.5" {
		t.Errorf("value = %v, want 3.5", v)
	}
}

func TestPriceUpsert_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		role   string
		status int
	}{
		{"cashier cannot edit", string(pricing.KeyExpress), "1", enum.RoleCashier, http.StatusForbidden},
		{"unknown key", "MYSTERY", "1", enum.RoleOwner, http.StatusUnprocessableEntity},
		{"negative value", string(pricing.KeyExpress), "-1", enum.RoleOwner, http.StatusUnprocessableEntity},
		{"not a number", string(pricing.KeyExpress), "abc", enum.RoleOwner, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockPriceStore{}
			rr := doRequest(t, setupPriceRouter(store), http.MethodPut, "/prices/"+tt.key,
				map[string]string{"value": tt.value}, tt.role)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if len(store.upserted) != 0 {
				t.Error("expected no write")
			}
		})
	}
}

func TestPriceDelete_NotFound(t *testing.T) {
	store := &mockPriceStore{
		deleteFn: func(ctx context.Context, key string) (string, error) {
			return "", pgx.ErrNoRows
		},
	}
	rr := doRequest(t, setupPriceRouter(store), http.MethodDelete, "/prices/"+string(pricing.KeyLine), nil, enum.RoleOwner)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
