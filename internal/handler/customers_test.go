package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/handler"
	"go.uber.org/zap"
)

type mockCustomerStore struct {
	listFn   func(ctx context.Context, arg database.ListCustomersParams) ([]database.Customer, int64, error)
	getFn    func(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	createFn func(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	updateFn func(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error)
	deleteFn func(ctx context.Context, arg database.DeleteCustomerParams) (uuid.UUID, error)
}

func (m *mockCustomerStore) ListCustomers(ctx context.Context, arg database.ListCustomersParams) ([]database.Customer, int64, error) {
	return m.listFn(ctx, arg)
}
func (m *mockCustomerStore) GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error) {
	return m.getFn(ctx, arg)
}
func (m *mockCustomerStore) CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error) {
	return m.createFn(ctx, arg)
}
func (m *mockCustomerStore) UpdateCustomer(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error) {
	return m.updateFn(ctx, arg)
}
func (m *mockCustomerStore) DeleteCustomer(ctx context.Context, arg database.DeleteCustomerParams) (uuid.UUID, error) {
	return m.deleteFn(ctx, arg)
}

func setupCustomerRouter(store handler.CustomerStore) http.Handler {
	h := handler.NewCustomerHandler(store, zap.NewNop())
	return authedRouter("/customers", h.RegisterRoutes)
}

func TestCustomerCreate(t *testing.T) {
	var got database.CreateCustomerParams
	store := &mockCustomerStore{
		createFn: func(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error) {
			got = arg
			return database.Customer{
				ID:        uuid.New(),
				Brand:     arg.Brand,
				Name:      arg.Name,
				Phone:     arg.Phone,
				Email:     arg.Email,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		},
	}
	rr := doRequest(t, setupCustomerRouter(store), http.MethodPost, "/customers",
		map[string]string{"name": "  Fahad  ", "phone": "99887766", "email": "fahad@example.com"}, enum.RoleCashier)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Brand != testBrand || got.Name != "Fahad" {
		t.Errorf("unexpected params: %+v", got)
	}
	if !got.Email.Valid || got.Nationality.Valid {
		t.Errorf("email/nationality = %+v / %+v", got.Email, got.Nationality)
	}
	if data := dataOf(t, rr); data["email"] != "fahad@example.com" {
		t.Errorf("email = %v", data["email"])
	}
}

func TestCustomerCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"phone": "99887766"}},
		{"blank phone", map[string]string{"name": "Fahad", "phone": "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, setupCustomerRouter(&mockCustomerStore{}), http.MethodPost, "/customers", tt.body, enum.RoleCashier)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestCustomerList_Search(t *testing.T) {
	var got database.ListCustomersParams
	store := &mockCustomerStore{
		listFn: func(ctx context.Context, arg database.ListCustomersParams) ([]database.Customer, int64, error) {
			got = arg
			return []database.Customer{}, 0, nil
		},
	}
	rr := doRequest(t, setupCustomerRouter(store), http.MethodGet, "/customers?search=fah&limit=10&offset=20", nil, enum.RoleCashier)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got.Search != "fah" || got.Limit != 10 || got.Offset != 20 || got.Brand != testBrand {
		t.Errorf("unexpected params: %+v", got)
	}
	if body := decodeBody(t, rr); body["count"] != float64(0) {
		t.Errorf("count = %v", body["count"])
	}
}

func TestCustomerGet_OtherBrandNotFound(t *testing.T) {
	store := &mockCustomerStore{
		getFn: func(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error) {
			return database.Customer{}, pgx.ErrNoRows
		},
	}
	rr := doRequest(t, setupCustomerRouter(store), http.MethodGet, "/customers/"+uuid.NewString(), nil, enum.RoleCashier)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCustomerDelete(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"deleted", nil, http.StatusOK},
		{"not found", pgx.ErrNoRows, http.StatusNotFound},
		{"has orders", &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockCustomerStore{
				deleteFn: func(ctx context.Context, arg database.DeleteCustomerParams) (uuid.UUID, error) {
					return arg.ID, tt.err
				},
			}
			rr := doRequest(t, setupCustomerRouter(store), http.MethodDelete, "/customers/"+uuid.NewString(), nil, enum.RoleManager)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}
