package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/middleware"
	"go.uber.org/zap"
)

// CustomerStore defines the database methods needed by customer handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CustomerStore interface {
	ListCustomers(ctx context.Context, arg database.ListCustomersParams) ([]database.Customer, int64, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	UpdateCustomer(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error)
	DeleteCustomer(ctx context.Context, arg database.DeleteCustomerParams) (uuid.UUID, error)
}

// CustomerHandler handles customer CRUD endpoints.
type CustomerHandler struct {
	store CustomerStore
	log   *zap.Logger
}

func NewCustomerHandler(store CustomerStore, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{store: store, log: log}
}

// RegisterRoutes registers customer CRUD endpoints. Mounted at /customers.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

// --- Request / Response types ---

type customerRequest struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Email       *string `json:"email"`
	Nationality *string `json:"nationality"`
}

func (c *customerRequest) validate() string {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" {
		return "name is required"
	}
	if c.Phone == "" {
		return "phone is required"
	}
	return ""
}

type customerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       *string   `json:"email"`
	Nationality *string   `json:"nationality"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCustomerResponse(c database.Customer) customerResponse {
	return customerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       textPtr(c.Email),
		Nationality: textPtr(c.Nationality),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// --- Handlers ---

// List handles GET /customers?search=&phone=.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	customers, total, err := h.store.ListCustomers(r.Context(), database.ListCustomersParams{
		Brand:  middleware.BrandFromContext(r.Context()),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Phone:  strings.TrimSpace(r.URL.Query().Get("phone")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, h.log, "list customers", err)
		return
	}
	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = toCustomerResponse(c)
	}
	writeList(w, resp, total)
}

// Get handles GET /customers/{id}.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.store.GetCustomer(r.Context(), database.GetCustomerParams{
		ID:    id,
		Brand: middleware.BrandFromContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeMessage(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, h.log, "get customer", err)
		return
	}
	writeData(w, http.StatusOK, toCustomerResponse(c))
}

// Create handles POST /customers.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.store.CreateCustomer(r.Context(), database.CreateCustomerParams{
		Brand:       middleware.BrandFromContext(r.Context()),
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       optionalText(req.Email),
		Nationality: optionalText(req.Nationality),
	})
	if err != nil {
		writeError(w, h.log, "create customer", err)
		return
	}
	writeData(w, http.StatusCreated, toCustomerResponse(c))
}

// Update handles PUT /customers/{id}.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req customerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.store.UpdateCustomer(r.Context(), database.UpdateCustomerParams{
		ID:          id,
		Brand:       middleware.BrandFromContext(r.Context()),
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       optionalText(req.Email),
		Nationality: optionalText(req.Nationality),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeMessage(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, h.log, "update customer", err)
		return
	}
	writeData(w, http.StatusOK, toCustomerResponse(c))
}

// Delete handles DELETE /customers/{id}. Customers with orders are kept.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	_, err := h.store.DeleteCustomer(r.Context(), database.DeleteCustomerParams{
		ID:    id,
		Brand: middleware.BrandFromContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeMessage(w, http.StatusNotFound, "customer not found")
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeMessage(w, http.StatusConflict, "customer has orders and cannot be deleted")
			return
		}
		writeError(w, h.log, "delete customer", err)
		return
	}
	writeMessage(w, http.StatusOK, "customer deleted")
}
