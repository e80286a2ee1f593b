package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/pricing"
	"go.uber.org/zap"
)

// PriceStore defines the database methods needed by price list handlers.
type PriceStore interface {
	ListPrices(ctx context.Context) ([]database.Price, error)
	UpsertPrice(ctx context.Context, arg database.UpsertPriceParams) (database.Price, error)
	DeletePrice(ctx context.Context, key string) (string, error)
}

// PriceHandler serves the flat price list.
type PriceHandler struct {
	store PriceStore
	log   *zap.Logger
}

func NewPriceHandler(store PriceStore, log *zap.Logger) *PriceHandler {
	return &PriceHandler{store: store, log: log}
}

// RegisterRoutes registers the read endpoint. Mounted at /prices.
func (h *PriceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// RegisterAdminRoutes registers the write endpoints. The caller guards them
// with a role check.
func (h *PriceHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/{key}", h.Upsert)
	r.Delete("/{key}", h.Delete)
}

type priceRequest struct {
	Value       string  `json:"value"`
	Description *string `json:"description"`
}

type priceResponse struct {
	Key         string          `json:"key"`
	Value       decimal.Decimal `json:"value"`
	Description *string         `json:"description"`
	Known       bool            `json:"known"`
}

func toPriceResponse(p database.Price) priceResponse {
	return priceResponse{
		Key:         p.Key,
		Value:       numericToDecimal(p.Value),
		Description: textPtr(p.Description),
		Known:       pricing.PriceKey(p.Key).Known(),
	}
}

// List handles GET /prices. Keys the pricing engine does not know are listed
// with known=false; they price at zero.
func (h *PriceHandler) List(w http.ResponseWriter, r *http.Request) {
	prices, err := h.store.ListPrices(r.Context())
	if err != nil {
		writeError(w, h.log, "list prices", err)
		return
	}
	resp := make([]priceResponse, len(prices))
	for i, p := range prices {
		resp[i] = toPriceResponse(p)
	}
	writeList(w, resp, int64(len(resp)))
}

// Upsert handles PUT /prices/{key}.
func (h *PriceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !pricing.PriceKey(key).Known() {
		writeMessage(w, http.StatusUnprocessableEntity, "unknown price key "+key)
		return
	}
	var req priceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	value, err := parseNumeric("value", req.Value)
	if err != nil {
		writeError(w, h.log, "parse price", err)
		return
	}

	p, err := h.store.UpsertPrice(r.Context(), database.UpsertPriceParams{
		Key:         key,
		Value:       value,
		Description: optionalText(req.Description),
	})
	if err != nil {
		writeError(w, h.log, "upsert price", err)
		return
	}
	h.log.Info("price updated", zap.String("key", key), zap.String("value", req.Value))
	writeData(w, http.StatusOK, toPriceResponse(p))
}

// Delete handles DELETE /prices/{key}.
func (h *PriceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, err := h.store.DeletePrice(r.Context(), key); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeMessage(w, http.StatusNotFound, "price not found")
			return
		}
		writeError(w, h.log, "delete price", err)
		return
	}
	writeMessage(w, http.StatusOK, "price deleted")
}
