package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/middleware"
	"github.com/tailor-pos/api/internal/service"
	"go.uber.org/zap"
)

// InventoryStore defines the database methods needed by inventory handlers.
type InventoryStore interface {
	ListShelfItems(ctx context.Context, arg database.ListShelfItemsParams) ([]database.ShelfItem, int64, error)
	UpsertShelfItem(ctx context.Context, arg database.UpsertShelfItemParams) (database.ShelfItem, error)
	ListFabrics(ctx context.Context, arg database.ListFabricsParams) ([]database.Fabric, int64, error)
}

// StockSettler applies stock decrements. Satisfied by *service.Settler.
type StockSettler interface {
	SettleShelf(ctx context.Context, brand string, lines []service.ShelfDecrement) ([]uuid.UUID, error)
	SettleFabrics(ctx context.Context, brand string, lines []service.FabricDecrement) ([]uuid.UUID, error)
}

// StockInvalidator drops cached stock. Satisfied by *service.StockCache.
type StockInvalidator interface {
	Invalidate(ids ...uuid.UUID)
}

// InventoryHandler serves shelf items and fabrics.
type InventoryHandler struct {
	store   InventoryStore
	settler StockSettler
	cache   StockInvalidator
	log     *zap.Logger
}

func NewInventoryHandler(store InventoryStore, settler StockSettler, cache StockInvalidator, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{store: store, settler: settler, cache: cache, log: log}
}

// RegisterRoutes registers inventory endpoints. Mounted at /inventory.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/shelf", h.ListShelf)
	r.Put("/shelf", h.UpsertShelf)
	r.Post("/shelf/settle", h.SettleShelf)
	r.Get("/fabrics", h.ListFabrics)
	r.Post("/fabrics/settle", h.SettleFabrics)
}

// --- Request / Response types ---

type shelfItemRequest struct {
	ProductType string `json:"product_type"`
	BrandName   string `json:"brand_name"`
	Stock       int32  `json:"stock"`
	UnitPrice   string `json:"unit_price"`
}

type shelfItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductType string          `json:"product_type"`
	BrandName   string          `json:"brand_name"`
	Stock       int32           `json:"stock"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type fabricResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Color         *string         `json:"color"`
	StockLength   decimal.Decimal `json:"stock_length"`
	PricePerMeter decimal.Decimal `json:"price_per_meter"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type settleShelfRequest struct {
	Lines []struct {
		ShelfItemID uuid.UUID `json:"shelf_item_id"`
		Quantity    int32     `json:"quantity"`
	} `json:"lines"`
}

type settleFabricsRequest struct {
	Lines []struct {
		FabricID uuid.UUID       `json:"fabric_id"`
		Length   decimal.Decimal `json:"length"`
	} `json:"lines"`
}

type settleResponse struct {
	Succeeded []uuid.UUID `json:"succeeded"`
}

func toShelfItemResponse(s database.ShelfItem) shelfItemResponse {
	return shelfItemResponse{
		ID:          s.ID,
		ProductType: s.ProductType,
		BrandName:   s.BrandName,
		Stock:       s.Stock,
		UnitPrice:   numericToDecimal(s.UnitPrice),
		UpdatedAt:   s.UpdatedAt,
	}
}

// --- Handlers ---

// ListShelf handles GET /inventory/shelf?product_type=&search=&in_stock=true.
func (h *InventoryHandler) ListShelf(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pagination(r)
	items, total, err := h.store.ListShelfItems(r.Context(), database.ListShelfItemsParams{
		Brand:       middleware.BrandFromContext(r.Context()),
		ProductType: q.Get("product_type"),
		Search:      strings.TrimSpace(q.Get("search")),
		InStock:     q.Get("in_stock") == "true",
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(w, h.log, "list shelf items", err)
		return
	}
	resp := make([]shelfItemResponse, len(items))
	for i, s := range items {
		resp[i] = toShelfItemResponse(s)
	}
	writeList(w, resp, total)
}

// UpsertShelf handles PUT /inventory/shelf. Items are keyed by product type
// and brand name.
func (h *InventoryHandler) UpsertShelf(w http.ResponseWriter, r *http.Request) {
	var req shelfItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProductType = strings.TrimSpace(req.ProductType)
	req.BrandName = strings.TrimSpace(req.BrandName)
	if req.ProductType == "" || req.BrandName == "" {
		writeMessage(w, http.StatusBadRequest, "product_type and brand_name are required")
		return
	}
	if req.Stock < 0 {
		writeMessage(w, http.StatusUnprocessableEntity, "stock: must not be negative")
		return
	}
	price, err := parseNumeric("unit_price", req.UnitPrice)
	if err != nil {
		writeError(w, h.log, "parse unit price", err)
		return
	}

	item, err := h.store.UpsertShelfItem(r.Context(), database.UpsertShelfItemParams{
		Brand:       middleware.BrandFromContext(r.Context()),
		ProductType: req.ProductType,
		BrandName:   req.BrandName,
		Stock:       req.Stock,
		UnitPrice:   price,
	})
	if err != nil {
		writeError(w, h.log, "upsert shelf item", err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(item.ID)
	}
	writeData(w, http.StatusOK, toShelfItemResponse(item))
}

// ListFabrics handles GET /inventory/fabrics?search=.
func (h *InventoryHandler) ListFabrics(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	fabrics, total, err := h.store.ListFabrics(r.Context(), database.ListFabricsParams{
		Brand:  middleware.BrandFromContext(r.Context()),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, h.log, "list fabrics", err)
		return
	}
	resp := make([]fabricResponse, len(fabrics))
	for i, f := range fabrics {
		resp[i] = fabricResponse{
			ID:            f.ID,
			Name:          f.Name,
			Color:         textPtr(f.Color),
			StockLength:   numericToDecimal(f.StockLength),
			PricePerMeter: numericToDecimal(f.PricePerMeter),
			UpdatedAt:     f.UpdatedAt,
		}
	}
	writeList(w, resp, total)
}

// SettleShelf handles POST /inventory/shelf/settle. A partially applied batch
// answers 409 with the succeeded and failed line ids.
func (h *InventoryHandler) SettleShelf(w http.ResponseWriter, r *http.Request) {
	var req settleShelfRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Lines) == 0 {
		writeMessage(w, http.StatusBadRequest, "lines are required")
		return
	}
	lines := make([]service.ShelfDecrement, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.ShelfDecrement{ShelfItemID: l.ShelfItemID, Quantity: l.Quantity}
	}
	succeeded, err := h.settler.SettleShelf(r.Context(), middleware.BrandFromContext(r.Context()), lines)
	if err != nil {
		writeError(w, h.log, "settle shelf", err)
		return
	}
	writeData(w, http.StatusOK, settleResponse{Succeeded: succeeded})
}

// SettleFabrics handles POST /inventory/fabrics/settle.
func (h *InventoryHandler) SettleFabrics(w http.ResponseWriter, r *http.Request) {
	var req settleFabricsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Lines) == 0 {
		writeMessage(w, http.StatusBadRequest, "lines are required")
		return
	}
	lines := make([]service.FabricDecrement, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.FabricDecrement{FabricID: l.FabricID, Length: l.Length}
	}
	succeeded, err := h.settler.SettleFabrics(r.Context(), middleware.BrandFromContext(r.Context()), lines)
	if err != nil {
		writeError(w, h.log, "settle fabrics", err)
		return
	}
	writeData(w, http.StatusOK, settleResponse{Succeeded: succeeded})
}
