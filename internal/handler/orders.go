package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/lifecycle"
	"github.com/tailor-pos/api/internal/middleware"
	"github.com/tailor-pos/api/internal/service"
	"github.com/tailor-pos/api/internal/ws"
	"go.uber.org/zap"
)

// OrderStore defines the database methods needed by order handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, int64, error)
	ListGarmentsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Garment, error)
	ListOrderShelfLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderShelfLine, error)
	UpdateProductionStage(ctx context.Context, arg database.UpdateProductionStageParams) (database.Order, error)
	UpdatePieceStage(ctx context.Context, arg database.UpdatePieceStageParams) (database.Garment, error)
	CancelDraftOrder(ctx context.Context, arg database.CancelDraftOrderParams) (database.Order, error)
}

// StageNotifier is told about production stage moves. Satisfied by *ws.Hub.
type StageNotifier interface {
	OrderStageChanged(brand string, change ws.StageChange)
}

// OrderHandler serves persisted orders and their production lifecycle.
type OrderHandler struct {
	store    OrderStore
	pool     service.TxBeginner
	newStore func(db database.DBTX) OrderStore
	stages   StageNotifier
	log      *zap.Logger
}

func NewOrderHandler(store OrderStore, pool service.TxBeginner, newStore func(db database.DBTX) OrderStore, stages StageNotifier, log *zap.Logger) *OrderHandler {
	return &OrderHandler{store: store, pool: pool, newStore: newStore, stages: stages, log: log}
}

// RegisterRoutes registers order endpoints. Mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/cancel", h.Cancel)
		r.Patch("/production-stage", h.UpdateProductionStage)
		r.Patch("/garments/{gid}/piece-stage", h.UpdatePieceStage)
	})
}

// --- Request / Response types ---

type productionStageRequest struct {
	Action string `json:"action"`
	Stage  string `json:"stage"`
}

type pieceStageRequest struct {
	PieceStage string `json:"piece_stage"`
}

type orderResponse struct {
	ID                 uuid.UUID        `json:"id"`
	OrderType          string           `json:"order_type"`
	CheckoutStatus     string           `json:"checkout_status"`
	ProductionStage    *string          `json:"production_stage"`
	NextStages         []string         `json:"next_stages,omitempty"`
	CustomerID         uuid.UUID        `json:"customer_id"`
	OrderDate          time.Time        `json:"order_date"`
	DeliveryDate       *time.Time       `json:"delivery_date"`
	HomeDelivery       bool             `json:"home_delivery"`
	Express            bool             `json:"express"`
	FabricCharge       decimal.Decimal  `json:"fabric_charge"`
	StitchingCharge    decimal.Decimal  `json:"stitching_charge"`
	StyleCharge        decimal.Decimal  `json:"style_charge"`
	DeliveryCharge     decimal.Decimal  `json:"delivery_charge"`
	ExpressCharge      decimal.Decimal  `json:"express_charge"`
	ShelfCharge        decimal.Decimal  `json:"shelf_charge"`
	DiscountType       *string          `json:"discount_type"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	DiscountValue      decimal.Decimal  `json:"discount_value"`
	PaymentType        *string          `json:"payment_type"`
	Paid               decimal.Decimal  `json:"paid"`
	OrderTotal         decimal.Decimal  `json:"order_total"`
	Balance            decimal.Decimal  `json:"balance"`
	InvoiceNumber      *int32           `json:"invoice_number"`
	Notes              *string          `json:"notes"`
	CreatedAt          time.Time        `json:"created_at"`
}

type garmentResponse struct {
	ID             uuid.UUID       `json:"id"`
	Position       int32           `json:"position"`
	FabricSource   string          `json:"fabric_source"`
	FabricID       *uuid.UUID      `json:"fabric_id"`
	FabricLength   decimal.Decimal `json:"fabric_length"`
	Style          string          `json:"style"`
	Lines          int32           `json:"lines"`
	Quantity       int32           `json:"quantity"`
	PieceStage     string          `json:"piece_stage"`
	HomeDelivery   bool            `json:"home_delivery"`
	Express        bool            `json:"express"`
	FabricPrice    decimal.Decimal `json:"fabric_price"`
	StitchingPrice decimal.Decimal `json:"stitching_price"`
	StylePrice     decimal.Decimal `json:"style_price"`
}

type orderShelfResponse struct {
	ShelfItemID uuid.UUID       `json:"shelf_item_id"`
	ProductType string          `json:"product_type"`
	BrandName   string          `json:"brand_name"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type orderDetailResponse struct {
	orderResponse
	Garments []garmentResponse    `json:"garments"`
	Shelf    []orderShelfResponse `json:"shelf"`
}

func dbOrderToResponse(o database.Order) orderResponse {
	total := numericToDecimal(o.OrderTotal)
	paid := numericToDecimal(o.Paid)
	resp := orderResponse{
		ID:                 o.ID,
		OrderType:          o.OrderType,
		CheckoutStatus:     o.CheckoutStatus,
		ProductionStage:    textPtr(o.ProductionStage),
		CustomerID:         o.CustomerID,
		OrderDate:          o.OrderDate,
		HomeDelivery:       o.HomeDelivery,
		Express:            o.Express,
		FabricCharge:       numericToDecimal(o.FabricCharge),
		StitchingCharge:    numericToDecimal(o.StitchingCharge),
		StyleCharge:        numericToDecimal(o.StyleCharge),
		DeliveryCharge:     numericToDecimal(o.DeliveryCharge),
		ExpressCharge:      numericToDecimal(o.ExpressCharge),
		ShelfCharge:        numericToDecimal(o.ShelfCharge),
		DiscountType:       textPtr(o.DiscountType),
		DiscountPercentage: optionalDecimal(o.DiscountPercentage),
		DiscountValue:      numericToDecimal(o.DiscountValue),
		PaymentType:        textPtr(o.PaymentType),
		Paid:               paid,
		OrderTotal:         total,
		Balance:            total.Sub(paid),
		Notes:              textPtr(o.Notes),
		CreatedAt:          o.CreatedAt,
	}
	if o.ProductionStage.Valid {
		for _, s := range lifecycle.ProductionStage(o.ProductionStage.String).Next() {
			resp.NextStages = append(resp.NextStages, string(s))
		}
	}
	if o.DeliveryDate.Valid {
		d := o.DeliveryDate.Time
		resp.DeliveryDate = &d
	}
	if o.InvoiceNumber.Valid {
		n := o.InvoiceNumber.Int32
		resp.InvoiceNumber = &n
	}
	return resp
}

func dbGarmentToResponse(g database.Garment) garmentResponse {
	resp := garmentResponse{
		ID:             g.ID,
		Position:       g.Position,
		FabricSource:   g.FabricSource,
		FabricLength:   numericToDecimal(g.FabricLength),
		Style:          g.Style,
		Lines:          g.Lines,
		Quantity:       g.Quantity,
		PieceStage:     g.PieceStage,
		HomeDelivery:   g.HomeDelivery,
		Express:        g.Express,
		FabricPrice:    numericToDecimal(g.FabricPrice),
		StitchingPrice: numericToDecimal(g.StitchingPrice),
		StylePrice:     numericToDecimal(g.StylePrice),
	}
	if g.FabricID.Valid {
		id := uuid.UUID(g.FabricID.Bytes)
		resp.FabricID = &id
	}
	return resp
}

// --- Handlers ---

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pagination(r)
	arg := database.ListOrdersParams{
		Brand:           middleware.BrandFromContext(r.Context()),
		CheckoutStatus:  q.Get("status"),
		OrderType:       q.Get("order_type"),
		ProductionStage: q.Get("production_stage"),
		Search:          q.Get("search"),
		Limit:           limit,
		Offset:          offset,
	}
	if v := q.Get("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		arg.CustomerID = uuid.NullUUID{UUID: id, Valid: true}
	}
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
			return
		}
		arg.StartDate = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
			return
		}
		arg.EndDate = pgtype.Timestamptz{Time: t.AddDate(0, 0, 1), Valid: true}
	}

	orders, total, err := h.store.ListOrders(r.Context(), arg)
	if err != nil {
		writeError(w, h.log, "list orders", err)
		return
	}
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}
	writeList(w, resp, total)
}

// Get handles GET /orders/{id} with garments and shelf lines.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{
		ID:    orderID,
		Brand: middleware.BrandFromContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeMessage(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, h.log, "get order", err)
		return
	}
	garments, err := h.store.ListGarmentsByOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, h.log, "list garments", err)
		return
	}
	shelf, err := h.store.ListOrderShelfLines(r.Context(), orderID)
	if err != nil {
		writeError(w, h.log, "list shelf lines", err)
		return
	}

	resp := orderDetailResponse{
		orderResponse: dbOrderToResponse(order),
		Garments:      make([]garmentResponse, len(garments)),
		Shelf:         make([]orderShelfResponse, len(shelf)),
	}
	for i, g := range garments {
		resp.Garments[i] = dbGarmentToResponse(g)
	}
	for i, l := range shelf {
		resp.Shelf[i] = orderShelfResponse{
			ShelfItemID: l.ShelfItemID,
			ProductType: l.ProductType,
			BrandName:   l.BrandName,
			Quantity:    l.Quantity,
			UnitPrice:   numericToDecimal(l.UnitPrice),
		}
	}
	writeData(w, http.StatusOK, resp)
}

// Cancel handles POST /orders/{id}/cancel. Only drafts can be cancelled.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.store.CancelDraftOrder(r.Context(), database.CancelDraftOrderParams{
		ID:    orderID,
		Brand: middleware.BrandFromContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = service.ErrOrderNotFoundOrDenied
		}
		writeError(w, h.log, "cancel order", err)
		return
	}
	writeData(w, http.StatusOK, dbOrderToResponse(order))
}

// UpdateProductionStage handles PATCH /orders/{id}/production-stage. The body
// names either an operator action or the target stage. Pieces that would be
// inconsistent with the new stage move along with the order in the same
// transaction.
func (h *OrderHandler) UpdateProductionStage(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req productionStageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	brand := middleware.BrandFromContext(r.Context())

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, Brand: brand})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeMessage(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, h.log, "get order for stage update", err)
		return
	}
	if order.OrderType != enum.OrderTypeWork || order.CheckoutStatus != enum.CheckoutStatusConfirmed || !order.ProductionStage.Valid {
		writeMessage(w, http.StatusConflict, "only confirmed work orders have a production stage")
		return
	}

	current := lifecycle.ProductionStage(order.ProductionStage.String)
	var target lifecycle.ProductionStage
	switch {
	case req.Action != "":
		to, applies := lifecycle.Action(req.Action).Target(current)
		if !applies {
			writeMessage(w, http.StatusConflict, "action "+req.Action+" is not available at stage "+string(current))
			return
		}
		target = to
	case req.Stage != "":
		target = lifecycle.ProductionStage(req.Stage)
		if err := lifecycle.Advance(current, target); err != nil {
			writeError(w, h.log, "advance stage", err)
			return
		}
	default:
		writeMessage(w, http.StatusBadRequest, "action or stage is required")
		return
	}

	garments, err := h.store.ListGarmentsByOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, h.log, "list garments for stage update", err)
		return
	}

	updated, err := h.advance(r.Context(), order, current, target, garments)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeMessage(w, http.StatusConflict, "order stage changed, please retry")
			return
		}
		writeError(w, h.log, "update production stage", err)
		return
	}

	if h.stages != nil {
		h.stages.OrderStageChanged(brand, ws.StageChange{OrderID: orderID, From: string(current), To: string(target)})
	}
	h.log.Info("production stage changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(current)),
		zap.String("to", string(target)),
	)
	writeData(w, http.StatusOK, dbOrderToResponse(updated))
}

func (h *OrderHandler) advance(ctx context.Context, order database.Order, from, to lifecycle.ProductionStage, garments []database.Garment) (database.Order, error) {
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, err
	}
	defer tx.Rollback(ctx)

	store := h.newStore(tx)
	updated, err := store.UpdateProductionStage(ctx, database.UpdateProductionStageParams{
		ID:              order.ID,
		Brand:           order.Brand,
		ProductionStage: string(to),
		CurrentStage:    string(from),
	})
	if err != nil {
		return database.Order{}, err
	}

	for _, g := range garments {
		current := lifecycle.PieceStage(g.PieceStage)
		next := lifecycle.PieceAfter(to, current)
		if next == current {
			continue
		}
		if _, err := store.UpdatePieceStage(ctx, database.UpdatePieceStageParams{
			ID:         g.ID,
			OrderID:    order.ID,
			PieceStage: string(next),
		}); err != nil {
			return database.Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, err
	}
	return updated, nil
}

// UpdatePieceStage handles PATCH /orders/{id}/garments/{gid}/piece-stage.
func (h *OrderHandler) UpdatePieceStage(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	garmentID, ok := urlUUID(w, r, "gid")
	if !ok {
		return
	}
	var req pieceStageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	piece := lifecycle.PieceStage(req.PieceStage)
	if !piece.IsValid() {
		writeMessage(w, http.StatusBadRequest, "invalid piece_stage")
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{
		ID:    orderID,
		Brand: middleware.BrandFromContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeMessage(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, h.log, "get order for piece update", err)
		return
	}
	if !order.ProductionStage.Valid {
		writeMessage(w, http.StatusConflict, "order is not in production")
		return
	}
	stage := lifecycle.ProductionStage(order.ProductionStage.String)
	if err := lifecycle.CheckPieces(stage, []lifecycle.PieceStage{piece}); err != nil {
		writeMessage(w, http.StatusConflict, err.Error())
		return
	}

	g, err := h.store.UpdatePieceStage(r.Context(), database.UpdatePieceStageParams{
		ID:         garmentID,
		OrderID:    orderID,
		PieceStage: string(piece),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeMessage(w, http.StatusNotFound, "garment not found")
			return
		}
		writeError(w, h.log, "update piece stage", err)
		return
	}
	writeData(w, http.StatusOK, dbGarmentToResponse(g))
}
