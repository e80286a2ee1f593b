package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/middleware"
	"github.com/tailor-pos/api/internal/service"
	"go.uber.org/zap"
)

// CheckoutService is the wizard surface driven by CheckoutHandler.
// Satisfied by *service.Orchestrator.
type CheckoutService interface {
	Begin(ctx context.Context, brand, orderType string, createdBy *uuid.UUID) (*service.View, error)
	Resume(ctx context.Context, brand string, orderID uuid.UUID) (*service.View, error)
	State(ctx context.Context, brand string, id uuid.UUID) (*service.View, error)
	SelectCustomer(ctx context.Context, brand string, id, customerID uuid.UUID) (*service.View, error)
	CreateCustomer(ctx context.Context, brand string, id uuid.UUID, in service.CustomerInput) (*service.View, error)
	AdvanceToItems(ctx context.Context, brand string, id uuid.UUID) (*service.View, error)
	Back(ctx context.Context, brand string, id uuid.UUID, step service.Step) (*service.View, error)
	AddGarment(ctx context.Context, brand string, id uuid.UUID, in service.GarmentInput) (*service.View, error)
	UpdateGarment(ctx context.Context, brand string, id uuid.UUID, index int, in service.GarmentInput) (*service.View, error)
	RemoveGarment(ctx context.Context, brand string, id uuid.UUID, index int) (*service.View, error)
	AddShelfLine(ctx context.Context, brand string, id uuid.UUID, in service.ShelfInput) (*service.View, error)
	UpdateShelfLine(ctx context.Context, brand string, id uuid.UUID, index int, in service.ShelfInput) (*service.View, error)
	RemoveShelfLine(ctx context.Context, brand string, id uuid.UUID, index int) (*service.View, error)
	AdvanceToReview(ctx context.Context, brand string, id uuid.UUID) (*service.View, error)
	SetFulfilment(ctx context.Context, brand string, id uuid.UUID, in service.FulfilmentInput) (*service.View, error)
	SetStitchingBase(ctx context.Context, brand string, id uuid.UUID, amount string) (*service.View, error)
	SetDiscountType(ctx context.Context, brand string, id uuid.UUID, typ string) (*service.View, error)
	SetDiscountPercentage(ctx context.Context, brand string, id uuid.UUID, pct string) (*service.View, error)
	SetDiscountValue(ctx context.Context, brand string, id uuid.UUID, value string) (*service.View, error)
	SetPayment(ctx context.Context, brand string, id uuid.UUID, in service.PaymentInput) (*service.View, error)
	Submit(ctx context.Context, brand string, id uuid.UUID, confirmZero bool) (*service.View, error)
	Cancel(ctx context.Context, brand string, id uuid.UUID) (*service.View, error)
	Discard(ctx context.Context, brand string, id uuid.UUID, confirmed bool) error
}

// CheckoutHandler exposes the three-step checkout wizard.
type CheckoutHandler struct {
	svc CheckoutService
	log *zap.Logger
}

func NewCheckoutHandler(svc CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, log: log}
}

// RegisterRoutes mounts the wizard under /checkout.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Begin)
	r.Post("/resume/{orderID}", h.Resume)
	r.Route("/{sid}", func(r chi.Router) {
		r.Get("/", h.State)
		r.Delete("/", h.Discard)
		r.Post("/customer", h.SelectCustomer)
		r.Post("/customer/new", h.CreateCustomer)
		r.Post("/items", h.AdvanceToItems)
		r.Post("/back", h.Back)
		r.Post("/garments", h.AddGarment)
		r.Put("/garments/{idx}", h.UpdateGarment)
		r.Delete("/garments/{idx}", h.RemoveGarment)
		r.Post("/shelf", h.AddShelfLine)
		r.Put("/shelf/{idx}", h.UpdateShelfLine)
		r.Delete("/shelf/{idx}", h.RemoveShelfLine)
		r.Post("/review", h.AdvanceToReview)
		r.Put("/fulfilment", h.SetFulfilment)
		r.Put("/stitching", h.SetStitchingBase)
		r.Put("/discount/type", h.SetDiscountType)
		r.Put("/discount/percentage", h.SetDiscountPercentage)
		r.Put("/discount/value", h.SetDiscountValue)
		r.Put("/payment", h.SetPayment)
		r.Post("/submit", h.Submit)
		r.Post("/cancel", h.Cancel)
	})
}

// --- Request / Response types ---

type beginRequest struct {
	OrderType string `json:"order_type"`
}

type selectCustomerRequest struct {
	CustomerID uuid.UUID `json:"customer_id"`
}

type newCustomerRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Nationality string `json:"nationality"`
}

type backRequest struct {
	Step string `json:"step"`
}

type garmentRequest struct {
	FabricSource         string     `json:"fabric_source"`
	FabricID             *uuid.UUID `json:"fabric_id"`
	FabricLength         string     `json:"fabric_length"`
	FabricAmount         string     `json:"fabric_amount"`
	Style                string     `json:"style"`
	Lines                int        `json:"lines"`
	CollarType           string     `json:"collar_type"`
	CollarButton         string     `json:"collar_button"`
	JabzourType          string     `json:"jabzour_type"`
	JabzourThickness     string     `json:"jabzour_thickness"`
	FrontPocketType      string     `json:"front_pocket_type"`
	FrontPocketThickness string     `json:"front_pocket_thickness"`
	CuffType             string     `json:"cuff_type"`
	CuffThickness        string     `json:"cuff_thickness"`
	Wallet               bool       `json:"wallet"`
	PenHolder            bool       `json:"pen_holder"`
	HomeDelivery         bool       `json:"home_delivery"`
	Express              bool       `json:"express"`
	Quantity             int32      `json:"quantity"`
}

func (g garmentRequest) input() service.GarmentInput {
	return service.GarmentInput{
		FabricSource:         g.FabricSource,
		FabricID:             g.FabricID,
		FabricLength:         g.FabricLength,
		FabricAmount:         g.FabricAmount,
		Style:                g.Style,
		Lines:                g.Lines,
		CollarType:           g.CollarType,
		CollarButton:         g.CollarButton,
		JabzourType:          g.JabzourType,
		JabzourThickness:     g.JabzourThickness,
		FrontPocketType:      g.FrontPocketType,
		FrontPocketThickness: g.FrontPocketThickness,
		CuffType:             g.CuffType,
		CuffThickness:        g.CuffThickness,
		Wallet:               g.Wallet,
		PenHolder:            g.PenHolder,
		HomeDelivery:         g.HomeDelivery,
		Express:              g.Express,
		Quantity:             g.Quantity,
	}
}

type shelfRequest struct {
	ShelfItemID uuid.UUID `json:"shelf_item_id"`
	Quantity    int32     `json:"quantity"`
}

type fulfilmentRequest struct {
	HomeDelivery bool       `json:"home_delivery"`
	Express      bool       `json:"express"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Notes        string     `json:"notes"`
}

type amountRequest struct {
	Value string `json:"value"`
}

type discountTypeRequest struct {
	Type string `json:"type"`
}

type paymentRequest struct {
	PaymentType string `json:"payment_type"`
	Paid        string `json:"paid"`
}

type submitRequest struct {
	ConfirmZeroPayment bool `json:"confirm_zero_payment"`
}

type customerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

type garmentLineResponse struct {
	FabricSource   string          `json:"fabric_source"`
	FabricID       *uuid.UUID      `json:"fabric_id"`
	FabricLength   decimal.Decimal `json:"fabric_length"`
	Style          string          `json:"style"`
	Lines          int             `json:"lines"`
	CollarType     string          `json:"collar_type,omitempty"`
	CollarButton   string          `json:"collar_button,omitempty"`
	JabzourType    string          `json:"jabzour_type,omitempty"`
	FrontPocket    string          `json:"front_pocket_type,omitempty"`
	CuffType       string          `json:"cuff_type,omitempty"`
	HomeDelivery   bool            `json:"home_delivery"`
	Express        bool            `json:"express"`
	Quantity       int32           `json:"quantity"`
	PieceStage     string          `json:"piece_stage"`
	FabricPrice    decimal.Decimal `json:"fabric_price"`
	StitchingPrice decimal.Decimal `json:"stitching_price"`
	StylePrice     decimal.Decimal `json:"style_price"`
}

type shelfLineResponse struct {
	ShelfItemID uuid.UUID       `json:"shelf_item_id"`
	ProductType string          `json:"product_type"`
	BrandName   string          `json:"brand_name"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Stock       int             `json:"stock"`
}

type totalsResponse struct {
	Fabric         decimal.Decimal `json:"fabric"`
	Stitching      decimal.Decimal `json:"stitching"`
	Style          decimal.Decimal `json:"style"`
	Delivery       decimal.Decimal `json:"delivery"`
	Express        decimal.Decimal `json:"express"`
	Shelf          decimal.Decimal `json:"shelf"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	FinalTotal     decimal.Decimal `json:"final_total"`
	DisplayTotal   decimal.Decimal `json:"display_total"`
	Paid           decimal.Decimal `json:"paid"`
	Balance        decimal.Decimal `json:"balance"`
	DisplayBalance decimal.Decimal `json:"display_balance"`
}

type checkoutResponse struct {
	ID                 uuid.UUID             `json:"id"`
	Brand              string                `json:"brand"`
	OrderType          string                `json:"order_type"`
	Step               string                `json:"step"`
	CheckoutStatus     string                `json:"checkout_status"`
	OrderID            *uuid.UUID            `json:"order_id"`
	InvoiceNumber      *int32                `json:"invoice_number"`
	Customer           *customerSummary      `json:"customer"`
	Garments           []garmentLineResponse `json:"garments"`
	Shelf              []shelfLineResponse   `json:"shelf"`
	HomeDelivery       bool                  `json:"home_delivery"`
	Express            bool                  `json:"express"`
	DeliveryDate       *time.Time            `json:"delivery_date"`
	StitchingBase      *decimal.Decimal      `json:"stitching_base"`
	DiscountType       string                `json:"discount_type,omitempty"`
	DiscountPercentage decimal.Decimal       `json:"discount_percentage"`
	DiscountValue      decimal.Decimal       `json:"discount_value"`
	PaymentType        string                `json:"payment_type,omitempty"`
	Notes              string                `json:"notes,omitempty"`
	Unsaved            bool                  `json:"unsaved"`
	Totals             totalsResponse        `json:"totals"`
}

func toCheckoutResponse(v *service.View) checkoutResponse {
	resp := checkoutResponse{
		ID:                 v.ID,
		Brand:              v.Brand,
		OrderType:          v.OrderType,
		Step:               v.Step.String(),
		CheckoutStatus:     string(v.Status),
		OrderID:            v.OrderID,
		Garments:           make([]garmentLineResponse, len(v.Garments)),
		Shelf:              make([]shelfLineResponse, len(v.Shelf)),
		HomeDelivery:       v.Fulfilment.HomeDelivery,
		Express:            v.Fulfilment.Express,
		DeliveryDate:       v.DeliveryDate,
		StitchingBase:      v.StitchingBase,
		DiscountType:       string(v.Discount.Type),
		DiscountPercentage: v.Discount.Percentage,
		DiscountValue:      v.Discount.Value,
		PaymentType:        v.PaymentType,
		Notes:              v.Notes,
		Unsaved:            v.Touched && v.Step != service.StepDone,
		Totals: totalsResponse{
			Fabric:         v.Quote.Totals.Fabric,
			Stitching:      v.Quote.Totals.Stitching,
			Style:          v.Quote.Totals.Style,
			Delivery:       v.Quote.Totals.Delivery,
			Express:        v.Quote.Totals.Express,
			Shelf:          v.Quote.Totals.Shelf,
			Subtotal:       v.Quote.Totals.Total,
			Discount:       v.Quote.Discount.Amount,
			FinalTotal:     v.Quote.Discount.FinalTotal,
			DisplayTotal:   v.Quote.Discount.DisplayTotal,
			Paid:           v.Quote.Paid,
			Balance:        v.Quote.Balance,
			DisplayBalance: v.Quote.DisplayBalance,
		},
	}
	if v.Customer != nil {
		resp.Customer = &customerSummary{ID: v.Customer.ID, Name: v.Customer.Name, Phone: v.Customer.Phone}
	}
	if v.Order != nil && v.Order.InvoiceNumber.Valid {
		n := v.Order.InvoiceNumber.Int32
		resp.InvoiceNumber = &n
	}
	for i, g := range v.Garments {
		resp.Garments[i] = garmentLineResponse{
			FabricSource:   g.FabricSource,
			FabricID:       g.FabricID,
			FabricLength:   g.FabricLength,
			Style:          g.Style,
			Lines:          g.Lines,
			CollarType:     g.CollarType,
			CollarButton:   g.CollarButton,
			JabzourType:    g.JabzourType,
			FrontPocket:    g.FrontPocketType,
			CuffType:       g.CuffType,
			HomeDelivery:   g.HomeDelivery,
			Express:        g.Express,
			Quantity:       g.Quantity,
			PieceStage:     string(g.PieceStage),
			FabricPrice:    g.Quote.Fabric,
			StitchingPrice: g.Quote.Stitching,
			StylePrice:     g.Quote.Style,
		}
	}
	for i, l := range v.Shelf {
		resp.Shelf[i] = shelfLineResponse{
			ShelfItemID: l.ShelfItemID,
			ProductType: l.ProductType,
			BrandName:   l.BrandName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Stock:       l.Stock,
		}
	}
	return resp
}

// --- Handlers ---

// respond writes the view or maps err.
func (h *CheckoutHandler) respond(w http.ResponseWriter, op string, status int, v *service.View, err error) {
	if err != nil {
		writeError(w, h.log, op, err)
		return
	}
	writeData(w, status, toCheckoutResponse(v))
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	id, ok := urlUUID(w, r, "sid")
	if !ok {
		return "", uuid.Nil, false
	}
	return middleware.BrandFromContext(r.Context()), id, true
}

// Begin handles POST /checkout.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req beginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var createdBy *uuid.UUID
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.UserID != uuid.Nil {
		id := claims.UserID
		createdBy = &id
	}
	v, err := h.svc.Begin(r.Context(), middleware.BrandFromContext(r.Context()), req.OrderType, createdBy)
	h.respond(w, "begin checkout", http.StatusCreated, v, err)
}

// Resume handles POST /checkout/resume/{orderID}.
func (h *CheckoutHandler) Resume(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "orderID")
	if !ok {
		return
	}
	v, err := h.svc.Resume(r.Context(), middleware.BrandFromContext(r.Context()), orderID)
	h.respond(w, "resume checkout", http.StatusCreated, v, err)
}

// State handles GET /checkout/{sid}.
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	v, err := h.svc.State(r.Context(), brand, id)
	h.respond(w, "checkout state", http.StatusOK, v, err)
}

// Discard handles DELETE /checkout/{sid}?confirm=true. Without confirm an
// edited, unsubmitted checkout is kept and 409 is returned.
func (h *CheckoutHandler) Discard(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.svc.Discard(r.Context(), brand, id, confirmed); err != nil {
		writeError(w, h.log, "discard checkout", err)
		return
	}
	writeMessage(w, http.StatusOK, "checkout discarded")
}

func (h *CheckoutHandler) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectCustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.SelectCustomer(r.Context(), brand, id, req.CustomerID)
	h.respond(w, "select customer", http.StatusOK, v, err)
}

func (h *CheckoutHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req newCustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.CreateCustomer(r.Context(), brand, id, service.CustomerInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Nationality: req.Nationality,
	})
	h.respond(w, "create customer", http.StatusOK, v, err)
}

func (h *CheckoutHandler) AdvanceToItems(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	v, err := h.svc.AdvanceToItems(r.Context(), brand, id)
	h.respond(w, "advance to items", http.StatusOK, v, err)
}

var stepNames = map[string]service.Step{
	"customer": service.StepCustomer,
	"items":    service.StepItems,
	"review":   service.StepReview,
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req backRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	step, known := stepNames[req.Step]
	if !known {
		writeMessage(w, http.StatusBadRequest, "step must be customer, items or review")
		return
	}
	v, err := h.svc.Back(r.Context(), brand, id, step)
	h.respond(w, "step back", http.StatusOK, v, err)
}

func (h *CheckoutHandler) AddGarment(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req garmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.AddGarment(r.Context(), brand, id, req.input())
	h.respond(w, "add garment", http.StatusOK, v, err)
}

func (h *CheckoutHandler) UpdateGarment(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	idx, ok := urlIndex(w, r)
	if !ok {
		return
	}
	var req garmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.UpdateGarment(r.Context(), brand, id, idx, req.input())
	h.respond(w, "update garment", http.StatusOK, v, err)
}

func (h *CheckoutHandler) RemoveGarment(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	idx, ok := urlIndex(w, r)
	if !ok {
		return
	}
	v, err := h.svc.RemoveGarment(r.Context(), brand, id, idx)
	h.respond(w, "remove garment", http.StatusOK, v, err)
}

func (h *CheckoutHandler) AddShelfLine(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req shelfRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.AddShelfLine(r.Context(), brand, id, service.ShelfInput{ShelfItemID: req.ShelfItemID, Quantity: req.Quantity})
	h.respond(w, "add shelf line", http.StatusOK, v, err)
}

func (h *CheckoutHandler) UpdateShelfLine(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	idx, ok := urlIndex(w, r)
	if !ok {
		return
	}
	var req shelfRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.UpdateShelfLine(r.Context(), brand, id, idx, service.ShelfInput{ShelfItemID: req.ShelfItemID, Quantity: req.Quantity})
	h.respond(w, "update shelf line", http.StatusOK, v, err)
}

func (h *CheckoutHandler) RemoveShelfLine(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	idx, ok := urlIndex(w, r)
	if !ok {
		return
	}
	v, err := h.svc.RemoveShelfLine(r.Context(), brand, id, idx)
	h.respond(w, "remove shelf line", http.StatusOK, v, err)
}

func (h *CheckoutHandler) AdvanceToReview(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	v, err := h.svc.AdvanceToReview(r.Context(), brand, id)
	h.respond(w, "advance to review", http.StatusOK, v, err)
}

func (h *CheckoutHandler) SetFulfilment(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req fulfilmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.SetFulfilment(r.Context(), brand, id, service.FulfilmentInput{
		HomeDelivery: req.HomeDelivery,
		Express:      req.Express,
		DeliveryDate: req.DeliveryDate,
		Notes:        req.Notes,
	})
	h.respond(w, "set fulfilment", http.StatusOK, v, err)
}

func (h *CheckoutHandler) SetStitchingBase(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.SetStitchingBase(r.Context(), brand, id, req.Value)
	h.respond(w, "set stitching base", http.StatusOK, v, err)
}

func (h *CheckoutHandler) SetDiscountType(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req discountTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.SetDiscountType(r.Context(), brand, id, req.Type)
	h.respond(w, "set discount type", http.StatusOK, v, err)
}

func (h *CheckoutHandler) SetDiscountPercentage(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.SetDiscountPercentage(r.Context(), brand, id, req.Value)
	h.respond(w, "set discount percentage", http.StatusOK, v, err)
}

func (h *CheckoutHandler) SetDiscountValue(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.SetDiscountValue(r.Context(), brand, id, req.Value)
	h.respond(w, "set discount value", http.StatusOK, v, err)
}

func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.SetPayment(r.Context(), brand, id, service.PaymentInput{PaymentType: req.PaymentType, Paid: req.Paid})
	h.respond(w, "set payment", http.StatusOK, v, err)
}

// Submit handles POST /checkout/{sid}/submit. An empty body is accepted.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.Submit(r.Context(), brand, id, req.ConfirmZeroPayment)
	h.respond(w, "submit checkout", http.StatusOK, v, err)
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	brand, id, ok := h.session(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Cancel(r.Context(), brand, id)
	h.respond(w, "cancel checkout", http.StatusOK, v, err)
}
