package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/handler"
	"github.com/tailor-pos/api/internal/lifecycle"
	"github.com/tailor-pos/api/internal/ws"
	"go.uber.org/zap"
)

// --- Mock store ---

type mockOrderStore struct {
	getOrderFn       func(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	listOrdersFn     func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, int64, error)
	listGarmentsFn   func(ctx context.Context, orderID uuid.UUID) ([]database.Garment, error)
	listShelfLinesFn func(ctx context.Context, orderID uuid.UUID) ([]database.OrderShelfLine, error)
	updateStageFn    func(ctx context.Context, arg database.UpdateProductionStageParams) (database.Order, error)
	updatePieceFn    func(ctx context.Context, arg database.UpdatePieceStageParams) (database.Garment, error)
	cancelDraftFn    func(ctx context.Context, arg database.CancelDraftOrderParams) (database.Order, error)
}

func (m *mockOrderStore) GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	return m.getOrderFn(ctx, arg)
}
func (m *mockOrderStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, int64, error) {
	return m.listOrdersFn(ctx, arg)
}
func (m *mockOrderStore) ListGarmentsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Garment, error) {
	if m.listGarmentsFn == nil {
		return nil, nil
	}
	return m.listGarmentsFn(ctx, orderID)
}
func (m *mockOrderStore) ListOrderShelfLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderShelfLine, error) {
	if m.listShelfLinesFn == nil {
		return nil, nil
	}
	return m.listShelfLinesFn(ctx, orderID)
}
func (m *mockOrderStore) UpdateProductionStage(ctx context.Context, arg database.UpdateProductionStageParams) (database.Order, error) {
	return m.updateStageFn(ctx, arg)
}
func (m *mockOrderStore) UpdatePieceStage(ctx context.Context, arg database.UpdatePieceStageParams) (database.Garment, error) {
	return m.updatePieceFn(ctx, arg)
}
func (m *mockOrderStore) CancelDraftOrder(ctx context.Context, arg database.CancelDraftOrderParams) (database.Order, error) {
	return m.cancelDraftFn(ctx, arg)
}

func mockNewStore(store handler.OrderStore) func(db database.DBTX) handler.OrderStore {
	return func(db database.DBTX) handler.OrderStore { return store }
}

type recordedStages struct {
	changes []ws.StageChange
}

func (r *recordedStages) OrderStageChanged(brand string, change ws.StageChange) {
	r.changes = append(r.changes, change)
}

func setupOrderRouter(store handler.OrderStore, pool *mockPool, stages handler.StageNotifier) http.Handler {
	h := handler.NewOrderHandler(store, pool, mockNewStore(store), stages, zap.NewNop())
	return authedRouter("/orders", h.RegisterRoutes)
}

func num(s string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(s)
	return n
}

func workOrder(id uuid.UUID, stage lifecycle.ProductionStage) database.Order {
	return database.Order{
		ID:              id,
		Brand:           testBrand,
		OrderType:       enum.OrderTypeWork,
		CheckoutStatus:  enum.CheckoutStatusConfirmed,
		ProductionStage: pgtype.Text{String: string(stage), Valid: true},
		CustomerID:      uuid.New(),
		OrderDate:       time.Now(),
		OrderTotal:      num("150"),
		Paid:            num("100"),
		InvoiceNumber:   pgtype.Int4{Int32: 42, Valid: true},
	}
}

func garment(orderID uuid.UUID, piece lifecycle.PieceStage) database.Garment {
	return database.Garment{
		ID:           uuid.New(),
		OrderID:      orderID,
		FabricSource: enum.FabricSourceExternal,
		Style:        enum.StyleKuwaiti,
		Quantity:     1,
		PieceStage:   string(piece),
	}
}

// --- Tests ---

func TestOrderList_FiltersAndCount(t *testing.T) {
	customerID := uuid.New()
	var got database.ListOrdersParams
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, int64, error) {
			got = arg
			return []database.Order{workOrder(uuid.New(), lifecycle.StageOrderAtShop)}, 7, nil
		},
	}
	router := setupOrderRouter(store, &mockPool{}, nil)
	rr := doRequest(t, router, http.MethodGet,
		"/orders?status=confirmed&order_type=WORK&customer_id="+customerID.String()+"&start_date=2026-01-01&end_date=2026-01-31&limit=500",
		nil, enum.RoleCashier)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Brand != testBrand || got.CheckoutStatus != "confirmed" || got.OrderType != enum.OrderTypeWork {
		t.Errorf("unexpected filters: %+v", got)
	}
	if !got.CustomerID.Valid || got.CustomerID.UUID != customerID {
		t.Errorf("customer filter = %+v", got.CustomerID)
	}
	if got.Limit != 200 {
		t.Errorf("limit = %d, want capped 200", got.Limit)
	}
	if want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC); !got.EndDate.Time.Equal(want) {
		t.Errorf("end date = %v, want exclusive %v", got.EndDate.Time, want)
	}
	body := decodeBody(t, rr)
	if body["count"] != float64(7) {
		t.Errorf("count = %v", body["count"])
	}
	order := body["data"].([]interface{})[0].(map[string]interface{})
	if order["balance"] != "50" {
		t.Errorf("balance = %v, want 50", order["balance"])
	}
	if next := order["next_stages"].([]interface{}); len(next) != 1 || next[0] != "sent_to_workshop" {
		t.Errorf("next_stages = %v", next)
	}
}

func TestOrderList_InvalidDate(t *testing.T) {
	router := setupOrderRouter(&mockOrderStore{}, &mockPool{}, nil)
	rr := doRequest(t, router, http.MethodGet, "/orders?start_date=01-02-2026", nil, enum.RoleCashier)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return database.Order{}, pgx.ErrNoRows
		},
	}
	rr := doRequest(t, setupOrderRouter(store, &mockPool{}, nil), http.MethodGet, "/orders/"+uuid.NewString(), nil, enum.RoleCashier)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestOrderGet_WithLines(t *testing.T) {
	orderID := uuid.New()
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return workOrder(orderID, lifecycle.StageOrderAtShop), nil
		},
		listGarmentsFn: func(ctx context.Context, id uuid.UUID) ([]database.Garment, error) {
			return []database.Garment{garment(orderID, lifecycle.PieceAtShop)}, nil
		},
	}
	rr := doRequest(t, setupOrderRouter(store, &mockPool{}, nil), http.MethodGet, "/orders/"+orderID.String(), nil, enum.RoleCashier)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	data := dataOf(t, rr)
	if data["invoice_number"] != float64(42) {
		t.Errorf("invoice_number = %v", data["invoice_number"])
	}
	if garments := data["garments"].([]interface{}); len(garments) != 1 {
		t.Errorf("expected 1 garment, got %d", len(garments))
	}
}

func TestOrderCancel_ConfirmedIsDenied(t *testing.T) {
	store := &mockOrderStore{
		cancelDraftFn: func(ctx context.Context, arg database.CancelDraftOrderParams) (database.Order, error) {
			return database.Order{}, pgx.ErrNoRows
		},
	}
	rr := doRequest(t, setupOrderRouter(store, &mockPool{}, nil), http.MethodPost, "/orders/"+uuid.NewString()+"/cancel", nil, enum.RoleCashier)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestUpdateProductionStage_DispatchMovesPieces(t *testing.T) {
	orderID := uuid.New()
	atShop := garment(orderID, lifecycle.PieceAtShop)
	var stageArg database.UpdateProductionStageParams
	var pieceArgs []database.UpdatePieceStageParams
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return workOrder(orderID, lifecycle.StageOrderAtShop), nil
		},
		listGarmentsFn: func(ctx context.Context, id uuid.UUID) ([]database.Garment, error) {
			return []database.Garment{atShop}, nil
		},
		updateStageFn: func(ctx context.Context, arg database.UpdateProductionStageParams) (database.Order, error) {
			stageArg = arg
			return workOrder(orderID, lifecycle.ProductionStage(arg.ProductionStage)), nil
		},
		updatePieceFn: func(ctx context.Context, arg database.UpdatePieceStageParams) (database.Garment, error) {
			pieceArgs = append(pieceArgs, arg)
			return database.Garment{}, nil
		},
	}
	tx := &mockTx{}
	pool := &mockPool{beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil }}
	stages := &recordedStages{}

	rr := doRequest(t, setupOrderRouter(store, pool, stages), http.MethodPatch,
		"/orders/"+orderID.String()+"/production-stage", map[string]string{"action": "dispatch"}, enum.RoleTailor)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if stageArg.CurrentStage != string(lifecycle.StageOrderAtShop) || stageArg.ProductionStage != string(lifecycle.StageSentToWorkshop) {
		t.Errorf("unexpected stage update: %+v", stageArg)
	}
	if len(pieceArgs) != 1 || pieceArgs[0].ID != atShop.ID || pieceArgs[0].PieceStage != string(lifecycle.PieceInTransit) {
		t.Errorf("unexpected piece updates: %+v", pieceArgs)
	}
	if !tx.committed {
		t.Error("expected commit")
	}
	if len(stages.changes) != 1 || stages.changes[0].To != string(lifecycle.StageSentToWorkshop) {
		t.Errorf("unexpected notifications: %+v", stages.changes)
	}
}

func TestUpdateProductionStage_ActionNotAvailable(t *testing.T) {
	orderID := uuid.New()
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return workOrder(orderID, lifecycle.StageOrderAtShop), nil
		},
	}
	rr := doRequest(t, setupOrderRouter(store, &mockPool{}, nil), http.MethodPatch,
		"/orders/"+orderID.String()+"/production-stage", map[string]string{"action": "collect"}, enum.RoleTailor)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestUpdateProductionStage_InvalidTargetStage(t *testing.T) {
	orderID := uuid.New()
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return workOrder(orderID, lifecycle.StageOrderAtShop), nil
		},
	}
	rr := doRequest(t, setupOrderRouter(store, &mockPool{}, nil), http.MethodPatch,
		"/orders/"+orderID.String()+"/production-stage", map[string]string{"stage": "order_delivered"}, enum.RoleTailor)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestUpdateProductionStage_SalesOrderRejected(t *testing.T) {
	orderID := uuid.New()
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			o := workOrder(orderID, lifecycle.StageOrderAtShop)
			o.OrderType = enum.OrderTypeSales
			o.ProductionStage = pgtype.Text{}
			return o, nil
		},
	}
	rr := doRequest(t, setupOrderRouter(store, &mockPool{}, nil), http.MethodPatch,
		"/orders/"+orderID.String()+"/production-stage", map[string]string{"action": "dispatch"}, enum.RoleTailor)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestUpdateProductionStage_ConcurrentMove(t *testing.T) {
	orderID := uuid.New()
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return workOrder(orderID, lifecycle.StageOrderAtShop), nil
		},
		updateStageFn: func(ctx context.Context, arg database.UpdateProductionStageParams) (database.Order, error) {
			return database.Order{}, pgx.ErrNoRows
		},
	}
	tx := &mockTx{}
	pool := &mockPool{beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil }}
	stages := &recordedStages{}

	rr := doRequest(t, setupOrderRouter(store, pool, stages), http.MethodPatch,
		"/orders/"+orderID.String()+"/production-stage", map[string]string{"action": "dispatch"}, enum.RoleTailor)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if tx.committed {
		t.Error("expected no commit")
	}
	if len(stages.changes) != 0 {
		t.Error("expected no notification")
	}
}

func TestUpdatePieceStage(t *testing.T) {
	tests := []struct {
		name   string
		stage  lifecycle.ProductionStage
		piece  string
		status int
	}{
		{"workshop piece at own pace", lifecycle.StageOrderAtWorkshop, "sewing", http.StatusOK},
		{"inconsistent with order", lifecycle.StageOrderAtShop, "sewing", http.StatusConflict},
		{"unknown piece stage", lifecycle.StageOrderAtWorkshop, "lost", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderID, garmentID := uuid.New(), uuid.New()
			store := &mockOrderStore{
				getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
					return workOrder(orderID, tt.stage), nil
				},
				updatePieceFn: func(ctx context.Context, arg database.UpdatePieceStageParams) (database.Garment, error) {
					g := garment(orderID, lifecycle.PieceStage(arg.PieceStage))
					g.ID = arg.ID
					return g, nil
				},
			}
			rr := doRequest(t, setupOrderRouter(store, &mockPool{}, nil), http.MethodPatch,
				"/orders/"+orderID.String()+"/garments/"+garmentID.String()+"/piece-stage",
				map[string]string{"piece_stage": tt.piece}, enum.RoleTailor)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUpdatePieceStage_GarmentNotFound(t *testing.T) {
	orderID := uuid.New()
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return workOrder(orderID, lifecycle.StageOrderAtWorkshop), nil
		},
		updatePieceFn: func(ctx context.Context, arg database.UpdatePieceStageParams) (database.Garment, error) {
			return database.Garment{}, pgx.ErrNoRows
		},
	}
	rr := doRequest(t, setupOrderRouter(store, &mockPool{}, nil), http.MethodPatch,
		"/orders/"+orderID.String()+"/garments/"+uuid.NewString()+"/piece-stage",
		map[string]string{"piece_stage": "cutting"}, enum.RoleTailor)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
