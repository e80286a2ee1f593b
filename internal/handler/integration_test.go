//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tailor-pos/api/internal/auth"
	"github.com/tailor-pos/api/internal/config"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/invoice"
	"github.com/tailor-pos/api/internal/notify"
	"github.com/tailor-pos/api/internal/pricing"
	"github.com/tailor-pos/api/internal/router"
	"github.com/tailor-pos/api/internal/service"
	"github.com/tailor-pos/api/internal/ws"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// TestIntegrationFlow takes a work order and a sales order through checkout
// against a real PostgreSQL database with every handler wired through the
// router.
func TestIntegrationFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	// Path relative to this package directory; go test runs from there.
	require.NoError(t, database.Migrate(connStr, "../../migrations"))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	log := zap.NewNop()
	cfg := &config.Config{
		Port:        "8081",
		DatabaseURL: connStr,
		JWTSecret:   "integration-test-secret",
	}
	queries := database.New(pool)
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	notifiers := notify.Multi{hub}
	poller := invoice.New(queries, notifiers, 200*time.Millisecond, 10, log)
	poller.Run()
	defer poller.Shutdown(context.Background())

	cache := service.NewStockCache(time.Minute)
	orchestrator := service.NewOrchestrator(
		pool,
		queries,
		func(db database.DBTX) service.CheckoutStore { return database.New(db) },
		service.NewSessions(),
		cache,
		poller,
		notifiers,
		log,
	)
	settler := service.NewSettler(queries, cache, 2, log)

	server := httptest.NewServer(router.New(cfg, router.Deps{
		Queries:  queries,
		Pool:     pool,
		Hub:      hub,
		Checkout: orchestrator,
		Settler:  settler,
		Cache:    cache,
		Log:      log,
	}))
	defer server.Close()

	const brand = "ERTH"
	token, err := auth.GenerateToken(cfg.JWTSecret, uuid.New(), brand, enum.RoleManager, time.Hour)
	require.NoError(t, err)

	// --- Seed prices and stock (no handler creates fabrics) ---
	seedPrices(t, ctx, pool)
	fabricID := insertID(t, ctx, pool,
		`INSERT INTO fabrics (brand, name, stock_length, price_per_meter) VALUES ($1, 'White cotton', 10, 4) RETURNING id`, brand)
	shelfID := insertID(t, ctx, pool,
		`INSERT INTO shelf_items (brand, product_type, brand_name, stock, unit_price) VALUES ($1, 'ghutra', 'Shimagh', 5, 6) RETURNING id`, brand)

	// --- Customer ---
	customer := httpJSON(t, server, http.MethodPost, "/customers",
		map[string]interface{}{"name": "Fahad", "phone": "99887766"}, token)
	customerID := customer["id"].(string)

	// --- Work order ---
	work := httpJSON(t, server, http.MethodPost, "/checkout", map[string]interface{}{"order_type": enum.OrderTypeWork}, token)
	sid := work["id"].(string)
	base := "/checkout/" + sid

	httpJSON(t, server, http.MethodPost, base+"/customer", map[string]interface{}{"customer_id": customerID}, token)
	httpJSON(t, server, http.MethodPost, base+"/items", nil, token)
	state := httpJSON(t, server, http.MethodPost, base+"/garments", map[string]interface{}{
		"fabric_source": enum.FabricSourceInternal,
		"fabric_id":     fabricID,
		"fabric_length": "3",
		"style":         enum.StyleKuwaiti,
		"collar_type":   pricing.CollarJapanese,
		"quantity":      1,
	}, token)
	garments := state["garments"].([]interface{})
	require.Len(t, garments, 1)
	assert.Equal(t, "12", garments[0].(map[string]interface{})["fabric_price"], "3 m at 4 per meter")

	httpJSON(t, server, http.MethodPost, base+"/review", nil, token)
	httpJSON(t, server, http.MethodPut, base+"/payment",
		map[string]interface{}{"payment_type": enum.PaymentTypeCash, "paid": "10"}, token)
	done := httpJSON(t, server, http.MethodPost, base+"/submit", map[string]interface{}{}, token)

	assert.Equal(t, "confirmed", done["checkout_status"])
	assert.Equal(t, "done", done["step"])
	assert.NotNil(t, done["invoice_number"])
	orderID := done["order_id"].(string)

	fabrics := httpList(t, server, "/inventory/fabrics", token)
	require.Len(t, fabrics, 1)
	assert.Equal(t, "7", fabrics[0].(map[string]interface{})["stock_length"])

	order := httpJSON(t, server, http.MethodGet, "/orders/"+orderID, nil, token)
	assert.Equal(t, "order_at_shop", order["production_stage"])
	assert.Equal(t, "10", order["paid"])

	moved := httpJSON(t, server, http.MethodPatch, "/orders/"+orderID+"/production-stage",
		map[string]interface{}{"action": "dispatch"}, token)
	assert.Equal(t, "sent_to_workshop", moved["production_stage"])

	order = httpJSON(t, server, http.MethodGet, "/orders/"+orderID, nil, token)
	piece := order["garments"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "in_transit", piece["piece_stage"])

	// --- Sales order with zero payment ---
	sale := httpJSON(t, server, http.MethodPost, "/checkout", map[string]interface{}{"order_type": enum.OrderTypeSales}, token)
	base = "/checkout/" + sale["id"].(string)

	httpJSON(t, server, http.MethodPost, base+"/customer", map[string]interface{}{"customer_id": customerID}, token)
	httpJSON(t, server, http.MethodPost, base+"/items", nil, token)
	httpJSON(t, server, http.MethodPost, base+"/shelf",
		map[string]interface{}{"shelf_item_id": shelfID, "quantity": 2}, token)
	httpJSON(t, server, http.MethodPost, base+"/review", nil, token)

	status, _ := httpDo(t, server, http.MethodPost, base+"/submit", nil, token)
	assert.Equal(t, http.StatusConflict, status, "zero payment needs confirmation")

	done = httpJSON(t, server, http.MethodPost, base+"/submit",
		map[string]interface{}{"confirm_zero_payment": true}, token)
	assert.Equal(t, "confirmed", done["checkout_status"])

	shelf := httpList(t, server, "/inventory/shelf", token)
	require.Len(t, shelf, 1)
	assert.Equal(t, float64(3), shelf[0].(map[string]interface{})["stock"])

	// --- Another brand sees nothing ---
	other, err := auth.GenerateToken(cfg.JWTSecret, uuid.New(), "QASS", enum.RoleManager, time.Hour)
	require.NoError(t, err)
	status, _ = httpDo(t, server, http.MethodGet, "/orders/"+orderID, nil, other)
	assert.Equal(t, http.StatusNotFound, status)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tailor_test"),
		tcpostgres.WithUsername("tailor"),
		tcpostgres.WithPassword("tailor"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func seedPrices(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	prices := map[pricing.PriceKey]string{
		pricing.KeyStitchingStandard: "9",
		pricing.KeyStitchingDesign:   "12",
		pricing.KeyHomeDelivery:      "2",
		pricing.KeyExpress:           "3",
		pricing.CollarJapanese:       "1.5",
	}
	for key, value := range prices {
		if _, err := pool.Exec(ctx, `INSERT INTO prices (key, value) VALUES ($1, $2)`, string(key), value); err != nil {
			t.Fatalf("seed price %s: %v", key, err)
		}
	}
}

func insertID(t *testing.T, ctx context.Context, pool *pgxpool.Pool, sql string, args ...interface{}) string {
	t.Helper()
	var id uuid.UUID
	if err := pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return id.String()
}

// --- HTTP helpers ---

func httpDo(t *testing.T, server *httptest.Server, method, path string, body map[string]interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}

	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

// httpJSON performs the request, fails on a non-2xx status and returns the
// data object of the envelope.
func httpJSON(t *testing.T, server *httptest.Server, method, path string, body map[string]interface{}, token string) map[string]interface{} {
	t.Helper()
	status, result := httpDo(t, server, method, path, body, token)
	if status < 200 || status >= 300 {
		t.Fatalf("%s %s: status %d, body: %v", method, path, status, result)
	}
	data, _ := result["data"].(map[string]interface{})
	return data
}

func httpList(t *testing.T, server *httptest.Server, path, token string) []interface{} {
	t.Helper()
	status, result := httpDo(t, server, http.MethodGet, path, nil, token)
	if status != http.StatusOK {
		t.Fatalf("GET %s: status %d, body: %v", path, status, result)
	}
	items, _ := result["data"].([]interface{})
	return items
}
