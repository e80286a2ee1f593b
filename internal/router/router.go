package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tailor-pos/api/internal/config"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/handler"
	mw "github.com/tailor-pos/api/internal/middleware"
	"github.com/tailor-pos/api/internal/service"
	"github.com/tailor-pos/api/internal/ws"
	"go.uber.org/zap"
)

// Deps are the long-lived components the routes are served by.
type Deps struct {
	Queries  *database.Queries
	Pool     *pgxpool.Pool
	Hub      *ws.Hub
	Checkout *service.Orchestrator
	Settler  *service.Settler
	Cache    *service.StockCache
	Log      *zap.Logger
}

// New creates a Chi router with all application routes wired up.
// Every route except /health and /ws requires a session token and is scoped
// to the token's brand.
func New(cfg *config.Config, d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, cfg.JWTSecret, w, r)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireBrand(cfg.DefaultBrand))

		checkoutHandler := handler.NewCheckoutHandler(d.Checkout, d.Log)
		r.Route("/checkout", checkoutHandler.RegisterRoutes)

		orderHandler := handler.NewOrderHandler(
			d.Queries,
			d.Pool,
			func(db database.DBTX) handler.OrderStore {
				return database.New(db)
			},
			d.Hub,
			d.Log,
		)
		r.Route("/orders", orderHandler.RegisterRoutes)

		customerHandler := handler.NewCustomerHandler(d.Queries, d.Log)
		r.Route("/customers", customerHandler.RegisterRoutes)

		inventoryHandler := handler.NewInventoryHandler(d.Queries, d.Settler, d.Cache, d.Log)
		r.Route("/inventory", inventoryHandler.RegisterRoutes)

		catalogHandler := handler.NewCatalogHandler(d.Queries, d.Log)
		catalogHandler.RegisterRoutes(r)

		priceHandler := handler.NewPriceHandler(d.Queries, d.Log)
		r.Route("/prices", func(r chi.Router) {
			priceHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleOwner, enum.RoleManager))
				priceHandler.RegisterAdminRoutes(r)
			})
		})
	})

	d.Log.Info("router initialized")
	return r
}
