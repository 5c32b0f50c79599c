package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmartins/retail-pos/api/controllers"
	"github.com/lmartins/retail-pos/api/middleware"
	"github.com/lmartins/retail-pos/internal/catalog"
	"github.com/lmartins/retail-pos/internal/checkout"
	"github.com/lmartins/retail-pos/internal/customers"
	"github.com/lmartins/retail-pos/internal/financial"
	"github.com/lmartins/retail-pos/internal/sales"
	"github.com/lmartins/retail-pos/pkg/config"
	"github.com/lmartins/retail-pos/pkg/db"
	"github.com/lmartins/retail-pos/pkg/logger"
	"github.com/lmartins/retail-pos/pkg/redis"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Catalog   *catalog.Service
	Customers *customers.Service
	Financial *financial.Service
	Sales     *sales.Service
	Checkout  *checkout.Service
}

// NewRouter wires every route of the API. redisClient may be nil; the
// response-replay middleware is only mounted when the cache is configured,
// checkout idempotency itself is enforced at the database.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	replay := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		replay = middleware.Idempotency(redisClient, logg)
	}

	var redisP db.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(svcs.Catalog, logg))
		r.Post("/", controllers.CreateProduct(svcs.Catalog, logg))
		r.Patch("/{id}", controllers.SetProductStock(svcs.Catalog, logg))
	})
	r.Post("/update-quantity", controllers.AdjustProductQuantity(svcs.Catalog, logg))

	r.Route("/brands", func(r chi.Router) {
		r.Get("/", controllers.ListBrands(svcs.Catalog, logg))
		r.Post("/", controllers.CreateBrand(svcs.Catalog, logg))
		r.Put("/{id}", controllers.UpdateBrand(svcs.Catalog, logg))
		r.Delete("/{id}", controllers.DeleteBrand(svcs.Catalog, logg))
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", controllers.ListCustomers(svcs.Customers, logg))
		r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
		r.Put("/{id}", controllers.UpdateCustomer(svcs.Customers, logg))
		r.Delete("/{id}", controllers.DeleteCustomer(svcs.Customers, logg))
	})

	// Legacy Portuguese paths the register frontend calls.
	r.Route("/clientes/{id}/historico", func(r chi.Router) {
		r.Get("/", controllers.GetPurchaseHistory(svcs.Customers, logg))
		r.Post("/", controllers.AppendPurchaseHistory(svcs.Customers, logg))
	})

	r.With(replay).Post("/vendas", controllers.FinalizeSale(svcs.Checkout, logg))
	r.Get("/sales/today", controllers.ListTodaySales(svcs.Sales, logg))

	r.Route("/financial", func(r chi.Router) {
		r.Get("/", controllers.ListFinancialRecords(svcs.Financial, logg))
		r.With(replay).Post("/", controllers.CreateFinancialRecord(svcs.Financial, logg))
		r.Get("/summary", controllers.FinancialSummary(svcs.Financial, logg))
		r.Put("/{id}", controllers.UpdateFinancialRecord(svcs.Financial, logg))
		r.Delete("/{id}", controllers.DeleteFinancialRecord(svcs.Financial, logg))
	})

	// The original dashboard read its sales feed from this alias.
	r.Get("/api/sales", controllers.ListFinancialRecords(svcs.Financial, logg))

	return r
}
