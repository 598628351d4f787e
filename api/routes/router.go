package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swiftcart-dev/swiftcart-backend/api/controllers"
	"github.com/swiftcart-dev/swiftcart-backend/api/middleware"
	internalbackorders "github.com/swiftcart-dev/swiftcart-backend/internal/backorders"
	cartsvc "github.com/swiftcart-dev/swiftcart-backend/internal/cart"
	checkoutsvc "github.com/swiftcart-dev/swiftcart-backend/internal/checkout"
	internalorders "github.com/swiftcart-dev/swiftcart-backend/internal/orders"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/config"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
	pkgredis "github.com/swiftcart-dev/swiftcart-backend/pkg/redis"
)

// Deps carries every service the router mounts. Redis may be nil in tests;
// idempotency replay is skipped without it.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       db.Pinger
	Redis          *pkgredis.Client
	CartStore      cartsvc.Store
	Checkout       checkoutsvc.Service
	OrdersRepo     internalorders.Repository
	BackordersRepo internalbackorders.Repository
	MetricsHTTP    http.Handler
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DBPinger, redisPinger(deps.Redis)))
	})

	if deps.MetricsHTTP != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Logger))
		r.Use(middleware.Idempotency(idempotencyStore(deps.Redis), deps.Logger))

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartStore, deps.Logger))
			r.Post("/", controllers.CartAdd(deps.CartStore, deps.Logger))
			r.Delete("/", controllers.CartClear(deps.CartStore, deps.Logger))
			r.Delete("/{lineId}", controllers.CartRemoveLine(deps.CartStore, deps.Logger))
		})

		r.Get("/v1/backorders", controllers.BackorderList(deps.BackordersRepo, deps.Logger))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrdersRepo, deps.Logger))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersRepo, deps.Logger))
		})

		r.Post("/v1/checkout", controllers.Checkout(deps.Checkout, deps.Logger))
		r.Post("/v1/checkout/coupon", controllers.ApplyCoupon(deps.Checkout, deps.Logger))
	})

	return r
}

// typed-nil guards: a nil *Client stored in an interface still answers calls.

func redisPinger(client *pkgredis.Client) pkgredis.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
