package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/threadkart/threadkart-backend/api/controllers"
	"github.com/threadkart/threadkart-backend/api/middleware"
	cartsvc "github.com/threadkart/threadkart-backend/internal/cart"
	checkoutsvc "github.com/threadkart/threadkart-backend/internal/checkout"
	"github.com/threadkart/threadkart-backend/internal/fulfillment"
	orderssvc "github.com/threadkart/threadkart-backend/internal/orders"
	paymentssvc "github.com/threadkart/threadkart-backend/internal/payments"
	"github.com/threadkart/threadkart-backend/pkg/config"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	"github.com/threadkart/threadkart-backend/pkg/logger"
	"github.com/threadkart/threadkart-backend/pkg/redis"
)

// Services bundles the domain services the router dispatches to.
type Services struct {
	Cart        cartsvc.Service
	Checkout    checkoutsvc.Service
	Orders      orderssvc.Service
	Fulfillment fulfillment.Service
	Payments    paymentssvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	healthDeps map[string]controllers.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	checkoutPolicy := middleware.RateLimitPolicy{
		Scope:  "checkout",
		Window: cfg.RateLimit.CheckoutWindow,
		Limit:  cfg.RateLimit.CheckoutLimit,
	}

	var limiter middleware.FixedWindowStore
	if redisClient != nil {
		limiter = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleBuyer, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartList(svcs.Cart, logg))
				r.Post("/", controllers.CartAdd(svcs.Cart, logg))
				r.Put("/{lineId}", controllers.CartUpdate(svcs.Cart, logg))
				r.Delete("/{lineId}", controllers.CartRemove(svcs.Cart, logg))
			})

			r.With(middleware.RateLimit(checkoutPolicy, limiter, logg)).
				Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(svcs.Orders, logg))
				r.Get("/{orderId}", controllers.OrderGet(svcs.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
				r.Post("/{orderId}/reorder", controllers.OrderReorder(svcs.Orders, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/confirm", controllers.PaymentConfirm(svcs.Payments, logg))
				r.Post("/fail", controllers.PaymentFail(svcs.Payments, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleSeller, logg))

			r.Route("/seller", func(r chi.Router) {
				r.Get("/orders", controllers.SellerOrdersList(svcs.Orders, logg))
				r.Get("/orders/{sellerOrderId}", controllers.SellerOrderGet(svcs.Orders, logg))
				r.Patch("/items/{itemId}/status", controllers.SellerItemStatusUpdate(svcs.Fulfillment, logg))
			})
		})
	})

	return r
}

func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
