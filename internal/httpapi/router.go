// Package httpapi exposes the storefront over JSON REST.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"homefoods-be/internal/auth"
	"homefoods-be/internal/cart"
	"homefoods-be/internal/chat"
	"homefoods-be/internal/customer"
	"homefoods-be/internal/i18n"
	"homefoods-be/internal/logger"
	"homefoods-be/internal/metrics"
	"homefoods-be/internal/middleware"
	"homefoods-be/internal/order"
	"homefoods-be/internal/product"
	"homefoods-be/internal/review"
	"homefoods-be/internal/store"
	"homefoods-be/internal/transport"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 60 * time.Second

// Chatter is satisfied by *chat.Client.
type Chatter interface {
	Reply(ctx context.Context, conversation []chat.Message) (string, error)
}

type Deps struct {
	Orders    order.Service
	Customers customer.Service
	Carts     cart.Service
	Products  product.Service
	Reviews   review.Service
	Chat      Chatter
	Store     store.Store
	// Metrics should be the set handed to the order service; nil reports zeros.
	Metrics *metrics.Checkout

	Sessions *auth.Sessions
	Admin    *auth.AdminChecker
	Limiter  *middleware.RateLimiter
	// Webhook receives signed provider events; nil leaves the route unmounted.
	Webhook    http.Handler
	CORSOrigin string
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

type api struct {
	Deps
}

func NewRouter(deps Deps) (http.Handler, error) {
	switch {
	case deps.Orders == nil, deps.Customers == nil, deps.Carts == nil,
		deps.Products == nil, deps.Reviews == nil, deps.Store == nil:
		return nil, errors.New("httpapi: every service is required")
	case deps.Sessions == nil || deps.Admin == nil:
		return nil, errors.New("httpapi: sessions and admin checker are required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewCheckout()
	}
	h := &api{Deps: deps}

	r := chi.NewRouter()
	r.Use(
		logger.RequestIDMiddleware,
		logger.LoggingMiddleware,
		chimw.Recoverer,
		chimw.Timeout(requestTimeout),
		i18n.Middleware,
		middleware.CORS(deps.CORSOrigin),
	)
	if deps.Limiter != nil {
		r.Use(deps.Limiter.Handler)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		transport.WriteError(w, http.StatusNotFound, i18n.T(i18n.FromCtx(req.Context()), i18n.NotFound), nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		transport.WriteError(w, http.StatusMethodNotAllowed, i18n.T(i18n.FromCtx(req.Context()), i18n.InvalidRequest), nil)
	})

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Sessions))
			h.customerRoutes(r)
		})

		// Admin callers may send the secret as a bearer token, so no session parsing here.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Admin))

			r.Get("/orders", h.adminListOrders)
			r.Patch("/orders/{id}/status", h.adminUpdateOrderStatus)

			r.Get("/reviews", h.listReviews)
			r.Patch("/reviews/{id}/verify", h.adminVerifyReview)
			r.Delete("/reviews/{id}", h.adminDeleteReview)

			r.Get("/products", h.adminListProducts)
			r.Post("/products", h.adminCreateProduct)
			r.Put("/products/{id}", h.adminUpdateProduct)
			r.Delete("/products/{id}", h.adminDeleteProduct)

			r.Post("/db", h.adminDB)
			r.Get("/metrics", h.adminMetrics)
		})
	})

	return r, nil
}

func (h *api) customerRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.placeOrder)
		r.Get("/{id}", h.getOrder)
		r.Post("/{id}/payment", h.startPayment)
		r.Post("/{id}/payment/success", h.paymentSuccess)
		r.Post("/{id}/payment/failure", h.paymentFailure)
		r.Post("/{id}/payment/simulate", h.simulatePayment)
	})
	if h.Webhook != nil {
		r.Method(http.MethodPost, "/payments/webhook", h.Webhook)
	}

	r.Post("/customers/signup", h.signup)
	r.Post("/customers/login", h.login)
	r.Post("/customers/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/me", h.profile)
		r.Put("/me", h.updateProfile)
		r.Get("/me/orders", h.myOrders)
		r.Get("/me/cart", h.getCart)
		r.Put("/me/cart", h.syncCart)
	})

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/categories", h.categories)

	r.Post("/reviews", h.createReview)
	r.Get("/reviews", h.listReviews)
	r.Get("/reviews/stats", h.reviewStats)

	r.Post("/chat", h.chat)
}

func (h *api) health(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
