package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spasojewagner/tehnotrade-api/internal/auth"
	"github.com/spasojewagner/tehnotrade-api/internal/cart"
	"github.com/spasojewagner/tehnotrade-api/internal/catalog"
	"github.com/spasojewagner/tehnotrade-api/internal/metrics"
	"github.com/spasojewagner/tehnotrade-api/internal/order"
	"github.com/spasojewagner/tehnotrade-api/internal/user"
)

type RouterDeps struct {
	Carts    cart.Service
	Orders   order.Service
	Catalog  catalog.Service
	Users    user.Service
	Sessions auth.Service
	Metrics  *metrics.ServerMetrics
}

func NewRouter(deps RouterDeps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	router.Handle("/metrics", metrics.Handler())

	mw := auth.NewMiddleware(deps.Sessions, deps.Users)

	cartHandler := NewCartHandler(deps.Carts)
	orderHandler := NewOrderHandler(deps.Orders)
	productHandler := NewProductHandler(deps.Catalog)
	authHandler := NewAuthHandler(deps.Users, deps.Sessions)

	router.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			authed := r.With(mw.Authenticate)
			authHandler.RegisterRoutes(r, authed)
		})

		api.Route("/products", func(r chi.Router) {
			productHandler.RegisterRoutes(r, mw)
		})

		api.Route("/cart", func(r chi.Router) {
			r.Use(mw.Authenticate)
			cartHandler.RegisterRoutes(r)
		})

		api.Route("/orders", func(r chi.Router) {
			r.Use(mw.Authenticate)
			orderHandler.RegisterRoutes(r, mw)
		})
	})

	return router
}
