package router

import (
	"net/http"

	"github.com/dkochetov/storefront/internal/cart"
	"github.com/dkochetov/storefront/internal/logger"
	"github.com/dkochetov/storefront/internal/middleware"
	"github.com/dkochetov/storefront/internal/order"
	"github.com/dkochetov/storefront/internal/product"
	"github.com/dkochetov/storefront/internal/user"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	userH *user.Handler,
	productH *product.Handler,
	cartH *cart.Handler,
	orderH *order.Handler,
	jwtSecret []byte,
	userRepo user.UserRepository,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)

	r.Use(middleware.GzipHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"OK"}`))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userH.Register)
			r.Post("/login", userH.Login)
		})

		r.Get("/products", productH.List)
		r.Get("/products/{id}", productH.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware(jwtSecret, userRepo))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartH.List)
				r.Post("/add", cartH.Add)
				r.Put("/{id}", cartH.Update)
				r.Delete("/{id}", cartH.Remove)
			})

			r.Post("/orders", orderH.CreateOrder)
			r.Get("/orders/my-orders", orderH.ListMyOrders)
			r.Get("/orders/{id}", orderH.GetOrder)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Get("/orders/admin/all", orderH.ListAllOrders)
				r.Put("/orders/admin/{id}/status", orderH.UpdateStatus)

				r.Route("/admin/products", func(r chi.Router) {
					r.Get("/", productH.List)
					r.Post("/", productH.Create)
					r.Put("/{id}", productH.Update)
					r.Delete("/{id}", productH.Delete)
				})
			})
		})
	})

	return r
}
