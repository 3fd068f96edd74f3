// Package routes wires the HTTP surface onto the router.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/response"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/ws"
)

// Controllers groups everything Register mounts.
type Controllers struct {
	Auth    *controllers.AuthController
	Product *controllers.ProductController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Admin   *controllers.AdminController
	Hub     *ws.Hub
}

// Register mounts the full API surface. Callers add global middleware
// before calling this.
func Register(r *router.Router, c Controllers) {
	api := r.Group("/api")

	api.Post("/register", "auth.register", c.Auth.Register)
	api.Post("/login", "auth.login", c.Auth.Login)

	api.Get("/products", "products.index", c.Product.Index)
	api.Get("/products/{id}", "products.show", c.Product.Show)

	authed := api.Group("", middleware.Auth)
	authed.Post("/products", "products.store", c.Product.Store, middleware.RequireRole(models.RoleSeller))
	authed.Get("/products/mine", "products.mine", c.Product.Mine, middleware.RequireRole(models.RoleSeller))
	authed.Post("/products/{id}/image", "products.image", c.Product.UploadImage, middleware.RequireRole(models.RoleSeller))

	authed.Get("/cart", "cart.index", c.Cart.Index)
	authed.Post("/cart", "cart.add", c.Cart.Add)
	authed.Delete("/cart/{productID}", "cart.remove", c.Cart.Remove)
	authed.Post("/cart/checkout", "cart.checkout", c.Cart.Checkout)

	authed.Get("/orders", "orders.index", c.Order.Index)
	authed.Post("/products/{id}/order", "orders.place", c.Order.Place)
	authed.Patch("/orders/{id}/status", "orders.status", c.Order.UpdateStatus)

	authed.Get("/admin/failed-jobs", "admin.failed_jobs", c.Admin.FailedJobs, middleware.RequireRole(models.RoleSeller))

	if c.Hub != nil {
		r.Get("/ws/orders", "ws.orders", c.Hub.Upgrade)
	}

	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "ok")
	})
	r.HandleFunc("/metrics", metrics.Handler())
}
