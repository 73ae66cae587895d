package handler

import (
	"catalog_api/internal/api/middleware"

	"github.com/go-chi/chi/v5"
)

// AdminProductHandler exposes product mutations to authenticated admins.
// It shares the public handler's service calls rather than re-routing.
type AdminProductHandler struct {
	products *ProductHandler
}

func NewAdminProductHandler(products *ProductHandler) *AdminProductHandler {
	return &AdminProductHandler{products: products}
}

func (h *AdminProductHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.products.createProduct)
		adminRouter.Patch("/{id}", h.products.updateProduct)
		adminRouter.Delete("/{id}", h.products.deleteProduct)
	})
}
