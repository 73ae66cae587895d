package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"catalog_api/internal/app/service"
	"catalog_api/internal/app/validator"
	"catalog_api/internal/common"
	"catalog_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// ProductHandler serves the public /products collection.
type ProductHandler struct {
	productService *service.ProductService
	maxUpload      int64
}

func NewProductHandler(ps *service.ProductService, maxUpload int64) *ProductHandler {
	return &ProductHandler{productService: ps, maxUpload: maxUpload}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProducts)
	r.Get("/{id}", h.getProduct)
	r.Post("/", h.createProduct)
	r.Patch("/{id}", h.updateProduct)
	r.Delete("/{id}", h.rejectDelete)
}

func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ProductFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Sort:     q.Get("_sort"),
		Order:    strings.ToLower(q.Get("_order")),
	}
	filter.Page, _ = strconv.Atoi(q.Get("_page"))
	filter.Limit, _ = strconv.Atoi(q.Get("_limit"))
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Sort != "" && !model.ProductSortFields[filter.Sort] {
		common.RespondWithError(w, http.StatusBadRequest, "Unsupported sort field: "+filter.Sort)
		return
	}

	products, total, err := h.productService.ListProducts(r.Context(), filter)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	common.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	body, err := readRequestBody(w, r, h.maxUpload)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	defer body.Close()

	product, err := h.productService.CreateProduct(r.Context(), productInput(body))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	body, err := readRequestBody(w, r, h.maxUpload)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	defer body.Close()

	product, err := h.productService.UpdateProduct(r.Context(), id, productInput(body))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, product)
}

// Deleting is only possible through the authenticated admin routes.
func (h *ProductHandler) rejectDelete(w http.ResponseWriter, r *http.Request) {
	common.RespondWithError(w, http.StatusForbidden, "Products can only be deleted through /admin/products")
}

func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: fmt.Sprintf("Product %d deleted", id)})
}

// productID reads the {id} URL parameter. Non-numeric ids cannot exist.
func productID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, fmt.Errorf("product %q: %w", chi.URLParam(r, "id"), common.ErrNotFound)
	}
	return id, nil
}

func productInput(body *requestBody) service.ProductInput {
	fields := make(map[string]string, len(validator.ProductFields))
	for _, name := range validator.ProductFields {
		if v, ok := body.Fields[name]; ok {
			fields[name] = v
		}
	}
	return service.ProductInput{Fields: fields, Image: body.File}
}
