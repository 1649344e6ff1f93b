package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/domain"
	"storefront/internal/validation"
	"storefront/pkg/logger"
)

type ProductHandler struct {
	service   domain.ProductService
	validator *validation.Validator
	logger    logger.Logger
}

func NewProductHandler(service domain.ProductService, validator *validation.Validator, logger logger.Logger) *ProductHandler {
	return &ProductHandler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{product_id}", h.GetProduct)
		r.Put("/{product_id}", h.ReplaceProduct)
		r.Patch("/{product_id}", h.UpdateProductPartial)
		r.Delete("/{product_id}", h.DeleteProduct)
	})
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	products, err := h.service.ListProducts(r.Context(), s)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validator.ProductCreate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), s, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := validation.PathID("product_id", chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), s, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ReplaceProduct(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.validator.ProductReplace, h.service.ReplaceProduct)
}

func (h *ProductHandler) UpdateProductPartial(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.validator.ProductPartial, h.service.UpdateProductPartial)
}

type productUpdate func(ctx context.Context, s domain.Session, id int64, in domain.ProductInput) (*domain.Product, error)

// update is shared by PUT and PATCH; they differ only in validation and merge rules.
func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request, validate func(domain.ProductInput) error, apply productUpdate) {
	id, err := validation.PathID("product_id", chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var in domain.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	product, err := apply(r.Context(), s, id, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := validation.PathID("product_id", chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), s, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
