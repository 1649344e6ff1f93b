package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"storefront/internal/domain"
)

const maxItemID = 1_000_000

// ItemHandler serves a fixed demo catalogue that needs no storage.
type ItemHandler struct{}

func NewItemHandler() *ItemHandler {
	return &ItemHandler{}
}

func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Get("/latest", h.GetLatestItem)
		r.Get("/{item_id}", h.GetItem)
	})
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []string{"Item1", "Item2"})
}

func (h *ItemHandler) GetLatestItem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"item": map[string]string{"id": "0", "name": "latest"},
	})
}

// GetItem echoes the id back; valid ids satisfy 1 <= id < 1_000_000.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
	verr := &domain.ValidationError{}
	switch {
	case err != nil:
		verr.Add("item_id", "value is not a valid integer")
	case id < 1 || id >= maxItemID:
		verr.Add("item_id", fmt.Sprintf("value must be between 1 and %d", maxItemID-1))
	}
	if verr.HasErrors() {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: verr.Fields})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"item": map[string]int64{"id": id},
	})
}
