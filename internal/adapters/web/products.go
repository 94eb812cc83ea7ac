package web

import (
	"net/http"
	"strconv"

	"inventory-manager/internal/core"
)

// createProduct handles POST /products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req core.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), companyIDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// listProducts handles GET /products[?lowStock=true].
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	lowStock := false
	if v := r.URL.Query().Get("lowStock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, "lowStock must be true or false", "INVALID_ARGUMENT", http.StatusBadRequest)
			return
		}
		lowStock = b
	}

	result, err := h.svc.ListProducts(r.Context(), companyIDFromContext(r.Context()), lowStock)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), companyIDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch core.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), companyIDFromContext(r.Context()), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), companyIDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
