package web

import (
	"net/http"

	"inventory-manager/internal/app"
	"inventory-manager/internal/core"

	"github.com/go-chi/chi/v5"
)

// ── Warehouses ────────────────────────────────────────────────────────────────

func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var req core.WarehouseInput
	if !decodeJSON(w, r, &req) {
		return
	}
	wh, err := h.svc.CreateWarehouse(r.Context(), companyIDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wh)
}

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListWarehouses(r.Context(), companyIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	wh, err := h.svc.GetWarehouse(r.Context(), companyIDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wh)
}

func (h *Handler) updateWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch core.WarehousePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	wh, err := h.svc.UpdateWarehouse(r.Context(), companyIDFromContext(r.Context()), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wh)
}

func (h *Handler) deleteWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteWarehouse(r.Context(), companyIDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Customers and suppliers ───────────────────────────────────────────────────

// contactRoutes mounts the CRUD routes for one contact directory.
func (h *Handler) contactRoutes(kind app.ContactKind) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req core.ContactInput
			if !decodeJSON(w, r, &req) {
				return
			}
			c, err := h.svc.CreateContact(r.Context(), kind, companyIDFromContext(r.Context()), req)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, c)
		})

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			result, err := h.svc.ListContacts(r.Context(), kind, companyIDFromContext(r.Context()))
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r, "id")
			if !ok {
				return
			}
			c, err := h.svc.GetContact(r.Context(), kind, companyIDFromContext(r.Context()), id)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, c)
		})

		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r, "id")
			if !ok {
				return
			}
			var patch core.ContactPatch
			if !decodeJSON(w, r, &patch) {
				return
			}
			c, err := h.svc.UpdateContact(r.Context(), kind, companyIDFromContext(r.Context()), id, patch)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, c)
		})

		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r, "id")
			if !ok {
				return
			}
			if err := h.svc.DeleteContact(r.Context(), kind, companyIDFromContext(r.Context()), id); err != nil {
				writeServiceError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
