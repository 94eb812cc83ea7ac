package web

import (
	"net/http"

	"inventory-manager/internal/core"
)

// createSalesOrder handles POST /sales-orders.
func (h *Handler) createSalesOrder(w http.ResponseWriter, r *http.Request) {
	var req core.OrderInput
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.CreateSalesOrder(r.Context(), companyIDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// listSalesOrders handles GET /sales-orders[?status=...].
func (h *Handler) listSalesOrders(w http.ResponseWriter, r *http.Request) {
	var status *core.OrderStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := core.OrderStatus(v)
		if !s.Valid() {
			writeError(w, r, "unknown status "+v, "INVALID_ARGUMENT", http.StatusBadRequest)
			return
		}
		status = &s
	}

	result, err := h.svc.ListSalesOrders(r.Context(), companyIDFromContext(r.Context()), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getSalesOrder handles GET /sales-orders/{id}.
func (h *Handler) getSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.svc.GetSalesOrder(r.Context(), companyIDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// updateSalesOrder handles PUT /sales-orders/{id}.
func (h *Handler) updateSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch core.SalesOrderPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	order, err := h.svc.UpdateSalesOrder(r.Context(), companyIDFromContext(r.Context()), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// fulfillSalesOrder handles POST /sales-orders/{id}/fulfill.
func (h *Handler) fulfillSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		WarehouseID int `json:"warehouseId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WarehouseID <= 0 {
		writeError(w, r, "warehouseId is required", "INVALID_ARGUMENT", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.FulfillSalesOrder(r.Context(), companyIDFromContext(r.Context()), id, req.WarehouseID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
