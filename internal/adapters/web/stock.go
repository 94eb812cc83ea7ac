package web

import (
	"net/http"
	"strconv"

	"inventory-manager/internal/core"
)

// adjustStock handles POST /stock/adjust. The body carries a signed delta.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req core.AdjustmentInput
	if !decodeJSON(w, r, &req) {
		return
	}
	level, err := h.svc.AdjustStock(r.Context(), companyIDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, level)
}

// recordMovement handles POST /stock/movement.
func (h *Handler) recordMovement(w http.ResponseWriter, r *http.Request) {
	var req core.MovementInput
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.RecordMovement(r.Context(), companyIDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// listMovements handles GET /stock/movements[?limit=N].
func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, "limit must be a non-negative integer", "INVALID_ARGUMENT", http.StatusBadRequest)
			return
		}
		limit = n
	}

	result, err := h.svc.ListMovements(r.Context(), companyIDFromContext(r.Context()), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getStockLevel handles GET /stock/levels/{productId}/{warehouseId}.
func (h *Handler) getStockLevel(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	warehouseID, ok := pathID(w, r, "warehouseId")
	if !ok {
		return
	}
	level, err := h.svc.GetStockLevel(r.Context(), companyIDFromContext(r.Context()), productID, warehouseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, level)
}

// replayLevel handles GET /stock/levels/{productId}/{warehouseId}/replay.
func (h *Handler) replayLevel(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	warehouseID, ok := pathID(w, r, "warehouseId")
	if !ok {
		return
	}
	replay, err := h.svc.ReplayLevel(r.Context(), companyIDFromContext(r.Context()), productID, warehouseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, replay)
}
