package web

import (
	"net/http"

	"inventory-manager/internal/core"
)

// createCompany handles POST /companies.
func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var req core.CompanyInput
	if !decodeJSON(w, r, &req) {
		return
	}
	company, err := h.svc.CreateCompany(r.Context(), userIDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

// myCompany handles GET /companies/me.
func (h *Handler) myCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.svc.GetMyCompany(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}
