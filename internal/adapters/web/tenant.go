package web

import (
	"context"
	"net/http"

	"inventory-manager/internal/core"
)

type companyIDKey struct{}

// companyIDFromContext returns the company resolved by RequireCompany.
func companyIDFromContext(ctx context.Context) int {
	v, _ := ctx.Value(companyIDKey{}).(int)
	return v
}

// RequireCompany resolves the authenticated user's company once per request.
// A user without a company gets 404 on every tenant-scoped route.
func (h *Handler) RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID, err := h.svc.ResolveCompany(r.Context(), userIDFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if companyID <= 0 {
			writeServiceError(w, r, core.ErrNotFound)
			return
		}
		ctx := context.WithValue(r.Context(), companyIDKey{}, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
