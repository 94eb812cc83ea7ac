package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"inventory-manager/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultBodyLimit caps JSON request bodies when Config.MaxBodyBytes is zero.
const defaultBodyLimit = 1 << 20

// Config holds the HTTP adapter settings.
type Config struct {
	AllowedOrigins []string
	JWTSecret      string
	MaxBodyBytes   int64

	// Registerer and Gatherer back the request metrics and /metrics. When
	// Registerer is nil a private registry is used for both.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, cfg Config) http.Handler {
	if cfg.Registerer == nil {
		reg := prometheus.NewRegistry()
		cfg.Registerer, cfg.Gatherer = reg, reg
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultBodyLimit
	}

	h := &Handler{
		svc:       svc,
		jwtSecret: cfg.JWTSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(Metrics(cfg.Registerer))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	// ── Authenticated ─────────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(cfg.MaxBodyBytes))

		// Company registration happens before the caller has a tenant.
		r.Post("/companies", h.createCompany)
		r.Get("/companies/me", h.myCompany)

		// ── Tenant-scoped ─────────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(h.RequireCompany)

			r.Route("/warehouses", func(r chi.Router) {
				r.Post("/", h.createWarehouse)
				r.Get("/", h.listWarehouses)
				r.Get("/{id}", h.getWarehouse)
				r.Put("/{id}", h.updateWarehouse)
				r.Delete("/{id}", h.deleteWarehouse)
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", h.createProduct)
				r.Get("/", h.listProducts)
				r.Get("/{id}", h.getProduct)
				r.Put("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
			})

			r.Route("/stock", func(r chi.Router) {
				r.Post("/adjust", h.adjustStock)
				r.Post("/movement", h.recordMovement)
				r.Get("/movements", h.listMovements)
				r.Get("/levels/{productId}/{warehouseId}", h.getStockLevel)
				r.Get("/levels/{productId}/{warehouseId}/replay", h.replayLevel)
			})

			r.Route("/customers", h.contactRoutes(app.Customers))
			r.Route("/suppliers", h.contactRoutes(app.Suppliers))

			r.Route("/sales-orders", func(r chi.Router) {
				r.Post("/", h.createSalesOrder)
				r.Get("/", h.listSalesOrders)
				r.Get("/{id}", h.getSalesOrder)
				r.Put("/{id}", h.updateSalesOrder)
				r.Post("/{id}/fulfill", h.fulfillSalesOrder)
			})
		})
	})

	h.router = r
	return r
}

// health pings the database. It answers 503 while the database is unreachable.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}

	if err := h.svc.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, response{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// pathID parses a positive integer URL parameter. It writes a 400 and returns
// false when the parameter is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+name, "INVALID_ARGUMENT", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "INVALID_ARGUMENT", http.StatusBadRequest)
		return false
	}
	return true
}
