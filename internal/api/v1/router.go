// Package v1 provides version 1 of the HTTP API and the server-rendered UI.
package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sefa-b/bank-registry/internal/api/middleware"
	"github.com/sefa-b/bank-registry/internal/errs"
	"github.com/sefa-b/bank-registry/internal/service"
	"github.com/sefa-b/bank-registry/internal/utils"
	"github.com/sefa-b/bank-registry/internal/worker"
)

// StatsProvider reports audit worker pool statistics.
type StatsProvider interface {
	GetStats() worker.Stats
}

// Deps holds the dependencies needed for v1 routes. Metrics, Limiter and
// Pool are optional.
type Deps struct {
	Banks          service.BankService
	Metrics        *utils.MetricsCollector
	Limiter        service.RateLimiter
	Pool           StatsProvider
	RateLimitRPM   int
	AllowedOrigins []string
	TrustedProxies []netip.Prefix
	ServiceName    string
}

// Router holds the dependencies needed for v1 routes.
type Router struct {
	deps Deps
	html *htmlResponder
	json *jsonResponder
}

// NewRouter creates a new v1 router.
func NewRouter(deps Deps) *Router {
	if deps.Metrics == nil {
		deps.Metrics = utils.NewMetricsCollector()
	}
	if deps.ServiceName == "" {
		deps.ServiceName = "bank-registry"
	}
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = []string{"*"}
	}

	return &Router{
		deps: deps,
		html: newHTMLResponder(),
		json: &jsonResponder{},
	}
}

// Handler builds the complete HTTP handler with middleware applied.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	// Recover is innermost so outer middleware sees a panic as a 500.
	r.Use(
		middleware.TracingMiddleware(rt.deps.ServiceName),
		middleware.LoggingMiddleware,
		middleware.MetricsMiddleware(rt.deps.Metrics),
		middleware.Recover,
	)

	r.Get("/healthz", rt.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/banks", http.StatusSeeOther)
	})

	r.Route("/banks", func(r chi.Router) {
		r.Get("/", rt.ui(rt.handleList))
		r.Post("/", rt.ui(rt.handleCreate))
		r.Get("/new", rt.ui(rt.handleNewForm))
		r.Post("/new", rt.ui(rt.handleCreate))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", rt.ui(rt.handleGet))
			r.Put("/", rt.ui(rt.handleUpdate))
			r.Delete("/", rt.ui(rt.handleDelete))
			r.Get("/edit", rt.ui(rt.handleEditForm))
			r.Post("/edit", rt.ui(rt.handleUpdate))
			r.Post("/update", rt.ui(rt.handleUpdate))
			r.Put("/update", rt.ui(rt.handleUpdate))
			r.Post("/delete", rt.ui(rt.handleDelete))
			r.Delete("/delete", rt.ui(rt.handleDelete))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.deps.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-Trace-ID"},
			MaxAge:         300,
		}))
		if rt.deps.RateLimitRPM > 0 {
			r.Use(middleware.RateLimitMiddleware(rt.deps.Limiter, rt.deps.RateLimitRPM, time.Minute, rt.deps.TrustedProxies))
		}

		r.Get("/metrics/basic", rt.handleBasicMetrics)

		r.Route("/banks", func(r chi.Router) {
			r.Get("/", rt.api(rt.handleList))
			r.Post("/", rt.api(rt.handleCreate))
			r.Get("/{id}", rt.api(rt.handleGet))
			r.Put("/{id}", rt.api(rt.handleUpdate))
			r.Patch("/{id}", rt.api(rt.handlePatch))
			r.Delete("/{id}", rt.api(rt.handleDelete))
			r.Get("/{id}/audit", rt.handleAudit)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		rt.responderFor(req).fail(w, req, "route", errs.NewNotFoundError("Page not found"), nil)
	})

	return r
}

// bankHandler is a handler that renders through the responder picked for the request.
type bankHandler func(w http.ResponseWriter, r *http.Request, resp responder)

// ui negotiates the representation per request.
func (rt *Router) ui(h bankHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r, rt.responderFor(r))
	}
}

// api always answers with JSON.
func (rt *Router) api(h bankHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r, rt.json)
	}
}

func (rt *Router) responderFor(r *http.Request) responder {
	if isAPIPath(r.URL.Path) || wantsJSON(r) {
		return rt.json
	}
	return rt.html
}

// handleHealth pings the database.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := rt.deps.Banks.Health(ctx); err != nil {
		utils.Warn("health check failed", "error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBasicMetrics returns the collector snapshot and worker pool stats.
func (rt *Router) handleBasicMetrics(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"metrics": rt.deps.Metrics.GetMetrics()}
	if rt.deps.Pool != nil {
		body["audit_pool"] = rt.deps.Pool.GetStats()
	}
	writeJSON(w, http.StatusOK, body)
}

// handleAudit returns the audit trail of a bank.
func (rt *Router) handleAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := bankID(r)
	if !ok {
		rt.json.fail(w, r, "audit", errs.NewNotFoundError(bankNotFoundMsg), nil)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			rt.json.fail(w, r, "audit", errs.NewValidationError("limit", "limit: must be a non-negative integer"), nil)
			return
		}
		limit = n
	}

	entries, err := rt.deps.Banks.History(r.Context(), id, limit)
	if err != nil {
		rt.json.fail(w, r, "audit", err, nil)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
