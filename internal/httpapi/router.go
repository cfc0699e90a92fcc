// Package httpapi serves the desk over JSON HTTP, with a server-sent event
// stream of room changes and Prometheus metrics.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/auth"
	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/observability"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Desk     *desk.Manager
	Verifier *auth.Verifier
	Events   *EventStream
	// Metrics is optional.
	Metrics *observability.Metrics
	// Gatherer backs the metrics endpoint. Defaults to prometheus.DefaultGatherer.
	Gatherer    prometheus.Gatherer
	MetricsPath string
	Logger      *zap.Logger
}

// NewRouter builds the HTTP routes.
//
// Precondition: Desk, Verifier, Events and Logger must be non-nil.
func NewRouter(d Deps) *mux.Router {
	h := &handler{desk: d.Desk, logger: d.Logger}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsPath := d.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	r := mux.NewRouter()
	if d.Metrics != nil {
		r.Use(metricsMiddleware(d.Metrics))
	}

	r.HandleFunc("/health/live", healthLive).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", h.healthReady).Methods(http.MethodGet)
	r.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.Handle("/events", d.Events).Methods(http.MethodGet)

	// API routes are registered on the root router with full paths. Under a
	// PathPrefix subrouter, mux v1.8.1 reports a method mismatch as 404.
	r.HandleFunc("/api/v1/rooms", h.listRooms).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/rooms/{number}", h.getRoom).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/quotes", h.quote).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/bookings", h.book).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/bookings", h.listBookings).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/bookings/{id}", h.getBooking).Methods(http.MethodGet)

	admin := adminMiddleware(d.Verifier, d.Logger)
	r.Handle("/api/v1/admin/randomize", admin(http.HandlerFunc(h.randomize))).Methods(http.MethodPost)
	r.Handle("/api/v1/admin/reset", admin(http.HandlerFunc(h.reset))).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondNotFound(w, "no such endpoint")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
