package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter wires the application routes.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/josh", h.Josh)
	r.Get("/openapi.json", h.OpenAPI)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func NewServer(addr string, h *Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(NewRouter(h), "appstrap"),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
