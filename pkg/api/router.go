// Package api serves the search pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness and build version
//	POST /v1/search   run one search over a graph sent in the body
//	POST /v1/nodes    list the nodes of a graph sent in the body
//	GET  /metrics     Prometheus metrics (when a handler is configured)
//
// Request bodies carry the graph inline, in any shape [io.Decode] accepts.
// Errors are returned as {"error": {"code": ..., "message": ...}} with a
// status derived from the error code.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/pathtrace/pkg/observability"
	"github.com/matzehuels/pathtrace/pkg/pipeline"
)

// RequestIDHeader carries the request id in both directions. An incoming
// value is kept; otherwise a new UUID is assigned.
const RequestIDHeader = "X-Request-ID"

// DefaultMaxBodyBytes caps request bodies when Options leaves it unset.
const DefaultMaxBodyBytes int64 = 8 << 20

// Options configures the handler set.
type Options struct {
	// MaxBodyBytes caps request bodies. Defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// Handlers holds the dependencies of the HTTP routes.
type Handlers struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
	metrics http.Handler
}

// New constructs the handlers. A nil logger discards output.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Handlers {
	if logger == nil {
		logger = runner.Logger
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handlers{
		runner:  runner,
		logger:  logger,
		maxBody: opts.MaxBodyBytes,
		metrics: opts.Metrics,
	}
}

// Router wires the routes and middleware.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", h.handleSearch)
		r.Post("/nodes", h.handleNodes)
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// instrument reports requests to the HTTP hooks and logs them. The route
// label is the chi pattern, so path parameters do not explode cardinality.
func (h *Handlers) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, routePattern(r), status, elapsed)
		h.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", r.Header.Get(RequestIDHeader))
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
