package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/familytree/pkg/observability"
)

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", s.handleData)
		r.Get("/frame", s.handleFrame)
		r.Post("/reset", s.handleReset)

		r.Route("/nodes/{id}", func(r chi.Router) {
			r.Post("/expand", s.handleExpand)
			r.Post("/collapse", s.handleCollapse)
			r.Post("/focus", s.handleFocus)
		})

		r.Get("/path", s.handlePath)
		r.Post("/lineage", s.handleLineage)

		r.Get("/state", s.handleGetState)
		r.Post("/state", s.handleRestoreState)

		r.Post("/share", s.handleShare)
		r.Get("/share/{id}", s.handleOpenShare)

		r.Get("/snapshots", s.handleListSnapshots)
		r.Get("/snapshots/{id}", s.handleGetSnapshot)

		r.Get("/render.svg", s.handleRenderSVG)
	})
	return r
}

// requestLogger logs each request at debug level and reports it to the
// HTTP hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), "api", r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), "api", r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed.Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
