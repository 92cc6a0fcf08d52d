package handler

import (
	"net/http"

	"lendcore/handler/hc"
	"lendcore/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
)

// Server http server of the lending core
type Server struct {
	version string
	rest    http.Handler
	checks  map[string]hc.Check
}

// New new server function
func New(version string, rest http.Handler, checks map[string]hc.Check) Server {
	return Server{
		version: version,
		rest:    rest,
		checks:  checks,
	}
}

// Handler root handler with the api, health check and metrics mounted
func (s Server) Handler() http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.NewCompressor(5).Handler)

	mux.Mount("/hc", hc.Handle(s.version, s.checks))
	mux.Mount("/metrics", metrics.Handler())
	mux.Mount("/api", s.rest)

	return mux
}
