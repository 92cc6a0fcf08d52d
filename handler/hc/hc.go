package hc

import (
	"context"
	"net/http"
	"sort"
	"time"

	"lendcore/handler/render"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Check reports whether a dependency is reachable
type Check func(ctx context.Context) error

// Handle health check, 503 when any check fails
func Handle(version string, checks map[string]Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(version, checks))
	return r
}

func handle(version string, checks map[string]Check) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	startedAt := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := render.H{}
		healthy := true
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.FromContext(ctx).WithError(err).Warnln("hc", name)
				status[name] = err.Error()
				healthy = false
				continue
			}

			status[name] = "ok"
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}

		render.Status(w, code, render.H{
			"uptime":     time.Since(startedAt).Truncate(time.Millisecond).String(),
			"version":    version,
			"started_at": startedAt,
			"checks":     status,
		})
	}
}
