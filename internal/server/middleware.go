package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/thermogrid/pkg/observability"
)

// observe reports every request to the HTTP hooks and logs it at debug.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := r.Context()

		next.ServeHTTP(ww, r)

		// The route pattern is only known once chi has matched it.
		route := r.URL.Path
		if rc := chi.RouteContext(ctx); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks := observability.HTTP()
		hooks.OnRequest(ctx, r.Method, route)
		hooks.OnResponse(ctx, r.Method, route, status, time.Since(start))

		s.logger.Debug("http", "method", r.Method, "route", route, "status", status,
			"request_id", middleware.GetReqID(ctx), "duration", time.Since(start))
	})
}
