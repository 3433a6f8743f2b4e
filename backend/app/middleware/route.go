package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

type routeSetter interface {
	SetRoute(string)
}

// WithRoute tags the response writer with the matched route template, e.g.
// "/tasks/{id}/status", so request logs group by endpoint instead of raw path.
func WithRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if setter, ok := w.(routeSetter); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					setter.SetRoute(tpl)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
