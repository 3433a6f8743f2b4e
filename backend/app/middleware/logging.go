package middleware

import (
	"net/http"
	"time"

	"task-tracker/backend/global"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	route  string
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) SetRoute(route string) { w.route = route }

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		duration := time.Since(start)

		ev := global.Logger.Info()
		if sw.status >= 500 {
			ev = global.Logger.Error()
		} else if sw.status >= 400 {
			ev = global.Logger.Warn()
		}
		ev = ev.Str("ip", r.RemoteAddr).Str("method", r.Method).Str("path", r.URL.Path).Int("status", sw.status).Dur("duration", duration)
		if sw.route != "" {
			ev = ev.Str("route", sw.route)
		}
		ev.Msg("request")
	})
}
