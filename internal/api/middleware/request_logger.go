package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger puts a request-scoped logger into the context and logs each
// request when it completes. Paths are logged as route patterns and the query
// string is reduced to whether a token was presented, since token keys and
// callback URLs must not reach the logs. A redirect is logged by host only.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := middleware.GetReqID(r.Context())
			reqLogger := logger.With().Str("request_id", reqID).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			ev := reqLogger.Info()
			if ww.status >= http.StatusInternalServerError {
				ev = reqLogger.Error()
			}
			ev = ev.
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Int("status", ww.status).
				Str("remote_ip", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Bool("token_present", r.URL.Query().Get("token") != "")
			if loc := ww.Header().Get("Location"); loc != "" {
				if u, err := url.Parse(loc); err == nil {
					ev = ev.Str("redirect_host", u.Host)
				}
			}
			ev.Dur("duration", time.Since(start)).Msg("request")
		})
	}
}
