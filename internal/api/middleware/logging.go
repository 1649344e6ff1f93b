package middleware

import (
	"net/http"
	"time"

	"storefront/pkg/logger"
)

func Logging(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := wrap(w)
			next.ServeHTTP(rw, r)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			}

			switch {
			case rw.statusCode >= 500:
				log.ErrorContext(r.Context(), "HTTP isteği", fields)
			case rw.statusCode >= 400:
				log.WarnContext(r.Context(), "HTTP isteği", fields)
			default:
				log.InfoContext(r.Context(), "HTTP isteği", fields)
			}
		})
	}
}
