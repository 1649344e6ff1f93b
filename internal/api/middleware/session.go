package middleware

import (
	"net/http"

	"storefront/internal/database"
	"storefront/pkg/logger"
)

// SessionScope gives every request its own lazily acquired session and
// releases it when the handler returns, including on panic or cancellation.
func SessionScope(provider *database.Provider, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := database.NewScope(provider)
			defer func() {
				annotateSession(r, scope.Acquired())
				if err := scope.Release(); err != nil {
					log.ErrorContext(r.Context(), "Oturum serbest bırakılamadı", map[string]interface{}{"error": err.Error()})
				}
			}()

			next.ServeHTTP(w, r.WithContext(database.WithScope(r.Context(), scope)))
		})
	}
}
