package middleware

import (
	"log/slog"
	"net/http"

	"github.com/prasetyow/expense-reimbursement/internal/auth"
)

// RequireManager gates a route on the manager role. The service layer repeats
// this check; the middleware keeps non-managers from reaching it at all.
func RequireManager() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.IsManager() {
				slog.Warn("access denied: manager role required",
					"user_id", user.ID,
					"role", user.Role)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
