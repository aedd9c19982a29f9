package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/forgo/petzadopt/internal/model"
)

// AdminChecker reports whether a user holds the admin role
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// AdminAuth returns a middleware that admits only admins. It must run
// after Auth so the caller's email is in context.
func AdminAuth(checker AdminChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := GetUserEmail(r.Context())
			if email == "" {
				model.NewUnauthorizedError("authentication required").WriteJSON(w)
				return
			}

			isAdmin, err := checker.IsAdmin(r.Context(), email)
			if err != nil {
				// A failed lookup must not read as "not admin"
				slog.ErrorContext(r.Context(), "admin check failed",
					"request_id", GetRequestID(r.Context()),
					"error", err,
				)
				model.NewUpstreamError("unable to verify role").WriteJSON(w)
				return
			}
			if !isAdmin {
				model.NewForbiddenError("admin role required").WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
