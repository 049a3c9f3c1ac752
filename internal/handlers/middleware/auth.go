package middleware

import (
	"context"
	"net/http"

	"github.com/okunev/bookmart/internal/handlers/render"
	"github.com/okunev/bookmart/internal/handlers/userctx"
	"github.com/okunev/bookmart/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

// AuthMiddleware resolves the authenticated user and puts it into the
// request context. Requests without a valid access token get 401.
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Auth(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
