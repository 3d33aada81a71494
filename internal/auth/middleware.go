package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/contanube/contanube/internal/platform/httpx"
	"github.com/contanube/contanube/internal/shared"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user in context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}

// UserIDFromContext extracts only the authenticated user's ID.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return 0, false
	}
	return user.ID, true
}

// RequireUser resolves the session's user and stores it in the request
// context, rejecting unauthenticated requests.
func RequireUser(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.User() == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "inicia sesión para continuar")
				return
			}
			userID, err := strconv.ParseInt(sess.User(), 10, 64)
			if err != nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "inicia sesión para continuar")
				return
			}
			user, err := service.UserByID(r.Context(), userID)
			if err != nil {
				if logger != nil {
					logger.Warn("resolve session user", slog.Int64("user_id", userID), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "inicia sesión para continuar")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}
