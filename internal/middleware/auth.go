package middleware

import (
	"net/http"
	"strings"

	"github.com/mycloudbox/mycloudbox/internal/ctxkeys"
	"github.com/mycloudbox/mycloudbox/internal/service"
)

// AuthMiddleware resolves the JWT from the Authorization header or the
// auth cookie and adds the user to the context if it is valid
func AuthMiddleware(authService *service.AuthService, userService *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := requestToken(r)
			if token == "" {
				// No token, continue without auth
				next.ServeHTTP(w, r)
				return
			}

			userID, err := authService.UserIDFromToken(token)
			if err != nil {
				// Invalid token, clear cookie and continue
				if fromCookie {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := userService.ByID(r.Context(), userID)
			if err != nil {
				if fromCookie {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = nil

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithCookieAuth(ctx, fromCookie)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestToken prefers the Authorization header and falls back to the cookie.
func requestToken(r *http.Request) (token string, fromCookie bool) {
	header := r.Header.Get("Authorization")
	if scheme, value, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(value), false
	}

	cookie, err := r.Cookie(service.AuthCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// RequireAuth rejects requests without an authenticated user
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next.ServeHTTP(w, r)
	}
}
