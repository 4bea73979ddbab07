package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	internal "github.com/arifwidianto/shift-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

// CallerIdentity extracts the caller from the bearer token issued by the
// external auth service. The scheduling core does not authenticate anyone;
// it only needs the user id ("sub") and the privileged flag from the claims.
func CallerIdentity(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, internal.ErrInvalidToken
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("caller token rejected", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			caller := &internal.Caller{}
			if sub, ok := claims["sub"].(float64); ok {
				caller.UserID = int64(sub)
			}
			if privileged, ok := claims["privileged"].(bool); ok {
				caller.Privileged = privileged
			}
			if caller.UserID == 0 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := internal.ContextWithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePrivileged gates sweep, auto-registration, confirmation and leave
// decision routes. Runs after CallerIdentity; the authorization check comes
// before any request validation.
func RequirePrivileged(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := internal.CallerFromContext(r.Context())
			if !ok || caller == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !caller.Privileged {
				logger.Warn("access denied: caller lacks privilege",
					"user_id", caller.UserID,
					"path", r.URL.Path)
				http.Error(w, "Forbidden: privileged access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}
