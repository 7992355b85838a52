package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

const UserContextKey contextKey = "user"

const (
	MsgLoginRequired = "Anda harus login terlebih dahulu sebelum mengakses halaman ini."
	MsgForbidden     = "Anda tidak memiliki akses ke halaman ini."
	MsgSessionCheck  = "Sesi login tidak dapat diperiksa. Silakan coba lagi."
)

// Middleware is the route guard: it rejects the request before any handler
// runs unless it carries a valid, unrevoked bearer token. A failed
// revocation lookup is answered with 503.
func Middleware(secret string, revoker Revoker, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				deny(w, http.StatusUnauthorized, MsgLoginRequired)
				return
			}
			claims, err := ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				deny(w, http.StatusUnauthorized, MsgLoginRequired)
				return
			}
			if revoker != nil {
				revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					log.Error("revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
					deny(w, http.StatusServiceUnavailable, MsgSessionCheck)
					return
				}
				if revoked {
					deny(w, http.StatusUnauthorized, MsgLoginRequired)
					return
				}
			}
			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after Middleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUser(r.Context())
			if claims == nil {
				deny(w, http.StatusUnauthorized, MsgLoginRequired)
				return
			}
			if claims.Role != role {
				deny(w, http.StatusForbidden, MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUser(ctx context.Context) *Claims {
	claims, _ := ctx.Value(UserContextKey).(*Claims)
	return claims
}

// WithUser attaches claims to ctx the way Middleware does.
func WithUser(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func deny(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
