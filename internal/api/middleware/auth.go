// Package middleware holds the HTTP middleware of the prdgen API.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/adolfohrq/prdgen/internal/api/ctxkeys"
	pkgauth "github.com/adolfohrq/prdgen/pkg/auth"
)

// TokenParser validates a bearer token. *pkgauth.Signer implements it.
type TokenParser interface {
	Parse(token string) (*pkgauth.Claims, error)
}

// AuthMiddleware validates the Bearer JWT and injects the user id into the context.
//
// Flow:
//  1. Read "Authorization: Bearer <token>"
//  2. Missing header or other scheme → 401
//  3. Invalid or expired token → 401
//  4. Inject ctxkeys.UserID and call next
func AuthMiddleware(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				writeUnauthorized(w, "missing or invalid Authorization header")
				return
			}
			claims, err := parser.Parse(token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			ctx := ctxkeys.WithValue(r.Context(), ctxkeys.UserID, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns "" when the header is missing, uses another scheme or is empty.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
