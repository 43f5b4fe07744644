// Package auth guards the administrative API surface.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminToken authorizes requests carrying the operator bearer token.
// Only the bcrypt hash of the token is configured; the plaintext never
// touches disk or environment dumps.
type AdminToken struct {
	hash   []byte
	logger *slog.Logger
}

// NewAdminToken constructs the middleware from the configured hash.
func NewAdminToken(hash string, logger *slog.Logger) *AdminToken {
	return &AdminToken{hash: []byte(hash), logger: logger}
}

// Require rejects requests without a valid admin bearer token.
func (a *AdminToken) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword(a.hash, []byte(token)); err != nil {
			if a.logger != nil {
				a.logger.Warn("admin token rejected", slog.String("path", r.URL.Path))
			}
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
