package entitlement

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/diatonic-ai/workbench/internal/shared"
	"github.com/diatonic-ai/workbench/internal/users"
)

// SubjectHeader carries the acting user id, set by the upstream
// gateway after authentication.
const SubjectHeader = "X-User-ID"

// Subject copies the subject header into the request context so
// downstream authorization middleware can evaluate against it.
func Subject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(SubjectHeader)); id != "" {
			r = r.WithContext(shared.ContextWithSubject(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Resolver *Resolver
	Loader   UserLoader
	Logger   *slog.Logger

	loads singleflight.Group
}

// RequireAny ensures the current user has at least one of the required
// permissions.
func (m *Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			user, ok := m.currentUser(w, r)
			if !ok {
				return
			}
			for _, perm := range required {
				if m.Resolver.HasPermission(user, perm) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireAll ensures the current user has all required permissions.
func (m *Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			user, ok := m.currentUser(w, r)
			if !ok {
				return
			}
			for _, perm := range required {
				if !m.Resolver.HasPermission(user, perm) {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// currentUser loads the subject's record. Concurrent requests for the
// same user share one storage fetch via singleflight.
func (m *Middleware) currentUser(w http.ResponseWriter, r *http.Request) (users.User, bool) {
	userID := shared.SubjectFromContext(r.Context())
	if userID == "" {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return users.User{}, false
	}
	v, err, _ := m.loads.Do(userID, func() (any, error) {
		return m.Loader.GetUser(r.Context(), userID)
	})
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("load subject", slog.String("user_id", userID), slog.Any("error", err))
		}
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return users.User{}, false
	}
	user := v.(users.User)
	if !user.IsActive {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return users.User{}, false
	}
	return user, true
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}
